package tui

import (
	"fmt"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the ASCII art banner for Replyflow.
func PrintBanner() {
	p := termenv.ColorProfile()
	s1 := termenv.String("  ____            _        __ _               ").Foreground(p.Color("#38bdf8"))
	s2 := termenv.String(" |  _ \\ ___ _ __ | |_   _ / _| | _____      __").Foreground(p.Color("#60a5fa"))
	s3 := termenv.String(" | |_) / _ \\ '_ \\| | | | | |_| |/ _ \\ \\ /\\ / /").Foreground(p.Color("#818cf8"))
	s4 := termenv.String(" |  _ <  __/ |_) | | |_| |  _| | (_) \\ V  V / ").Foreground(p.Color("#a78bfa"))
	s5 := termenv.String(" |_| \\_\\___| .__/|_|\\__, |_| |_|\\___/ \\_/\\_/  ").Foreground(p.Color("#c084fc"))
	s6 := termenv.String("           |_|      |___/                     ").Foreground(p.Color("#e879f9"))

	fmt.Println()
	fmt.Println(s1)
	fmt.Println(s2)
	fmt.Println(s3)
	fmt.Println(s4)
	fmt.Println(s5)
	fmt.Println(s6)
	fmt.Println()
}
