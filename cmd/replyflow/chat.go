package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/muesli/termenv"
	"github.com/replyflow/replyflow"
	"github.com/replyflow/replyflow/internal/cli"
	"github.com/replyflow/replyflow/internal/presentation/tui"
	"github.com/replyflow/replyflow/pkg/domain"
	"github.com/replyflow/replyflow/pkg/resolver"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with a bot from the terminal",
	Long: `Starts an interactive chat session against a bot definition file or an
existing chatbot ID in the configured store.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		botFile, _ := cmd.Flags().GetString("bot")
		chatbotID, _ := cmd.Flags().GetString("chatbot-id")
		if botFile == "" && chatbotID == "" {
			return fmt.Errorf("either --bot or --chatbot-id is required")
		}

		opts := optionsFromFlags(cmd)
		logger := cli.NewLogger(opts.Debug)
		engine, err := cli.CreateEngine(opts, logger)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if botFile != "" {
			bots, err := seedBotFiles(ctx, engine.Store(), []string{botFile})
			if err != nil {
				return err
			}
			chatbotID = bots[0].ID
		}

		interactive := term.IsTerminal(int(os.Stdin.Fd()))
		if interactive {
			tui.PrintBanner()
		}
		return runChatLoop(ctx, engine, chatbotID, interactive)
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().String("bot", "", "Bot definition YAML file to seed and chat with")
	chatCmd.Flags().String("chatbot-id", "", "ID of an existing chatbot in the store")
}

func runChatLoop(ctx context.Context, engine *replyflow.Engine, chatbotID string, interactive bool) error {
	sess, greeting, err := engine.StartSession(ctx, chatbotID)
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}

	render := tui.NewRenderer()
	printBot(render, greeting.Message)

	reader := bufio.NewReader(os.Stdin)
	var lastOptions []domain.UIOption

	for {
		if interactive {
			fmt.Print(prompt())
		}
		line, err := reader.ReadString('\n')
		if err != nil {
			// EOF ends the session cleanly.
			fmt.Println()
			return nil
		}
		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			fmt.Println("Bye!")
			return nil
		}

		// A bare number picks the matching quick-reply option.
		if n, err := strconv.Atoi(input); err == nil && n >= 1 && n <= len(lastOptions) {
			input = lastOptions[n-1].Value
		}

		reply, err := engine.Send(ctx, sess.ID, input)
		if err != nil {
			return fmt.Errorf("send failed: %w", err)
		}

		printBot(render, reply.Text)
		if reply.Source == resolver.TierRAG && reply.RAGErr != nil && interactive {
			fmt.Println(dim(fmt.Sprintf("  (rag unavailable: %v)", reply.RAGErr)))
		}

		lastOptions = reply.Options
		for i, opt := range reply.Options {
			fmt.Printf("  %d. %s\n", i+1, opt.Label)
		}
	}
}

func printBot(render func(string) string, text string) {
	fmt.Print(render(text))
}

func prompt() string {
	p := termenv.ColorProfile()
	return termenv.String("you> ").Foreground(p.Color("#38bdf8")).String()
}

func dim(s string) string {
	return termenv.String(s).Faint().String()
}
