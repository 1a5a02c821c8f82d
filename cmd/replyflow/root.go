package main

import (
	"fmt"
	"os"

	"github.com/replyflow/replyflow/internal/cli"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "replyflow",
	Short: "Replyflow is a three-tier chatbot reply engine",
	Long: `Replyflow answers chat messages by trying, in order: exact FAQ match,
workflow node match, and RAG fallback against an external retrieval service.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("backend", "memory", "Store backend: memory or redis")
	rootCmd.PersistentFlags().String("redis-addr", "localhost:6379", "Redis address")
	rootCmd.PersistentFlags().String("redis-password", "", "Redis password")
	rootCmd.PersistentFlags().Int("redis-db", 0, "Redis database number")
	rootCmd.PersistentFlags().String("redis-prefix", "", "Redis key prefix override")
	rootCmd.PersistentFlags().Duration("session-ttl", 0, "Session expiry for the redis backend (0 = no expiry)")
	rootCmd.PersistentFlags().String("rag-url", "", "Base URL of the RAG service (empty disables tier 3)")
	rootCmd.PersistentFlags().Duration("rag-timeout", 0, "Timeout for RAG calls (0 = client default)")
	rootCmd.PersistentFlags().Int("history-limit", 0, "Messages of history sent to the RAG service (0 = default)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
}

func optionsFromFlags(cmd *cobra.Command) cli.Options {
	opts := cli.Options{}
	opts.Backend, _ = cmd.Flags().GetString("backend")
	opts.RedisAddr, _ = cmd.Flags().GetString("redis-addr")
	opts.RedisPassword, _ = cmd.Flags().GetString("redis-password")
	opts.RedisDB, _ = cmd.Flags().GetInt("redis-db")
	opts.RedisPrefix, _ = cmd.Flags().GetString("redis-prefix")
	opts.SessionTTL, _ = cmd.Flags().GetDuration("session-ttl")
	opts.RAGURL, _ = cmd.Flags().GetString("rag-url")
	opts.RAGTimeout, _ = cmd.Flags().GetDuration("rag-timeout")
	opts.HistoryLimit, _ = cmd.Flags().GetInt("history-limit")
	opts.Debug, _ = cmd.Flags().GetBool("debug")
	return opts
}
