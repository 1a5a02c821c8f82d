package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/replyflow/replyflow"
	"github.com/replyflow/replyflow/internal/cli"
	httpadapter "github.com/replyflow/replyflow/pkg/adapters/http"
	"github.com/replyflow/replyflow/pkg/observability"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Starts the replyflow engine in server mode, exposing the admin and chat JSON API over HTTP.`,
	Run: func(cmd *cobra.Command, args []string) {
		port, _ := cmd.Flags().GetString("port")
		botFiles, _ := cmd.Flags().GetStringArray("bot")
		configPath, _ := cmd.Flags().GetString("config")

		opts := optionsFromFlags(cmd)
		if configPath != "" {
			cfg, err := cli.LoadServeConfig(configPath)
			if err != nil {
				fmt.Printf("Error loading config: %v\n", err)
				os.Exit(1)
			}
			opts = cfg.Merge(opts, cmd.Flags().Changed)
			if cfg.Port != "" && !cmd.Flags().Changed("port") {
				port = cfg.Port
			}
			botFiles = append(botFiles, cfg.Bots...)
		}
		logger := cli.NewLogger(opts.Debug)

		reg := prometheus.NewRegistry()
		metrics := observability.NewMetrics(reg)

		engine, err := cli.CreateEngine(opts, logger,
			replyflow.WithLifecycleHooks(metrics.Hooks()),
		)
		if err != nil {
			fmt.Printf("Error initializing replyflow: %v\n", err)
			os.Exit(1)
		}

		bots, err := seedBotFiles(cmd.Context(), engine.Store(), botFiles)
		if err != nil {
			fmt.Printf("Error seeding bot files: %v\n", err)
			os.Exit(1)
		}
		for _, bot := range bots {
			fmt.Printf("Seeded chatbot %q (%s)\n", bot.Name, bot.ID)
		}

		handler := httpadapter.NewHandler(engine, engine.Store(),
			httpadapter.WithLogger(logger),
			httpadapter.WithMetricsRegistry(reg),
		)

		srv := &http.Server{
			Addr:    ":" + port,
			Handler: handler,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			fmt.Printf("Starting Replyflow Server on %s\n", srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)

		case sig := <-shutdown:
			fmt.Printf("\nStart shutdown... Signal: %v\n", sig)

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				fmt.Printf("Graceful shutdown did not complete in %v: %v\n", 5*time.Second, err)
				if err := srv.Close(); err != nil {
					fmt.Printf("Error killing server: %v\n", err)
				}
			}
			fmt.Println("Replyflow Server stopped gracefully")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().StringArray("bot", nil, "Bot definition YAML file to seed on startup (repeatable)")
	serveCmd.Flags().String("config", "", "Optional YAML config file (flags override it)")
}
