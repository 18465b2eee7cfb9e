package main

import (
	"os"
	"os/signal"
	"syscall"

	"feedscraper/pkg/config"
	"feedscraper/pkg/ui"
	"feedscraper/pkg/webhook"

	"github.com/spf13/cobra"
)

var listenAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a scrape for every authorized HTTP request",
	Long: `Start an HTTP server that runs a scrape on GET or POST /scrape-tweets.

Requests must carry WEBHOOK_AUTH_TOKEN as "Authorization: Bearer <token>"
or as ?token=<token>. /metrics exposes Prometheus metrics and /health
answers 200.`,
	Example: `  WEBHOOK_AUTH_TOKEN=secret feedscraper serve --addr :8888
  curl -H "Authorization: Bearer secret" "localhost:8888/scrape-tweets?maxTweets=5"`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&listenAddr, "addr", "", "listen address (default 127.0.0.1:8888)")
	serveCmd.Flags().StringVarP(&accountName, "account", "a", "", "use a specific stored account")
}

func runServe(cmd *cobra.Command, args []string) error {
	flags := map[string]interface{}{}
	if listenAddr != "" {
		flags["addr"] = listenAddr
	}
	cfg, log, err := loadConfig(flags)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		return err
	}

	if cfg.Webhook.AuthToken == config.DefaultWebhookToken {
		log.Warn("WEBHOOK_AUTH_TOKEN is not set, using the default token")
		ui.PrintWarning("Using the default webhook token, set WEBHOOK_AUTH_TOKEN")
	}

	creds, err := resolveCredentials(cfg, accountName, log)
	if err != nil {
		ui.PrintError("Missing credentials", err.Error())
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	handler := webhook.NewHandler(cfg.Webhook, sessionLogin(cfg, creds, log), log)
	ui.PrintInfo("Listening on", cfg.Webhook.Addr)
	return webhook.Serve(ctx, cfg.Webhook.Addr, webhook.NewRouter(handler), log)
}
