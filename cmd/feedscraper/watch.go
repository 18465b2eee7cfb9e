package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"feedscraper/pkg/config"
	"feedscraper/pkg/feed"
	"feedscraper/pkg/logger"
	"feedscraper/pkg/storage"
	"feedscraper/pkg/ui"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

var (
	scheduleSpec string
	runNow       bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run scrapes on a cron schedule",
	Long: `Run a full scrape on every tick of a cron schedule. Every run logs in
again, collects all profiles and writes a new timestamped file.

Schedules use standard cron syntax or descriptors such as "@hourly" and
"@every 30m".`,
	Example: `  feedscraper watch --schedule "@every 1h"
  feedscraper watch --schedule "0 */6 * * *" --now`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVar(&scheduleSpec, "schedule", "", "cron schedule (default @every 30m)")
	watchCmd.Flags().BoolVar(&runNow, "now", false, "run once immediately before waiting for the schedule")
	watchCmd.Flags().StringVarP(&accountName, "account", "a", "", "use a specific stored account")
}

func runWatch(cmd *cobra.Command, args []string) error {
	flags := map[string]interface{}{}
	if scheduleSpec != "" {
		flags["schedule"] = scheduleSpec
	}
	cfg, log, err := loadConfig(flags)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		return err
	}

	creds, err := resolveCredentials(cfg, accountName, log)
	if err != nil {
		ui.PrintError("Missing credentials", err.Error())
		return err
	}
	if err := ensureProfilesFile(cfg.Scraper.ProfilesFile); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sink := storage.NewManager(cfg.Output.Directory, cfg.Output.Format, log)
	job := func() { scheduledRun(ctx, cfg, sink, sessionLogin(cfg, creds, log), log) }

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(cfg.Schedule.Spec, job); err != nil {
		ui.PrintError("Invalid schedule", err.Error())
		return err
	}

	logger.LogComponentStart("watch", map[string]interface{}{"schedule": cfg.Schedule.Spec})
	ui.PrintInfo("Schedule", cfg.Schedule.Spec)
	if runNow {
		job()
	}

	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	logger.LogComponentStop("watch", "signal received")
	return nil
}

// scheduledRun performs one login, collect and save cycle. Failures are
// logged and the schedule continues. sink is shared by every run of the
// schedule so its saved count covers the whole watch session.
func scheduledRun(ctx context.Context, cfg *config.Config, sink *storage.Manager, login feed.LoginFunc, log logger.Logger) {
	tracker := ui.NewRunTracker()
	agent := feed.NewAgent(nil, sink, feed.OptionsFromConfig(cfg.Scraper), log)

	if err := agent.Initialize(ctx, login, cfg.Scraper.ProfilesFile); err != nil {
		log.WithError(err).Error("scheduled run failed to initialize")
		return
	}
	result, outputPath, err := agent.Run(ctx)
	if err != nil {
		log.WithError(err).Error("scheduled run failed")
		return
	}
	tracker.PrintRunSummary(result, len(agent.Profiles()), outputPath, 0)
	log.InfoWithFields("scheduled run complete", map[string]interface{}{
		"output":      outputPath,
		"files_saved": sink.GetSavedCount(),
	})
}
