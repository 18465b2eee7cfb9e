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

	"github.com/spf13/cobra"
)

var (
	profilesFile string
	maxPosts     int
	outputDir    string
	retweets     bool
	replies      bool
	accountName  string
	proxyURI     string
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Collect posts for every profile in the profiles file",
	Long: `Log in, collect up to --max posts for each profile listed in the profiles
file and save them to <output>/tweets-<timestamp>.json.

A missing profiles file is created with a few sample profiles.`,
	Example: `  # Defaults: ./profiles.json, 10 posts, ./output, retweets on, replies off
  feedscraper scrape

  # Twenty posts per profile without retweets, replies included
  feedscraper scrape -m 20 --retweets=false -R

  # Use a stored account and a custom profile list
  feedscraper scrape -p ./accounts.json --account mybot`,
	Args: cobra.NoArgs,
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	scrapeCmd.Flags().StringVarP(&profilesFile, "profiles", "p", "./profiles.json", "path to a JSON array of usernames")
	scrapeCmd.Flags().IntVarP(&maxPosts, "max", "m", 10, "maximum posts per profile")
	scrapeCmd.Flags().StringVarP(&outputDir, "output", "o", "./output", "output directory")
	scrapeCmd.Flags().BoolVarP(&retweets, "retweets", "r", true, "include retweets")
	scrapeCmd.Flags().BoolVarP(&replies, "replies", "R", false, "include replies")
	scrapeCmd.Flags().StringVarP(&accountName, "account", "a", "", "use a specific stored account")
	scrapeCmd.Flags().StringVar(&proxyURI, "proxy", "", "SOCKS proxy URI, e.g. socks5://127.0.0.1:9050")
}

// changedFlags maps the flags the user actually set onto config keys
func changedFlags(cmd *cobra.Command) map[string]interface{} {
	flags := map[string]interface{}{}
	set := func(name string, value interface{}) {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			flags[name] = value
		}
	}
	set("profiles", profilesFile)
	set("max", maxPosts)
	set("output", outputDir)
	set("retweets", retweets)
	set("replies", replies)
	set("proxy", proxyURI)
	return flags
}

func runScrape(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig(changedFlags(cmd))
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runBatch(ctx, cfg, log, batch{
		opts:         feed.OptionsFromConfig(cfg.Scraper),
		profilesPath: cfg.Scraper.ProfilesFile,
		outputDir:    cfg.Output.Directory,
		writeSample:  true,
	})
}

// batch describes one command-line run
type batch struct {
	opts         feed.Options
	profilesPath string
	outputDir    string
	detail       int

	// writeSample creates a sample profiles file when none exists
	writeSample bool
}

// prepare readies the profiles file before login
func (b batch) prepare() error {
	if !b.writeSample {
		return nil
	}
	return ensureProfilesFile(b.profilesPath)
}

func runBatch(ctx context.Context, cfg *config.Config, log logger.Logger, b batch) error {
	if err := b.prepare(); err != nil {
		ui.PrintError("Failed to create profiles file", err.Error())
		return err
	}

	creds, err := resolveCredentials(cfg, accountName, log)
	if err != nil {
		ui.PrintError("Missing credentials", err.Error())
		return err
	}

	ui.PrintInfo("Profiles file", b.profilesPath)
	ui.PrintInfo("Output directory", b.outputDir)

	tracker := ui.NewRunTracker()
	sink := storage.NewManager(b.outputDir, cfg.Output.Format, log)
	agent := feed.NewAgent(nil, sink, b.opts, log)

	if err := agent.Initialize(ctx, sessionLogin(cfg, creds, log), b.profilesPath); err != nil {
		ui.PrintError("Initialization failed", err.Error())
		return err
	}

	result, outputPath, err := agent.Run(ctx)
	if err != nil {
		ui.PrintError("Run failed", err.Error())
		return err
	}

	tracker.PrintRunSummary(result, len(agent.Profiles()), outputPath, b.detail)
	ui.PrintSuccess("Results saved to " + outputPath)
	return nil
}

// ensureProfilesFile writes the sample list when path does not exist
func ensureProfilesFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}

	if err := feed.WriteSampleProfiles(path); err != nil {
		return err
	}
	ui.PrintWarning("Profiles file not found, created a sample", path)
	return nil
}
