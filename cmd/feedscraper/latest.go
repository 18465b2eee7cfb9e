package main

import (
	"os"
	"os/signal"
	"syscall"

	"feedscraper/pkg/feed"
	"feedscraper/pkg/ui"

	"github.com/spf13/cobra"
)

const (
	latestMaxPosts  = 10
	latestOutputDir = "./latest-tweets"
	latestDetail    = 60
)

var latestCmd = &cobra.Command{
	Use:   "latest",
	Short: "Fetch the ten latest original posts per profile and print them",
	Long: `Collect the ten most recent posts of each profile, skipping retweets,
save them to ./latest-tweets and print the first 60 characters of every post
with its date, likes and replies.`,
	Args: cobra.NoArgs,
	RunE: runLatest,
}

func init() {
	rootCmd.AddCommand(latestCmd)
	latestCmd.Flags().StringVarP(&profilesFile, "profiles", "p", "./profiles.json", "path to a JSON array of usernames")
	latestCmd.Flags().StringVarP(&accountName, "account", "a", "", "use a specific stored account")
}

func runLatest(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig(nil)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runBatch(ctx, cfg, log, latestBatch(profilesFile))
}

// latestBatch reads an existing profiles file and never writes a sample
func latestBatch(profilesPath string) batch {
	return batch{
		opts: feed.Options{
			MaxPostsPerProfile: latestMaxPosts,
			IncludeRetweets:    false,
			IncludeReplies:     false,
		},
		profilesPath: profilesPath,
		outputDir:    latestOutputDir,
		detail:       latestDetail,
	}
}
