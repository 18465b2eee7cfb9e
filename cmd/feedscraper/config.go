package main

import (
	"fmt"
	"os"
	"path/filepath"

	"feedscraper/pkg/auth"
	"feedscraper/pkg/config"
	"feedscraper/pkg/ui"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage feedscraper configuration files.

Values are resolved in this order, highest first:
  - Command line flags
  - Environment variables (TWITTER_*, FEEDSCRAPER_*, WEBHOOK_AUTH_TOKEN)
  - .env files
  - Configuration file
  - Default values`,
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file with default values",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the resolved configuration with secrets masked",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the resolved configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configFile
	if path == "" {
		path = "feedscraper.yaml"
	}
	if _, err := os.Stat(path); err == nil {
		err := fmt.Errorf("configuration file already exists: %s", path)
		ui.PrintError(err.Error())
		return err
	}

	if err := config.DefaultConfig().Save(path); err != nil {
		ui.PrintError("Failed to create configuration file", err.Error())
		return err
	}

	ui.PrintSuccess("Configuration file created: " + path)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Add your Twitter credentials, or run 'feedscraper auth login'")
	fmt.Println("2. Run 'feedscraper config validate'")
	fmt.Println("3. Start collecting with 'feedscraper scrape'")
	return nil
}

// maskedConfig returns a copy of cfg safe to print
func maskedConfig(cfg *config.Config) config.Config {
	out := *cfg
	masked := auth.SanitizeAccount(&auth.Account{
		Password:          cfg.Twitter.Password,
		TwoFactorSecret:   cfg.Twitter.TwoFactorSecret,
		APIKey:            cfg.Twitter.APIKey,
		APISecretKey:      cfg.Twitter.APISecretKey,
		AccessToken:       cfg.Twitter.AccessToken,
		AccessTokenSecret: cfg.Twitter.AccessTokenSecret,
	})
	out.Twitter.Password = masked.Password
	out.Twitter.TwoFactorSecret = masked.TwoFactorSecret
	out.Twitter.APIKey = masked.APIKey
	out.Twitter.APISecretKey = masked.APISecretKey
	out.Twitter.AccessToken = masked.AccessToken
	out.Twitter.AccessTokenSecret = masked.AccessTokenSecret
	if out.Webhook.AuthToken != "" {
		out.Webhook.AuthToken = "********"
	}
	return out
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		return err
	}

	display := maskedConfig(cfg)
	data, err := yaml.Marshal(&display)
	if err != nil {
		ui.PrintError("Failed to format configuration", err.Error())
		return err
	}

	ui.PrintHighlight("Current Configuration")
	fmt.Println()
	fmt.Print(string(data))
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Configuration validation failed", err.Error())
		return err
	}

	var warnings, problems []string

	creds := auth.Account{
		Username:          cfg.Twitter.Username,
		Password:          cfg.Twitter.Password,
		APIKey:            cfg.Twitter.APIKey,
		APISecretKey:      cfg.Twitter.APISecretKey,
		AccessToken:       cfg.Twitter.AccessToken,
		AccessTokenSecret: cfg.Twitter.AccessTokenSecret,
	}
	if creds.Validate() != nil {
		warnings = append(warnings, "no usable Twitter credentials in config or environment, stored accounts will be used")
	}
	if cfg.Webhook.AuthToken == config.DefaultWebhookToken {
		warnings = append(warnings, "webhook auth token is the default value")
	}
	if _, err := os.Stat(cfg.Scraper.ProfilesFile); os.IsNotExist(err) {
		warnings = append(warnings, "profiles file does not exist yet: "+cfg.Scraper.ProfilesFile)
	}
	if err := os.MkdirAll(cfg.Output.Directory, 0755); err != nil {
		problems = append(problems, fmt.Sprintf("cannot create output directory: %v", err))
	}
	if cfg.Logging.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Logging.File), 0755); err != nil {
			problems = append(problems, fmt.Sprintf("cannot create log directory: %v", err))
		}
	}

	if len(problems) > 0 {
		ui.PrintError("Configuration has errors:")
		for _, p := range problems {
			fmt.Printf("  - %s\n", p)
		}
		return fmt.Errorf("configuration has %d error(s)", len(problems))
	}
	if len(warnings) > 0 {
		ui.PrintWarning("Configuration warnings:")
		for _, w := range warnings {
			fmt.Printf("  - %s\n", w)
		}
		fmt.Println()
	}

	ui.PrintSuccess("Configuration is valid")
	fmt.Println("\nConfiguration summary:")
	fmt.Printf("  Profiles file: %s\n", cfg.Scraper.ProfilesFile)
	fmt.Printf("  Max posts per profile: %d\n", cfg.Scraper.MaxPostsPerProfile)
	fmt.Printf("  Include retweets: %t\n", cfg.Scraper.IncludeRetweets)
	fmt.Printf("  Include replies: %t\n", cfg.Scraper.IncludeReplies)
	fmt.Printf("  Output directory: %s\n", cfg.Output.Directory)
	fmt.Printf("  Schedule: %s\n", cfg.Schedule.Spec)
	fmt.Printf("  Log level: %s\n", cfg.Logging.Level)
	return nil
}
