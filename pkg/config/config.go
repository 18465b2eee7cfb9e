package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Supported output formats for saved results
var SupportedFormats = []string{"json"}

// Config holds all configuration options for the feed scraper
type Config struct {
	// Platform credentials and transport
	Twitter TwitterConfig `yaml:"twitter" json:"twitter"`

	// Collection settings
	Scraper ScraperConfig `yaml:"scraper" json:"scraper"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// HTTP handler settings
	Webhook WebhookConfig `yaml:"webhook" json:"webhook"`

	// Scheduled runs
	Schedule ScheduleConfig `yaml:"schedule" json:"schedule"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// TwitterConfig holds credentials and HTTP settings for the platform
type TwitterConfig struct {
	Username          string        `yaml:"username" json:"username"`
	Password          string        `yaml:"password" json:"password"`
	Email             string        `yaml:"email" json:"email"`
	TwoFactorSecret   string        `yaml:"two_factor_secret" json:"two_factor_secret"`
	APIKey            string        `yaml:"api_key" json:"api_key"`
	APISecretKey      string        `yaml:"api_secret_key" json:"api_secret_key"`
	AccessToken       string        `yaml:"access_token" json:"access_token"`
	AccessTokenSecret string        `yaml:"access_token_secret" json:"access_token_secret"`
	UserAgent         string        `yaml:"user_agent" json:"user_agent"`
	Proxy             string        `yaml:"proxy" json:"proxy"`
	Timeout           time.Duration `yaml:"timeout" json:"timeout"`
}

// ScraperConfig holds per-run collection options
type ScraperConfig struct {
	MaxPostsPerProfile int    `yaml:"max_posts_per_profile" json:"max_posts_per_profile"`
	IncludeRetweets    bool   `yaml:"include_retweets" json:"include_retweets"`
	IncludeReplies     bool   `yaml:"include_replies" json:"include_replies"`
	ProfilesFile       string `yaml:"profiles_file" json:"profiles_file"`
}

// OutputConfig holds output directory configuration
type OutputConfig struct {
	Directory string `yaml:"directory" json:"directory"`
	Format    string `yaml:"format" json:"format"`
}

// WebhookConfig holds settings for the HTTP-triggered run
type WebhookConfig struct {
	AuthToken          string `yaml:"auth_token" json:"auth_token"`
	Addr               string `yaml:"addr" json:"addr"`
	OutputDirectory    string `yaml:"output_directory" json:"output_directory"`
	ProfilesFile       string `yaml:"profiles_file" json:"profiles_file"`
	MaxPostsPerProfile int    `yaml:"max_posts_per_profile" json:"max_posts_per_profile"`
	IncludeRetweets    bool   `yaml:"include_retweets" json:"include_retweets"`
}

// ScheduleConfig holds the cron expression used by watch mode
type ScheduleConfig struct {
	Spec string `yaml:"spec" json:"spec"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultWebhookToken is used when WEBHOOK_AUTH_TOKEN is not set
const DefaultWebhookToken = "change-me-to-a-secure-token"

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Twitter: TwitterConfig{
			UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
			Timeout:   30 * time.Second,
		},
		Scraper: ScraperConfig{
			MaxPostsPerProfile: 10,
			IncludeRetweets:    true,
			IncludeReplies:     false,
			ProfilesFile:       "./profiles.json",
		},
		Output: OutputConfig{
			Directory: "./output",
			Format:    "json",
		},
		Webhook: WebhookConfig{
			AuthToken:          DefaultWebhookToken,
			Addr:               "127.0.0.1:8888",
			OutputDirectory:    "/tmp/twitter-scraper",
			ProfilesFile:       "./profiles.json",
			MaxPostsPerProfile: 10,
			IncludeRetweets:    false,
		},
		Schedule: ScheduleConfig{
			Spec: "@every 30m",
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	// Platform credentials
	setString(&c.Twitter.Username, "TWITTER_USERNAME")
	setString(&c.Twitter.Password, "TWITTER_PASSWORD")
	setString(&c.Twitter.Email, "TWITTER_EMAIL")
	setString(&c.Twitter.TwoFactorSecret, "TWITTER_TWO_FACTOR_SECRET")
	setString(&c.Twitter.APIKey, "TWITTER_API_KEY")
	setString(&c.Twitter.APISecretKey, "TWITTER_API_SECRET_KEY")
	setString(&c.Twitter.AccessToken, "TWITTER_ACCESS_TOKEN")
	setString(&c.Twitter.AccessTokenSecret, "TWITTER_ACCESS_TOKEN_SECRET")
	setString(&c.Twitter.UserAgent, "FEEDSCRAPER_USER_AGENT")
	setString(&c.Twitter.Proxy, "FEEDSCRAPER_PROXY")

	if timeout := os.Getenv("FEEDSCRAPER_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("invalid FEEDSCRAPER_TIMEOUT: %w", err)
		}
		c.Twitter.Timeout = d
	}

	// Collection
	if max := os.Getenv("FEEDSCRAPER_MAX_POSTS"); max != "" {
		val, err := strconv.Atoi(max)
		if err != nil {
			return fmt.Errorf("invalid FEEDSCRAPER_MAX_POSTS: %w", err)
		}
		c.Scraper.MaxPostsPerProfile = val
	}
	setString(&c.Scraper.ProfilesFile, "FEEDSCRAPER_PROFILES_FILE")

	// Output directory
	setString(&c.Output.Directory, "FEEDSCRAPER_OUTPUT_DIR")

	// Webhook
	setString(&c.Webhook.AuthToken, "WEBHOOK_AUTH_TOKEN")
	setString(&c.Webhook.Addr, "FEEDSCRAPER_WEBHOOK_ADDR")

	setString(&c.Schedule.Spec, "FEEDSCRAPER_SCHEDULE")

	// Logging level
	setString(&c.Logging.Level, "FEEDSCRAPER_LOG_LEVEL")

	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	home := os.Getenv("HOME")
	locations := []string{
		"feedscraper.yaml",
		".feedscraper.yaml",
		".feedscraper.yml",
		filepath.Join(home, ".config", "feedscraper", "config.yaml"),
		filepath.Join(home, ".config", "feedscraper", "config.yml"),
		filepath.Join(home, ".feedscraper.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// IsSupportedFormat reports whether results can be written in format
func IsSupportedFormat(format string) bool {
	for _, f := range SupportedFormats {
		if f == format {
			return true
		}
	}
	return false
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Scraper.MaxPostsPerProfile <= 0 {
		errs = append(errs, errors.New("max posts per profile must be positive"))
	}
	if c.Webhook.MaxPostsPerProfile <= 0 {
		errs = append(errs, errors.New("webhook max posts per profile must be positive"))
	}

	if c.Output.Directory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}
	if !IsSupportedFormat(c.Output.Format) {
		errs = append(errs, fmt.Errorf("unsupported output format: %s", c.Output.Format))
	}

	if c.Twitter.Timeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}
	if c.Twitter.Proxy != "" && !strings.HasPrefix(c.Twitter.Proxy, "socks") {
		errs = append(errs, errors.New("proxy must be a socks4, socks4a or socks5 URI"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "disabled": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration.
// Only keys present in the map are applied, so unset flags keep lower-precedence values.
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if profiles, ok := flags["profiles"].(string); ok && profiles != "" {
		c.Scraper.ProfilesFile = profiles
	}
	if max, ok := flags["max"].(int); ok {
		c.Scraper.MaxPostsPerProfile = max
	}
	if outputDir, ok := flags["output"].(string); ok && outputDir != "" {
		c.Output.Directory = outputDir
	}
	if format, ok := flags["format"].(string); ok && format != "" {
		c.Output.Format = format
	}
	if retweets, ok := flags["retweets"].(bool); ok {
		c.Scraper.IncludeRetweets = retweets
	}
	if replies, ok := flags["replies"].(bool); ok {
		c.Scraper.IncludeReplies = replies
	}
	if proxy, ok := flags["proxy"].(string); ok && proxy != "" {
		c.Twitter.Proxy = proxy
	}
	if addr, ok := flags["addr"].(string); ok && addr != "" {
		c.Webhook.Addr = addr
	}
	if schedule, ok := flags["schedule"].(string); ok && schedule != "" {
		c.Schedule.Spec = schedule
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".feedscraper.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// Override with environment variables (includes values from .env)
	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
