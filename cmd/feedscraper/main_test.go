package main

import (
	"context"
	"encoding/json"
	"io"
	"iter"
	"os"
	"path/filepath"
	"testing"
	"time"

	"feedscraper/pkg/config"
	"feedscraper/pkg/feed"
	"feedscraper/pkg/logger"
	"feedscraper/pkg/storage"
	"feedscraper/pkg/twitter"
	"feedscraper/pkg/ui"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScrapeFlagDefaults(t *testing.T) {
	flags := scrapeCmd.Flags()
	tests := map[string]string{
		"profiles": "./profiles.json",
		"max":      "10",
		"output":   "./output",
		"retweets": "true",
		"replies":  "false",
	}
	for name, want := range tests {
		f := flags.Lookup(name)
		require.NotNil(t, f, name)
		assert.Equal(t, want, f.DefValue, name)
	}
	assert.Equal(t, "p", flags.Lookup("profiles").Shorthand)
	assert.Equal(t, "m", flags.Lookup("max").Shorthand)
	assert.Equal(t, "o", flags.Lookup("output").Shorthand)
	assert.Equal(t, "r", flags.Lookup("retweets").Shorthand)
	assert.Equal(t, "R", flags.Lookup("replies").Shorthand)
}

func TestChangedFlagsOnlyIncludesSetFlags(t *testing.T) {
	require.NoError(t, scrapeCmd.Flags().Parse([]string{"-m", "25", "-R"}))
	t.Cleanup(func() {
		scrapeCmd.Flags().Set("max", "10")
		scrapeCmd.Flags().Set("replies", "false")
		scrapeCmd.Flags().Lookup("max").Changed = false
		scrapeCmd.Flags().Lookup("replies").Changed = false
	})

	flags := changedFlags(scrapeCmd)
	assert.Equal(t, map[string]interface{}{"max": 25, "replies": true}, flags)

	cfg := config.DefaultConfig()
	cfg.MergeCommandLineFlags(flags)
	assert.Equal(t, 25, cfg.Scraper.MaxPostsPerProfile)
	assert.True(t, cfg.Scraper.IncludeReplies)
	assert.True(t, cfg.Scraper.IncludeRetweets)
}

func TestEnsureProfilesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "profiles.json")
	require.NoError(t, ensureProfilesFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var profiles []string
	require.NoError(t, json.Unmarshal(data, &profiles))
	assert.Equal(t, feed.SampleProfiles, profiles)

	require.NoError(t, os.WriteFile(path, []byte(`["alice"]`), 0644))
	require.NoError(t, ensureProfilesFile(path))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `["alice"]`, string(data))
}

func TestMaskedConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Twitter.Password = "supersecretpassword"
	cfg.Twitter.AccessToken = "tok"
	cfg.Webhook.AuthToken = "webhook-token"

	masked := maskedConfig(cfg)
	assert.Equal(t, "supe...word", masked.Twitter.Password)
	assert.Equal(t, "********", masked.Twitter.AccessToken)
	assert.Empty(t, masked.Twitter.APIKey)
	assert.Equal(t, "********", masked.Webhook.AuthToken)
	assert.Equal(t, "supersecretpassword", cfg.Twitter.Password, "original is untouched")
}

func TestResolveCredentialsFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Twitter.Username = "bot"
	cfg.Twitter.Password = "pw"

	creds, err := resolveCredentials(cfg, "", logger.NewNopLogger())
	require.NoError(t, err)
	assert.Equal(t, "bot", creds.Username)
	assert.True(t, creds.HasPassword())
}

func TestLatestBatchDoesNotWriteSampleProfiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.json")

	b := latestBatch(path)
	assert.False(t, b.writeSample)
	assert.Equal(t, latestMaxPosts, b.opts.MaxPostsPerProfile)
	assert.False(t, b.opts.IncludeRetweets)
	assert.Equal(t, latestOutputDir, b.outputDir)

	require.NoError(t, b.prepare())
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "latest must not create %s", path)
}

func TestScrapeBatchWritesSampleProfiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.json")

	require.NoError(t, batch{profilesPath: path, writeSample: true}.prepare())
	_, err := os.Stat(path)
	assert.NoError(t, err)
}

type fixedProvider struct{}

func (fixedProvider) GetTweets(ctx context.Context, username string, limit int) iter.Seq2[*twitter.Tweet, error] {
	return func(yield func(*twitter.Tweet, error) bool) {
		at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		yield(&twitter.Tweet{ID: "1", Text: "hello", TimeParsed: &at, Username: username}, nil)
	}
}

func (p fixedProvider) GetTweetsAndReplies(ctx context.Context, username string, limit int) iter.Seq2[*twitter.Tweet, error] {
	return p.GetTweets(ctx, username, limit)
}

func TestScheduledRunSharesSink(t *testing.T) {
	prev := ui.Output
	ui.Output = io.Discard
	t.Cleanup(func() { ui.Output = prev })

	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Scraper.ProfilesFile = filepath.Join(dir, "profiles.json")
	cfg.Output.Directory = filepath.Join(dir, "out")
	require.NoError(t, os.WriteFile(cfg.Scraper.ProfilesFile, []byte(`["alice"]`), 0644))

	log := logger.NewTestLogger()
	sink := storage.NewManager(cfg.Output.Directory, cfg.Output.Format, log)
	login := func(ctx context.Context) (feed.Provider, error) { return fixedProvider{}, nil }

	scheduledRun(context.Background(), cfg, sink, login, log)
	scheduledRun(context.Background(), cfg, sink, login, log)

	assert.Equal(t, 2, sink.GetSavedCount())
	var last map[string]interface{}
	for _, msg := range log.GetMessagesByLevel("INFO") {
		if msg.Message == "scheduled run complete" {
			last = msg.Fields
		}
	}
	require.NotNil(t, last)
	assert.Equal(t, 2, last["files_saved"])
}
