package feed

import (
	"context"
	"iter"

	"feedscraper/pkg/config"
	"feedscraper/pkg/logger"
	"feedscraper/pkg/metrics"
	"feedscraper/pkg/twitter"
)

// Provider is the timeline source a collector reads from.
// *twitter.Session satisfies it.
type Provider interface {
	GetTweets(ctx context.Context, username string, limit int) iter.Seq2[*twitter.Tweet, error]
	GetTweetsAndReplies(ctx context.Context, username string, limit int) iter.Seq2[*twitter.Tweet, error]
}

// Options controls what is collected for each profile
type Options struct {
	MaxPostsPerProfile int
	IncludeRetweets    bool
	IncludeReplies     bool
}

// OptionsFromConfig reads collection options from the scraper section
func OptionsFromConfig(cfg config.ScraperConfig) Options {
	return Options{
		MaxPostsPerProfile: cfg.MaxPostsPerProfile,
		IncludeRetweets:    cfg.IncludeRetweets,
		IncludeReplies:     cfg.IncludeReplies,
	}
}

// Collector gathers posts profile by profile
type Collector struct {
	provider Provider
	opts     Options
	logger   logger.Logger
}

// NewCollector creates a collector over provider
func NewCollector(provider Provider, opts Options, log logger.Logger) *Collector {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Collector{provider: provider, opts: opts, logger: log}
}

// Collect returns at most MaxPostsPerProfile posts for username, newest first.
// Skipped retweets do not count toward the limit. Provider errors are returned
// as is; nothing is retried.
func (c *Collector) Collect(ctx context.Context, username string) ([]Post, error) {
	posts := []Post{}
	if c.opts.MaxPostsPerProfile <= 0 {
		return posts, nil
	}

	seq := c.provider.GetTweets
	if c.opts.IncludeReplies {
		seq = c.provider.GetTweetsAndReplies
	}

	for tweet, err := range seq(ctx, username, c.opts.MaxPostsPerProfile) {
		if err != nil {
			return nil, err
		}
		if tweet == nil || (!c.opts.IncludeRetweets && tweet.IsRetweet) {
			continue
		}
		posts = append(posts, NormalizeTweet(tweet))
		if len(posts) >= c.opts.MaxPostsPerProfile {
			break
		}
	}
	return posts, nil
}

// CollectAll runs Collect for each profile in order. A failing profile is
// recorded as an error entry and the batch continues.
func (c *Collector) CollectAll(ctx context.Context, profiles []string) *Result {
	result := NewResult()
	for _, username := range profiles {
		c.logger.InfoWithFields("fetching tweets", map[string]interface{}{"username": username})

		posts, err := c.Collect(ctx, username)
		logger.LogProfileResult(c.logger, username, len(posts), err)
		metrics.ObserveProfile(len(posts), err)

		if err != nil {
			result.Set(username, ProfileResult{Err: err.Error()})
			continue
		}
		result.Set(username, ProfileResult{Posts: posts})
	}
	return result
}
