package feed

import (
	"context"
	"time"

	"feedscraper/pkg/errors"
	"feedscraper/pkg/logger"
	"feedscraper/pkg/metrics"

	"github.com/rs/xid"
)

// ErrNoProfiles is returned by Run when there is nothing to collect
var ErrNoProfiles = errors.New(errors.ErrorTypeConfig, "no profiles to monitor: set or load profiles first")

// Sink persists a finished result. An empty filename selects a
// timestamped default. *storage.Manager satisfies it.
type Sink interface {
	EnsureDir() error
	Save(result any, filename string) (string, error)
}

// LoginFunc opens a provider session
type LoginFunc func(ctx context.Context) (Provider, error)

// Agent ties a provider session, a profile list and a sink into runs
type Agent struct {
	provider Provider
	sink     Sink
	opts     Options
	profiles []string
	logger   logger.Logger
}

// NewAgent creates an agent. provider may be nil until Login is called.
func NewAgent(provider Provider, sink Sink, opts Options, log logger.Logger) *Agent {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Agent{provider: provider, sink: sink, opts: opts, logger: log}
}

// Login opens a session with login and prepares the output directory
func (a *Agent) Login(ctx context.Context, login LoginFunc) error {
	provider, err := login(ctx)
	if err != nil {
		a.logger.WithError(err).Error("failed to login")
		if errors.TypeOf(err) == errors.ErrorTypeUnknown {
			return errors.Wrap(errors.ErrorTypeAuth, err, "login failed")
		}
		return err
	}
	a.provider = provider
	a.logger.Info("logged in successfully")

	if err := a.sink.EnsureDir(); err != nil {
		return err
	}
	return nil
}

// Initialize logs in and, when profilesPath is set, loads the profile list
func (a *Agent) Initialize(ctx context.Context, login LoginFunc, profilesPath string) error {
	if err := a.Login(ctx, login); err != nil {
		return err
	}
	if profilesPath != "" {
		if _, err := a.LoadProfiles(profilesPath); err != nil {
			return err
		}
	}
	return nil
}

// SetProfiles replaces the profile list
func (a *Agent) SetProfiles(profiles []string) {
	a.profiles = append([]string(nil), profiles...)
}

// LoadProfiles replaces the profile list with the contents of path.
// On error the current list is left untouched.
func (a *Agent) LoadProfiles(path string) ([]string, error) {
	profiles, err := LoadProfiles(path)
	if err != nil {
		a.logger.WithError(err).Error("failed to load profiles")
		return nil, err
	}
	a.profiles = profiles
	a.logger.InfoWithFields("loaded profiles", map[string]interface{}{
		"count": len(profiles),
		"path":  path,
	})
	return a.Profiles(), nil
}

// Profiles returns a copy of the current profile list
func (a *Agent) Profiles() []string {
	return append([]string(nil), a.profiles...)
}

// Run collects every profile and saves the result. It returns the result
// and the path written. With no profiles it returns ErrNoProfiles and
// saves nothing.
func (a *Agent) Run(ctx context.Context) (*Result, string, error) {
	if len(a.profiles) == 0 {
		a.logger.Warn(ErrNoProfiles.Message)
		return nil, "", ErrNoProfiles
	}
	if a.provider == nil {
		return nil, "", errors.New(errors.ErrorTypeAuth, "not logged in")
	}

	runID := xid.New().String()
	log := a.logger.WithField("run_id", runID)
	start := time.Now()

	log.InfoWithFields("starting run", map[string]interface{}{
		"profiles":         len(a.profiles),
		"max_per_profile":  a.opts.MaxPostsPerProfile,
		"include_retweets": a.opts.IncludeRetweets,
		"include_replies":  a.opts.IncludeReplies,
	})

	result := NewCollector(a.provider, a.opts, log).CollectAll(ctx, a.profiles)

	path, err := a.sink.Save(result, "")
	if err != nil {
		log.WithError(err).Error("failed to save results")
		metrics.ObserveRun("save_failed", start)
		return result, "", err
	}

	metrics.ObserveRun("success", start)
	logger.LogRunSummary(log, runID, result.Len(), result.TotalPosts(), result.FailedCount(), time.Since(start), path)
	return result, path, nil
}
