package main

import (
	"context"

	"feedscraper/pkg/auth"
	"feedscraper/pkg/config"
	"feedscraper/pkg/errors"
	"feedscraper/pkg/feed"
	"feedscraper/pkg/logger"
	"feedscraper/pkg/twitter"
)

// resolveCredentials prefers a named stored account, then credentials from
// config and environment, then the default stored account
func resolveCredentials(cfg *config.Config, account string, log logger.Logger) (twitter.Credentials, error) {
	if account == "" {
		creds := twitter.CredentialsFromConfig(cfg.Twitter)
		if creds.HasPassword() || creds.HasOAuth1() {
			log.Debug("using credentials from configuration")
			return creds, nil
		}
	}

	manager, err := auth.NewManager()
	if err != nil {
		return twitter.Credentials{}, err
	}

	var stored *auth.Account
	if account != "" {
		stored, err = manager.Retrieve(account)
	} else {
		stored, err = manager.RetrieveDefault()
	}
	if err != nil {
		return twitter.Credentials{}, errors.Wrap(errors.ErrorTypeAuth, err,
			"no Twitter credentials found, run 'feedscraper auth login' or set TWITTER_USERNAME and TWITTER_PASSWORD")
	}
	log.WithField("account", stored.Username).Info("using stored credentials")
	return stored.Credentials(), nil
}

// sessionLogin returns a LoginFunc that opens a fresh session on every call
func sessionLogin(cfg *config.Config, creds twitter.Credentials, log logger.Logger) feed.LoginFunc {
	return func(ctx context.Context) (feed.Provider, error) {
		client, err := twitter.NewClient(
			twitter.WithTimeout(cfg.Twitter.Timeout),
			twitter.WithProxy(cfg.Twitter.Proxy),
			twitter.WithUserAgent(cfg.Twitter.UserAgent),
			twitter.WithLogger(log),
		)
		if err != nil {
			return nil, err
		}
		session, err := client.Login(ctx, creds)
		if err != nil {
			return nil, err
		}
		return session, nil
	}
}
