package auth

import (
	"os"
	"time"
)

// EnvironmentStore reads a single read-only account from TWITTER_* variables
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment-based credential store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(account *Account) error {
	return ErrStoreUnavailable
}

// Retrieve returns the environment account. A non-empty username must match
// TWITTER_USERNAME.
func (e *EnvironmentStore) Retrieve(username string) (*Account, error) {
	account := &Account{
		Username:          os.Getenv("TWITTER_USERNAME"),
		Password:          os.Getenv("TWITTER_PASSWORD"),
		Email:             os.Getenv("TWITTER_EMAIL"),
		TwoFactorSecret:   os.Getenv("TWITTER_TWO_FACTOR_SECRET"),
		APIKey:            os.Getenv("TWITTER_API_KEY"),
		APISecretKey:      os.Getenv("TWITTER_API_SECRET_KEY"),
		AccessToken:       os.Getenv("TWITTER_ACCESS_TOKEN"),
		AccessTokenSecret: os.Getenv("TWITTER_ACCESS_TOKEN_SECRET"),
		LastModified:      time.Now(),
	}

	creds := account.Credentials()
	if !creds.HasPassword() && !creds.HasOAuth1() {
		return nil, ErrCredentialsNotFound
	}
	if account.Username == "" {
		account.Username = "default"
	}
	if username != "" && username != account.Username {
		return nil, ErrCredentialsNotFound
	}
	return account, nil
}

// List returns the environment account, if one is configured
func (e *EnvironmentStore) List() ([]*Account, error) {
	account, err := e.Retrieve("")
	if err != nil {
		return []*Account{}, nil
	}
	return []*Account{account}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(username string) error {
	return ErrStoreUnavailable
}

// Exists checks if environment credentials exist for username
func (e *EnvironmentStore) Exists(username string) bool {
	_, err := e.Retrieve(username)
	return err == nil
}
