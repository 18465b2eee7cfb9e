package auth

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"feedscraper/pkg/errors"
	"feedscraper/pkg/twitter"
)

// Account is a stored set of platform credentials
type Account struct {
	Username          string    `json:"username"`
	Password          string    `json:"password,omitempty"`
	Email             string    `json:"email,omitempty"`
	TwoFactorSecret   string    `json:"two_factor_secret,omitempty"`
	APIKey            string    `json:"api_key,omitempty"`
	APISecretKey      string    `json:"api_secret_key,omitempty"`
	AccessToken       string    `json:"access_token,omitempty"`
	AccessTokenSecret string    `json:"access_token_secret,omitempty"`
	LastModified      time.Time `json:"last_modified"`
}

// Credentials converts the account into login credentials
func (a *Account) Credentials() twitter.Credentials {
	return twitter.Credentials{
		Username:          a.Username,
		Password:          a.Password,
		Email:             a.Email,
		TwoFactorSecret:   a.TwoFactorSecret,
		APIKey:            a.APIKey,
		APISecretKey:      a.APISecretKey,
		AccessToken:       a.AccessToken,
		AccessTokenSecret: a.AccessTokenSecret,
	}
}

// Validate checks that the account can be used to log in
func (a *Account) Validate() error {
	if a == nil || a.Username == "" {
		return errors.New(errors.ErrorTypeConfig, "username is required")
	}
	creds := a.Credentials()
	if !creds.HasPassword() && !creds.HasOAuth1() {
		return errors.New(errors.ErrorTypeConfig, "a password or all four OAuth 1.0a values are required")
	}
	return nil
}

// CredentialStore is the interface for storing and retrieving credentials
type CredentialStore interface {
	// Store saves credentials for a given account
	Store(account *Account) error

	// Retrieve gets credentials for a specific username
	Retrieve(username string) (*Account, error)

	// List returns all stored accounts
	List() ([]*Account, error)

	// Delete removes credentials for a specific username
	Delete(username string) error

	// Exists checks if credentials exist for a username
	Exists(username string) bool
}

// Manager handles credential storage with fallback mechanisms
type Manager struct {
	stores []CredentialStore
}

// NewManager creates a credential manager backed by the system keyring,
// an encrypted file in the config directory and the environment, in that order.
func NewManager() (*Manager, error) {
	var stores []CredentialStore

	if keyringStore, err := NewKeyringStore(); err == nil {
		stores = append(stores, keyringStore)
	}

	configDir, err := getConfigDir()
	if err != nil {
		return nil, errors.Wrap(errors.ErrorTypeConfig, err, "failed to get config directory")
	}

	encryptedStore, err := NewEncryptedFileStore(filepath.Join(configDir, "credentials.enc"), "")
	if err != nil {
		return nil, errors.Wrap(errors.ErrorTypeConfig, err, "failed to create encrypted store")
	}
	stores = append(stores, encryptedStore)

	stores = append(stores, NewEnvironmentStore())

	return &Manager{stores: stores}, nil
}

// NewManagerWithStores creates a manager over the given stores, tried in order
func NewManagerWithStores(stores ...CredentialStore) *Manager {
	return &Manager{stores: stores}
}

// Store saves credentials using the first store that accepts them
func (m *Manager) Store(account *Account) error {
	if err := account.Validate(); err != nil {
		return err
	}

	account.LastModified = time.Now()

	var lastErr error
	for _, store := range m.stores {
		if err := store.Store(account); err == nil {
			return nil
		} else {
			lastErr = err
		}
	}

	if lastErr != nil {
		return errors.Wrap(errors.ErrorTypePersistence, lastErr, "failed to store credentials")
	}
	return ErrStoreUnavailable
}

// Retrieve gets credentials from the first store that has them
func (m *Manager) Retrieve(username string) (*Account, error) {
	for _, store := range m.stores {
		if account, err := store.Retrieve(username); err == nil && account != nil {
			return account, nil
		}
	}
	return nil, errors.Wrap(errors.ErrorTypeAuth, ErrCredentialsNotFound, "no credentials for %s", username)
}

// RetrieveDefault returns environment credentials when set, otherwise the
// most recently modified stored account
func (m *Manager) RetrieveDefault() (*Account, error) {
	for _, store := range m.stores {
		if envStore, ok := store.(*EnvironmentStore); ok {
			if account, err := envStore.Retrieve(""); err == nil {
				return account, nil
			}
		}
	}

	accounts, err := m.List()
	if err == nil && len(accounts) > 0 {
		return accounts[0], nil
	}
	return nil, ErrCredentialsNotFound
}

// List returns all stored accounts, newest first. When several stores hold
// the same username the most recently modified copy wins.
func (m *Manager) List() ([]*Account, error) {
	byName := make(map[string]*Account)

	for _, store := range m.stores {
		accounts, err := store.List()
		if err != nil {
			continue
		}
		for _, account := range accounts {
			if existing, ok := byName[account.Username]; !ok || account.LastModified.After(existing.LastModified) {
				byName[account.Username] = account
			}
		}
	}

	result := make([]*Account, 0, len(byName))
	for _, account := range byName {
		result = append(result, account)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].LastModified.Equal(result[j].LastModified) {
			return result[i].Username < result[j].Username
		}
		return result[i].LastModified.After(result[j].LastModified)
	})
	return result, nil
}

// Delete removes credentials from all stores
func (m *Manager) Delete(username string) error {
	var deleted bool
	var lastErr error

	for _, store := range m.stores {
		if err := store.Delete(username); err == nil {
			deleted = true
		} else if !stderrors.Is(err, ErrCredentialsNotFound) && !stderrors.Is(err, ErrStoreUnavailable) {
			lastErr = err
		}
	}

	if deleted {
		return nil
	}
	if lastErr != nil {
		return errors.Wrap(errors.ErrorTypePersistence, lastErr, "failed to delete credentials")
	}
	return errors.Wrap(errors.ErrorTypeAuth, ErrCredentialsNotFound, "no credentials for %s", username)
}

// getConfigDir returns the per-user configuration directory, creating it
func getConfigDir() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, "Library", "Application Support", "feedscraper")
	case "windows":
		configDir = filepath.Join(os.Getenv("APPDATA"), "feedscraper")
	default:
		if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
			configDir = filepath.Join(xdgConfig, "feedscraper")
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			configDir = filepath.Join(home, ".config", "feedscraper")
		}
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", err
	}
	return configDir, nil
}

// SanitizeAccount returns a copy of the account with secrets masked
func SanitizeAccount(account *Account) *Account {
	if account == nil {
		return nil
	}

	return &Account{
		Username:          account.Username,
		Password:          maskString(account.Password),
		Email:             account.Email,
		TwoFactorSecret:   maskString(account.TwoFactorSecret),
		APIKey:            maskString(account.APIKey),
		APISecretKey:      maskString(account.APISecretKey),
		AccessToken:       maskString(account.AccessToken),
		AccessTokenSecret: maskString(account.AccessTokenSecret),
		LastModified:      account.LastModified,
	}
}

// maskString masks all but the first 4 and last 4 characters of a string.
// Empty strings stay empty.
func maskString(s string) string {
	switch {
	case s == "":
		return ""
	case len(s) <= 8:
		return "********"
	}
	return s[:4] + "..." + s[len(s)-4:]
}

var (
	ErrCredentialsNotFound = errors.New(errors.ErrorTypeAuth, "credentials not found")
	ErrInvalidCredentials  = errors.New(errors.ErrorTypeConfig, "invalid credentials")
	ErrStoreUnavailable    = errors.New(errors.ErrorTypePersistence, "credential store unavailable")
)
