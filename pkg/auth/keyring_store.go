package auth

import (
	"encoding/json"
	stderrors "errors"

	"feedscraper/pkg/errors"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = "feedscraper"
	keyringPrefix  = "twitter_"
)

// KeyringStore implements CredentialStore using the system keychain
type KeyringStore struct{}

// NewKeyringStore checks that the keychain is reachable and fails when it is not usable
func NewKeyringStore() (*KeyringStore, error) {
	testKey := "test_availability"
	if err := keyring.Set(keyringService, testKey, "test"); err != nil {
		return nil, errors.Wrap(errors.ErrorTypeConfig, err, "keyring not available")
	}
	_ = keyring.Delete(keyringService, testKey)

	return &KeyringStore{}, nil
}

// Store saves credentials to the system keychain
func (k *KeyringStore) Store(account *Account) error {
	if account == nil || account.Username == "" {
		return ErrInvalidCredentials
	}

	data, err := json.Marshal(account)
	if err != nil {
		return errors.Wrap(errors.ErrorTypePersistence, err, "failed to marshal account")
	}
	if err := keyring.Set(keyringService, keyringPrefix+account.Username, string(data)); err != nil {
		return errors.Wrap(errors.ErrorTypePersistence, err, "failed to store in keyring")
	}
	return nil
}

// Retrieve gets credentials from the system keychain
func (k *KeyringStore) Retrieve(username string) (*Account, error) {
	if username == "" {
		return nil, ErrInvalidCredentials
	}

	data, err := keyring.Get(keyringService, keyringPrefix+username)
	if stderrors.Is(err, keyring.ErrNotFound) {
		return nil, ErrCredentialsNotFound
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrorTypePersistence, err, "failed to retrieve from keyring")
	}

	var account Account
	if err := json.Unmarshal([]byte(data), &account); err != nil {
		return nil, errors.Wrap(errors.ErrorTypeParsing, err, "failed to unmarshal account")
	}
	return &account, nil
}

// List always returns an empty list: go-keyring cannot enumerate entries
func (k *KeyringStore) List() ([]*Account, error) {
	return []*Account{}, nil
}

// Delete removes credentials from the system keychain
func (k *KeyringStore) Delete(username string) error {
	if username == "" {
		return ErrInvalidCredentials
	}

	err := keyring.Delete(keyringService, keyringPrefix+username)
	if stderrors.Is(err, keyring.ErrNotFound) {
		return ErrCredentialsNotFound
	}
	if err != nil {
		return errors.Wrap(errors.ErrorTypePersistence, err, "failed to delete from keyring")
	}
	return nil
}

// Exists checks if credentials exist in the keychain
func (k *KeyringStore) Exists(username string) bool {
	if username == "" {
		return false
	}
	_, err := keyring.Get(keyringService, keyringPrefix+username)
	return err == nil
}
