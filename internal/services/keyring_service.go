package services

import (
	"errors"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	serviceName = "conformly"
	apiKeySlot  = "compliance-api-key"
)

// KeyringService holds the single API-key slot in the OS keyring. There is one
// key per machine; storing a new one overwrites the previous.
type KeyringService struct {
}

func NewKeyringService() *KeyringService {
	return &KeyringService{}
}

func (s *KeyringService) StoreAPIKey(apiKey string) error {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return errors.New("API key is empty")
	}
	return keyring.Set(serviceName, apiKeySlot, apiKey)
}

// APIKey returns the stored key. Satisfies api.KeySource.
func (s *KeyringService) APIKey() (string, error) {
	return keyring.Get(serviceName, apiKeySlot)
}

func (s *KeyringService) DeleteAPIKey() error {
	err := keyring.Delete(serviceName, apiKeySlot)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

// HasAPIKey reports whether a key is currently stored.
func (s *KeyringService) HasAPIKey() bool {
	_, err := keyring.Get(serviceName, apiKeySlot)
	return err == nil
}
