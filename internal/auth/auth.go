package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/zalando/go-keyring"
)

var (
	// ErrNotFound is returned when no secret is stored for a username.
	ErrNotFound = errors.New("no credentials stored")
	// ErrNoCredentials is returned when an authenticated call has no user or secret.
	ErrNoCredentials = errors.New("not logged in")
)

// Store keeps one secret per username.
type Store interface {
	// Save stores secret for username, replacing any existing value.
	Save(username, secret string) error

	// Get returns the secret for username, or ErrNotFound.
	Get(username string) (string, error)

	// Delete removes the secret for username, or returns ErrNotFound.
	Delete(username string) error
}

// KeyringStore stores secrets in the OS keyring under a fixed service name.
type KeyringStore struct {
	service string
}

var _ Store = &KeyringStore{}

// NewKeyringStore creates a KeyringStore for the given service identifier.
func NewKeyringStore(service string) *KeyringStore {
	return &KeyringStore{service: service}
}

func (k *KeyringStore) Save(username, secret string) error {
	if err := keyring.Set(k.service, username, secret); err != nil {
		return fmt.Errorf("failed to save credentials to keyring: %w", err)
	}
	return nil
}

func (k *KeyringStore) Get(username string) (string, error) {
	secret, err := keyring.Get(k.service, username)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", fmt.Errorf("%w for user %q", ErrNotFound, username)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read credentials from keyring: %w", err)
	}
	return secret, nil
}

func (k *KeyringStore) Delete(username string) error {
	err := keyring.Delete(k.service, username)
	if errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("%w for user %q", ErrNotFound, username)
	}
	if err != nil {
		return fmt.Errorf("failed to delete credentials from keyring: %w", err)
	}
	return nil
}

// MemoryStore is an in-process Store, used in tests and when no keyring is available.
type MemoryStore struct {
	mu      sync.Mutex
	secrets map[string]string
}

var _ Store = &MemoryStore{}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{secrets: make(map[string]string)}
}

func (m *MemoryStore) Save(username, secret string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.secrets[username] = secret
	return nil
}

func (m *MemoryStore) Get(username string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	secret, ok := m.secrets[username]
	if !ok {
		return "", fmt.Errorf("%w for user %q", ErrNotFound, username)
	}
	return secret, nil
}

func (m *MemoryStore) Delete(username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.secrets[username]; !ok {
		return fmt.Errorf("%w for user %q", ErrNotFound, username)
	}
	delete(m.secrets, username)
	return nil
}

// Verifier checks a username/secret pair against the upstream service and
// returns a display name for the authenticated account.
type Verifier func(ctx context.Context, username, secret string) (string, error)

// Login verifies the credentials and only then saves them.
func Login(ctx context.Context, verify Verifier, store Store, username, secret string) (string, error) {
	if username == "" || secret == "" {
		return "", fmt.Errorf("%w: username and app password are required", ErrNoCredentials)
	}

	displayName, err := verify(ctx, username, secret)
	if err != nil {
		return "", fmt.Errorf("authentication failed: %w", err)
	}

	if err := store.Save(username, secret); err != nil {
		return "", err
	}
	return displayName, nil
}
