package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/angelmondragon/pharmacy-backoffice/pkg/pharmacyapi"
	redisclient "github.com/angelmondragon/pharmacy-backoffice/pkg/redis"
)

// ErrNoToken is returned by a TokenStore that holds no token.
var ErrNoToken = errors.New("no access token stored")

// TokenStore keeps the access token between runs.
type TokenStore interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// StoreTokens exposes a store to the API client. A missing token yields an
// empty string so the request goes out unauthenticated.
func StoreTokens(store TokenStore) pharmacyapi.TokenSource {
	return storeTokens{store: store}
}

type storeTokens struct {
	store TokenStore
}

func (s storeTokens) AccessToken(ctx context.Context) (string, error) {
	token, err := s.store.Load(ctx)
	if errors.Is(err, ErrNoToken) {
		return "", nil
	}
	return token, err
}

// FileStore keeps the token in a file readable only by its owner.
type FileStore struct {
	path string
}

func NewFileStore(path string) (*FileStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("token file path required")
	}
	return &FileStore{path: path}, nil
}

func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) Load(context.Context) (string, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNoToken
	}
	if err != nil {
		return "", fmt.Errorf("read token file: %w", err)
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", ErrNoToken
	}
	return token, nil
}

func (f *FileStore) Save(_ context.Context, token string) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".token-*")
	if err != nil {
		return fmt.Errorf("create token file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.WriteString(token); err != nil {
		tmp.Close()
		return fmt.Errorf("write token file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod token file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close token file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replace token file: %w", err)
	}
	return nil
}

func (f *FileStore) Clear(context.Context) error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove token file: %w", err)
	}
	return nil
}

// MemoryStore holds the token for the life of the process.
type MemoryStore struct {
	mu    sync.RWMutex
	token string
}

func NewMemoryStore(token string) *MemoryStore {
	return &MemoryStore{token: token}
}

func (m *MemoryStore) Load(context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.token == "" {
		return "", ErrNoToken
	}
	return m.token, nil
}

func (m *MemoryStore) Save(_ context.Context, token string) error {
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Clear(context.Context) error {
	return m.Save(context.Background(), "")
}

type redisTokens interface {
	StoreAccessToken(ctx context.Context, terminal, token string, ttl time.Duration) error
	GetAccessToken(ctx context.Context, terminal string) (string, error)
	RevokeAccessToken(ctx context.Context, terminal string) error
}

// RedisStore shares one token between processes on the same terminal, such
// as a kiosk running the storefront next to a back-office shell.
type RedisStore struct {
	client   redisTokens
	terminal string
	ttl      time.Duration
}

func NewRedisStore(client redisTokens, terminal string, ttl time.Duration) (*RedisStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if strings.TrimSpace(terminal) == "" {
		return nil, fmt.Errorf("terminal required")
	}
	return &RedisStore{client: client, terminal: terminal, ttl: ttl}, nil
}

func (r *RedisStore) Load(ctx context.Context) (string, error) {
	token, err := r.client.GetAccessToken(ctx, r.terminal)
	if errors.Is(err, redisclient.ErrNotFound) {
		return "", ErrNoToken
	}
	if err != nil {
		return "", err
	}
	return token, nil
}

func (r *RedisStore) Save(ctx context.Context, token string) error {
	return r.client.StoreAccessToken(ctx, r.terminal, token, r.ttl)
}

func (r *RedisStore) Clear(ctx context.Context) error {
	return r.client.RevokeAccessToken(ctx, r.terminal)
}
