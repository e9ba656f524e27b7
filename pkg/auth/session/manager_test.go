package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newMockStore() *mockStore {
	return &mockStore{data: make(map[string]string)}
}

func (m *mockStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = fmt.Sprint(value)
	return nil
}

func (m *mockStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.data[key]
	if !ok {
		return "", redislib.Nil
	}
	return val, nil
}

func (m *mockStore) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *mockStore) AccessSessionKey(accessID string) string {
	return "sess:" + accessID
}

func newTestManager() (*Manager, *mockStore) {
	store := newMockStore()
	return &Manager{store: store, keyer: store, ttl: time.Hour}, store
}

func TestManagerGenerateAndRotate(t *testing.T) {
	manager, store := newTestManager()
	ctx := context.Background()
	userID := uuid.New()

	token, err := manager.Generate(ctx, "access-123", userID)
	require.NoError(t, err)

	stored := store.data[store.AccessSessionKey("access-123")]
	require.NotEmpty(t, stored)
	assert.False(t, strings.Contains(stored, token), "raw refresh token must not be stored")

	_, _, _, err = manager.Rotate(ctx, "access-123", "wrong")
	assert.True(t, errors.Is(err, ErrInvalidRefreshToken))

	newAccessID, newToken, owner, err := manager.Rotate(ctx, "access-123", token)
	require.NoError(t, err)
	assert.Equal(t, userID, owner)
	assert.NotEqual(t, token, newToken)

	_, exists := store.data[store.AccessSessionKey("access-123")]
	assert.False(t, exists, "old access key left behind")

	ok, err := manager.HasSession(ctx, newAccessID)
	require.NoError(t, err)
	assert.True(t, ok)

	_, _, _, err = manager.Rotate(ctx, "access-123", token)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken, "rotated token must not be reusable")
}

func TestManagerRevoke(t *testing.T) {
	manager, _ := newTestManager()
	ctx := context.Background()

	_, err := manager.Generate(ctx, "access-1", uuid.New())
	require.NoError(t, err)
	require.NoError(t, manager.Revoke(ctx, "access-1"))

	ok, err := manager.HasSession(ctx, "access-1")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Error(t, manager.Revoke(ctx, " "))
}

func TestManagerGenerateValidatesInput(t *testing.T) {
	manager, _ := newTestManager()
	_, err := manager.Generate(context.Background(), "", uuid.New())
	assert.Error(t, err)
	_, err = manager.Generate(context.Background(), "access", uuid.Nil)
	assert.Error(t, err)
}

func TestManagerRotateRejectsCorruptRecord(t *testing.T) {
	manager, store := newTestManager()
	store.data[store.AccessSessionKey("access-1")] = "not-json"

	_, _, _, err := manager.Rotate(context.Background(), "access-1", "token")
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}
