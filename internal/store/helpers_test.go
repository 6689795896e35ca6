package store_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pkordes/babysteps/backend/internal/kv"
	"github.com/pkordes/babysteps/backend/internal/store"
)

// now is the fixed clock every test store runs on.
var now = time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)

// sequentialIDs returns an id generator yielding "id-1", "id-2", ...
func sequentialIDs() func() string {
	var (
		mu sync.Mutex
		n  int
	)
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func testOptions() []store.Option {
	return []store.Option{
		store.WithClock(func() time.Time { return now }),
		store.WithIDGenerator(sequentialIDs()),
	}
}

// persisted decodes the blob stored under key into v.
func persisted(t *testing.T, backend kv.Store, key string, v any) {
	t.Helper()
	data, err := backend.Get(context.Background(), key)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, v))
}

// rawBlob returns the bytes stored under key.
func rawBlob(t *testing.T, backend kv.Store, key string) []byte {
	t.Helper()
	data, err := backend.Get(context.Background(), key)
	require.NoError(t, err)
	return data
}

// flakyBackend wraps a MemoryStore and fails reads or writes on demand.
type flakyBackend struct {
	*kv.MemoryStore
	failGet bool
	failSet bool
}

func newFlakyBackend() *flakyBackend {
	return &flakyBackend{MemoryStore: kv.NewMemory()}
}

func (f *flakyBackend) Get(ctx context.Context, key string) ([]byte, error) {
	if f.failGet {
		return nil, errors.New("disk on fire")
	}
	return f.MemoryStore.Get(ctx, key)
}

func (f *flakyBackend) Set(ctx context.Context, key string, value []byte) error {
	if f.failSet {
		return errors.New("disk full")
	}
	return f.MemoryStore.Set(ctx, key, value)
}

// compile-time check: flakyBackend must satisfy kv.Store.
var _ kv.Store = (*flakyBackend)(nil)

func ptr[T any](v T) *T { return &v }
