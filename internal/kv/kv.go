// Package kv contains the blob backends the list stores persist into.
// A backend is a flat key-value map of opaque byte blobs. Backends know
// nothing about milestones or tips; each store owns exactly one key.
package kv

import (
	"context"
	"fmt"
	"regexp"

	"github.com/pkordes/babysteps/backend/internal/domain"
)

// Store defines the persistence operations every backend implements.
// The list stores depend on this interface, not a concrete backend, so tests
// can run against the in-memory implementation.
type Store interface {
	// Get returns the blob stored under key.
	// Returns domain.ErrNotFound if nothing has been stored under key.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any previous blob.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// keyPattern restricts keys to characters that are safe as file names,
// Redis keys and SQL text alike.
var keyPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// validateKey returns a wrapped domain.ErrValidation for keys outside keyPattern.
func validateKey(key string) error {
	if !keyPattern.MatchString(key) {
		return fmt.Errorf("%w: invalid key %q", domain.ErrValidation, key)
	}
	return nil
}
