package store

import (
	"context"
	"errors"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// ErrNotFound is returned by Get when the key has never been written.
var ErrNotFound = errors.New("store: key not found")

// KV is the string key-value contract every store implements.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// Namespace derives the key prefix for a match display name, so differently
// configured matches sharing one store do not collide.
func Namespace(displayName string) string {
	return strconv.FormatUint(xxhash.Sum64String(displayName), 36) + ":"
}
