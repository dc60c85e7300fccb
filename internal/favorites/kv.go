// Package favorites persists per-device favorites and recently viewed
// cities over a pluggable key-value backend.
package favorites

import "context"

//go:generate mockgen -source=kv.go -destination=mock/mock.go KV

// KV stores ordered string lists. Get on a missing key returns an empty
// list and no error.
type KV interface {
	Get(ctx context.Context, key string) ([]string, error)
	Set(ctx context.Context, key string, items []string) error
}

var (
	_ KV = (*MemoryKV)(nil)
	_ KV = (*PostgresKV)(nil)
	_ KV = (*MongoKV)(nil)
)
