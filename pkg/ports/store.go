package ports

import (
	"context"
	"time"
)

// OutputStore persists task outputs beyond process lifetime. The in-memory
// output tier may write through to one.
//
// Values cross this boundary as encoded bytes: the caller owns the codec,
// so stores never guess at payload shape. Load returns
// domain.ErrEntryNotFound for missing or expired keys.
type OutputStore interface {
	Save(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Load(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) ([]string, error)
	Close() error
}
