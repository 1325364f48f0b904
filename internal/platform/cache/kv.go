package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/fantasy-hoops/internal/platform/resilience"
)

// KV is a byte-oriented key-value cache. A zero ttl keeps the value until it
// is deleted.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// GetOrLoad returns the cached value for key or runs load once per key across
// concurrent callers and stores its result. Cache read and write errors fall
// through to the loader.
func GetOrLoad(ctx context.Context, kv KV, flight *resilience.SingleFlight[[]byte], key string, ttl time.Duration, load func(context.Context) ([]byte, error)) ([]byte, error) {
	if load == nil {
		return nil, fmt.Errorf("loader is required")
	}
	if kv == nil || key == "" {
		return load(ctx)
	}
	if flight == nil {
		flight = &resilience.SingleFlight[[]byte]{}
	}

	if value, ok, err := kv.Get(ctx, key); err == nil && ok {
		return value, nil
	}

	value, err, _ := flight.Do(key, func() ([]byte, error) {
		if cached, ok, getErr := kv.Get(ctx, key); getErr == nil && ok {
			return cached, nil
		}

		loaded, loadErr := load(ctx)
		if loadErr != nil {
			return nil, loadErr
		}
		_ = kv.Set(ctx, key, loaded, ttl)
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}
