package kv

import (
	"context"
	"testing"
	"time"

	"github.com/riskibarqy/fantasy-hoops/internal/platform/logging"
)

func TestNewRedisStore_RequiresAddr(t *testing.T) {
	t.Parallel()

	if _, err := NewRedisStore(context.Background(), RedisConfig{Addr: " "}, logging.NewNop()); err == nil {
		t.Fatalf("expected error for empty addr")
	}
}

func TestNewRedisStore_PingFailure(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if _, err := NewRedisStore(ctx, RedisConfig{Addr: "127.0.0.1:1"}, logging.NewNop()); err == nil {
		t.Fatalf("expected ping error for unreachable redis")
	}
}

func TestRedisStore_KeyPrefix(t *testing.T) {
	t.Parallel()

	s := &RedisStore{prefix: defaultKeyPrefix}
	if got := s.key("gamelog:2025-26:2544"); got != "fantasy-hoops:gamelog:2025-26:2544" {
		t.Fatalf("unexpected key %q", got)
	}
}
