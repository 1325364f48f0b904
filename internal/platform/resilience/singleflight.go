package resilience

import (
	"errors"
	"fmt"
	"sync"

	"github.com/sourcegraph/conc/panics"
)

// ErrCallPanicked is returned to every caller of a flight whose function panicked.
var ErrCallPanicked = errors.New("singleflight call panicked")

// SingleFlight deduplicates concurrent calls for the same key. The zero value
// is ready to use.
type SingleFlight[T any] struct {
	mu    sync.Mutex
	calls map[string]*call[T]
}

type call[T any] struct {
	wg  sync.WaitGroup
	val T
	err error
}

// Do runs fn once per key among concurrent callers. shared is true for
// callers that received another caller's result. A panic in fn is recovered
// and reported to all of them as ErrCallPanicked.
func (g *SingleFlight[T]) Do(key string, fn func() (T, error)) (val T, err error, shared bool) {
	g.mu.Lock()
	if g.calls == nil {
		g.calls = make(map[string]*call[T])
	}

	if c, ok := g.calls[key]; ok {
		g.mu.Unlock()
		c.wg.Wait()
		return c.val, c.err, true
	}

	c := &call[T]{}
	c.wg.Add(1)
	g.calls[key] = c
	g.mu.Unlock()

	defer func() {
		c.wg.Done()
		g.mu.Lock()
		delete(g.calls, key)
		g.mu.Unlock()
	}()

	if recovered := panics.Try(func() { c.val, c.err = fn() }); recovered != nil {
		var zero T
		c.val = zero
		c.err = fmt.Errorf("%w: key=%s: %w", ErrCallPanicked, key, recovered.AsError())
	}
	return c.val, c.err, false
}
