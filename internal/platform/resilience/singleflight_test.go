package resilience

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSingleFlight_Do(t *testing.T) {
	var g SingleFlight[string]
	var counter int32
	var sharedCount int32

	const workers = 20
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			val, err, shared := g.Do("ranking", func() (string, error) {
				atomic.AddInt32(&counter, 1)
				time.Sleep(20 * time.Millisecond)
				return "ok", nil
			})
			if err != nil || val != "ok" {
				t.Errorf("singleflight call failed: %v %q", err, val)
			}
			if shared {
				atomic.AddInt32(&sharedCount, 1)
			}
		}()
	}

	close(start)
	wg.Wait()

	if got := atomic.LoadInt32(&counter); got != 1 {
		t.Fatalf("expected function to run once, got %d", got)
	}
	if got := atomic.LoadInt32(&sharedCount); got != workers-1 {
		t.Fatalf("expected %d shared results, got %d", workers-1, got)
	}
}

func TestSingleFlight_RunsAgainAfterCompletion(t *testing.T) {
	var g SingleFlight[int]
	calls := 0
	boom := errors.New("boom")

	if _, err, _ := g.Do("k", func() (int, error) { calls++; return 0, boom }); !errors.Is(err, boom) {
		t.Fatalf("expected error to propagate, got %v", err)
	}
	if v, err, _ := g.Do("k", func() (int, error) { calls++; return 7, nil }); err != nil || v != 7 {
		t.Fatalf("expected second call to run, got %d %v", v, err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
}

func TestSingleFlight_PanicIsReportedToEveryCaller(t *testing.T) {
	var g SingleFlight[int]
	entered := make(chan struct{})
	release := make(chan struct{})

	type result struct {
		val    int
		err    error
		shared bool
	}
	leader := make(chan result, 1)
	go func() {
		v, err, shared := g.Do("k", func() (int, error) {
			close(entered)
			<-release
			panic("decoder exploded")
		})
		leader <- result{v, err, shared}
	}()

	<-entered
	follower := make(chan result, 1)
	go func() {
		v, err, shared := g.Do("k", func() (int, error) { return 42, nil })
		follower <- result{v, err, shared}
	}()
	time.Sleep(20 * time.Millisecond)
	close(release)

	got := <-leader
	if !errors.Is(got.err, ErrCallPanicked) || got.val != 0 || got.shared {
		t.Fatalf("leader: expected ErrCallPanicked, got %+v", got)
	}
	got = <-follower
	if got.shared && !errors.Is(got.err, ErrCallPanicked) {
		t.Fatalf("waiting caller must not see a nil error after a panic, got %+v", got)
	}
	if !got.shared && (got.err != nil || got.val != 42) {
		t.Fatalf("late caller should run its own function, got %+v", got)
	}

	if v, err, _ := g.Do("k", func() (int, error) { return 7, nil }); err != nil || v != 7 {
		t.Fatalf("key must be released after a panic, got %d %v", v, err)
	}
}
