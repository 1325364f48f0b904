package statsprovider

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/riskibarqy/fantasy-hoops/internal/domain/gamelog"
)

type stubProvider struct {
	name  string
	rows  []gamelog.RawEntry
	err   error
	calls int
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) FetchGameLog(context.Context, string, string) ([]gamelog.RawEntry, error) {
	s.calls++
	return s.rows, s.err
}

func TestChain_FallsBackInOrder(t *testing.T) {
	t.Parallel()

	first := &stubProvider{name: "primary", err: gamelog.ErrPlayerNotFound}
	second := &stubProvider{name: "fallback", rows: []gamelog.RawEntry{{Date: "2025-10-22", Points: 10}}}
	third := &stubProvider{name: "never"}

	chain := NewChain(nil, first, second, third)
	rows, err := chain.FetchGameLog(context.Background(), "p1", "2025-26")
	if err != nil {
		t.Fatalf("expected fallback success, got %v", err)
	}
	if len(rows) != 1 || rows[0].Points != 10 {
		t.Fatalf("unexpected rows: %+v", rows)
	}
	if first.calls != 1 || second.calls != 1 || third.calls != 0 {
		t.Fatalf("unexpected call counts: %d %d %d", first.calls, second.calls, third.calls)
	}
	if chain.Name() != "chain(primary,fallback,never)" {
		t.Fatalf("unexpected chain name %q", chain.Name())
	}
}

func TestChain_AllFailedCombinesErrors(t *testing.T) {
	t.Parallel()

	down := stderrors.New("connection refused")
	chain := NewChain(nil,
		&stubProvider{name: "primary", err: gamelog.ErrPlayerNotFound},
		&stubProvider{name: "fallback", err: down},
	)

	_, err := chain.FetchGameLog(context.Background(), "p1", "2025-26")
	if !stderrors.Is(err, gamelog.ErrPlayerNotFound) || !stderrors.Is(err, down) {
		t.Fatalf("expected both provider errors, got %v", err)
	}
}

func TestChain_Empty(t *testing.T) {
	t.Parallel()

	if _, err := NewChain(nil).FetchGameLog(context.Background(), "p1", "s"); !stderrors.Is(err, ErrNoProviders) {
		t.Fatalf("expected ErrNoProviders, got %v", err)
	}
}

func TestBuild_WiresConfiguredOrder(t *testing.T) {
	t.Parallel()

	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer primary.Close()
	fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"date":"2025-10-22","pts":7}]}`))
	}))
	defer fallback.Close()

	chain, err := Build([]string{"primary", " Fallback "}, map[string]ClientConfig{
		PrimaryName:  {BaseURL: primary.URL, Timeout: time.Second},
		FallbackName: {BaseURL: fallback.URL, Timeout: time.Second},
	}, nil)
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}

	rows, err := chain.FetchGameLog(context.Background(), "p1", "2025-26")
	if err != nil || len(rows) != 1 || rows[0].Points != 7 {
		t.Fatalf("expected fallback rows, got %+v err=%v", rows, err)
	}

	if _, err := Build([]string{"mystery"}, map[string]ClientConfig{"mystery": {BaseURL: "http://x"}}, nil); err == nil {
		t.Fatalf("expected unknown provider error")
	}
	if _, err := Build(nil, nil, nil); !stderrors.Is(err, ErrNoProviders) {
		t.Fatalf("expected ErrNoProviders, got %v", err)
	}
}
