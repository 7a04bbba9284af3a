package session

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"go-chi-calculator/internal/calculator"
)

func TestMain(m *testing.M) {
	if err := calculator.InitMetrics(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewStore(time.Hour, 10)

	snap, err := store.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !snap.State.IsEmpty() {
		t.Fatalf("expected new session to start empty, got %#v", snap.State)
	}

	actions, err := calculator.ParseKeys("10÷4=")
	if err != nil {
		t.Fatalf("parse keys: %v", err)
	}

	snap, err = store.Dispatch(ctx, snap.ID, actions...)
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if snap.State.Current != calculator.Text("2.5") || !snap.State.Overwrite {
		t.Fatalf("expected 2.5 with overwrite, got %#v", snap.State)
	}

	got, err := store.Get(snap.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.State != snap.State {
		t.Fatalf("expected stored state %#v, got %#v", snap.State, got.State)
	}

	if err := store.Delete(ctx, snap.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(snap.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if store.Len() != 0 {
		t.Fatalf("expected no sessions, got %d", store.Len())
	}
}

func TestStoreUnknownSessions(t *testing.T) {
	ctx := context.Background()
	store := NewStore(time.Hour, 10)

	for _, id := range []string{"not-a-uuid", "7d444840-9dc0-11d1-b245-5ffdce74fad2"} {
		if _, err := store.Get(id); !errors.Is(err, ErrNotFound) {
			t.Fatalf("get %q: expected ErrNotFound, got %v", id, err)
		}
		if _, err := store.Dispatch(ctx, id, calculator.Clear{}); !errors.Is(err, ErrNotFound) {
			t.Fatalf("dispatch %q: expected ErrNotFound, got %v", id, err)
		}
		if err := store.Delete(ctx, id); !errors.Is(err, ErrNotFound) {
			t.Fatalf("delete %q: expected ErrNotFound, got %v", id, err)
		}
	}
}

func TestStoreLimit(t *testing.T) {
	ctx := context.Background()
	store := NewStore(time.Hour, 2)

	for i := 0; i < 2; i++ {
		if _, err := store.Create(ctx); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	if _, err := store.Create(ctx); !errors.Is(err, ErrLimitReached) {
		t.Fatalf("expected ErrLimitReached, got %v", err)
	}
}

func TestStoreSweepExpiresIdleSessions(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	store := NewStore(10*time.Minute, 0, WithClock(clock.Now))

	idle, _ := store.Create(ctx)
	active, _ := store.Create(ctx)

	clock.Advance(8 * time.Minute)
	if _, err := store.Dispatch(ctx, active.ID, calculator.AddDigit{Digit: "1"}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	clock.Advance(5 * time.Minute)
	if removed := store.Sweep(ctx); removed != 1 {
		t.Fatalf("expected 1 expired session, got %d", removed)
	}

	if _, err := store.Get(idle.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected idle session expired, got %v", err)
	}
	if _, err := store.Get(active.ID); err != nil {
		t.Fatalf("expected active session kept, got %v", err)
	}
}

func TestStoreSerializesDispatches(t *testing.T) {
	ctx := context.Background()
	store := NewStore(time.Hour, 0)
	snap, _ := store.Create(ctx)

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.Dispatch(ctx, snap.ID, calculator.AddDigit{Digit: "1"}); err != nil {
				t.Errorf("dispatch: %v", err)
			}
		}()
	}
	wg.Wait()

	got, _ := store.Get(snap.ID)
	if want := strings.Repeat("1", n); got.State.Current != calculator.Text(want) {
		t.Fatalf("expected %d digits, got %q", n, got.State.Current.String())
	}
}

func TestStoreRunStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	store := NewStore(time.Nanosecond, 0)

	done := make(chan struct{})
	go func() {
		store.Run(ctx, time.Millisecond)
		close(done)
	}()

	if _, err := store.Create(context.Background()); err != nil {
		t.Fatalf("create: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for store.Len() != 0 {
		select {
		case <-deadline:
			t.Fatal("expected sweeper to expire the session")
		case <-time.After(time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("expected Run to return after cancel")
	}
}
