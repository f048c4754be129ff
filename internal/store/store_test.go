package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type result struct {
	data []string
	err  error
}

// fakeFetcher hands out one blocking call per fetch; tests release them
// explicitly and in any order.
type fakeFetcher struct {
	mu      sync.Mutex
	calls   []chan result
	started chan int
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{started: make(chan int, 16)}
}

func (f *fakeFetcher) fetch(ctx context.Context) ([]string, error) {
	ch := make(chan result, 1)
	f.mu.Lock()
	f.calls = append(f.calls, ch)
	n := len(f.calls)
	f.mu.Unlock()
	f.started <- n

	select {
	case r := <-ch:
		return r.data, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *fakeFetcher) release(t *testing.T, call int, r result) {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if call < 1 || call > len(f.calls) {
		t.Fatalf("call %d not started (have %d)", call, len(f.calls))
	}
	f.calls[call-1] <- r
}

func (f *fakeFetcher) waitStarted(t *testing.T) int {
	t.Helper()
	select {
	case n := <-f.started:
		return n
	case <-time.After(2 * time.Second):
		t.Fatal("fetch was not started")
		return 0
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestStatus_String(t *testing.T) {
	tests := []struct {
		s    Status
		want string
	}{
		{StatusIdle, "idle"},
		{StatusLoading, "loading"},
		{StatusSuccess, "success"},
		{StatusFailure, "failure"},
		{Status(9), "Status(9)"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("String() = %s, want %s", got, tt.want)
		}
	}
}

func TestNew_Idle(t *testing.T) {
	f := newFakeFetcher()
	s := New("/api/customers", f.fetch)
	defer s.Close()

	if s.Key() != "/api/customers" {
		t.Errorf("Key() = %s, want /api/customers", s.Key())
	}

	snap := s.Snapshot()
	if snap.Status != StatusIdle {
		t.Errorf("Status = %v, want idle", snap.Status)
	}
	if s.Stats().Issued != 0 {
		t.Error("no request should be issued before Mount")
	}
}

func TestMount_LoadingThenSuccess(t *testing.T) {
	f := newFakeFetcher()
	s := New("k", f.fetch)
	defer s.Close()

	s.Mount()
	f.waitStarted(t)

	snap := s.Snapshot()
	if snap.Status != StatusLoading {
		t.Fatalf("Status = %v, want loading", snap.Status)
	}
	if !snap.Revalidating {
		t.Error("Revalidating should be true while the request is in flight")
	}

	f.release(t, 1, result{data: []string{"ada"}})

	snap, err := s.Wait(testContext(t), 1)
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if snap.Status != StatusSuccess {
		t.Fatalf("Status = %v, want success", snap.Status)
	}
	if len(snap.Data) != 1 || snap.Data[0] != "ada" {
		t.Errorf("Data = %v, want [ada]", snap.Data)
	}
	if snap.Err != nil {
		t.Errorf("Err = %v, want nil", snap.Err)
	}
	if snap.Revalidating {
		t.Error("Revalidating should be false after the latest response")
	}
	if snap.Seq != 1 {
		t.Errorf("Seq = %d, want 1", snap.Seq)
	}
}

func TestMount_OnlyOnce(t *testing.T) {
	f := newFakeFetcher()
	s := New("k", f.fetch)
	defer s.Close()

	s.Mount()
	s.Mount()
	f.waitStarted(t)

	if got := s.Stats().Issued; got != 1 {
		t.Errorf("Issued = %d, want 1", got)
	}
}

func TestFailure_HoldsNoData(t *testing.T) {
	f := newFakeFetcher()
	s := New("k", f.fetch)
	defer s.Close()

	s.Mount()
	f.waitStarted(t)
	f.release(t, 1, result{data: []string{"ada"}})
	if _, err := s.Wait(testContext(t), 1); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}

	boom := errors.New("boom")
	seq := s.Revalidate()
	f.waitStarted(t)
	f.release(t, 2, result{err: boom})

	snap, err := s.Wait(testContext(t), seq)
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if snap.Status != StatusFailure {
		t.Fatalf("Status = %v, want failure", snap.Status)
	}
	if !errors.Is(snap.Err, boom) {
		t.Errorf("Err = %v, want boom", snap.Err)
	}
	if snap.Data != nil {
		t.Errorf("Data = %v, want nil alongside an error", snap.Data)
	}
	if snap.HasData() {
		t.Error("HasData() should be false on failure")
	}
}

// The response to the newer request wins even when the older one
// arrives last.
func TestRevalidate_OutOfOrderResponses(t *testing.T) {
	f := newFakeFetcher()
	s := New("k", f.fetch)
	defer s.Close()

	seq1 := s.Revalidate()
	f.waitStarted(t)
	seq2 := s.Revalidate()
	f.waitStarted(t)

	if seq1 != 1 || seq2 != 2 {
		t.Fatalf("sequence numbers = %d, %d, want 1, 2", seq1, seq2)
	}

	f.release(t, 2, result{data: []string{"second"}})
	snap, err := s.Wait(testContext(t), seq2)
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if snap.Data[0] != "second" {
		t.Fatalf("Data = %v, want [second]", snap.Data)
	}

	f.release(t, 1, result{data: []string{"first"}})
	waitFor(t, "stale response to be discarded", func() bool { return s.Stats().Discarded == 1 })

	snap = s.Snapshot()
	if snap.Data[0] != "second" {
		t.Errorf("Data = %v after stale response, want [second]", snap.Data)
	}
	if snap.Seq != seq2 {
		t.Errorf("Seq = %d, want %d", snap.Seq, seq2)
	}
}

func TestRevalidate_InOrderOlderResponseDiscarded(t *testing.T) {
	f := newFakeFetcher()
	s := New("k", f.fetch)
	defer s.Close()

	s.Revalidate()
	f.waitStarted(t)
	seq2 := s.Revalidate()
	f.waitStarted(t)

	// The first response arrives while the second is still in flight
	f.release(t, 1, result{data: []string{"first"}})
	waitFor(t, "stale response to be discarded", func() bool { return s.Stats().Discarded == 1 })

	snap := s.Snapshot()
	if snap.Status != StatusLoading {
		t.Errorf("Status = %v, want loading until the latest response", snap.Status)
	}
	if !snap.Revalidating {
		t.Error("Revalidating should stay true while the latest request is in flight")
	}

	f.release(t, 2, result{data: []string{"second"}})
	snap, err := s.Wait(testContext(t), seq2)
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if snap.Data[0] != "second" {
		t.Errorf("Data = %v, want [second]", snap.Data)
	}
}

func TestResolve_OnlyLatestAccepted(t *testing.T) {
	s := New[[]string]("k", func(context.Context) ([]string, error) { return nil, nil })
	defer s.Close()

	s.mu.Lock()
	s.issueLocked()
	s.issueLocked()
	s.mu.Unlock()

	if s.resolve(1, []string{"old"}, nil) {
		t.Error("resolve(1) accepted a superseded response")
	}
	if !s.resolve(2, []string{"new"}, nil) {
		t.Error("resolve(2) rejected the latest response")
	}
	if s.resolve(1, []string{"old"}, nil) {
		t.Error("resolve(1) accepted a stale response after the latest")
	}

	stats := s.Stats()
	if stats.Accepted != 1 || stats.Discarded != 2 {
		t.Errorf("Stats = %+v, want 1 accepted, 2 discarded", stats)
	}
}

func TestRevalidateWait(t *testing.T) {
	calls := 0
	s := New("k", func(context.Context) ([]string, error) {
		calls++
		return []string{"ada", "grace"}, nil
	})
	defer s.Close()

	snap, err := s.RevalidateWait(testContext(t))
	if err != nil {
		t.Fatalf("RevalidateWait() error = %v", err)
	}
	if len(snap.Data) != 2 {
		t.Errorf("Data = %v, want 2 entries", snap.Data)
	}
	if calls != 1 {
		t.Errorf("fetch calls = %d, want 1", calls)
	}
}

func TestWait_ContextCancelled(t *testing.T) {
	f := newFakeFetcher()
	s := New("k", f.fetch)
	defer s.Close()

	seq := s.Revalidate()
	f.waitStarted(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.Wait(ctx, seq); !errors.Is(err, context.Canceled) {
		t.Errorf("Wait() error = %v, want context.Canceled", err)
	}
}

func TestSubscribe_NotifiesInOrder(t *testing.T) {
	f := newFakeFetcher()
	s := New("k", f.fetch)
	defer s.Close()

	var mu sync.Mutex
	var seen []Status
	unsubscribe := s.Subscribe(func(snap Snapshot[[]string]) {
		mu.Lock()
		seen = append(seen, snap.Status)
		mu.Unlock()
	})

	s.Mount()
	f.waitStarted(t)
	f.release(t, 1, result{data: []string{"ada"}})
	if _, err := s.Wait(testContext(t), 1); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}

	unsubscribe()
	seq := s.Revalidate()
	f.waitStarted(t)
	f.release(t, 2, result{data: []string{"grace"}})
	if _, err := s.Wait(testContext(t), seq); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	want := []Status{StatusLoading, StatusSuccess}
	if len(seen) != len(want) {
		t.Fatalf("notifications = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("notification %d = %v, want %v", i, seen[i], want[i])
		}
	}
}

func TestSubscribe_ListenerMayReadSnapshot(t *testing.T) {
	s := New("k", func(context.Context) ([]string, error) { return []string{"ada"}, nil })
	defer s.Close()

	got := make(chan Status, 4)
	s.Subscribe(func(Snapshot[[]string]) {
		got <- s.Snapshot().Status
	})

	if _, err := s.RevalidateWait(testContext(t)); err != nil {
		t.Fatalf("RevalidateWait() error = %v", err)
	}

	waitFor(t, "success notification", func() bool {
		for {
			select {
			case st := <-got:
				if st == StatusSuccess {
					return true
				}
			default:
				return false
			}
		}
	})
}

func TestClose(t *testing.T) {
	f := newFakeFetcher()
	s := New("k", f.fetch)

	notified := false
	s.Subscribe(func(Snapshot[[]string]) { notified = true })

	seq := s.Revalidate()
	f.waitStarted(t)
	notified = false

	waitErr := make(chan error, 1)
	go func() {
		_, err := s.Wait(context.Background(), seq)
		waitErr <- err
	}()
	waitFor(t, "waiter to register", func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return len(s.waiters) == 1
	})

	s.Close()

	select {
	case err := <-waitErr:
		if !errors.Is(err, ErrClosed) {
			t.Errorf("Wait() error = %v, want ErrClosed", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Wait() did not return after Close")
	}

	if got := s.Revalidate(); got != 0 {
		t.Errorf("Revalidate() after Close = %d, want 0", got)
	}
	if _, err := s.RevalidateWait(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("RevalidateWait() after Close error = %v, want ErrClosed", err)
	}
	if s.resolve(seq, []string{"late"}, nil) {
		t.Error("resolve() after Close should be ignored")
	}
	if notified {
		t.Error("listener called after Close")
	}
	if s.Snapshot().Status != StatusLoading {
		t.Errorf("Status = %v, want loading (unchanged)", s.Snapshot().Status)
	}

	// Idempotent
	s.Close()
}
