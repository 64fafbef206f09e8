package cache

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alecgard/taskboard/internal/auth"
	"github.com/google/uuid"
)

func TestMemoryExpiry(t *testing.T) {
	m := NewMemory()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	ctx := context.Background()

	_ = m.Set(ctx, "a", []byte("1"), time.Minute)
	_ = m.Set(ctx, "b", []byte("2"), 0)

	if v, err := m.Get(ctx, "a"); err != nil || string(v) != "1" {
		t.Fatalf("Get(a) = %q, %v", v, err)
	}

	now = now.Add(time.Minute)
	if _, err := m.Get(ctx, "a"); err != ErrMiss {
		t.Errorf("expired entry should miss, got %v", err)
	}
	if _, err := m.Get(ctx, "b"); err != nil {
		t.Errorf("zero ttl should never expire, got %v", err)
	}
}

func TestMemorySweep(t *testing.T) {
	m := NewMemory()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	m.lastSweep = now
	ctx := context.Background()

	for i := 0; i < 1000; i++ {
		_ = m.Set(ctx, fmt.Sprintf("p:/tasks?junk=%d|anonymous", i), []byte("x"), time.Second)
	}
	_ = m.Set(ctx, "p:/teams?|anonymous", []byte("x"), 0)

	now = now.Add(30 * time.Second)
	if got := m.Sweep(); got != 1000 {
		t.Errorf("Sweep removed %d, want 1000", got)
	}
	if m.Len() != 1 {
		t.Errorf("expected only the non-expiring entry, got %d", m.Len())
	}
}

func TestMemorySetSweepsExpired(t *testing.T) {
	m := NewMemory()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	m.lastSweep = now
	ctx := context.Background()

	for i := 0; i < 10000; i++ {
		_ = m.Set(ctx, fmt.Sprintf("p:/tasks?junk=%d|anonymous", i), []byte("x"), time.Second)
	}
	if m.Len() != 10000 {
		t.Fatalf("expected 10000 entries, got %d", m.Len())
	}

	now = now.Add(time.Hour)
	_ = m.Set(ctx, "p:/tasks?|anonymous", []byte("x"), time.Second)
	if m.Len() != 1 {
		t.Errorf("expired entries should be swept on write, got %d", m.Len())
	}
}

func TestMemoryRunSweeper(t *testing.T) {
	m := NewMemory()
	_ = m.Set(context.Background(), "k", []byte("x"), time.Nanosecond)
	time.Sleep(time.Millisecond)

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		m.RunSweeper(5*time.Millisecond, stop)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for m.Len() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	close(stop)
	<-done

	if m.Len() != 0 {
		t.Errorf("sweeper should have removed the expired entry, got %d", m.Len())
	}
}

func TestMemoryDeletePrefix(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	for _, k := range []string{"p:/tasks?|anonymous", "p:/tasks/1?|u1", "p:/teams?|u1"} {
		_ = m.Set(ctx, k, []byte("x"), 0)
	}
	_ = m.DeletePrefix(ctx, "p:/tasks")
	if m.Len() != 1 {
		t.Errorf("expected 1 remaining entry, got %d", m.Len())
	}
	if _, err := m.Get(ctx, "p:/teams?|u1"); err != nil {
		t.Errorf("unrelated key should survive: %v", err)
	}
}

func TestEscapeGlob(t *testing.T) {
	got := escapeGlob(`tb:/tasks?status=a*[b]|x\y`)
	want := `tb:/tasks\?status=a\*\[b\]|x\\y`
	if got != want {
		t.Errorf("escapeGlob = %q, want %q", got, want)
	}
}

func withIdentity(r *http.Request, id uuid.UUID) *http.Request {
	return r.WithContext(auth.ContextWithIdentity(r.Context(), &auth.Identity{ID: id}))
}

func TestMiddleware(t *testing.T) {
	mem := NewMemory()
	var hits, misses int
	c := New(mem, Options{Prefix: "tb", TTL: time.Minute, OnLookup: func(hit bool) {
		if hit {
			hits++
		} else {
			misses++
		}
	}})

	calls := 0
	status := http.StatusOK
	h := c.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"tasks":[]}`))
	}))

	do := func(r *http.Request) *httptest.ResponseRecorder {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, r)
		return rr
	}

	rr := do(httptest.NewRequest(http.MethodGet, "/tasks?status=pending&project_id=1", nil))
	if rr.Header().Get("X-Cache") != "MISS" || calls != 1 {
		t.Fatalf("first request should miss, X-Cache=%q calls=%d", rr.Header().Get("X-Cache"), calls)
	}

	// Same query in a different order and with a trailing slash.
	rr = do(httptest.NewRequest(http.MethodGet, "/tasks/?project_id=1&status=pending", nil))
	if rr.Header().Get("X-Cache") != "HIT" || calls != 1 {
		t.Fatalf("second request should hit, X-Cache=%q calls=%d", rr.Header().Get("X-Cache"), calls)
	}
	if rr.Body.String() != `{"tasks":[]}` || rr.Code != http.StatusOK {
		t.Errorf("cached response: %d %s", rr.Code, rr.Body.String())
	}

	// Another caller has its own scope.
	alice := uuid.New()
	rr = do(withIdentity(httptest.NewRequest(http.MethodGet, "/tasks?status=pending&project_id=1", nil), alice))
	if rr.Header().Get("X-Cache") != "MISS" {
		t.Errorf("different scope should miss")
	}

	if hits != 1 || misses != 2 {
		t.Errorf("hits=%d misses=%d", hits, misses)
	}

	// Non-200 responses are not stored.
	status = http.StatusNotFound
	do(httptest.NewRequest(http.MethodGet, "/tasks/missing", nil))
	rr = do(httptest.NewRequest(http.MethodGet, "/tasks/missing", nil))
	if rr.Header().Get("X-Cache") != "MISS" {
		t.Errorf("404 should not be cached")
	}

	// Writes bypass the cache.
	before := calls
	rr = do(httptest.NewRequest(http.MethodPost, "/tasks", nil))
	if rr.Header().Get("X-Cache") != "" || calls != before+1 {
		t.Errorf("POST should bypass cache")
	}
}

func TestInvalidateAllScopes(t *testing.T) {
	mem := NewMemory()
	c := New(mem, Options{Prefix: "tb"})
	ctx := context.Background()

	alice, bob := uuid.New(), uuid.New()
	keys := []string{
		c.Key(httptest.NewRequest(http.MethodGet, "/teams", nil), AnonymousScope),
		c.Key(withIdentity(httptest.NewRequest(http.MethodGet, "/teams", nil), alice), alice.String()),
		c.Key(httptest.NewRequest(http.MethodGet, "/teams/42", nil), bob.String()),
		c.Key(httptest.NewRequest(http.MethodGet, "/teams/42/members", nil), bob.String()),
		c.Key(httptest.NewRequest(http.MethodGet, "/teamsters", nil), bob.String()),
		c.Key(httptest.NewRequest(http.MethodGet, "/tasks", nil), bob.String()),
	}
	for _, k := range keys {
		_ = mem.Set(ctx, k, []byte("x"), 0)
	}

	if err := c.Invalidate(ctx, "/teams"); err != nil {
		t.Fatal(err)
	}
	if mem.Len() != 2 {
		t.Errorf("expected /teamsters and /tasks to survive, %d entries left", mem.Len())
	}
	if _, err := mem.Get(ctx, keys[4]); err != nil {
		t.Error("sibling path with shared prefix must survive")
	}
}

func TestNoop(t *testing.T) {
	var b Backend = Noop{}
	ctx := context.Background()
	_ = b.Set(ctx, "k", []byte("v"), 0)
	if _, err := b.Get(ctx, "k"); err != ErrMiss {
		t.Errorf("noop should always miss")
	}
}
