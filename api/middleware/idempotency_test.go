package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
)

type memoryStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: map[string]string{}}
}

func (m *memoryStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (m *memoryStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value.(string)
	return nil
}

func (m *memoryStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key] = value.(string)
	return true, nil
}

func (m *memoryStore) IdempotencyKey(scope, id string) string {
	return "test:idempotency:" + scope + ":" + id
}

func (m *memoryStore) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func newIdempotentRouter(store *memoryStore, calls *int) http.Handler {
	r := chi.NewRouter()
	r.Use(Idempotency(store, nil))
	r.Post("/api/v1/payments/instant", func(w http.ResponseWriter, _ *http.Request) {
		*calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"data":{"ok":true}}`))
	})
	return r
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	store := newMemoryStore()
	calls := 0
	router := newIdempotentRouter(store, &calls)

	body := `{"recipient":"x","amount_cents":100}`
	first := httptest.NewRequest(http.MethodPost, "/api/v1/payments/instant", bytes.NewBufferString(body))
	first.Header.Set("Idempotency-Key", "abc-1")
	resp1 := httptest.NewRecorder()
	router.ServeHTTP(resp1, first)
	if resp1.Code != http.StatusOK {
		t.Fatalf("first call failed: %d", resp1.Code)
	}

	second := httptest.NewRequest(http.MethodPost, "/api/v1/payments/instant", bytes.NewBufferString(body))
	second.Header.Set("Idempotency-Key", "abc-1")
	resp2 := httptest.NewRecorder()
	router.ServeHTTP(resp2, second)

	if calls != 1 {
		t.Fatalf("handler ran %d times, want 1", calls)
	}
	if resp2.Body.String() != resp1.Body.String() {
		t.Fatalf("replay body mismatch: %s vs %s", resp2.Body.String(), resp1.Body.String())
	}
}

func TestIdempotencyRejectsReusedKeyWithDifferentBody(t *testing.T) {
	store := newMemoryStore()
	calls := 0
	router := newIdempotentRouter(store, &calls)

	first := httptest.NewRequest(http.MethodPost, "/api/v1/payments/instant", bytes.NewBufferString(`{"amount_cents":100}`))
	first.Header.Set("Idempotency-Key", "abc-2")
	router.ServeHTTP(httptest.NewRecorder(), first)

	second := httptest.NewRequest(http.MethodPost, "/api/v1/payments/instant", bytes.NewBufferString(`{"amount_cents":999}`))
	second.Header.Set("Idempotency-Key", "abc-2")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, second)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 for reused key, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "IDEMPOTENCY_KEY_REUSED") {
		t.Fatalf("unexpected body %s", resp.Body.String())
	}
}

func TestIdempotencyRequiresHeaderOnCoveredRoutes(t *testing.T) {
	store := newMemoryStore()
	calls := 0
	router := newIdempotentRouter(store, &calls)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/instant", bytes.NewBufferString(`{}`))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without Idempotency-Key, got %d", resp.Code)
	}
	if calls != 0 {
		t.Fatal("handler must not run without a key")
	}
}
