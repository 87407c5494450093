package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	redisrepo "github.com/craftly/ops-fec/internal/adapter/repository/redis"
)

type fakeIdempotencyStore struct {
	checkAndSetFn func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	updateFn      func(ctx context.Context, key string, response []byte, ttl time.Duration) error
	releaseFn     func(ctx context.Context, key string) error
}

func (f *fakeIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if f.checkAndSetFn != nil {
		return f.checkAndSetFn(ctx, key, response, ttl)
	}
	return false, nil, nil
}

func (f *fakeIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, key, response, ttl)
	}
	return nil
}

func (f *fakeIdempotencyStore) Release(ctx context.Context, key string) error {
	if f.releaseFn != nil {
		return f.releaseFn(ctx, key)
	}
	return nil
}

func newIdempotencyMiddleware(store *fakeIdempotencyStore) *IdempotencyMiddleware {
	return NewIdempotencyMiddleware(store, time.Hour, zerolog.Nop())
}

func newPost(key string) *http.Request {
	return newPostWithBody(key, `{}`)
}

func newPostWithBody(key, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/exports/fec", bytes.NewBufferString(body))
	req.Header.Set(IdempotencyKeyHeader, key)
	return req
}

func bodyHash(body string) string {
	sum := sha256.Sum256([]byte(body))
	return hex.EncodeToString(sum[:])
}

func newRedisIdempotencyStore(t *testing.T) (*redisrepo.IdempotencyStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redislib.NewClient(&redislib.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return redisrepo.NewIdempotencyStore(client), mr
}

func TestIdempotencyMiddleware_StoreErrorFailsRequest(t *testing.T) {
	var called bool
	store := &fakeIdempotencyStore{
		checkAndSetFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
			return false, nil, context.DeadlineExceeded
		},
	}
	rr := httptest.NewRecorder()

	newIdempotencyMiddleware(store).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})).ServeHTTP(rr, newPost("key-err"))

	if called {
		t.Fatalf("handler should not be called when store errors")
	}
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rr.Code)
	}
}

func TestIdempotencyMiddleware_ReleasesFailedResponses(t *testing.T) {
	var updated bool
	var released string
	store := &fakeIdempotencyStore{
		updateFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) error {
			updated = true
			return nil
		},
		releaseFn: func(ctx context.Context, key string) error {
			released = key
			return nil
		},
	}
	rr := httptest.NewRecorder()

	newIdempotencyMiddleware(store).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})).ServeHTTP(rr, newPost("key-fail"))

	if updated {
		t.Fatalf("expected error responses not to be cached")
	}
	if released != "POST:/api/v1/exports/fec:key-fail" {
		t.Fatalf("expected scoped key to be released, got %q", released)
	}
}

func TestIdempotencyMiddleware_SkipsNonMutatingRequests(t *testing.T) {
	store := &fakeIdempotencyStore{
		checkAndSetFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
			t.Fatal("store must not be consulted for GET")
			return false, nil, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/exports", nil)
	req.Header.Set(IdempotencyKeyHeader, "key")
	rr := httptest.NewRecorder()

	called := false
	newIdempotencyMiddleware(store).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})).ServeHTTP(rr, req)

	if !called {
		t.Fatalf("expected next handler to be called")
	}
}

func TestIdempotencyMiddleware_InFlightConflict(t *testing.T) {
	store := &fakeIdempotencyStore{
		checkAndSetFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
			return true, []byte(processingMarker), nil
		},
	}
	rr := httptest.NewRecorder()

	newIdempotencyMiddleware(store).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler should not run while the first request is in flight")
	})).ServeHTTP(rr, newPost("key-busy"))

	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
}

func TestIdempotencyMiddleware_ReplaysStoredResponse(t *testing.T) {
	stored, _ := json.Marshal(storedResponse{
		Status: http.StatusOK,
		Headers: map[string]string{
			"Content-Type":        "text/plain; charset=utf-8",
			"Content-Disposition": `attachment; filename="123456789FEC20241231.txt"`,
		},
		Body:        []byte("JournalCode|JournalLib"),
		RequestHash: bodyHash(`{}`),
	})
	store := &fakeIdempotencyStore{
		checkAndSetFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
			return true, stored, nil
		},
	}
	rr := httptest.NewRecorder()

	newIdempotencyMiddleware(store).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler should not be called when cached response exists")
	})).ServeHTTP(rr, newPost("key-123"))

	if rr.Header().Get(IdempotencyReplayHeader) != "true" {
		t.Fatalf("expected %s header to be set", IdempotencyReplayHeader)
	}
	if rr.Header().Get("Content-Type") != "text/plain; charset=utf-8" {
		t.Fatalf("expected content type to be replayed, got %q", rr.Header().Get("Content-Type"))
	}
	if got := rr.Body.String(); got != "JournalCode|JournalLib" {
		t.Fatalf("unexpected cached body: %s", got)
	}
}

func TestIdempotencyMiddleware_StoresSuccessfulResponse(t *testing.T) {
	var (
		updatedKey string
		updatedTTL time.Duration
		payload    []byte
	)
	store := &fakeIdempotencyStore{
		updateFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) error {
			updatedKey, updatedTTL = key, ttl
			payload = append([]byte(nil), response...)
			return nil
		},
	}
	rr := httptest.NewRecorder()

	newIdempotencyMiddleware(store).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("X-FEC-Entries", "5")
		w.Header().Set("X-Unrelated", "skip")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("content"))
	})).ServeHTTP(rr, newPost("key-456"))

	if rr.Code != http.StatusOK || rr.Body.String() != "content" {
		t.Fatalf("unexpected response: %d %q", rr.Code, rr.Body.String())
	}
	if updatedKey != "POST:/api/v1/exports/fec:key-456" || updatedTTL != time.Hour {
		t.Fatalf("unexpected update key=%q ttl=%v", updatedKey, updatedTTL)
	}

	var stored storedResponse
	if err := json.Unmarshal(payload, &stored); err != nil {
		t.Fatalf("stored payload is not valid: %v", err)
	}
	if stored.Status != http.StatusOK || string(stored.Body) != "content" {
		t.Fatalf("unexpected stored response %+v", stored)
	}
	if stored.RequestHash != bodyHash(`{}`) {
		t.Fatalf("expected request hash to be stored, got %q", stored.RequestHash)
	}
	if stored.Headers["X-FEC-Entries"] != "5" {
		t.Fatalf("expected FEC header to be stored, got %+v", stored.Headers)
	}
	if _, ok := stored.Headers["X-Unrelated"]; ok {
		t.Fatalf("unexpected header stored: %+v", stored.Headers)
	}
}

func TestIdempotencyMiddleware_RejectsKeyReuseWithDifferentBody(t *testing.T) {
	stored, _ := json.Marshal(storedResponse{
		Status:      http.StatusOK,
		Body:        []byte("JournalCode|JournalLib"),
		RequestHash: bodyHash(`{"end_date":"2024-01-31"}`),
	})
	store := &fakeIdempotencyStore{
		checkAndSetFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
			return true, stored, nil
		},
	}
	rr := httptest.NewRecorder()

	newIdempotencyMiddleware(store).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler should not run for a reused key")
	})).ServeHTTP(rr, newPostWithBody("key-reuse", `{"end_date":"2024-12-31"}`))

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rr.Code)
	}
	if rr.Header().Get(IdempotencyReplayHeader) != "" {
		t.Fatalf("mismatched request must not be served from the store")
	}
}

func TestIdempotencyMiddleware_HandlerSeesFullBody(t *testing.T) {
	body := `{"start_date":"2024-01-01","end_date":"2024-12-31","siren":"123456789"}`
	var got string

	newIdempotencyMiddleware(&fakeIdempotencyStore{}).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		got = string(b)
	})).ServeHTTP(httptest.NewRecorder(), newPostWithBody("key-body", body))

	if got != body {
		t.Fatalf("expected handler to read %q, got %q", body, got)
	}
}

func TestIdempotencyMiddleware_RedisReplayAndMismatch(t *testing.T) {
	store, _ := newRedisIdempotencyStore(t)
	mw := NewIdempotencyMiddleware(store, time.Hour, zerolog.Nop())

	var calls int
	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		b, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(b)
	}))

	january := `{"end_date":"2024-01-31"}`

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, newPostWithBody("key-redis", january))
	if first.Code != http.StatusOK || first.Body.String() != january {
		t.Fatalf("unexpected first response: %d %q", first.Code, first.Body.String())
	}

	replay := httptest.NewRecorder()
	handler.ServeHTTP(replay, newPostWithBody("key-redis", january))
	if replay.Code != http.StatusOK || replay.Body.String() != january {
		t.Fatalf("unexpected replay: %d %q", replay.Code, replay.Body.String())
	}
	if replay.Header().Get(IdempotencyReplayHeader) != "true" {
		t.Fatalf("expected replay header on identical retry")
	}

	other := httptest.NewRecorder()
	handler.ServeHTTP(other, newPostWithBody("key-redis", `{"end_date":"2024-12-31"}`))
	if other.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for a different body, got %d: %s", other.Code, other.Body.String())
	}

	if calls != 1 {
		t.Fatalf("expected handler to run once, ran %d times", calls)
	}
}

func TestIdempotencyMiddleware_PanicReleasesKey(t *testing.T) {
	store, mr := newRedisIdempotencyStore(t)
	mw := NewIdempotencyMiddleware(store, time.Hour, zerolog.Nop())

	var calls int
	handler := Recovery(zerolog.Nop())(mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			panic("boom")
		}
		w.WriteHeader(http.StatusOK)
	})))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, newPost("key-panic"))
	if first.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 from recovered panic, got %d", first.Code)
	}
	if keys := mr.Keys(); len(keys) != 0 {
		t.Fatalf("expected key to be released after panic, found %v", keys)
	}

	retry := httptest.NewRecorder()
	handler.ServeHTTP(retry, newPost("key-panic"))
	if retry.Code != http.StatusOK {
		t.Fatalf("expected retry to run the handler, got %d: %s", retry.Code, retry.Body.String())
	}
	if calls != 2 {
		t.Fatalf("expected handler to run twice, ran %d times", calls)
	}
}
