package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/ledgersync/internal/domain"
	"github.com/iho/ledgersync/internal/usecase/mocks"
)

func newIdempotencyRequest(method, key string, tenantID int64) *http.Request {
	req := httptest.NewRequest(method, "/api/v1/accounts", bytes.NewBufferString(`{}`))
	if key != "" {
		req.Header.Set(IdempotencyKeyHeader, key)
	}
	return req.WithContext(domain.WithTenant(req.Context(), tenantID))
}

func TestIdempotencyMiddleware_FailsOnStoreErrors(t *testing.T) {
	store := mocks.NewStubIdempotencyStore()
	store.CheckAndSetFunc = func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
		return false, nil, context.DeadlineExceeded
	}
	mw := NewIdempotencyMiddleware(store, time.Hour, zerolog.Nop())

	var called bool
	rr := httptest.NewRecorder()
	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})).ServeHTTP(rr, newIdempotencyRequest(http.MethodPost, "key-err", 1))

	if called {
		t.Fatalf("handler should not be called when store errors")
	}
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rr.Code)
	}
}

func TestIdempotencyMiddleware_SkipsNonMutatingRequests(t *testing.T) {
	mw := NewIdempotencyMiddleware(mocks.NewStubIdempotencyStore(), time.Hour, zerolog.Nop())

	called := false
	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})).ServeHTTP(httptest.NewRecorder(), newIdempotencyRequest(http.MethodGet, "key-get", 1))

	if !called {
		t.Fatalf("expected next handler to be called")
	}
}

func TestIdempotencyMiddleware_ReplaysSuccessfulResponse(t *testing.T) {
	mw := NewIdempotencyMiddleware(mocks.NewStubIdempotencyStore(), time.Hour, zerolog.Nop())

	calls := 0
	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":7}`))
	}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, newIdempotencyRequest(http.MethodPost, "key-1", 1))
	second := httptest.NewRecorder()
	handler.ServeHTTP(second, newIdempotencyRequest(http.MethodPost, "key-1", 1))

	if calls != 1 {
		t.Fatalf("expected handler to run once, ran %d times", calls)
	}
	if second.Code != http.StatusCreated {
		t.Fatalf("expected replayed status 201, got %d", second.Code)
	}
	if second.Header().Get("X-Idempotency-Replay") != "true" {
		t.Fatalf("expected X-Idempotency-Replay header to be set")
	}
	if got := second.Body.String(); got != `{"id":7}` {
		t.Fatalf("unexpected replayed body: %s", got)
	}
}

func TestIdempotencyMiddleware_KeysAreTenantScoped(t *testing.T) {
	mw := NewIdempotencyMiddleware(mocks.NewStubIdempotencyStore(), time.Hour, zerolog.Nop())

	calls := 0
	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), newIdempotencyRequest(http.MethodPost, "shared", 1))
	handler.ServeHTTP(httptest.NewRecorder(), newIdempotencyRequest(http.MethodPost, "shared", 2))

	if calls != 2 {
		t.Fatalf("expected each tenant to run the handler, got %d calls", calls)
	}
}

func TestIdempotencyMiddleware_InFlightKeyConflicts(t *testing.T) {
	store := mocks.NewStubIdempotencyStore()
	mw := NewIdempotencyMiddleware(store, time.Hour, zerolog.Nop())

	if _, _, err := store.CheckAndSet(context.Background(), "1:busy", nil, time.Hour); err != nil {
		t.Fatalf("claim: %v", err)
	}

	rr := httptest.NewRecorder()
	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler should not run while the key is in flight")
	})).ServeHTTP(rr, newIdempotencyRequest(http.MethodPost, "busy", 1))

	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
}

func TestIdempotencyMiddleware_FailedResponseReleasesKey(t *testing.T) {
	mw := NewIdempotencyMiddleware(mocks.NewStubIdempotencyStore(), time.Hour, zerolog.Nop())

	calls := 0
	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusUnprocessableEntity)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), newIdempotencyRequest(http.MethodPost, "retry", 1))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, newIdempotencyRequest(http.MethodPost, "retry", 1))

	if calls != 2 || rr.Code != http.StatusCreated {
		t.Fatalf("expected retry to run the handler again, calls=%d status=%d", calls, rr.Code)
	}
}
