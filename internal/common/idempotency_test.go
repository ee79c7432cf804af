package common

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5/middleware"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newIdem(t *testing.T) (Idem, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return Idem{R: client, TTL: time.Minute}, mr
}

func idemRequest(key, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/invoices", strings.NewReader(body))
	req.Header.Set("Idempotency-Key", key)
	return req
}

func TestIdemReplaysStoredResponse(t *testing.T) {
	idem, _ := newIdem(t)
	calls := 0
	handler := idem.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		JSON(w, http.StatusCreated, map[string]any{"data": map[string]string{"id": "inv-1"}})
	}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, idemRequest("abc", `{"total":100}`))
	require.Equal(t, http.StatusCreated, first.Code)

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, idemRequest("abc", `{"total":100}`))
	require.Equal(t, http.StatusCreated, second.Code)
	require.Equal(t, "true", second.Header().Get("Idempotent-Replayed"))
	require.JSONEq(t, first.Body.String(), second.Body.String())
	require.Equal(t, "application/json", second.Header().Get("Content-Type"))
	require.Equal(t, 1, calls)
}

func TestIdemRejectsDifferentBody(t *testing.T) {
	idem, _ := newIdem(t)
	handler := idem.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), idemRequest("abc", `{"total":100}`))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, idemRequest("abc", `{"total":999}`))
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	require.Contains(t, rr.Body.String(), "IDEMPOTENCY_KEY_REUSED")
}

func TestIdemConflictWhileInFlight(t *testing.T) {
	idem, _ := newIdem(t)
	var inner *httptest.ResponseRecorder
	var handler http.Handler
	handler = idem.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		inner = httptest.NewRecorder()
		handler.ServeHTTP(inner, idemRequest("slow", `{}`))
		w.WriteHeader(http.StatusCreated)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), idemRequest("slow", `{}`))
	require.Equal(t, http.StatusConflict, inner.Code)
	require.Contains(t, inner.Body.String(), "IDEMPOTENCY_IN_PROGRESS")
}

func TestIdemReleasesKeyOnServerError(t *testing.T) {
	idem, mr := newIdem(t)
	handler := idem.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), idemRequest("retry-me", `{}`))
	require.Empty(t, mr.Keys())
}

func TestIdemSkipsWithoutHeader(t *testing.T) {
	idem, mr := newIdem(t)
	handler := idem.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/invoices", nil))
	require.Equal(t, http.StatusNoContent, rr.Code)
	require.Empty(t, mr.Keys())
}

func TestIdemReleasesKeyAfterPanic(t *testing.T) {
	idem, mr := newIdem(t)
	calls := 0
	handler := middleware.Recoverer(idem.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls == 1 {
			panic("handler crashed")
		}
		w.WriteHeader(http.StatusCreated)
	})))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, idemRequest("crash", `{"total":100}`))
	require.Equal(t, http.StatusInternalServerError, first.Code)
	require.Empty(t, mr.Keys())

	retry := httptest.NewRecorder()
	handler.ServeHTTP(retry, idemRequest("crash", `{"total":100}`))
	require.Equal(t, http.StatusCreated, retry.Code)
	require.Equal(t, 2, calls)
}
