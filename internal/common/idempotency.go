package common

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	redis "github.com/redis/go-redis/v9"
)

const (
	idemHeader         = "Idempotency-Key"
	idemReplayedHeader = "Idempotent-Replayed"
	defaultIdemTTL     = 24 * time.Hour
)

// idemRecord is stored under the hashed key. Status zero means the first request is
// still being handled.
type idemRecord struct {
	BodyHash    string `json:"bodyHash"`
	Status      int    `json:"status,omitempty"`
	ContentType string `json:"contentType,omitempty"`
	Body        []byte `json:"body,omitempty"`
}

// Idem implements the Idempotency-Key contract for write endpoints. The first request
// with a key runs normally and its response is stored; repeats with the same body get
// the stored response back. A repeat while the first is in flight gets 409, and a
// repeat with a different body gets 422. 5xx responses and panics release the key.
type Idem struct {
	R   *redis.Client
	TTL time.Duration
}

// Middleware wraps next with the idempotency contract. Requests without the header pass through.
func (i Idem) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(idemHeader)
		if header == "" || i.R == nil {
			next.ServeHTTP(w, r)
			return
		}
		var body []byte
		if r.Body != nil {
			var err error
			if body, err = io.ReadAll(r.Body); err != nil {
				JSONError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body", nil)
				return
			}
		}
		r.Body = io.NopCloser(bytes.NewReader(body))
		sum := sha256.Sum256(body)
		bodyHash := hex.EncodeToString(sum[:])

		ctx := r.Context()
		key := idemKey(r, header)
		pending, _ := json.Marshal(idemRecord{BodyHash: bodyHash})
		claimed, err := i.R.SetNX(ctx, key, pending, i.ttl()).Result()
		if err != nil {
			JSONError(w, http.StatusInternalServerError, "INTERNAL", "idempotency store error", nil)
			return
		}
		if !claimed {
			i.replay(ctx, w, key, bodyHash)
			return
		}

		store := context.WithoutCancel(ctx)
		kept := false
		// Runs on panics too, so a crashed handler never leaves the key pending.
		defer func() {
			if !kept {
				_ = i.R.Del(store, key).Err()
			}
		}()

		var captured bytes.Buffer
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		ww.Tee(&captured)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		if status >= http.StatusInternalServerError {
			return
		}
		done, _ := json.Marshal(idemRecord{
			BodyHash:    bodyHash,
			Status:      status,
			ContentType: ww.Header().Get("Content-Type"),
			Body:        captured.Bytes(),
		})
		kept = i.R.Set(store, key, done, i.ttl()).Err() == nil
	})
}

func (i Idem) replay(ctx context.Context, w http.ResponseWriter, key, bodyHash string) {
	raw, err := i.R.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		JSONError(w, http.StatusConflict, "IDEMPOTENCY_IN_PROGRESS", "a request with this idempotency key is in progress", nil)
		return
	}
	var rec idemRecord
	if err != nil || json.Unmarshal(raw, &rec) != nil {
		JSONError(w, http.StatusInternalServerError, "INTERNAL", "idempotency store error", nil)
		return
	}
	switch {
	case rec.BodyHash != bodyHash:
		JSONError(w, http.StatusUnprocessableEntity, "IDEMPOTENCY_KEY_REUSED", "idempotency key was used with a different request body", nil)
	case rec.Status == 0:
		JSONError(w, http.StatusConflict, "IDEMPOTENCY_IN_PROGRESS", "a request with this idempotency key is in progress", nil)
	default:
		if rec.ContentType != "" {
			w.Header().Set("Content-Type", rec.ContentType)
		}
		w.Header().Set(idemReplayedHeader, "true")
		w.WriteHeader(rec.Status)
		_, _ = w.Write(rec.Body)
	}
}

func (i Idem) ttl() time.Duration {
	if i.TTL <= 0 {
		return defaultIdemTTL
	}
	return i.TTL
}

// idemKey scopes a client key to the method, path and gate session.
func idemKey(r *http.Request, key string) string {
	session, _ := SessionID(r.Context())
	sum := sha256.Sum256([]byte(r.Method + " " + r.URL.Path + "|" + session + "|" + key))
	return "idem:" + hex.EncodeToString(sum[:])
}
