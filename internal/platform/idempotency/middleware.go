package idempotency

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/greenfeen/storefront/internal/platform/requestctx"
)

const (
	defaultHeaderName = "Idempotency-Key"
	replayHeaderName  = "X-Idempotent-Replay"
)

type clockFunc func() time.Time

type middlewareConfig struct {
	headerName string
	ttl        time.Duration
	clock      clockFunc
	logger     *zap.Logger
}

// MiddlewareOption customises middleware behaviour.
type MiddlewareOption func(*middlewareConfig)

// WithHeader overrides the header carrying the submission key.
func WithHeader(name string) MiddlewareOption {
	return func(cfg *middlewareConfig) {
		name = strings.TrimSpace(name)
		if name != "" {
			cfg.headerName = name
		}
	}
}

// WithTTL configures how long completed submission records are retained.
func WithTTL(ttl time.Duration) MiddlewareOption {
	return func(cfg *middlewareConfig) {
		if ttl > 0 {
			cfg.ttl = ttl
		}
	}
}

// WithLogger injects a logger for persistence failures.
func WithLogger(logger *zap.Logger) MiddlewareOption {
	return func(cfg *middlewareConfig) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithClock overrides the time source, primarily for testing.
func WithClock(clock clockFunc) MiddlewareOption {
	return func(cfg *middlewareConfig) {
		if clock != nil {
			cfg.clock = clock
		}
	}
}

// Middleware guards mutating endpoints against double submission. Requests
// carrying a submission key header are reserved per session; a repeat with the
// same key and body replays the stored response instead of re-running the
// handler. Requests without the header pass through untouched.
func Middleware(store Store, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	if store == nil {
		return func(next http.Handler) http.Handler { return next }
	}

	cfg := middlewareConfig{
		headerName: defaultHeaderName,
		ttl:        DefaultTTL,
		clock:      time.Now,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := strings.TrimSpace(r.Header.Get(cfg.headerName))
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			body, err := readAndReplayBody(r)
			if err != nil {
				respondError(w, http.StatusInternalServerError, "submission_read_body_failed", "unable to read request body")
				return
			}

			scoped := scopedKey(r, key)
			fingerprint := Fingerprint(body)
			now := cfg.clock().UTC()

			reservation, err := store.Reserve(r.Context(), scoped, fingerprint, now, cfg.ttl)
			if err != nil {
				if errors.Is(err, ErrFingerprintMismatch) {
					respondError(w, http.StatusUnprocessableEntity, "submission_key_reused", "submission key was already used for a different request")
					return
				}
				respondError(w, http.StatusInternalServerError, "submission_store_error", "unable to record submission state")
				return
			}

			switch reservation.State {
			case ReservationStateCompleted:
				writeStoredResponse(w, reservation.Record)
				return
			case ReservationStatePending:
				respondError(w, http.StatusConflict, "submission_in_progress", "this submission is already being processed")
				return
			}

			recorder := newResponseRecorder(w)
			next.ServeHTTP(recorder, r)

			if err := store.SaveResponse(r.Context(), scoped, fingerprint, recorder.status, recorder.body.Bytes(), cfg.clock().UTC(), cfg.ttl); err != nil {
				cfg.logger.Warn("failed to persist submission record",
					zap.String("key", key),
					zap.Error(err))
				if releaseErr := store.Release(r.Context(), scoped); releaseErr != nil {
					cfg.logger.Warn("failed to release submission key", zap.Error(releaseErr))
				}
			}
			recorder.flush()
		})
	}
}

func scopedKey(r *http.Request, key string) string {
	sessionID := requestctx.SessionID(r.Context())
	if sessionID == "" {
		sessionID = "anonymous"
	}
	return sessionID + "|" + r.Method + "|" + r.URL.Path + "|" + key
}

func readAndReplayBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	if err := r.Body.Close(); err != nil {
		return nil, err
	}
	r.Body = io.NopCloser(bytes.NewReader(data))
	return data, nil
}

func writeStoredResponse(w http.ResponseWriter, record Record) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set(replayHeaderName, "true")
	status := record.ResponseStatus
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = w.Write(record.ResponseBody)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   code,
		"message": message,
	})
}

// responseRecorder buffers the downstream response so it can be stored before
// it is written to the client.
type responseRecorder struct {
	dest   http.ResponseWriter
	status int
	body   bytes.Buffer
}

func newResponseRecorder(dest http.ResponseWriter) *responseRecorder {
	return &responseRecorder{dest: dest, status: http.StatusOK}
}

func (r *responseRecorder) Header() http.Header { return r.dest.Header() }

func (r *responseRecorder) WriteHeader(status int) { r.status = status }

func (r *responseRecorder) Write(data []byte) (int, error) { return r.body.Write(data) }

func (r *responseRecorder) flush() {
	r.dest.WriteHeader(r.status)
	_, _ = r.dest.Write(r.body.Bytes())
}
