package session

import (
	"crypto/rand"
	"net/http"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/greenfeen/storefront/internal/platform/requestctx"
)

const cookieMaxAge = 180 * 24 * time.Hour

// Middleware assigns each visitor a stable session identifier via cookie. The
// identifier keys the visitor's persisted cart, so it is created eagerly on
// first contact and refreshed on every response.
func Middleware(cookieName string) func(http.Handler) http.Handler {
	name := strings.TrimSpace(cookieName)
	if name == "" {
		name = "session"
	}
	return func(next http.Handler) http.Handler {
		if next == nil {
			next = http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := ""
			if cookie, err := r.Cookie(name); err == nil {
				sessionID = sanitizeSessionID(cookie.Value)
			}
			if sessionID == "" {
				sessionID = NewID()
			}

			http.SetCookie(w, &http.Cookie{
				Name:     name,
				Value:    sessionID,
				Path:     "/",
				MaxAge:   int(cookieMaxAge.Seconds()),
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})

			ctx := requestctx.WithSessionID(r.Context(), sessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// NewID returns a fresh lexicographically sortable session identifier.
func NewID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now().UTC()), rand.Reader).String()
}

// FromRequest extracts the session identifier attached by Middleware.
func FromRequest(r *http.Request) string {
	if r == nil {
		return ""
	}
	return requestctx.SessionID(r.Context())
}

func sanitizeSessionID(value string) string {
	value = strings.TrimSpace(value)
	if len(value) != ulid.EncodedSize {
		return ""
	}
	if _, err := ulid.ParseStrict(value); err != nil {
		return ""
	}
	return value
}
