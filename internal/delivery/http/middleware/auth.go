package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	h "guestbook/internal/delivery/http/helpers"
	"guestbook/internal/domain"
)

type contextKey string

const (
	userIDKey contextKey = "userID"
	claimsKey contextKey = "claims"
)

// GuestTokenHeader carries the event-scoped token returned by an RSVP submission.
const GuestTokenHeader = "X-Guest-Token"

// SetUserID returns a context with the user ID set. Used by auth middleware.
func SetUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the authenticated user ID from the context, if present.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// SetClaims stores the verified token claims and their user ID in the context.
func SetClaims(ctx context.Context, claims *domain.Claims) context.Context {
	ctx = context.WithValue(ctx, claimsKey, claims)
	return SetUserID(ctx, claims.UserID)
}

// ClaimsFromContext returns the verified token claims, if present.
func ClaimsFromContext(ctx context.Context) (*domain.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*domain.Claims)
	return c, ok && c != nil
}

// ViewerFromRequest builds the explicit identity of a request: the session user
// set by OptionalAuth or RequireAuth plus the guest token header.
func ViewerFromRequest(r *http.Request) domain.Viewer {
	userID, _ := UserIDFromContext(r.Context())
	return domain.Viewer{UserID: userID, GuestToken: GuestTokenFromRequest(r)}
}

// GuestTokenFromRequest returns the trimmed X-Guest-Token header.
func GuestTokenFromRequest(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(GuestTokenHeader))
}

var (
	errMissingHeader = errors.New("missing authorization header")
	errBadFormat     = errors.New("invalid authorization format")
	errMissingToken  = errors.New("missing token")
	errBadToken      = errors.New("invalid or expired token")
	errNoSession     = errors.New("session expired or logged out")
)

type authenticator struct {
	verifier domain.TokenVerifier
	sessions domain.SessionCache
	logger   *slog.Logger
}

// authenticate returns the claims of a bearer token whose session is still live.
func (a authenticator) authenticate(r *http.Request) (*domain.Claims, error) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return nil, errMissingHeader
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return nil, errBadFormat
	}
	token := strings.TrimSpace(auth[len(prefix):])
	if token == "" {
		return nil, errMissingToken
	}
	claims, err := a.verifier.Verify(token)
	if err != nil {
		return nil, errBadToken
	}
	if a.sessions == nil {
		return claims, nil
	}
	userID, err := a.sessions.Lookup(r.Context(), claims.SessionID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			a.logger.WarnContext(r.Context(), "session lookup failed", "err", err)
		}
		return nil, errNoSession
	}
	if userID != claims.UserID {
		return nil, errNoSession
	}
	return claims, nil
}

// RequireAuth returns a wrapper that validates the Bearer token, checks that its session
// has not been invalidated, and sets the claims and user ID in the request context.
// If the token is missing or invalid, it responds with 401 and does not call next.
func RequireAuth(verifier domain.TokenVerifier, sessions domain.SessionCache, logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	a := authenticator{verifier: verifier, sessions: sessions, logger: logger}
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			claims, err := a.authenticate(r)
			if err != nil {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, err.Error())
				return
			}
			next(w, r.WithContext(SetClaims(r.Context(), claims)))
		}
	}
}

// OptionalAuth sets the claims when a valid Bearer token is present and otherwise
// calls next anonymously. Public event pages use it so the host is recognized.
func OptionalAuth(verifier domain.TokenVerifier, sessions domain.SessionCache, logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	a := authenticator{verifier: verifier, sessions: sessions, logger: logger}
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				next(w, r)
				return
			}
			claims, err := a.authenticate(r)
			if err != nil {
				next(w, r)
				return
			}
			next(w, r.WithContext(SetClaims(r.Context(), claims)))
		}
	}
}

// RequireRole responds with 403 unless the authenticated claims carry the role code.
// It must run inside RequireAuth.
func RequireRole(code string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
				return
			}
			if !claims.HasRole(code) {
				h.WriteJSONError(w, http.StatusForbidden, h.ErrCodeForbidden, "missing role "+code)
				return
			}
			next(w, r)
		}
	}
}
