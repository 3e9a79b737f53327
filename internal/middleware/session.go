package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"sneakerfit-backend/internal/session"
)

type contextKey string

const SessionIDKey contextKey = "session_id"

// Sessions resolves the session id from the signed cookie, issuing a new one
// when the cookie is missing, expired, or signed with another key.
type Sessions struct {
	codec *session.CookieCodec
	log   *zap.SugaredLogger
}

func NewSessions(codec *session.CookieCodec, log *zap.SugaredLogger) *Sessions {
	return &Sessions{codec: codec, log: log}
}

// Middleware attaches session_id to the request context and refreshes the cookie.
func (s *Sessions) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var sessionID string

		if c, err := r.Cookie(session.CookieName); err == nil {
			sid, err := s.codec.Decode(c.Value)
			if err != nil {
				s.log.Debugw("Discarding session cookie", "error", err, "request_id", r.Header.Get("X-Request-ID"))
			} else {
				sessionID = sid
			}
		}

		if sessionID == "" {
			sessionID = uuid.NewString()
		}

		cookie, err := s.codec.Cookie(sessionID)
		if err != nil {
			s.log.Errorw("Failed to sign session cookie", "error", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred", r)
			return
		}
		http.SetCookie(w, cookie)

		ctx := context.WithValue(r.Context(), SessionIDKey, sessionID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetSessionID extracts session_id from request context
func GetSessionID(ctx context.Context) string {
	id, _ := ctx.Value(SessionIDKey).(string)
	return id
}
