package http

import (
	"context"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// ══════════════════════════════════════════════════════════════════════════════
// AUTHENTICATION
// ══════════════════════════════════════════════════════════════════════════════
//
// The API sits behind a trusted frontend that performs user login and forwards
// two things: the shared API token (Authorization: Bearer <token>) and the
// authenticated user's opaque ID (X-User-ID). Ownership checks against that
// ID happen in the application layer, not here.

// authenticated wraps a handler with token verification and caller extraction.
func (s *Server) authenticated(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.config.APITokenHash != "" {
			token := bearerToken(r)
			if token == "" {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing bearer token")
				return
			}
			if err := bcrypt.CompareHashAndPassword([]byte(s.config.APITokenHash), []byte(token)); err != nil {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid bearer token")
				return
			}
		}

		callerID := strings.TrimSpace(r.Header.Get("X-User-ID"))
		if callerID == "" {
			writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing X-User-ID header")
			return
		}

		ctx := context.WithValue(r.Context(), contextKeyCallerID, callerID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
