package middleware

import (
	"net/http"

	"github.com/dukerupert/storepulse/internal/auth"
	"github.com/dukerupert/storepulse/internal/session"
)

// RequireAuth verifies the session cookie and populates AuthContext. No
// store lookup happens here: the signed cookie is the session. Requests
// without a valid session are redirected to login and go no further.
// HTMX-aware: returns an HX-Redirect header instead of a 303 for HTMX
// requests.
func RequireAuth(sessions *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := sessions.Read(r)
			if err != nil {
				redirectToLogin(w, r)
				return
			}

			ac := auth.AuthContext{
				UserID:    sess.UserID,
				SessionID: sess.ID,
			}

			ctx := auth.WithAuth(r.Context(), ac)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/login")
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
