package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dukerupert/storepulse/internal/auth"
	"github.com/dukerupert/storepulse/internal/session"
)

func TestRequireAuthRedirectsWithoutSession(t *testing.T) {
	sessions := session.NewManager("test-secret")
	handler := RequireAuth(sessions)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler reached without session")
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want 303", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/login" {
		t.Errorf("location = %q, want /login", loc)
	}
}

func TestRequireAuthHTMXRedirect(t *testing.T) {
	sessions := session.NewManager("test-secret")
	handler := RequireAuth(sessions)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler reached without session")
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("HX-Request", "true")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if hx := w.Header().Get("HX-Redirect"); hx != "/login" {
		t.Errorf("HX-Redirect = %q, want /login", hx)
	}
}

func TestRequireAuthPopulatesContext(t *testing.T) {
	sessions := session.NewManager("test-secret")
	token, sess, err := sessions.Issue(42)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	var got auth.AuthContext
	handler := RequireAuth(sessions)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.FromContext(r.Context())
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(sessions.Cookie(token, false))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if got.UserID != 42 || got.SessionID != sess.ID {
		t.Errorf("auth context = %+v", got)
	}
}

func TestRequireAuthRejectsForgedCookie(t *testing.T) {
	sessions := session.NewManager("test-secret")
	forged, _, err := session.NewManager("attacker-secret").Issue(42)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	handler := RequireAuth(sessions)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler reached with forged cookie")
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(sessions.Cookie(forged, false))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want 303", w.Code)
	}
}
