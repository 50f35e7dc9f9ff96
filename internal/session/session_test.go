package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func TestIssueAndParse(t *testing.T) {
	m := NewManager("test-secret")

	token, sess, err := m.Issue(42)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if sess.UserID != 42 {
		t.Errorf("user id = %d", sess.UserID)
	}
	if _, err := uuid.Parse(sess.ID); err != nil {
		t.Errorf("session id %q is not a uuid", sess.ID)
	}

	parsed, err := m.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed.UserID != 42 || parsed.ID != sess.ID {
		t.Errorf("parsed = %+v, issued = %+v", parsed, sess)
	}
	if time.Until(parsed.ExpiresAt) < 29*24*time.Hour {
		t.Errorf("expiry too soon: %v", parsed.ExpiresAt)
	}
}

func TestParseRejectsTamperedToken(t *testing.T) {
	m := NewManager("test-secret")

	token, _, err := m.Issue(42)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := m.Parse(token + "x"); err != ErrNoSession {
		t.Errorf("tampered token = %v, want ErrNoSession", err)
	}
	if _, err := m.Parse(""); err != ErrNoSession {
		t.Errorf("empty token = %v, want ErrNoSession", err)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, _, err := NewManager("secret-a").Issue(42)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := NewManager("secret-b").Parse(token); err != ErrNoSession {
		t.Errorf("wrong secret = %v, want ErrNoSession", err)
	}
}

func TestParseRejectsExpired(t *testing.T) {
	m := NewManager("test-secret")

	claims := jwt.RegisteredClaims{
		ID:        "expired",
		Subject:   "42",
		IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := m.Parse(token); err != ErrNoSession {
		t.Errorf("expired token = %v, want ErrNoSession", err)
	}
}

func TestParseRejectsUnsignedAlg(t *testing.T) {
	m := NewManager("test-secret")

	claims := jwt.RegisteredClaims{Subject: "42", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}

	if _, err := m.Parse(token); err != ErrNoSession {
		t.Errorf("alg none = %v, want ErrNoSession", err)
	}
}

func TestReadFromCookie(t *testing.T) {
	m := NewManager("test-secret")

	token, sess, err := m.Issue(7)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(m.Cookie(token, false))

	got, err := m.Read(r)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.ID != sess.ID || got.UserID != 7 {
		t.Errorf("read = %+v", got)
	}

	bare := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, err := m.Read(bare); err != ErrNoSession {
		t.Errorf("no cookie = %v, want ErrNoSession", err)
	}
}

func TestCookieAttributes(t *testing.T) {
	m := NewManager("test-secret")

	c := m.Cookie("tok", true)
	if !c.HttpOnly || !c.Secure || c.Path != "/" {
		t.Errorf("cookie = %+v", c)
	}

	destroy := m.DestroyCookie()
	if destroy.MaxAge != -1 || destroy.Value != "" {
		t.Errorf("destroy cookie = %+v", destroy)
	}
}
