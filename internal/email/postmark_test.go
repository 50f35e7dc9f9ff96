package email

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type rewriteTransport struct {
	base   http.RoundTripper
	target string
}

func (t *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.URL.Scheme = "http"
	req.URL.Host = t.target[len("http://"):]
	return t.base.RoundTrip(req)
}

func TestSendMagicLink(t *testing.T) {
	var received postmarkEmail
	var gotToken string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Postmark-Server-Token")
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"MessageID": "test-id"}`))
	}))
	defer server.Close()

	client := NewClient("test-token", "noreply@example.com", "https://storepulse.test")
	client.httpClient = &http.Client{Transport: &rewriteTransport{base: http.DefaultTransport, target: server.URL}}

	if err := client.SendMagicLink("alice@example.com", "abc123"); err != nil {
		t.Fatalf("send magic link: %v", err)
	}

	if gotToken != "test-token" {
		t.Errorf("server token = %q, want %q", gotToken, "test-token")
	}
	if received.To != "alice@example.com" {
		t.Errorf("To = %q", received.To)
	}
	if received.From != "noreply@example.com" {
		t.Errorf("From = %q", received.From)
	}
	if !strings.Contains(received.TextBody, "https://storepulse.test/login/verify?token=abc123&email=alice%40example.com") {
		t.Errorf("text body missing verify link: %q", received.TextBody)
	}
}

func TestSendMagicLinkNotConfigured(t *testing.T) {
	client := NewClient("", "noreply@example.com", "https://storepulse.test")

	if err := client.SendMagicLink("alice@example.com", "abc123"); err == nil {
		t.Fatal("expected error for unconfigured client")
	}
	if client.Configured() {
		t.Error("client reports configured without a token")
	}
}

func TestSendMagicLinkAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	client := NewClient("test-token", "noreply@example.com", "https://storepulse.test")
	client.httpClient = &http.Client{Transport: &rewriteTransport{base: http.DefaultTransport, target: server.URL}}

	if err := client.SendMagicLink("alice@example.com", "abc123"); err == nil {
		t.Fatal("expected error for API failure")
	}
}

func TestMagicLinkURLEscapesEmail(t *testing.T) {
	client := NewClient("", "noreply@example.com", "https://storepulse.test")

	url := client.MagicLinkURL("tok", "a+b@example.com")
	if url != "https://storepulse.test/login/verify?token=tok&email=a%2Bb%40example.com" {
		t.Errorf("url = %q", url)
	}
}
