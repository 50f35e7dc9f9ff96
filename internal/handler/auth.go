package handler

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/storepulse/internal/email"
	"github.com/dukerupert/storepulse/internal/session"
	"github.com/dukerupert/storepulse/internal/store"
	"github.com/dukerupert/storepulse/internal/tenant"
)

type AuthHandler struct {
	magicLinks   *store.MagicLinkStore
	sessionStore *store.SessionStore
	sessions     *session.Manager
	emailClient  *email.Client
	templates    *template.Template
	logger       *slog.Logger
}

func NewAuthHandler(
	mls *store.MagicLinkStore,
	ss *store.SessionStore,
	sm *session.Manager,
	ec *email.Client,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		magicLinks:   mls,
		sessionStore: ss,
		sessions:     sm,
		emailClient:  ec,
		templates:    parseTemplates(),
		logger:       logger,
	}
}

func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.templates.ExecuteTemplate(w, "auth_login.html", map[string]any{})
}

// Login issues a magic link for the submitted email.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	emailAddr := strings.TrimSpace(r.FormValue("email"))

	ml, token, err := h.magicLinks.Create(emailAddr)
	switch {
	case errors.Is(err, store.ErrInvalidEmail):
		w.WriteHeader(http.StatusBadRequest)
		h.templates.ExecuteTemplate(w, "auth_login.html", map[string]any{
			"Error": "Enter a valid email address.",
		})
		return
	case errors.Is(err, store.ErrRateLimited):
		w.WriteHeader(http.StatusTooManyRequests)
		h.templates.ExecuteTemplate(w, "auth_login.html", map[string]any{
			"Error": "A sign-in link was sent moments ago. Please wait before requesting another.",
		})
		return
	case err != nil:
		h.logger.Error("issue magic link", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		h.templates.ExecuteTemplate(w, "auth_login.html", map[string]any{
			"Error": "Unable to process request. Please try again.",
		})
		return
	}

	if h.emailClient.Configured() {
		if err := h.emailClient.SendMagicLink(ml.Email, token); err != nil {
			// The link is unusable if the mail never left; surface the
			// failure instead of a false "check your email".
			h.logger.Error("send magic link", "error", err)
			w.WriteHeader(http.StatusBadGateway)
			h.templates.ExecuteTemplate(w, "auth_login.html", map[string]any{
				"Error": "Could not send the sign-in email. Please try again.",
			})
			return
		}
	} else {
		// Local-development fallback: no mail provider, surface the link
		// through the log instead.
		h.logger.Info("magic link issued", "email", ml.Email, "url", h.emailClient.MagicLinkURL(token, ml.Email))
	}

	h.templates.ExecuteTemplate(w, "auth_check_email.html", map[string]any{
		"Email": ml.Email,
	})
}

// Verify consumes the magic link and mints the session cookie.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	emailAddr := r.URL.Query().Get("email")

	userID, err := h.magicLinks.Verify(token, emailAddr)
	if err != nil {
		if !errors.Is(err, store.ErrInvalidLink) {
			h.logger.Error("verify magic link", "error", err)
		}
		// One generic message for every failure mode.
		h.templates.ExecuteTemplate(w, "auth_login.html", map[string]any{
			"Error": "Invalid or expired link. Please request a new one.",
		})
		return
	}

	signed, sess, err := h.sessions.Issue(userID)
	if err != nil {
		h.logger.Error("issue session", "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	// Audit record; the cookie stays authoritative even if this fails.
	if _, err := h.sessionStore.Create(sess.ID, userID, sess.ExpiresAt); err != nil {
		h.logger.Error("record session", "error", err)
	}

	http.SetCookie(w, h.sessions.Cookie(signed, r.TLS != nil))

	if _, err := tenant.Resolve(r); err != nil {
		http.Redirect(w, r, "/shops", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout deletes the session audit record and clears the cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if sess, err := h.sessions.Read(r); err == nil {
		if err := h.sessionStore.Delete(sess.ID); err != nil {
			h.logger.Error("delete session", "error", err)
		}
	}

	http.SetCookie(w, h.sessions.DestroyCookie())
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
