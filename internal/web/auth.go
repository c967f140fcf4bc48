package web

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"foundit/internal/auth"
	"foundit/internal/store"
)

const (
	stateCookie    = "oauth_state"
	verifierCookie = "oauth_verifier"
)

// LoginPage handles GET /login.
func (s *Server) LoginPage(w http.ResponseWriter, r *http.Request) {
	if GetSession(r.Context()) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	s.Templates.Render(w, "login.html", &struct {
		PageData
		EmailDomain string
	}{
		PageData:    PageData{Title: "Sign in", Flash: popFlash(w, r)},
		EmailDomain: s.EmailDomain,
	})
}

// AuthStart handles GET /auth/login: redirects the browser to the
// identity provider with a fresh state nonce and PKCE challenge.
func (s *Server) AuthStart(w http.ResponseWriter, r *http.Request) {
	if s.OIDC == nil {
		http.Error(w, "sign-in is not configured", http.StatusServiceUnavailable)
		return
	}

	pkce, err := auth.NewPKCE()
	if err != nil {
		slog.Error("failed to generate PKCE pair", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	state := uuid.NewString()
	setFlowCookie(w, stateCookie, state)
	setFlowCookie(w, verifierCookie, pkce.Verifier)

	http.Redirect(w, r, s.OIDC.AuthCodeURL(state, pkce), http.StatusSeeOther)
}

// AuthCallback handles GET /auth/callback: exchanges the code, verifies
// the ID token, applies the institution email gate, and establishes the
// session.
func (s *Server) AuthCallback(w http.ResponseWriter, r *http.Request) {
	if s.OIDC == nil {
		http.Error(w, "sign-in is not configured", http.StatusServiceUnavailable)
		return
	}

	state := r.URL.Query().Get("state")
	code := r.URL.Query().Get("code")
	stateC, errState := r.Cookie(stateCookie)
	verifierC, errVerifier := r.Cookie(verifierCookie)
	clearFlowCookie(w, stateCookie)
	clearFlowCookie(w, verifierCookie)

	if errState != nil || errVerifier != nil || state == "" || state != stateC.Value || code == "" {
		slog.Warn("sign-in callback with bad state", "remote", r.RemoteAddr)
		setFlash(w, "error", "Sign-in failed. Please try again.")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	rawIDToken, err := s.OIDC.Exchange(r.Context(), code, verifierC.Value)
	if err != nil {
		slog.Error("code exchange failed", "error", err)
		setFlash(w, "error", "Sign-in failed. Please try again.")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	identity, err := s.OIDC.VerifyIDToken(rawIDToken)
	if err != nil {
		slog.Error("id token verification failed", "error", err)
		setFlash(w, "error", "Sign-in failed. Please try again.")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	// The institution gate: only campus addresses may sign in.
	email, err := auth.CheckInstitutionEmail(identity.Email, s.EmailDomain)
	if errors.Is(err, auth.ErrEmailNotAllowed) {
		slog.Warn("sign-in rejected by email gate", "email", identity.Email)
		setFlash(w, "error", "Only @"+s.EmailDomain+" accounts are allowed to sign in.")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	if err != nil {
		slog.Error("email gate check failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	user, err := store.UpsertUser(r.Context(), s.DB, email, identity.Name)
	if err != nil {
		slog.Error("failed to upsert user on sign-in", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	token, err := auth.GenerateToken(s.SessionSecret, user.ID, user.Email, user.Name)
	if err != nil {
		slog.Error("failed to generate session token", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	setSessionCookie(w, token)
	slog.Info("user signed in", "user", user.Email)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout handles POST /logout.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	clearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// setFlowCookie stores a short-lived sign-in flow value.
func setFlowCookie(w http.ResponseWriter, name, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/auth/",
		MaxAge:   600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearFlowCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/auth/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
