package web

import (
	"database/sql"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"foundit/internal/auth"
	webembed "foundit/web"
)

// Config carries the router dependencies beyond the database.
type Config struct {
	SessionSecret string
	OIDC          *auth.OIDCClient
	EmailDomain   string
}

// NewRouter creates the page router with all routes registered.
func NewRouter(db *sql.DB, cfg Config) (http.Handler, error) {
	templates, err := LoadTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		DB:            db,
		Templates:     templates,
		SessionSecret: cfg.SessionSecret,
		OIDC:          cfg.OIDC,
		EmailDomain:   cfg.EmailDomain,
	}

	mux := http.NewServeMux()

	// Static assets and metrics.
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(webembed.StaticFS()))))
	mux.Handle("GET /metrics", promhttp.Handler())

	// Sign-in flow.
	mux.HandleFunc("GET /login", s.LoginPage)
	mux.HandleFunc("GET /auth/login", s.AuthStart)
	mux.HandleFunc("GET /auth/callback", s.AuthCallback)
	mux.HandleFunc("POST /logout", s.Logout)

	// Public pages: item photo, listing and detail. Signed-in viewers
	// get extra content (claims) on the detail page.
	mux.HandleFunc("GET /{$}", s.Home)
	mux.HandleFunc("GET /item/{id}", s.ItemDetail)
	mux.HandleFunc("GET /item/{id}/image", s.ItemImage)

	// Authenticated pages.
	authed := func(h http.HandlerFunc) http.Handler { return RequireSession(h) }

	mux.Handle("GET /post", authed(s.PostItemPage))
	mux.Handle("POST /post", authed(s.PostItemSubmit))
	mux.Handle("GET /item/{id}/edit", authed(s.EditItemPage))
	mux.Handle("POST /item/{id}/edit", authed(s.EditItemSubmit))
	mux.Handle("POST /item/{id}/delete", authed(s.DeleteItemSubmit))
	mux.Handle("GET /my-items", authed(s.MyItems))

	mux.Handle("GET /item/{id}/claim", authed(s.ClaimItemPage))
	mux.Handle("POST /item/{id}/claim", authed(s.ClaimItemSubmit))
	mux.Handle("GET /my-claims", authed(s.MyClaims))
	mux.Handle("GET /item/{id}/manage-claims", authed(s.ManageClaims))
	mux.Handle("POST /claim/{id}/update/{status}", authed(s.UpdateClaimStatus))

	// Session resolution wraps everything so public pages can also see
	// who is signed in.
	return WithSession(cfg.SessionSecret)(mux), nil
}
