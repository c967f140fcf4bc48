package web

import (
	"database/sql"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"

	"foundit/internal/auth"
	webembed "foundit/web"
)

// Templates holds parsed HTML templates.
type Templates struct {
	templates map[string]*template.Template
}

// FuncMap returns the template function map.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"categoryName": func(category string) string {
			switch category {
			case "electronics":
				return "Electronics"
			case "documents":
				return "Documents"
			case "accessories":
				return "Accessories"
			case "clothing":
				return "Clothing"
			case "books":
				return "Books"
			case "other":
				return "Other"
			default:
				return category
			}
		},
		"statusName": func(status string) string {
			switch status {
			case "lost":
				return "Lost"
			case "found":
				return "Found"
			case "claimed":
				return "Claimed"
			default:
				return status
			}
		},
		"claimStatusName": func(status string) string {
			switch status {
			case "pending":
				return "Pending review"
			case "approved":
				return "Approved"
			case "rejected":
				return "Rejected"
			default:
				return status
			}
		},
	}
}

// LoadTemplates parses all page templates with the layout.
func LoadTemplates() (*Templates, error) {
	tfs := webembed.TemplatesFS()

	layoutBytes, err := fs.ReadFile(tfs, "layout.html")
	if err != nil {
		return nil, fmt.Errorf("reading layout template: %w", err)
	}

	pages := []string{
		"login.html",
		"home.html",
		"item_detail.html",
		"item_form.html",
		"claim_form.html",
		"my_items.html",
		"my_claims.html",
		"manage_claims.html",
	}

	ts := &Templates{templates: make(map[string]*template.Template)}

	for _, page := range pages {
		pageBytes, err := fs.ReadFile(tfs, page)
		if err != nil {
			return nil, fmt.Errorf("reading template %s: %w", page, err)
		}

		tmpl := template.New(page).Funcs(FuncMap())
		tmpl, err = tmpl.Parse(string(layoutBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing layout for %s: %w", page, err)
		}
		tmpl, err = tmpl.Parse(string(pageBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", page, err)
		}

		ts.templates[page] = tmpl
	}

	return ts, nil
}

// Render renders a template with the given data.
func (ts *Templates) Render(w http.ResponseWriter, name string, data any) {
	tmpl, ok := ts.templates[name]
	if !ok {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "layout", data); err != nil {
		slog.Error("failed to render template", "template", name, "error", err)
	}
}

// PageData is the base data passed to all templates.
type PageData struct {
	Title string
	User  *auth.Claims
	Flash *Flash
	Error string
}

// Server holds all dependencies for page handlers.
type Server struct {
	DB            *sql.DB
	Templates     *Templates
	SessionSecret string
	OIDC          *auth.OIDCClient
	EmailDomain   string
}
