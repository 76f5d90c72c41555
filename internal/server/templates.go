package server

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/dgellow/auth-front/internal/log"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = map[string]*template.Template{
	ScreenLogin:     mustParsePage("login.html"),
	ScreenRegister:  mustParsePage("register.html"),
	screenDashboard: mustParsePage("dashboard.html"),
}

func mustParsePage(name string) *template.Template {
	return template.Must(template.ParseFS(templateFS, "templates/layout.html", "templates/"+name))
}

// PageData is the view model shared by every screen
type PageData struct {
	BrandName string
	Title     string
	Screen    string

	// Form state. The password is never rendered back.
	Email   string
	Error   string
	Notice  string
	Pending string

	// Google sign-in. An empty client ID hides the button.
	GoogleClientID string
	GoogleScopes   string
	GoogleRedirect bool
}

// render executes a page into a buffer first so a template failure never
// leaves a half-written response
func render(w http.ResponseWriter, status int, page string, data PageData) {
	tmpl, ok := pageTemplates[page]
	if !ok {
		log.LogErrorWithFields("render", "Unknown page", map[string]any{"page": page})
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		log.LogErrorWithFields("render", "Failed to render page", map[string]any{
			"page":  page,
			"error": err.Error(),
		})
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
