package handlers

import (
	"fmt"
	"html/template"
	"log"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/waynje/django-sprint4/internal/models"
)

// Parsed once at startup via LoadTemplates.
var templates *template.Template

// TemplateData holds data passed to HTML templates.
type TemplateData struct {
	User       *models.User
	Error      string
	FormErrors map[string]string
	Form       map[string]string
	Categories []models.Category
	Locations  []models.Location
	Category   *models.Category
	Profile    *models.User
	Posts      []models.Post
	Post       models.Post
	Comments   []models.Comment
	Comment    models.Comment
	Page       int
	TotalPages int
	Next       string
}

// LoadTemplates parses all page templates from dir.
func LoadTemplates(dir string) error {
	t, err := template.New("").Funcs(template.FuncMap{
		"inc": func(a int) int { return a + 1 },
		"dec": func(a int) int { return a - 1 },
		"formatDateTime": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("Jan 02, 2006 at 15:04")
		},
		"inputDateTime": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("2006-01-02T15:04")
		},
	}).ParseGlob(filepath.Join(dir, "*.html"))
	if err != nil {
		return fmt.Errorf("parsing templates: %w", err)
	}
	templates = t
	return nil
}

// renderTemplate renders into a buffer first so a template error never
// produces a half-written page.
func renderTemplate(w http.ResponseWriter, r *http.Request, templateName string, data TemplateData) {
	var buf strings.Builder
	err := templates.ExecuteTemplate(&buf, templateName, data)
	if err != nil {
		log.Printf("Error rendering template %s: %v", templateName, err)
		if w.Header().Get("Content-Type") == "" {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(buf.String()))
}

// HTTP error pages

func Render400(w http.ResponseWriter, r *http.Request, message string) {
	w.WriteHeader(http.StatusBadRequest)
	renderTemplate(w, r, "error.html", TemplateData{Error: "400 Bad Request: " + message})
}

func Render404(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNotFound)
	renderTemplate(w, r, "error.html", TemplateData{Error: "404 Not Found"})
}

func Render405(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusMethodNotAllowed)
	renderTemplate(w, r, "error.html", TemplateData{Error: "405 Method Not Allowed"})
}

func Render500(w http.ResponseWriter, r *http.Request, message string) {
	log.Printf("Internal Server Error: %s", message)
	w.WriteHeader(http.StatusInternalServerError)
	renderTemplate(w, r, "error.html", TemplateData{Error: "500 Internal Server Error"})
}

const (
	postsPerPage  = 10
	maxTitleLen   = 256
	maxTextLen    = 10000
	maxCommentLen = 1000
)

// countRunes counts Unicode characters, not bytes.
func countRunes(s string) int {
	return utf8.RuneCountInString(s)
}

// paginate turns ?page= and a total row count into page numbers and a
// query offset. Out-of-range pages are clamped.
func paginate(r *http.Request, total int) (page, totalPages, offset int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	totalPages = (total + postsPerPage - 1) / postsPerPage
	if totalPages > 0 && page > totalPages {
		page = totalPages
	}
	offset = (page - 1) * postsPerPage
	return page, totalPages, offset
}

// postStub carries just the post id into templates that only link back.
func postStub(id int) models.Post {
	return models.Post{ID: id}
}

// pathID parses a numeric path segment; ok is false when it is not a
// well-formed id.
func pathID(r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(r.PathValue(name))
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}
