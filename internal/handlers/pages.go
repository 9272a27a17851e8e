package handlers

import (
	"net/http"

	"github.com/waynje/django-sprint4/internal/auth"
)

// Static informational pages.

func AboutHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		Render405(w, r)
		return
	}
	renderTemplate(w, r, "about.html", TemplateData{User: auth.GetUserFromContext(r.Context())})
}

func RulesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		Render405(w, r)
		return
	}
	renderTemplate(w, r, "rules.html", TemplateData{User: auth.GetUserFromContext(r.Context())})
}
