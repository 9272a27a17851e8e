package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/waynje/django-sprint4/internal/auth"
	"github.com/waynje/django-sprint4/internal/database"
)

// CategoryHandler lists the visible posts of one published category.
// An absent or unpublished category is a plain 404: an unpublished
// category hides all of its posts even when they are individually
// published.
func CategoryHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		Render405(w, r)
		return
	}

	category, err := database.PublishedCategoryBySlug(r.PathValue("slug"))
	if err != nil {
		if errors.Is(err, database.ErrCategoryNotFound) {
			Render404(w, r)
			return
		}
		Render500(w, r, "Failed to load category: "+err.Error())
		return
	}

	now := time.Now()
	total, err := database.CountVisiblePostsInCategory(category.ID, now)
	if err != nil {
		Render500(w, r, "Failed to count posts: "+err.Error())
		return
	}
	page, totalPages, offset := paginate(r, total)

	posts, err := database.VisiblePostsInCategory(category.ID, now, postsPerPage, offset)
	if err != nil {
		Render500(w, r, "Failed to load posts: "+err.Error())
		return
	}

	renderTemplate(w, r, "category.html", TemplateData{
		User:       auth.GetUserFromContext(r.Context()),
		Category:   category,
		Posts:      posts,
		Page:       page,
		TotalPages: totalPages,
	})
}
