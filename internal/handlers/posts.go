package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/waynje/django-sprint4/internal/auth"
	"github.com/waynje/django-sprint4/internal/database"
	"github.com/waynje/django-sprint4/internal/models"
)

// IndexHandler shows the paginated feed of publicly visible posts.
// Registered as the catch-all route, so unknown paths 404 here.
func IndexHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		Render404(w, r)
		return
	}
	if r.Method != http.MethodGet {
		Render405(w, r)
		return
	}

	user := auth.GetUserFromContext(r.Context())
	now := time.Now()

	total, err := database.CountVisiblePosts(now)
	if err != nil {
		Render500(w, r, "Failed to count posts: "+err.Error())
		return
	}
	page, totalPages, offset := paginate(r, total)

	posts, err := database.VisiblePosts(now, postsPerPage, offset)
	if err != nil {
		Render500(w, r, "Failed to load posts: "+err.Error())
		return
	}

	renderTemplate(w, r, "index.html", TemplateData{
		User:       user,
		Posts:      posts,
		Page:       page,
		TotalPages: totalPages,
	})
}

// PostDetailHandler shows one post with its comments. Posts that fail
// the visibility invariant 404 for everyone except their author; the
// author may always inspect their own drafts and scheduled posts.
func PostDetailHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		Render405(w, r)
		return
	}
	postID, ok := pathID(r, "id")
	if !ok {
		Render404(w, r)
		return
	}

	post, err := database.PostByID(postID)
	if err != nil {
		if errors.Is(err, database.ErrPostNotFound) {
			Render404(w, r)
			return
		}
		Render500(w, r, "Failed to load post: "+err.Error())
		return
	}

	user := auth.GetUserFromContext(r.Context())
	if !post.Visible(time.Now()) && (user == nil || user.ID != post.AuthorID) {
		// Existence is not disclosed to non-owners.
		Render404(w, r)
		return
	}

	comments, err := database.CommentsForPost(postID)
	if err != nil {
		Render500(w, r, "Failed to load comments: "+err.Error())
		return
	}

	renderTemplate(w, r, "detail.html", TemplateData{
		User:     user,
		Post:     *post,
		Comments: comments,
	})
}

// postForm is the parsed and validated post create/edit form.
type postForm struct {
	Title       string
	Text        string
	PubDate     time.Time
	IsPublished bool
	CategoryID  int
	LocationID  *int
	Errors      map[string]string
}

// parsePostForm binds and validates the submitted fields. The allowed
// category/location sets are the same ones offered on the form.
func parsePostForm(r *http.Request, categories []models.Category, locations []models.Location) postForm {
	form := postForm{Errors: map[string]string{}}

	form.Title = strings.TrimSpace(r.FormValue("title"))
	form.Text = strings.TrimSpace(strings.ReplaceAll(r.FormValue("text"), "\r\n", "\n"))
	form.IsPublished = r.FormValue("is_published") != ""

	if n := countRunes(form.Title); n == 0 || n > maxTitleLen {
		form.Errors["title"] = fmt.Sprintf("Title must be between 1 and %d characters.", maxTitleLen)
	}
	if n := countRunes(form.Text); n == 0 || n > maxTextLen {
		form.Errors["text"] = fmt.Sprintf("Text must be between 1 and %d characters.", maxTextLen)
	}

	if raw := r.FormValue("pub_date"); raw == "" {
		form.PubDate = time.Now()
	} else {
		t, err := time.ParseInLocation("2006-01-02T15:04", raw, time.Local)
		if err != nil {
			form.Errors["pub_date"] = "Publication date must be a valid date and time."
		} else {
			form.PubDate = t
		}
	}

	categoryID, err := strconv.Atoi(r.FormValue("category"))
	if err != nil {
		form.Errors["category"] = "A category is required."
	} else {
		found := false
		for _, c := range categories {
			if c.ID == categoryID {
				found = true
				break
			}
		}
		if !found {
			form.Errors["category"] = "The selected category does not exist."
		}
		form.CategoryID = categoryID
	}

	if raw := r.FormValue("location"); raw != "" {
		locationID, err := strconv.Atoi(raw)
		if err != nil {
			form.Errors["location"] = "The selected location is invalid."
		} else {
			found := false
			for _, l := range locations {
				if l.ID == locationID {
					found = true
					break
				}
			}
			if !found {
				form.Errors["location"] = "The selected location does not exist."
			} else {
				form.LocationID = &locationID
			}
		}
	}

	return form
}

// values re-fills the form template after a validation failure.
func (f postForm) values() map[string]string {
	v := map[string]string{
		"title":    f.Title,
		"text":     f.Text,
		"category": strconv.Itoa(f.CategoryID),
	}
	if !f.PubDate.IsZero() {
		v["pub_date"] = f.PubDate.Format("2006-01-02T15:04")
	}
	if f.IsPublished {
		v["is_published"] = "on"
	}
	if f.LocationID != nil {
		v["location"] = strconv.Itoa(*f.LocationID)
	}
	return v
}

// loadPostFormChoices fetches the category/location sets for the form.
func loadPostFormChoices(w http.ResponseWriter, r *http.Request) ([]models.Category, []models.Location, bool) {
	categories, err := database.PublishedCategories()
	if err != nil {
		Render500(w, r, "Failed to load categories: "+err.Error())
		return nil, nil, false
	}
	locations, err := database.PublishedLocations()
	if err != nil {
		Render500(w, r, "Failed to load locations: "+err.Error())
		return nil, nil, false
	}
	return categories, locations, true
}

// CreatePostHandler shows the post form and creates posts. The author is
// always the requesting user; the client cannot set it.
func CreatePostHandler(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r.Context())

	categories, locations, ok := loadPostFormChoices(w, r)
	if !ok {
		return
	}
	data := TemplateData{User: user, Categories: categories, Locations: locations}

	if r.Method == http.MethodGet {
		renderTemplate(w, r, "post_form.html", data)
		return
	}
	if r.Method != http.MethodPost {
		Render405(w, r)
		return
	}

	_ = r.ParseForm()
	form := parsePostForm(r, categories, locations)
	if len(form.Errors) > 0 {
		data.FormErrors = form.Errors
		data.Form = form.values()
		w.WriteHeader(http.StatusBadRequest)
		renderTemplate(w, r, "post_form.html", data)
		return
	}

	postID, err := database.CreatePost(
		form.Title, form.Text, form.PubDate, form.IsPublished,
		user.ID, form.CategoryID, form.LocationID,
	)
	if err != nil {
		Render500(w, r, "Failed to create post: "+err.Error())
		return
	}

	log.Printf("Post %d created by user %d", postID, user.ID)
	http.Redirect(w, r, "/profile/"+user.Username, http.StatusSeeOther)
}

// EditPostHandler shows the edit form and applies updates, guarded by
// post authorship.
func EditPostHandler(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r.Context())
	postID, ok := pathID(r, "id")
	if !ok {
		Render404(w, r)
		return
	}

	post, err := database.PostByID(postID)
	if err != nil {
		if errors.Is(err, database.ErrPostNotFound) {
			Render404(w, r)
			return
		}
		Render500(w, r, "Failed to load post: "+err.Error())
		return
	}
	if !requireOwner(w, r, user, post.AuthorID, post.ID) {
		return
	}

	categories, locations, ok := loadPostFormChoices(w, r)
	if !ok {
		return
	}
	data := TemplateData{User: user, Post: *post, Categories: categories, Locations: locations}

	if r.Method == http.MethodGet {
		prefill := postForm{
			Title:       post.Title,
			Text:        post.Text,
			PubDate:     post.PubDate,
			IsPublished: post.IsPublished,
			CategoryID:  post.CategoryID,
			LocationID:  post.LocationID,
		}
		data.Form = prefill.values()
		renderTemplate(w, r, "post_form.html", data)
		return
	}
	// PUT arrives as POST with _method=PUT, rewritten by the method
	// override middleware.
	if r.Method != http.MethodPut {
		Render405(w, r)
		return
	}

	_ = r.ParseForm()
	form := parsePostForm(r, categories, locations)
	if len(form.Errors) > 0 {
		data.FormErrors = form.Errors
		data.Form = form.values()
		w.WriteHeader(http.StatusBadRequest)
		renderTemplate(w, r, "post_form.html", data)
		return
	}

	err = database.UpdatePost(
		post.ID, form.Title, form.Text, form.PubDate, form.IsPublished,
		form.CategoryID, form.LocationID,
	)
	if err != nil {
		Render500(w, r, "Failed to update post: "+err.Error())
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/posts/%d/", post.ID), http.StatusSeeOther)
}

// DeletePostHandler deletes a post (and, via the cascade, its comments),
// guarded by post authorship.
func DeletePostHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		Render405(w, r)
		return
	}

	user := auth.GetUserFromContext(r.Context())
	postID, ok := pathID(r, "id")
	if !ok {
		Render404(w, r)
		return
	}

	post, err := database.PostByID(postID)
	if err != nil {
		if errors.Is(err, database.ErrPostNotFound) {
			Render404(w, r)
			return
		}
		Render500(w, r, "Failed to load post: "+err.Error())
		return
	}
	if !requireOwner(w, r, user, post.AuthorID, post.ID) {
		return
	}

	if err := database.DeletePost(post.ID); err != nil {
		Render500(w, r, "Failed to delete post: "+err.Error())
		return
	}

	log.Printf("Post %d deleted by user %d", post.ID, user.ID)
	http.Redirect(w, r, "/profile/"+user.Username, http.StatusSeeOther)
}
