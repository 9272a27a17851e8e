package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/waynje/django-sprint4/internal/auth"
	"github.com/waynje/django-sprint4/internal/database"
	"github.com/waynje/django-sprint4/internal/models"
)

// resolveComment loads a comment addressed as
// /posts/{id}/..._comment/{comment_id}/ and 404s on any mismatch.
func resolveComment(w http.ResponseWriter, r *http.Request) (postID int, comment commentRef, ok bool) {
	postID, idOK := pathID(r, "id")
	commentID, cidOK := pathID(r, "comment_id")
	if !idOK || !cidOK {
		Render404(w, r)
		return 0, commentRef{}, false
	}

	c, err := database.CommentByID(commentID)
	if err != nil {
		if errors.Is(err, database.ErrCommentNotFound) {
			Render404(w, r)
			return 0, commentRef{}, false
		}
		Render500(w, r, "Failed to load comment: "+err.Error())
		return 0, commentRef{}, false
	}
	if c.PostID != postID {
		Render404(w, r)
		return 0, commentRef{}, false
	}
	return postID, commentRef{ID: c.ID, AuthorID: c.AuthorID, Text: c.Text}, true
}

type commentRef struct {
	ID       int
	AuthorID int
	Text     string
}

func validCommentText(text string) (string, bool) {
	text = strings.TrimSpace(text)
	n := countRunes(text)
	return text, n > 0 && n <= maxCommentLen
}

// CreateCommentHandler adds a comment to a post. The parent is resolved
// by id only; visibility is deliberately not checked, so a direct link
// is enough to comment. Author and post are forced server-side.
func CreateCommentHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
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

	text, valid := validCommentText(r.FormValue("text"))
	if !valid {
		// The error re-render shows the full post, so it gets the same
		// viewer check as the detail page; otherwise a blank comment on
		// a hidden post would echo its content back.
		if !post.Visible(time.Now()) && user.ID != post.AuthorID {
			Render404(w, r)
			return
		}
		// Re-render the detail page with the form error in place.
		comments, err := database.CommentsForPost(post.ID)
		if err != nil {
			Render500(w, r, "Failed to load comments: "+err.Error())
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		renderTemplate(w, r, "detail.html", TemplateData{
			User:     user,
			Post:     *post,
			Comments: comments,
			FormErrors: map[string]string{
				"text": fmt.Sprintf("Comment must be between 1 and %d characters.", maxCommentLen),
			},
		})
		return
	}

	if _, err := database.CreateComment(post.ID, user.ID, text); err != nil {
		Render500(w, r, "Failed to add comment: "+err.Error())
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/posts/%d/", post.ID), http.StatusSeeOther)
}

// EditCommentHandler shows the edit form and applies updates, guarded by
// comment authorship.
func EditCommentHandler(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r.Context())
	postID, comment, ok := resolveComment(w, r)
	if !ok {
		return
	}
	if !requireOwner(w, r, user, comment.AuthorID, postID) {
		return
	}

	if r.Method == http.MethodGet {
		renderTemplate(w, r, "comment_form.html", TemplateData{
			User:    user,
			Post:    postStub(postID),
			Comment: models.Comment{ID: comment.ID},
			Form:    map[string]string{"text": comment.Text},
		})
		return
	}
	if r.Method != http.MethodPut {
		Render405(w, r)
		return
	}

	text, valid := validCommentText(r.FormValue("text"))
	if !valid {
		w.WriteHeader(http.StatusBadRequest)
		renderTemplate(w, r, "comment_form.html", TemplateData{
			User:    user,
			Post:    postStub(postID),
			Comment: models.Comment{ID: comment.ID},
			Form:    map[string]string{"text": text},
			FormErrors: map[string]string{
				"text": fmt.Sprintf("Comment must be between 1 and %d characters.", maxCommentLen),
			},
		})
		return
	}

	if err := database.UpdateComment(comment.ID, text); err != nil {
		Render500(w, r, "Failed to update comment: "+err.Error())
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/posts/%d/", postID), http.StatusSeeOther)
}

// DeleteCommentHandler deletes a comment, guarded by comment authorship.
func DeleteCommentHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		Render405(w, r)
		return
	}

	user := auth.GetUserFromContext(r.Context())
	postID, comment, ok := resolveComment(w, r)
	if !ok {
		return
	}
	if !requireOwner(w, r, user, comment.AuthorID, postID) {
		return
	}

	if err := database.DeleteComment(comment.ID); err != nil {
		Render500(w, r, "Failed to delete comment: "+err.Error())
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/posts/%d/", postID), http.StatusSeeOther)
}
