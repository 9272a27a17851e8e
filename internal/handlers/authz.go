package handlers

import (
	"fmt"
	"net/http"

	"github.com/waynje/django-sprint4/internal/models"
)

// requireOwner is the ownership guard shared by every mutation handler:
// only the stored author of a post or comment may change it. A non-owner
// is sent to the post's detail page with a plain redirect, so the
// response is indistinguishable from normal navigation and leaks nothing
// about ownership.
//
// Callers must resolve the entity first (404 when absent) and run behind
// RequireAuthMiddleware, so user is never nil here in practice.
func requireOwner(w http.ResponseWriter, r *http.Request, user *models.User, authorID, postID int) bool {
	if user == nil || user.ID != authorID {
		http.Redirect(w, r, fmt.Sprintf("/posts/%d/", postID), http.StatusFound)
		return false
	}
	return true
}
