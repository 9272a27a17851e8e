package handlers

import (
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/waynje/django-sprint4/internal/auth"
	"github.com/waynje/django-sprint4/internal/database"
)

var (
	profileUsernameRegex = regexp.MustCompile(`^[\p{L}0-9_]{3,30}$`)
	profileEmailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// ProfileHandler lists all posts by a user, newest first. The visibility
// filter is not applied here: the profile page is where authors manage
// their drafts and scheduled posts.
func ProfileHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		Render405(w, r)
		return
	}

	profile, err := database.UserByUsername(r.PathValue("username"))
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			Render404(w, r)
			return
		}
		Render500(w, r, "Failed to load user: "+err.Error())
		return
	}

	total, err := database.CountPostsByAuthor(profile.ID)
	if err != nil {
		Render500(w, r, "Failed to count posts: "+err.Error())
		return
	}
	page, totalPages, offset := paginate(r, total)

	posts, err := database.PostsByAuthor(profile.ID, postsPerPage, offset)
	if err != nil {
		Render500(w, r, "Failed to load posts: "+err.Error())
		return
	}

	renderTemplate(w, r, "profile.html", TemplateData{
		User:       auth.GetUserFromContext(r.Context()),
		Profile:    profile,
		Posts:      posts,
		Page:       page,
		TotalPages: totalPages,
	})
}

// EditProfileHandler lets a user edit their own record. Whose record is
// edited comes from the session, never from the request.
func EditProfileHandler(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r.Context())

	if r.Method == http.MethodGet {
		renderTemplate(w, r, "edit_profile.html", TemplateData{
			User: user,
			Form: map[string]string{
				"username":   user.Username,
				"first_name": user.FirstName,
				"last_name":  user.LastName,
				"email":      user.Email,
			},
		})
		return
	}
	if r.Method != http.MethodPost {
		Render405(w, r)
		return
	}

	_ = r.ParseForm()
	form := map[string]string{
		"username":   strings.TrimSpace(r.FormValue("username")),
		"first_name": strings.TrimSpace(r.FormValue("first_name")),
		"last_name":  strings.TrimSpace(r.FormValue("last_name")),
		"email":      strings.TrimSpace(r.FormValue("email")),
	}

	formErrors := map[string]string{}
	if !profileUsernameRegex.MatchString(form["username"]) {
		formErrors["username"] = "Username must be 3-30 characters of letters, numbers or underscore."
	} else {
		taken, err := database.UsernameTaken(form["username"], user.ID)
		if err != nil {
			Render500(w, r, "Failed to check username: "+err.Error())
			return
		}
		if taken {
			formErrors["username"] = "Username already taken."
		}
	}
	if !profileEmailRegex.MatchString(form["email"]) {
		formErrors["email"] = "Enter a valid email address."
	}
	if countRunes(form["first_name"]) > 150 {
		formErrors["first_name"] = "First name is too long."
	}
	if countRunes(form["last_name"]) > 150 {
		formErrors["last_name"] = "Last name is too long."
	}

	if len(formErrors) > 0 {
		w.WriteHeader(http.StatusBadRequest)
		renderTemplate(w, r, "edit_profile.html", TemplateData{
			User:       user,
			Form:       form,
			FormErrors: formErrors,
		})
		return
	}

	err := database.UpdateProfile(user.ID, form["username"], form["first_name"], form["last_name"], form["email"])
	if err != nil {
		Render500(w, r, "Failed to update profile: "+err.Error())
		return
	}

	http.Redirect(w, r, "/profile/"+form["username"], http.StatusSeeOther)
}
