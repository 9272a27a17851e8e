package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/waynje/django-sprint4/internal/auth"
)

// RegisterHandler displays and processes the registration form.
func RegisterHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		renderTemplate(w, r, "registration.html", TemplateData{})
		return
	}
	if r.Method != http.MethodPost {
		Render405(w, r)
		return
	}

	email := r.FormValue("email")
	username := r.FormValue("username")
	password := r.FormValue("password")

	_, err := auth.RegisterUser(email, username, password)
	if err != nil {
		log.Printf("Registration error: %v", err)
		var errMsg string
		switch {
		case errors.Is(err, auth.ErrEmailExists):
			errMsg = "Email already registered."
		case errors.Is(err, auth.ErrUsernameExists):
			errMsg = "Username already taken."
		case errors.Is(err, auth.ErrInvalidInput):
			errMsg = err.Error()
		default:
			errMsg = "Registration failed due to a server error."
		}
		w.WriteHeader(http.StatusBadRequest)
		renderTemplate(w, r, "registration.html", TemplateData{
			Error: errMsg,
			Form:  map[string]string{"email": email, "username": username},
		})
		return
	}

	http.Redirect(w, r, "/auth/login/", http.StatusSeeOther)
}

// LoginHandler displays and processes the login form. A ?next= parameter
// set by the auth guard sends the user back to their original target.
func LoginHandler(w http.ResponseWriter, r *http.Request) {
	next := safeNext(r.FormValue("next"))
	if next == "" {
		next = safeNext(r.URL.Query().Get("next"))
	}

	if r.Method == http.MethodGet {
		renderTemplate(w, r, "login.html", TemplateData{Next: next})
		return
	}
	if r.Method != http.MethodPost {
		Render405(w, r)
		return
	}

	login := r.FormValue("login") // email or username
	password := r.FormValue("password")

	user, session, err := auth.LoginUser(login, password)
	if err != nil {
		log.Printf("Login error for %s: %v", login, err)
		w.WriteHeader(http.StatusUnauthorized)
		renderTemplate(w, r, "login.html", TemplateData{
			Error: "Invalid email/username or password.",
			Next:  next,
		})
		return
	}

	auth.SetSessionCookie(w, session.UUID, session.Expires)
	log.Printf("User '%s' (ID: %d) logged in successfully.", user.Username, user.ID)

	if next == "" {
		next = "/"
	}
	http.Redirect(w, r, next, http.StatusSeeOther)
}

// LogoutHandler logs out the user by deleting their session.
func LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		Render405(w, r)
		return
	}
	sessionCookie, err := r.Cookie("session_token")
	if err == nil {
		if err := auth.LogoutUser(sessionCookie.Value); err != nil && !errors.Is(err, auth.ErrSessionNotFound) {
			log.Printf("Error deleting session from DB: %v", err)
		}
	}

	auth.ClearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// safeNext only allows site-local redirect targets.
func safeNext(next string) string {
	if strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") {
		return next
	}
	return ""
}
