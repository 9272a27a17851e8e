package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/waynje/django-sprint4/config"
	"github.com/waynje/django-sprint4/internal/database"
	"github.com/waynje/django-sprint4/internal/models"

	"github.com/google/uuid"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidPassword = errors.New("invalid password")
	ErrEmailExists     = errors.New("email already exists")
	ErrUsernameExists  = errors.New("username already exists")
	ErrInvalidInput    = errors.New("invalid input")
	ErrSessionNotFound = errors.New("session not found or expired")
)

// Regex patterns for validation
var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	usernameRegex = regexp.MustCompile(`^[\p{L}0-9_]{3,30}$`) // letters, numbers, underscore
	passwordRegex = regexp.MustCompile(`^.{6,64}$`)
)

// ValidateUserCredentials checks registration input.
func ValidateUserCredentials(email, username, password string) error {
	if !emailRegex.MatchString(email) || len(email) < 5 || len(email) > 254 {
		return fmt.Errorf("%w: invalid email format or length", ErrInvalidInput)
	}
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("%w: username must be 3-30 characters of letters, numbers or underscore", ErrInvalidInput)
	}
	if !passwordRegex.MatchString(password) {
		return fmt.Errorf("%w: password must be 6-64 characters", ErrInvalidInput)
	}
	return nil
}

// RegisterUser creates a new user account.
func RegisterUser(email, username, password string) (*models.User, error) {
	if err := ValidateUserCredentials(email, username, password); err != nil {
		return nil, err
	}

	hashedPassword, err := database.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("auth: failed to hash password: %w", err)
	}

	var count int
	err = database.DB.QueryRow("SELECT COUNT(*) FROM users WHERE email = ?", email).Scan(&count)
	if err != nil {
		return nil, fmt.Errorf("auth: failed to check existing email: %w", err)
	}
	if count > 0 {
		return nil, ErrEmailExists
	}
	err = database.DB.QueryRow("SELECT COUNT(*) FROM users WHERE username = ? COLLATE NOCASE", username).Scan(&count)
	if err != nil {
		return nil, fmt.Errorf("auth: failed to check existing username: %w", err)
	}
	if count > 0 {
		return nil, ErrUsernameExists
	}

	res, err := database.DB.Exec(
		"INSERT INTO users (email, username, password) VALUES (?, ?, ?)",
		email, username, hashedPassword,
	)
	if err != nil {
		return nil, fmt.Errorf("auth: failed to insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("auth: failed to get last insert ID: %w", err)
	}

	return &models.User{ID: int(id), Email: email, Username: username}, nil
}

// LoginUser authenticates a user and creates a new session.
func LoginUser(login, password string) (*models.User, *models.Session, error) {
	var user models.User
	query := "SELECT id, email, username, first_name, last_name, password FROM users WHERE email = ? OR username = ? COLLATE NOCASE"
	err := database.DB.QueryRow(query, login, login).Scan(
		&user.ID, &user.Email, &user.Username, &user.FirstName, &user.LastName, &user.Password)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, fmt.Errorf("auth: failed to query user: %w", err)
	}

	if err = database.CheckPasswordHash(user.Password, password); err != nil {
		return nil, nil, ErrInvalidPassword
	}

	// One active session per user
	_, err = database.DB.Exec("DELETE FROM sessions WHERE user_id = ?", user.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("auth: failed to delete old sessions: %w", err)
	}

	sessionUUID := uuid.New().String()
	// UTC so the stored value and the cleanup sweep compare in one zone.
	expiresAt := time.Now().Add(config.AppConfig.Session.Expiration).UTC()

	res, err := database.DB.Exec(
		"INSERT INTO sessions (user_id, uuid, expires) VALUES (?, ?, ?)",
		user.ID, sessionUUID, expiresAt,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("auth: failed to create new session: %w", err)
	}

	sessionID, err := res.LastInsertId()
	if err != nil {
		return nil, nil, fmt.Errorf("auth: failed to get session ID: %w", err)
	}

	session := &models.Session{ID: int(sessionID), UserID: user.ID, UUID: sessionUUID, Expires: expiresAt}
	return &user, session, nil
}

// LogoutUser deletes a session from the database.
func LogoutUser(sessionUUID string) error {
	result, err := database.DB.Exec("DELETE FROM sessions WHERE uuid = ?", sessionUUID)
	if err != nil {
		return fmt.Errorf("auth: failed to delete session: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("auth: failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// GetUserBySession validates a session token and returns its user.
func GetUserBySession(sessionUUID string) (*models.User, error) {
	var session models.Session
	err := database.DB.QueryRow("SELECT user_id, expires FROM sessions WHERE uuid = ?", sessionUUID).
		Scan(&session.UserID, &session.Expires)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("auth: failed to query session: %w", err)
	}

	if time.Now().After(session.Expires) {
		_, _ = database.DB.Exec("DELETE FROM sessions WHERE uuid = ?", sessionUUID)
		return nil, ErrSessionNotFound
	}

	user, err := database.UserByID(session.UserID)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("auth: failed to query user by session: %w", err)
	}
	return user, nil
}

// SetSessionCookie sets the session cookie.
func SetSessionCookie(w http.ResponseWriter, sessionUUID string, expirationTime time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     "session_token",
		Value:    sessionUUID,
		Path:     "/",
		Expires:  expirationTime,
		HttpOnly: true,
		Secure:   config.AppConfig != nil && config.AppConfig.Server.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie removes the session cookie.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     "session_token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   config.AppConfig != nil && config.AppConfig.Server.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

type contextKey string

const UserContextKey contextKey = "user"

// GetUserFromContext extracts the authenticated user from the request
// context, or nil for anonymous requests.
func GetUserFromContext(ctx context.Context) *models.User {
	user, ok := ctx.Value(UserContextKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}
