package database

import (
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/waynje/django-sprint4/internal/models"
)

var ErrUserNotFound = errors.New("user not found")

func selectUsers() sq.SelectBuilder {
	return sq.Select("id", "username", "first_name", "last_name", "email").
		From("users")
}

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.FirstName, &u.LastName, &u.Email)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UserByUsername resolves a user by their public profile slug.
func UserByUsername(username string) (*models.User, error) {
	query, args, err := selectUsers().Where(sq.Eq{"username": username}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("building user query: %w", err)
	}

	user, err := scanUser(DB.QueryRow(query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UserByID resolves a user by id.
func UserByID(id int) (*models.User, error) {
	query, args, err := selectUsers().Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("building user query: %w", err)
	}

	user, err := scanUser(DB.QueryRow(query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UsernameTaken reports whether another user already holds a username.
func UsernameTaken(username string, excludeID int) (bool, error) {
	var count int
	err := DB.QueryRow(
		"SELECT COUNT(*) FROM users WHERE username = ? COLLATE NOCASE AND id != ?",
		username, excludeID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking username: %w", err)
	}
	return count > 0, nil
}

// UpdateProfile rewrites the requester's own profile fields.
func UpdateProfile(id int, username, firstName, lastName, email string) error {
	query, args, err := sq.Update("users").
		Set("username", username).
		Set("first_name", firstName).
		Set("last_name", lastName).
		Set("email", email).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("building profile update: %w", err)
	}

	res, err := DB.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("updating profile: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrUserNotFound
	}
	return nil
}
