package database

import (
	"errors"
	"testing"
)

func TestUserLookups(t *testing.T) {
	id := insertUser(t, "lookup_user")

	byName, err := UserByUsername("lookup_user")
	if err != nil {
		t.Fatalf("UserByUsername failed: %v", err)
	}
	if byName.ID != id || byName.Email != "lookup_user@example.com" {
		t.Errorf("unexpected user: %+v", byName)
	}

	byID, err := UserByID(id)
	if err != nil {
		t.Fatalf("UserByID failed: %v", err)
	}
	if byID.Username != "lookup_user" {
		t.Errorf("unexpected user: %+v", byID)
	}

	if _, err := UserByUsername("no_such_user"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("missing username: got %v, want ErrUserNotFound", err)
	}
	if _, err := UserByID(999999); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("missing id: got %v, want ErrUserNotFound", err)
	}
}

func TestUsernameTaken(t *testing.T) {
	id := insertUser(t, "taken_user")
	other := insertUser(t, "taken_other")

	taken, err := UsernameTaken("taken_user", other)
	if err != nil {
		t.Fatalf("UsernameTaken failed: %v", err)
	}
	if !taken {
		t.Error("existing username not reported as taken")
	}

	// A user keeps their own name without conflict.
	taken, err = UsernameTaken("taken_user", id)
	if err != nil {
		t.Fatalf("UsernameTaken failed: %v", err)
	}
	if taken {
		t.Error("own username reported as taken")
	}

	taken, err = UsernameTaken("TAKEN_USER", other)
	if err != nil {
		t.Fatalf("UsernameTaken failed: %v", err)
	}
	if !taken {
		t.Error("username comparison should be case-insensitive")
	}
}

func TestUpdateProfile(t *testing.T) {
	id := insertUser(t, "profile_user")

	err := UpdateProfile(id, "profile_renamed", "Pat", "Smith", "renamed@example.com")
	if err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}

	user, err := UserByID(id)
	if err != nil {
		t.Fatalf("UserByID failed: %v", err)
	}
	if user.Username != "profile_renamed" || user.FirstName != "Pat" ||
		user.LastName != "Smith" || user.Email != "renamed@example.com" {
		t.Errorf("profile not updated: %+v", user)
	}

	if err := UpdateProfile(999999, "x", "", "", "x@example.com"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("updating missing user: got %v, want ErrUserNotFound", err)
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret123")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "secret123" {
		t.Error("password stored in plain text")
	}
	if err := CheckPasswordHash(hash, "secret123"); err != nil {
		t.Errorf("correct password rejected: %v", err)
	}
	if err := CheckPasswordHash(hash, "wrongpass"); err == nil {
		t.Error("wrong password accepted")
	}
}
