package database

import (
	"log"
	"os"
	"testing"
	"time"

	"github.com/waynje/django-sprint4/config"
)

func TestMain(m *testing.M) {
	os.Setenv("BLOGICUM_DB_NAME", ":memory:")
	config.LoadConfig()
	if err := InitDB(config.AppConfig); err != nil {
		log.Fatalf("Failed to initialize test database: %v", err)
	}
	os.Exit(m.Run())
}

// Test fixtures. Usernames and slugs must be unique per test since the
// in-memory database is shared across the package.

func insertUser(t *testing.T, username string) int {
	t.Helper()
	res, err := DB.Exec(
		"INSERT INTO users (username, email, password) VALUES (?, ?, ?)",
		username, username+"@example.com", "x",
	)
	if err != nil {
		t.Fatalf("inserting user %q: %v", username, err)
	}
	id, _ := res.LastInsertId()
	return int(id)
}

func insertCategory(t *testing.T, slug string, published bool) int {
	t.Helper()
	res, err := DB.Exec(
		"INSERT INTO categories (title, slug, is_published) VALUES (?, ?, ?)",
		"Category "+slug, slug, published,
	)
	if err != nil {
		t.Fatalf("inserting category %q: %v", slug, err)
	}
	id, _ := res.LastInsertId()
	return int(id)
}

func insertPost(t *testing.T, title string, authorID, categoryID int, published bool, pubDate time.Time) int {
	t.Helper()
	id, err := CreatePost(title, "text of "+title, pubDate, published, authorID, categoryID, nil)
	if err != nil {
		t.Fatalf("inserting post %q: %v", title, err)
	}
	return id
}
