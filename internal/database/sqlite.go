package database

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/waynje/django-sprint4/config"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"golang.org/x/crypto/bcrypt"
)

// DB is the shared database handle for the whole application.
var DB *sql.DB

// InitDB opens the database connection and creates the schema.
func InitDB(cfg *config.Config) error {
	var err error
	DB, err = sql.Open("sqlite3", cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("error opening database: %w", err)
	}

	// SQLite allows a single writer; one connection also keeps an
	// in-memory database alive across queries.
	DB.SetMaxOpenConns(1)

	if err = DB.Ping(); err != nil {
		return fmt.Errorf("error connecting to database: %w", err)
	}

	log.Printf("Successfully connected to SQLite database using DSN: %s", cfg.Database.DSN)

	return createTables()
}

// createTables creates all required tables.
func createTables() error {
	schema := `
	PRAGMA foreign_keys = ON;

	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE COLLATE NOCASE,
		first_name TEXT NOT NULL DEFAULT '',
		last_name TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS categories (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		slug TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL DEFAULT '',
		is_published BOOLEAN NOT NULL DEFAULT 1,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS locations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		is_published BOOLEAN NOT NULL DEFAULT 1,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS posts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		text TEXT NOT NULL,
		pub_date DATETIME NOT NULL,
		is_published BOOLEAN NOT NULL DEFAULT 1,
		author_id INTEGER NOT NULL,
		category_id INTEGER NOT NULL,
		location_id INTEGER,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (author_id) REFERENCES users(id) ON DELETE CASCADE,
		FOREIGN KEY (category_id) REFERENCES categories(id) ON DELETE CASCADE,
		FOREIGN KEY (location_id) REFERENCES locations(id) ON DELETE SET NULL
	);

	CREATE TABLE IF NOT EXISTS comments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		text TEXT NOT NULL,
		post_id INTEGER NOT NULL,
		author_id INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (post_id) REFERENCES posts(id) ON DELETE CASCADE,
		FOREIGN KEY (author_id) REFERENCES users(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		uuid TEXT NOT NULL UNIQUE,
		expires DATETIME NOT NULL,
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_users_username_nocase ON users(username COLLATE NOCASE);
	CREATE INDEX IF NOT EXISTS idx_categories_slug ON categories(slug);
	CREATE INDEX IF NOT EXISTS idx_posts_pub_date ON posts(pub_date);
	CREATE INDEX IF NOT EXISTS idx_posts_author_pub_date ON posts(author_id, pub_date);
	CREATE INDEX IF NOT EXISTS idx_posts_category ON posts(category_id);
	CREATE INDEX IF NOT EXISTS idx_comments_post_created ON comments(post_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_sessions_uuid ON sessions(uuid);
	`

	if _, err := DB.Exec(schema); err != nil {
		return fmt.Errorf("error creating tables: %w", err)
	}

	log.Println("Database tables created or already exist.")

	return seedDefaults()
}

// seedDefaults inserts a few categories and locations so a fresh local
// install has something to post into. Real category management belongs
// to the admin side.
func seedDefaults() error {
	categories := [][2]string{
		{"News", "news"},
		{"Travel", "travel"},
		{"Recipes", "recipes"},
	}
	for _, c := range categories {
		_, err := DB.Exec("INSERT OR IGNORE INTO categories (title, slug) VALUES (?, ?)", c[0], c[1])
		if err != nil {
			return fmt.Errorf("error inserting category %q: %w", c[1], err)
		}
	}

	locations := []string{"Nowhere", "The mountains"}
	for _, name := range locations {
		var count int
		if err := DB.QueryRow("SELECT COUNT(*) FROM locations WHERE name = ?", name).Scan(&count); err != nil {
			return fmt.Errorf("error checking location %q: %w", name, err)
		}
		if count == 0 {
			if _, err := DB.Exec("INSERT INTO locations (name) VALUES (?)", name); err != nil {
				return fmt.Errorf("error inserting location %q: %w", name, err)
			}
		}
	}

	log.Println("Default categories and locations ensured.")
	return nil
}

// CleanupExpiredSessions periodically deletes expired sessions.
func CleanupExpiredSessions() {
	ticker := time.NewTicker(30 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		result, err := DB.Exec("DELETE FROM sessions WHERE expires < ?", time.Now().UTC())
		if err != nil {
			log.Printf("Error cleaning up expired sessions: %v", err)
			continue
		}
		rowsAffected, _ := result.RowsAffected()
		if rowsAffected > 0 {
			log.Printf("Cleaned up %d expired sessions.", rowsAffected)
		}
	}
}

// HashPassword hashes a password with bcrypt.
func HashPassword(password string) (string, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashedPassword), nil
}

// CheckPasswordHash compares a bcrypt hash against a plain password.
func CheckPasswordHash(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}
