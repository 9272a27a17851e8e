package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the application.
type Config struct {
	Server struct {
		Port         string
		CookieSecure bool
	}
	Database struct {
		DSN string // e.g. "blogicum.db?_foreign_keys=on"
	}
	Session struct {
		Expiration time.Duration
	}
	Paths struct {
		Templates string
		Static    string
	}
}

// AppConfig is the loaded configuration, available to the whole application.
var AppConfig *Config

// LoadConfig reads configuration from a .env file (if present) and
// environment variables, falling back to defaults. Call once at startup.
func LoadConfig() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables and defaults.")
	}

	AppConfig = &Config{}

	AppConfig.Server.Port = getEnv("BLOGICUM_PORT", "8080")
	AppConfig.Server.CookieSecure = getEnv("BLOGICUM_COOKIE_SECURE", "false") == "true"

	dbName := getEnv("BLOGICUM_DB_NAME", "blogicum.db")
	AppConfig.Database.DSN = dbName + "?_foreign_keys=on"

	sessionHours, err := strconv.Atoi(getEnv("BLOGICUM_SESSION_HOURS", "24"))
	if err != nil {
		log.Printf("WARNING: Invalid session duration specified, using default 24 hours: %v", err)
		sessionHours = 24
	}
	AppConfig.Session.Expiration = time.Duration(sessionHours) * time.Hour

	AppConfig.Paths.Templates = getEnv("BLOGICUM_TEMPLATES_DIR", "./web/templates")
	AppConfig.Paths.Static = getEnv("BLOGICUM_STATIC_DIR", "./web/static")

	log.Println("Configuration loaded successfully.")
}

// getEnv reads an environment variable, returning fallback when unset.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
