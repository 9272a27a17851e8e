package main

import (
	"log"

	"github.com/waynje/django-sprint4/config"
	"github.com/waynje/django-sprint4/internal/database"
	"github.com/waynje/django-sprint4/internal/server"
)

func main() {
	config.LoadConfig()

	if err := database.InitDB(config.AppConfig); err != nil {
		log.Fatalf("FATAL: Failed to initialize database: %v", err)
	}
	defer func() {
		if err := database.DB.Close(); err != nil {
			log.Printf("ERROR: Failed to close database connection: %v", err)
		}
	}()

	server.StartServer()
}
