package server

import (
	"log"
	"net/http"
	"time"

	"github.com/waynje/django-sprint4/config"
	"github.com/waynje/django-sprint4/internal/database"
	"github.com/waynje/django-sprint4/internal/handlers"
	"github.com/waynje/django-sprint4/internal/middleware"
)

func applyMiddleware(h http.Handler, m ...func(http.Handler) http.Handler) http.Handler {
	for i := len(m) - 1; i >= 0; i-- {
		h = m[i](h)
	}
	return h
}

// Routes builds the route table with the per-route guards and wraps it
// with the session-resolving middleware. Outer concerns (logging,
// headers, rate limiting) are layered on in StartServer.
func Routes() http.Handler {
	cfg := config.AppConfig
	mux := http.NewServeMux()

	fs := http.FileServer(http.Dir(cfg.Paths.Static))
	mux.Handle("/static/", http.StripPrefix("/static/", fs))

	// Public pages
	mux.HandleFunc("/posts/{id}/{$}", handlers.PostDetailHandler)
	mux.HandleFunc("/category/{slug}/{$}", handlers.CategoryHandler)
	mux.HandleFunc("/profile/{username}", handlers.ProfileHandler)
	mux.HandleFunc("/pages/about/{$}", handlers.AboutHandler)
	mux.HandleFunc("/pages/rules/{$}", handlers.RulesHandler)

	// Account
	mux.HandleFunc("/auth/registration/{$}", handlers.RegisterHandler)
	mux.HandleFunc("/auth/login/{$}", handlers.LoginHandler)
	mux.Handle("/auth/logout/{$}", requireAuth(handlers.LogoutHandler))
	mux.Handle("/edit_profile/{$}", requireAuth(handlers.EditProfileHandler))

	// Post mutations; edit/delete forms submit PUT/DELETE through the
	// method override middleware.
	mux.Handle("/posts/create", requireAuth(handlers.CreatePostHandler))
	mux.Handle("/posts/{id}/edit/{$}", requireAuthOverride(handlers.EditPostHandler))
	mux.Handle("/posts/{id}/delete/{$}", requireAuthOverride(handlers.DeletePostHandler))

	// Comment mutations
	mux.Handle("/posts/{id}/comment/{$}", requireAuth(handlers.CreateCommentHandler))
	mux.Handle("/posts/{id}/edit_comment/{comment_id}/{$}", requireAuthOverride(handlers.EditCommentHandler))
	mux.Handle("/posts/{id}/delete_comment/{comment_id}/{$}", requireAuthOverride(handlers.DeleteCommentHandler))

	// Index doubles as the catch-all 404 route.
	mux.HandleFunc("/", handlers.IndexHandler)

	return middleware.AuthMiddleware(mux)
}

func requireAuth(h http.HandlerFunc) http.Handler {
	return middleware.RequireAuthMiddleware(h)
}

func requireAuthOverride(h http.HandlerFunc) http.Handler {
	return middleware.RequireAuthMiddleware(middleware.MethodOverrideMiddleware(h))
}

func StartServer() {
	cfg := config.AppConfig

	if err := handlers.LoadTemplates(cfg.Paths.Templates); err != nil {
		log.Fatalf("Failed to load templates: %v", err)
	}

	go database.CleanupExpiredSessions()

	handler := applyMiddleware(Routes(),
		middleware.LoggerMiddleware,
		middleware.SecureHeadersMiddleware,
		middleware.RateLimitMiddleware,
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server starting on http://localhost%s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
