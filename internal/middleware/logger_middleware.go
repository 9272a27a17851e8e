package middleware

import (
	"log"
	"net/http"
	"time"
)

// LoggerMiddleware logs every inbound HTTP request.
func LoggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("Method: %s | URL: %s | Duration: %s | From: %s", r.Method, r.URL.Path, time.Since(start), r.RemoteAddr)
	})
}
