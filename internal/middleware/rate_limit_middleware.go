package middleware

import (
	"log"
	"net"
	"net/http"
	"sync"
	"time"
)

const (
	maxRequests = 60          // requests allowed per window
	window      = time.Minute // counter reset window
)

// clientState tracks the limiter state for one client IP.
type clientState struct {
	lastRequest  time.Time
	requestCount int
	mu           sync.Mutex
}

var (
	clients = make(map[string]*clientState)
	mu      sync.Mutex // guards the clients map
	once    sync.Once
)

// RateLimitMiddleware caps the number of requests per IP address.
func RateLimitMiddleware(next http.Handler) http.Handler {
	once.Do(func() {
		go cleanupClientStates()
	})

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			log.Printf("Error splitting host port: %v", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		mu.Lock()
		state, exists := clients[ip]
		if !exists {
			state = &clientState{}
			clients[ip] = state
		}
		mu.Unlock()

		state.mu.Lock()
		defer state.mu.Unlock()

		if time.Since(state.lastRequest) > window {
			state.requestCount = 0
			state.lastRequest = time.Now()
		}

		state.requestCount++

		if state.requestCount > maxRequests {
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// cleanupClientStates drops idle entries so the map does not grow forever.
func cleanupClientStates() {
	for range time.Tick(window) {
		mu.Lock()
		for ip, state := range clients {
			state.mu.Lock()
			if time.Since(state.lastRequest) > 2*window {
				delete(clients, ip)
			}
			state.mu.Unlock()
		}
		mu.Unlock()
	}
}
