package middleware

import "net/http"

// MethodOverrideMiddleware lets HTML forms issue PUT and DELETE requests
// via a hidden _method field.
func MethodOverrideMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if err := r.ParseForm(); err != nil {
				http.Error(w, "Failed to parse form", http.StatusInternalServerError)
				return
			}
			method := r.Form.Get("_method")
			if method == http.MethodPut || method == http.MethodDelete {
				r.Method = method
			}
		}
		next.ServeHTTP(w, r)
	})
}
