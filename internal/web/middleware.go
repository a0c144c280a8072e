package web

import (
	"net/http"

	"github.com/erazemk/trznica/internal/session"
)

// RequireCredentials sends browsers without a session token back to the
// shell, which offers sign-in instead.
func RequireCredentials(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !session.FromRequest(r).Present() {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}
