package session

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/erazemk/trznica/internal/auth"
	"github.com/erazemk/trznica/internal/model"
)

// Cookie names.
const (
	UserIDCookie  = "userID"
	TokenCookie   = "token"
	SessionCookie = "sid"
)

// FromRequest reads the session credentials from the request cookies.
// Missing cookies yield empty fields.
func FromRequest(r *http.Request) model.Credentials {
	var creds model.Credentials
	if c, err := r.Cookie(UserIDCookie); err == nil {
		creds.UserID = c.Value
	}
	if c, err := r.Cookie(TokenCookie); err == nil {
		creds.Token = c.Value
	}
	return creds
}

// SetCredentials stores the credentials returned by sign-in. The cookies
// live as long as the token does; a token without a readable expiry gets
// browser-session cookies.
func SetCredentials(w http.ResponseWriter, creds model.Credentials) {
	maxAge := 0
	if exp, err := auth.ExpiresAt(creds.Token); err == nil {
		maxAge = int(time.Until(exp).Seconds())
		if maxAge <= 0 {
			maxAge = -1
		}
	} else {
		slog.Debug("credential cookie without expiry", "error", err)
	}

	setCookie(w, UserIDCookie, creds.UserID, maxAge)
	setCookie(w, TokenCookie, creds.Token, maxAge)
}

// ClearCredentials removes the credential cookies.
func ClearCredentials(w http.ResponseWriter) {
	setCookie(w, UserIDCookie, "", -1)
	setCookie(w, TokenCookie, "", -1)
}

func setCookie(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
