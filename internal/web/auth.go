package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/erazemk/trznica/internal/client"
	"github.com/erazemk/trznica/internal/model"
	"github.com/erazemk/trznica/internal/session"
)

// LoginPage handles GET /login.
func (s *Server) LoginPage(w http.ResponseWriter, r *http.Request) {
	if session.FromRequest(r).Present() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	sess := s.Sessions.Get(w, r)
	s.renderSignIn(w, http.StatusOK, &PageData{Title: "Sign in", Notices: sess.Notices.Drain()})
}

// LoginSubmit handles POST /login.
func (s *Server) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(strings.TrimSpace(r.FormValue("user_id")), 10, 64)
	password := r.FormValue("password")

	if err != nil || password == "" {
		s.renderSignIn(w, http.StatusBadRequest, &PageData{
			Title: "Sign in",
			Error: "Enter your numeric user ID and password.",
		})
		return
	}

	if err := s.signIn(w, r, userID, password); err != nil {
		slog.Warn("sign-in failed", "user", userID, "error", err)
		s.renderSignIn(w, http.StatusUnauthorized, &PageData{
			Title: "Sign in",
			Error: client.Message(err),
		})
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// RegisterSubmit handles POST /register. A successful sign-up signs the
// new user in.
func (s *Server) RegisterSubmit(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.FormValue("name"))
	password := r.FormValue("password")

	if name == "" {
		s.renderSignIn(w, http.StatusBadRequest, &PageData{Title: "Sign up", Error: "Enter a user name."})
		return
	}
	if err := model.ValidatePassword(password); err != nil {
		s.renderSignIn(w, http.StatusBadRequest, &PageData{Title: "Sign up", Error: err.Error()})
		return
	}

	user, err := s.API.Register(r.Context(), name, password)
	if err != nil {
		slog.Warn("sign-up failed", "name", name, "error", err)
		s.renderSignIn(w, http.StatusBadGateway, &PageData{Title: "Sign up", Error: client.Message(err)})
		return
	}
	slog.Info("user registered", "user", user.ID, "name", user.Name)

	if err := s.signIn(w, r, user.ID, password); err != nil {
		slog.Warn("sign-in after sign-up failed", "user", user.ID, "error", err)
		s.renderSignIn(w, http.StatusBadGateway, &PageData{Title: "Sign in", Error: client.Message(err)})
		return
	}

	sess := s.Sessions.Get(w, r)
	sess.Notices.Info(fmt.Sprintf("Welcome, %s. Your user ID is %d.", user.Name, user.ID))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) signIn(w http.ResponseWriter, r *http.Request, userID int64, password string) error {
	resp, err := s.API.Login(r.Context(), userID, password)
	if err != nil {
		return err
	}
	session.SetCredentials(w, model.Credentials{
		UserID: strconv.FormatInt(resp.ID, 10),
		Token:  resp.Token,
	})
	return nil
}

// Logout handles POST /logout.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	session.ClearCredentials(w)
	if c, err := r.Cookie(session.SessionCookie); err == nil {
		s.Sessions.Remove(c.Value)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) renderSignIn(w http.ResponseWriter, status int, data *PageData) {
	s.Templates.RenderStatus(w, status, "login.html", data)
}
