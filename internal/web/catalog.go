package web

import (
	"log/slog"
	"net/http"

	"github.com/erazemk/trznica/internal/session"
	"github.com/erazemk/trznica/internal/view"
)

// Home handles GET /. It shows the catalog to signed-in browsers and the
// sign-up/sign-in alternative otherwise.
func (s *Server) Home(w http.ResponseWriter, r *http.Request) {
	sess := s.Sessions.Get(w, r)
	creds := session.FromRequest(r)

	if view.Select(creds) == view.ScreenSignIn {
		sess.Host.Close()
		s.renderSignIn(w, http.StatusOK, &PageData{Title: "Sign in", Notices: sess.Notices.Drain()})
		return
	}

	v, ok := sess.Host.Show(view.CatalogRoute, func(func()) view.View {
		return view.NewCatalogView(s.API, s.CatalogImages, sess.Notices, creds)
	}).(*view.CatalogView)
	if !ok {
		slog.Error("unexpected view mounted", "route", view.CatalogRoute)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	s.settle(r, v)

	snap := v.Snapshot()
	s.Templates.Render(w, "catalog.html", &struct {
		PageData
		Catalog view.CatalogSnapshot
	}{
		PageData: PageData{Title: "Items", UserID: creds.UserID, Notices: sess.Notices.Drain()},
		Catalog:  snap,
	})
}
