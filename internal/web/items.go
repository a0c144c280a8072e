package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/erazemk/trznica/internal/model"
	"github.com/erazemk/trznica/internal/notify"
	"github.com/erazemk/trznica/internal/session"
	"github.com/erazemk/trznica/internal/view"
)

// ItemDetailPage handles GET /items/{id}.
func (s *Server) ItemDetailPage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	sess := s.Sessions.Get(w, r)
	creds := session.FromRequest(r)

	v, ok := sess.Host.Show(view.DetailRoute(id), func(reload func()) view.View {
		return view.NewDetailView(id, s.items, s.DetailImages, sess.Notices, creds, reload)
	}).(*view.DetailView)
	if !ok {
		slog.Error("unexpected view mounted", "route", view.DetailRoute(id))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	s.settle(r, v)
	s.renderDetail(w, http.StatusOK, sess.Notices.Drain(), creds, v)
}

// PurchaseSubmit handles POST /items/{id}/purchase. On success the detail
// view has already been replaced by a fresh instance, and the browser is
// redirected to it. On failure the unchanged page is shown again with the
// reason.
func (s *Server) PurchaseSubmit(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	detail := view.DetailRoute(id)

	sess := s.Sessions.Get(w, r)
	creds := session.FromRequest(r)

	v, ok := sess.Host.Current().(*view.DetailView)
	if !ok || v.ItemID() != id {
		// The page the form was posted from is gone; show it afresh.
		http.Redirect(w, r, detail, http.StatusSeeOther)
		return
	}
	if v.Credentials() != creds {
		// The browser signed in as someone else since the page was opened.
		slog.Warn("purchase from page opened under other credentials", "item", id, "user", creds.UserID)
		http.Redirect(w, r, detail, http.StatusSeeOther)
		return
	}

	err = v.Purchase(r.Context())
	switch {
	case err == nil, errors.Is(err, view.ErrStale):
		http.Redirect(w, r, detail, http.StatusSeeOther)
		return
	case errors.Is(err, view.ErrNotReady), errors.Is(err, view.ErrNotPurchasable), errors.Is(err, view.ErrBusy):
		sess.Notices.Error(err.Error())
		s.renderDetail(w, http.StatusConflict, sess.Notices.Drain(), creds, v)
		return
	}
	s.renderDetail(w, http.StatusUnprocessableEntity, sess.Notices.Drain(), creds, v)
}

func (s *Server) renderDetail(w http.ResponseWriter, status int, notices []notify.Notice, creds model.Credentials, v *view.DetailView) {
	snap := v.Snapshot()
	title := "Item"
	if snap.Item != nil {
		title = snap.Item.Name
	}
	s.Templates.RenderStatus(w, status, "item_detail.html", &struct {
		PageData
		ItemID int64
		Detail view.DetailSnapshot
	}{
		PageData: PageData{Title: title, UserID: creds.UserID, Notices: notices},
		ItemID:   v.ItemID(),
		Detail:   snap,
	})
}
