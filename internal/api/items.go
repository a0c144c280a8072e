package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/dustin/go-humanize"

	"github.com/erazemk/trznica/internal/model"
	"github.com/erazemk/trznica/internal/store"
)

// ItemsHandler handles item and purchase endpoints.
type ItemsHandler struct {
	DB *sql.DB
}

type purchaseRequest struct {
	UserID int64 `json:"user_id"`
}

// List handles GET /items. Only on-sale items are listed, newest first.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := store.ListOnSaleItems(r.Context(), h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list items")
		return
	}
	jsonResponse(w, http.StatusOK, items)
}

// Get handles GET /items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Categories handles GET /categories.
func (h *ItemsHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := store.ListCategories(r.Context(), h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}
	if categories == nil {
		categories = []model.Category{}
	}
	jsonResponse(w, http.StatusOK, categories)
}

// GetImage handles GET /items/{id}/image.
func (h *ItemsHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	data, mime, err := store.GetItemImage(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get image")
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "no image")
		return
	}

	slog.Debug("serving image", "item_id", id, "size", humanize.Bytes(uint64(len(data))))
	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.Write(data)
}

// Purchase handles POST /purchase/{id}. The buyer is the bearer of the
// token; a user_id in the body naming someone else is rejected.
func (h *ItemsHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	id, err := pathID(r, "id")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req purchaseRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID != 0 && req.UserID != claims.UserID {
		jsonError(w, http.StatusForbidden, "user id does not match token")
		return
	}

	err = store.PurchaseItem(r.Context(), h.DB, id, claims.UserID)
	if store.IsPreconditionFailure(err) {
		slog.Warn("purchase rejected", "item_id", id, "user_id", claims.UserID, "error", err)
		jsonError(w, http.StatusPreconditionFailed, err.Error())
		return
	}
	if err != nil {
		slog.Error("purchase failed", "item_id", id, "user_id", claims.UserID, "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to purchase item")
		return
	}

	slog.Info("item purchased", "item_id", id, "user_id", claims.UserID)
	jsonResponse(w, http.StatusOK, "successful")
}
