package api

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/erazemk/trznica/internal/store"
)

// BalanceHandler handles the signed-in user's balance.
type BalanceHandler struct {
	DB *sql.DB
}

type balanceResponse struct {
	Balance int64 `json:"balance"`
}

type addBalanceRequest struct {
	Balance int64 `json:"balance"`
}

// Get handles GET /balance.
func (h *BalanceHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	user, err := store.GetUser(r.Context(), h.DB, claims.UserID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get user")
		return
	}
	if user == nil {
		jsonError(w, http.StatusPreconditionFailed, store.ErrUserNotFound.Error())
		return
	}
	jsonResponse(w, http.StatusOK, balanceResponse{Balance: user.Balance})
}

// Add handles POST /balance, crediting the amount in the body.
func (h *BalanceHandler) Add(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var req addBalanceRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Balance < 0 {
		jsonError(w, http.StatusBadRequest, "negative balance")
		return
	}

	err := store.AddBalance(r.Context(), h.DB, claims.UserID, req.Balance)
	if errors.Is(err, store.ErrUserNotFound) {
		jsonError(w, http.StatusPreconditionFailed, err.Error())
		return
	}
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to update balance")
		return
	}
	jsonResponse(w, http.StatusOK, "successful")
}
