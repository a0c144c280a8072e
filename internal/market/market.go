// Package market wraps the marketplace backend endpoints the frontend consumes.
package market

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/erazemk/trznica/internal/client"
	"github.com/erazemk/trznica/internal/model"
)

// API is a typed view of the backend HTTP surface.
type API struct {
	c *client.Client
}

// New returns an API backed by c.
func New(c *client.Client) *API {
	return &API{c: c}
}

// ItemPath returns the path of an item resource.
func ItemPath(id int64) string {
	return fmt.Sprintf("/items/%d", id)
}

// ImagePath returns the path of an item's image.
func ImagePath(id int64) string {
	return fmt.Sprintf("/items/%d/image", id)
}

// ListItems handles GET /items.
func (a *API) ListItems(ctx context.Context) ([]model.CatalogItem, error) {
	return client.FetchJSON[[]model.CatalogItem](ctx, a.c, http.MethodGet, "/items", client.JSONHeaders(), nil)
}

// GetItem handles GET /items/{id}.
func (a *API) GetItem(ctx context.Context, id int64) (model.Item, error) {
	return client.FetchJSON[model.Item](ctx, a.c, http.MethodGet, ItemPath(id), client.JSONHeaders(), nil)
}

// GetItemImage handles GET /items/{id}/image.
func (a *API) GetItemImage(ctx context.Context, id int64, token string) (*client.Blob, error) {
	return a.c.FetchBinary(ctx, http.MethodGet, ImagePath(id), client.WithBearer(client.JSONHeaders(), token))
}

type purchaseRequest struct {
	UserID int64 `json:"user_id"`
}

// Purchase handles POST /purchase/{id}. The response body is not used.
func (a *API) Purchase(ctx context.Context, id, userID int64, token string) error {
	_, err := client.FetchJSON[json.RawMessage](ctx, a.c, http.MethodPost, fmt.Sprintf("/purchase/%d", id),
		client.WithBearer(client.JSONHeaders(), token), purchaseRequest{UserID: userID})
	return err
}

type loginRequest struct {
	UserID   int64  `json:"user_id"`
	Password string `json:"password"`
}

// LoginResponse is returned by POST /login.
type LoginResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Token string `json:"token"`
}

// Login handles POST /login.
func (a *API) Login(ctx context.Context, userID int64, password string) (LoginResponse, error) {
	return client.FetchJSON[LoginResponse](ctx, a.c, http.MethodPost, "/login", client.JSONHeaders(),
		loginRequest{UserID: userID, Password: password})
}

type registerRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// RegisterResponse is returned by POST /register.
type RegisterResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Register handles POST /register.
func (a *API) Register(ctx context.Context, name, password string) (RegisterResponse, error) {
	return client.FetchJSON[RegisterResponse](ctx, a.c, http.MethodPost, "/register", client.JSONHeaders(),
		registerRequest{Name: name, Password: password})
}
