package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/trznica/internal/auth"
	"github.com/erazemk/trznica/internal/db"
	"github.com/erazemk/trznica/internal/model"
	"github.com/erazemk/trznica/internal/store"
)

const testJWTSecret = "test-secret"

type testServer struct {
	*httptest.Server
	seed store.SeedResult
}

// setupTestServer seeds a fresh database. Both seeded users have the
// password "password"; items 1 to 5 are the seed items in order.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	database := db.NewTestDB(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	require.NoError(t, err)
	seed, err := store.Seed(context.Background(), database, string(hash))
	require.NoError(t, err)

	server := httptest.NewServer(NewRouter(database, testJWTSecret))
	t.Cleanup(server.Close)
	return &testServer{Server: server, seed: seed}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}

	req, err := http.NewRequest(method, s.URL+path, bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (s *testServer) login(t *testing.T, userID int64) string {
	t.Helper()
	resp := s.do(t, http.MethodPost, "/login", "", map[string]any{"user_id": userID, "password": "password"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out loginResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.NotEmpty(t, out.Token)
	assert.Equal(t, userID, out.ID)
	return out.Token
}

func decodeMessage(t *testing.T, resp *http.Response) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body["message"]
}

func TestLoginEndpoint(t *testing.T) {
	server := setupTestServer(t)

	token := server.login(t, server.seed.BuyerID)
	claims, err := auth.ValidateToken(testJWTSecret, token)
	require.NoError(t, err)
	assert.Equal(t, server.seed.BuyerID, claims.UserID)

	resp := server.do(t, http.MethodPost, "/login", "", map[string]any{"user_id": server.seed.BuyerID, "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "invalid credentials", decodeMessage(t, resp))

	resp = server.do(t, http.MethodPost, "/login", "", map[string]any{"user_id": 999, "password": "password"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = server.do(t, http.MethodPost, "/login", "", map[string]any{"user_id": 0})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRegisterEndpoint(t *testing.T) {
	server := setupTestServer(t)

	resp := server.do(t, http.MethodPost, "/register", "", map[string]string{"name": "ana", "password": "password"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out registerResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "ana", out.Name)
	assert.Equal(t, int64(3), out.ID)

	token := server.login(t, out.ID)
	resp = server.do(t, http.MethodGet, "/balance", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var balance balanceResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&balance))
	assert.Zero(t, balance.Balance)

	resp = server.do(t, http.MethodPost, "/register", "", map[string]string{"name": "ana", "password": "short"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, model.ErrPasswordTooShort.Error(), decodeMessage(t, resp))

	resp = server.do(t, http.MethodPost, "/register", "", map[string]string{"password": "password"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestItemsAPIFlow(t *testing.T) {
	server := setupTestServer(t)

	resp := server.do(t, http.MethodGet, "/items", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var items []model.CatalogItem
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&items))

	// Only on-sale items, newest first.
	var names []string
	for _, it := range items {
		names = append(names, it.Name)
	}
	assert.Equal(t, []string{"Denim jacket", "Camera", "Mug"}, names)
	assert.Equal(t, "Fashion", items[0].CategoryName)

	resp = server.do(t, http.MethodGet, "/items/4", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var item model.Item
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&item))
	assert.Equal(t, "Novel", item.Name)
	assert.Equal(t, model.ItemStatusSoldOut, item.Status)
	assert.Equal(t, server.seed.SellerID, item.UserID)

	resp = server.do(t, http.MethodGet, "/items/999", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "item not found", decodeMessage(t, resp))

	resp = server.do(t, http.MethodGet, "/items/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = server.do(t, http.MethodGet, "/categories", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var categories []model.Category
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&categories))
	assert.Len(t, categories, 4)
}

func TestItemImageRequiresToken(t *testing.T) {
	server := setupTestServer(t)

	resp := server.do(t, http.MethodGet, "/items/1/image", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = server.do(t, http.MethodGet, "/items/1/image", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	token := server.login(t, server.seed.BuyerID)
	resp = server.do(t, http.MethodGet, "/items/1/image", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/jpeg", resp.Header.Get("Content-Type"))

	resp = server.do(t, http.MethodGet, "/items/999/image", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPurchaseFlow(t *testing.T) {
	server := setupTestServer(t)
	buyerToken := server.login(t, server.seed.BuyerID)

	resp := server.do(t, http.MethodPost, "/purchase/2", buyerToken, map[string]int64{"user_id": server.seed.BuyerID})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "successful", out)

	resp = server.do(t, http.MethodGet, "/items/2", "", nil)
	var item model.Item
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&item))
	assert.Equal(t, model.ItemStatusSoldOut, item.Status)

	sellerToken := server.login(t, server.seed.SellerID)
	resp = server.do(t, http.MethodGet, "/balance", sellerToken, nil)
	var balance balanceResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&balance))
	assert.Equal(t, int64(12000), balance.Balance)

	// Buying it again fails the precondition.
	resp = server.do(t, http.MethodPost, "/purchase/2", buyerToken, map[string]int64{"user_id": server.seed.BuyerID})
	assert.Equal(t, http.StatusPreconditionFailed, resp.StatusCode)
	assert.Equal(t, store.ErrNotOnSale.Error(), decodeMessage(t, resp))
}

func TestPurchaseRejections(t *testing.T) {
	server := setupTestServer(t)
	buyerToken := server.login(t, server.seed.BuyerID)
	sellerToken := server.login(t, server.seed.SellerID)

	tests := []struct {
		name   string
		path   string
		token  string
		userID int64
		status int
	}{
		{"no token", "/purchase/1", "", server.seed.BuyerID, http.StatusUnauthorized},
		{"mismatched user", "/purchase/1", buyerToken, server.seed.SellerID, http.StatusForbidden},
		{"own item", "/purchase/1", sellerToken, server.seed.SellerID, http.StatusPreconditionFailed},
		{"sold out", "/purchase/4", buyerToken, server.seed.BuyerID, http.StatusPreconditionFailed},
		{"not listed", "/purchase/5", buyerToken, server.seed.BuyerID, http.StatusPreconditionFailed},
		{"missing item", "/purchase/999", buyerToken, server.seed.BuyerID, http.StatusPreconditionFailed},
		{"invalid id", "/purchase/abc", buyerToken, server.seed.BuyerID, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := server.do(t, http.MethodPost, tt.path, tt.token, map[string]int64{"user_id": tt.userID})
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestPurchaseInsufficientBalance(t *testing.T) {
	server := setupTestServer(t)

	resp := server.do(t, http.MethodPost, "/register", "", map[string]string{"name": "ana", "password": "password"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var user registerResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&user))
	token := server.login(t, user.ID)

	resp = server.do(t, http.MethodPost, "/purchase/1", token, map[string]int64{"user_id": user.ID})
	assert.Equal(t, http.StatusPreconditionFailed, resp.StatusCode)
	assert.Contains(t, decodeMessage(t, resp), "lack of balances")

	resp = server.do(t, http.MethodPost, "/balance", token, map[string]int64{"balance": 500})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = server.do(t, http.MethodPost, "/purchase/1", token, map[string]int64{"user_id": user.ID})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAddBalanceRejectsNegative(t *testing.T) {
	server := setupTestServer(t)
	token := server.login(t, server.seed.BuyerID)

	resp := server.do(t, http.MethodPost, "/balance", token, map[string]int64{"balance": -1})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealthz(t *testing.T) {
	server := setupTestServer(t)

	resp := server.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Content-Type"))
}
