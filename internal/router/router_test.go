package router

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"basket-backend/internal/app"
	"basket-backend/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const chainBody = `{
	"id": "sepolia",
	"network": "ethereum-sepolia",
	"chain_id": 11155111,
	"rpc_endpoint": "https://rpc.sepolia.example",
	"native_currency": {"name": "Ether", "symbol": "ETH", "decimals": 18}
}`

func setupTestRouter(t *testing.T, apiKey string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	cfg := &config.Config{}
	cfg.Server.APIKey = apiKey
	cfg.Backup.Dir = t.TempDir()
	cfg.Tokens.DefaultDecimals = 18

	container, err := app.NewContainer(context.Background(), cfg, nil, logger)
	require.NoError(t, err)
	t.Cleanup(container.Cleanup)

	return SetupRouter(cfg, container, logger)
}

func do(r *gin.Engine, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouter_Ping(t *testing.T) {
	r := setupTestRouter(t, "")
	w := do(r, http.MethodGet, "/ping", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "pong")
}

func TestRouter_MutationsRequireAPIKey(t *testing.T) {
	r := setupTestRouter(t, "secret")

	w := do(r, http.MethodPost, "/api/chains", chainBody, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodPost, "/api/chains", chainBody, map[string]string{"X-API-Key": "wrong"})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodPost, "/api/chains", chainBody, map[string]string{"X-API-Key": "secret"})
	require.Equal(t, http.StatusCreated, w.Code)

	// reads stay open
	w = do(r, http.MethodGet, "/api/chains/sepolia", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_ErrorStatusMapping(t *testing.T) {
	r := setupTestRouter(t, "")

	// malformed body -> 400
	w := do(r, http.MethodPost, "/api/chains", `{"id": "x"}`, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	// unknown entity -> 404
	w = do(r, http.MethodGet, "/api/chains/missing", "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	// duplicate -> 409
	w = do(r, http.MethodPost, "/api/chains", chainBody, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	w = do(r, http.MethodPost, "/api/chains", chainBody, nil)
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestRouter_BasketLifecycle(t *testing.T) {
	r := setupTestRouter(t, "")

	w := do(r, http.MethodPost, "/api/assets", `{
		"id": "USDA", "type": "monetary", "name": "USD A", "symbol": "USDA",
		"contract_address": "0x742d35Cc6634C0532925a3b844Bc454e4438f44e"
	}`, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(r, http.MethodPost, "/api/baskets", `{
		"id": "solo", "name": "Solo", "symbol": "SOLO",
		"assets": [{"asset_id": "USDA", "weight": 100}]
	}`, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(r, http.MethodPost, "/api/baskets/solo/expand", `{"amount": "1000"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"1000"`)

	// weights not summing to 100 -> 400 naming the sum
	w = do(r, http.MethodPost, "/api/baskets", `{
		"id": "bad", "name": "Bad", "symbol": "BAD",
		"assets": [{"asset_id": "USDA", "weight": 55}]
	}`, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "55")
}

func TestRouter_AdminLoginMisconfigured(t *testing.T) {
	r := setupTestRouter(t, "")
	w := do(r, http.MethodPost, "/api/admin/login", `{"username": "admin", "password": "pw"}`, nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)

	// operator endpoints reject anonymous callers
	w = do(r, http.MethodGet, "/api/admin/whoami", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_AdminStatsAndBackup(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.Backup.Dir = t.TempDir()
	cfg.Tokens.DefaultDecimals = 18
	cfg.Admin.Username = "ops"
	cfg.Admin.PasswordHash = string(hash)
	cfg.Admin.JWTSecret = "test-secret"

	container, err := app.NewContainer(context.Background(), cfg, nil, logger)
	require.NoError(t, err)
	t.Cleanup(container.Cleanup)
	r := SetupRouter(cfg, container, logger)

	// operator endpoints reject anonymous callers
	w := do(r, http.MethodGet, "/api/admin/stats", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodPost, "/api/admin/login", `{"username": "ops", "password": "hunter2"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	require.NotEmpty(t, login.Token)
	auth := map[string]string{"Authorization": "Bearer " + login.Token}

	w = do(r, http.MethodPost, "/api/chains", chainBody, auth)
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(r, http.MethodGet, "/api/admin/stats", "", auth)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"chains":1`)

	w = do(r, http.MethodPost, "/api/admin/backup/run", "", auth)
	require.Equal(t, http.StatusAccepted, w.Code)
}

func TestRouter_MultiChainStats(t *testing.T) {
	r := setupTestRouter(t, "")
	w := do(r, http.MethodGet, "/api/multichain/stats", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"total_completed_amount":"0"`)
}
