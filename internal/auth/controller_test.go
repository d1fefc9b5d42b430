package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ewait/internal/shared/middleware"
)

type envelope struct {
	Status     string          `json:"status"`
	StatusCode int             `json:"status_code"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
}

func call(t *testing.T, r http.Handler, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

func TestAuthEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc, _, _ := newTestService(t)
	r := gin.New()
	SetupAuthRoutes(r.Group("/api/v1"), NewController(svc), middleware.JWTAuth(testSecret))

	w, env := call(t, r, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"businessName": "Yaba Clinic",
		"email":        "clinic@example.com",
		"password":     "supersecret",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var registered AuthResponse
	require.NoError(t, json.Unmarshal(env.Data, &registered))

	w, _ = call(t, r, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"businessName": "Yaba Clinic",
		"email":        "clinic@example.com",
		"password":     "supersecret",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, env = call(t, r, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "clinic@example.com",
		"password": "supersecret",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var loggedIn AuthResponse
	require.NoError(t, json.Unmarshal(env.Data, &loggedIn))

	w, _ = call(t, r, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "clinic@example.com",
		"password": "nope-nope",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env = call(t, r, http.MethodGet, "/api/v1/auth/me", loggedIn.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me UserResponse
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, registered.User.ID, me.ID)

	w, _ = call(t, r, http.MethodGet, "/api/v1/auth/me", loggedIn.RefreshToken, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env = call(t, r, http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{
		"refreshToken": loggedIn.RefreshToken,
	})
	require.Equal(t, http.StatusOK, w.Code)
	var pair TokenPair
	require.NoError(t, json.Unmarshal(env.Data, &pair))
	assert.NotEmpty(t, pair.AccessToken)

	w, _ = call(t, r, http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
