package locations

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ewait/internal/shared/middleware"
)

func asUser(id uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, id.String())
		c.Next()
	}
}

func serveJSON(t *testing.T, r http.Handler, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]json.RawMessage) {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

func TestLocationEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc, _, _ := newTestService(t)
	owner := uuid.New()

	r := gin.New()
	SetupLocationRoutes(r.Group("/api/v1"), NewController(svc), asUser(owner))

	w, env := serveJSON(t, r, http.MethodPost, "/api/v1/locations", map[string]string{"name": "Yaba"})
	require.Equal(t, http.StatusCreated, w.Code)
	var created LocationResponse
	require.NoError(t, json.Unmarshal(env["data"], &created))
	assert.Equal(t, "Yaba", created.Name)
	assert.Len(t, created.Queues, 1)

	w, env = serveJSON(t, r, http.MethodGet, "/api/v1/locations", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []LocationResponse
	require.NoError(t, json.Unmarshal(env["data"], &list))
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)

	w, _ = serveJSON(t, r, http.MethodPost, "/api/v1/locations", map[string]string{"name": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLocationEndpointsRequireUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc, _, _ := newTestService(t)

	r := gin.New()
	SetupLocationRoutes(r.Group("/api/v1"), NewController(svc))

	w, _ := serveJSON(t, r, http.MethodGet, "/api/v1/locations", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
