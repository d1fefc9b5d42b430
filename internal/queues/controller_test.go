package queues

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Status     string          `json:"status"`
	StatusCode int             `json:"status_code"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	Errors     interface{}     `json:"errors"`
}

func newTestRouter(f *queueFixture, staff ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	SetupQueueRoutes(r.Group("/api/v1"), NewController(f.svc), staff...)
	return r
}

func doRequest(t *testing.T, r http.Handler, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

func TestJoinEndpoint(t *testing.T) {
	f := newQueueFixture(t, time.Second)
	q := f.createQueue(t, "Main Queue", 5, true)
	r := newTestRouter(f)

	w, env := doRequest(t, r, http.MethodPost, "/api/v1/queues/join", map[string]interface{}{
		"queueId": q.ID.String(),
		"name":    "Alice",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "success", env.Status)

	var joined JoinResponse
	require.NoError(t, json.Unmarshal(env.Data, &joined))
	assert.Equal(t, 1, joined.TicketNumber)
	assert.Equal(t, 1, joined.Position)
	assert.Equal(t, "Ikeja Branch", joined.LocationName)

	w, env = doRequest(t, r, http.MethodGet, "/api/v1/entries/"+joined.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var status EntryStatusResponse
	require.NoError(t, json.Unmarshal(env.Data, &status))
	assert.Equal(t, StatusWaiting, status.Status)
	assert.Equal(t, joined.Position, status.Position)
}

func TestJoinEndpointErrors(t *testing.T) {
	f := newQueueFixture(t, time.Second)
	closed := f.createQueue(t, "Closed", 5, false)
	r := newTestRouter(f)

	w, env := doRequest(t, r, http.MethodPost, "/api/v1/queues/join", map[string]interface{}{"queueId": uuid.NewString()})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Queue not found", env.Message)

	w, env = doRequest(t, r, http.MethodPost, "/api/v1/queues/join", map[string]interface{}{"queueId": closed.ID.String()})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Queue is not accepting entries", env.Message)

	w, _ = doRequest(t, r, http.MethodPost, "/api/v1/queues/join", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doRequest(t, r, http.MethodGet, "/api/v1/entries/not-a-uuid", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCallNextEndpoint(t *testing.T) {
	f := newQueueFixture(t, time.Second)
	q := f.createQueue(t, "Main Queue", 5, true)
	r := newTestRouter(f)

	w, env := doRequest(t, r, http.MethodPost, "/api/v1/queues/"+q.ID.String()+"/call-next", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, MessageNoneWaiting, env.Message)
	var empty map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &empty))
	assert.Nil(t, empty["entry"])
	assert.Equal(t, float64(0), empty["waitingCount"])

	joined := f.join(t, q, "Alice", "")
	w, env = doRequest(t, r, http.MethodPost, "/api/v1/queues/"+q.ID.String()+"/call-next", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, MessageCalledNext, env.Message)

	var result CallNextResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	require.NotNil(t, result.Entry)
	assert.Equal(t, joined.ID, result.Entry.ID)
	assert.Equal(t, StatusCalled, result.Entry.Status)

	w, _ = doRequest(t, r, http.MethodPost, "/api/v1/queues/"+uuid.NewString()+"/call-next", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStaffRoutesAreGuarded(t *testing.T) {
	f := newQueueFixture(t, time.Second)
	q := f.createQueue(t, "Main Queue", 5, true)
	joined := f.join(t, q, "Alice", "")

	deny := func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "error", "status_code": http.StatusUnauthorized})
	}
	r := newTestRouter(f, deny)

	w, _ := doRequest(t, r, http.MethodPost, "/api/v1/queues/"+q.ID.String()+"/call-next", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = doRequest(t, r, http.MethodPatch, "/api/v1/entries/"+joined.ID.String(), map[string]string{"status": "CALLED"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// customers can still poll and leave
	w, _ = doRequest(t, r, http.MethodGet, "/api/v1/entries/"+joined.ID.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = doRequest(t, r, http.MethodPost, "/api/v1/entries/"+joined.ID.String()+"/cancel", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestOverrideAndBoardEndpoints(t *testing.T) {
	f := newQueueFixture(t, time.Second)
	q := f.createQueue(t, "Main Queue", 5, true)
	joined := f.join(t, q, "Alice", "")
	r := newTestRouter(f)

	w, env := doRequest(t, r, http.MethodPatch, "/api/v1/entries/"+joined.ID.String(), map[string]string{"status": "BOGUS"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Errors)

	w, _ = doRequest(t, r, http.MethodPatch, "/api/v1/entries/"+joined.ID.String(), map[string]string{"status": "SERVING"})
	require.Equal(t, http.StatusOK, w.Code)

	w, env = doRequest(t, r, http.MethodGet, "/api/v1/queues/"+q.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var board QueueBoard
	require.NoError(t, json.Unmarshal(env.Data, &board))
	require.NotNil(t, board.CalledEntry)
	assert.Equal(t, StatusServing, board.CalledEntry.Status)
	assert.Equal(t, 0, board.WaitingCount)

	w, _ = doRequest(t, r, http.MethodPost, "/api/v1/entries/"+joined.ID.String()+"/complete", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, env = doRequest(t, r, http.MethodPost, "/api/v1/entries/"+joined.ID.String()+"/cancel", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_STATE", env.Errors)
}

func TestListQueuesEndpoint(t *testing.T) {
	f := newQueueFixture(t, time.Second)
	q := f.createQueue(t, "Main Queue", 5, true)
	r := newTestRouter(f)

	w, env := doRequest(t, r, http.MethodGet, "/api/v1/queues?code="+q.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var summary QueueSummary
	require.NoError(t, json.Unmarshal(env.Data, &summary))
	assert.Equal(t, q.ID, summary.ID)

	w, env = doRequest(t, r, http.MethodGet, "/api/v1/queues?locationId="+f.location.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []QueueSummary
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list, 1)

	w, _ = doRequest(t, r, http.MethodGet, "/api/v1/queues", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = doRequest(t, r, http.MethodPost, "/api/v1/queues", map[string]interface{}{
		"name": "Returns", "locationId": f.location.String(), "avgServiceTime": 3,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created Queue
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, 3, created.AvgServiceTime)
}
