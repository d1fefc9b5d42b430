package queues

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"ewait/internal/shared/apperrors"
	"ewait/internal/shared/utils/response"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// Join godoc
// @Summary      Join a queue
// @Tags         queues
// @Accept       json
// @Produce      json
// @Param        request  body  JoinQueueRequest  true  "Join request"
// @Success      201  {object}  response.StandardApiResponse{data=JoinResponse}
// @Failure      400  {object}  response.StandardApiResponse
// @Failure      404  {object}  response.StandardApiResponse
// @Router       /queues/join [post]
func (c *Controller) Join(ctx *gin.Context) {
	var req JoinQueueRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	result, err := c.service.Join(ctx.Request.Context(), req)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Joined queue successfully", result, nil)
}

// GetEntryStatus godoc
// @Summary      Poll a ticket
// @Tags         entries
// @Produce      json
// @Param        id  path  string  true  "Entry ID"
// @Success      200  {object}  response.StandardApiResponse{data=EntryStatusResponse}
// @Failure      404  {object}  response.StandardApiResponse
// @Router       /entries/{id} [get]
func (c *Controller) GetEntryStatus(ctx *gin.Context) {
	entryID, ok := parseID(ctx, "id", "Entry not found")
	if !ok {
		return
	}

	status, err := c.service.GetStatus(ctx.Request.Context(), entryID)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Entry retrieved successfully", status, nil)
}

// OverrideEntryStatus godoc
// @Summary      Set an entry's status directly
// @Tags         entries
// @Accept       json
// @Produce      json
// @Param        id       path  string                    true  "Entry ID"
// @Param        request  body  UpdateEntryStatusRequest  true  "New status"
// @Success      200  {object}  response.StandardApiResponse{data=Entry}
// @Security     BearerAuth
// @Router       /entries/{id} [patch]
func (c *Controller) OverrideEntryStatus(ctx *gin.Context) {
	entryID, ok := parseID(ctx, "id", "Entry not found")
	if !ok {
		return
	}

	var req UpdateEntryStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	entry, err := c.service.OverrideStatus(ctx.Request.Context(), entryID, req.Status)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Entry status updated", entry, nil)
}

// CancelEntry godoc
// @Summary      Leave the queue
// @Tags         entries
// @Produce      json
// @Param        id  path  string  true  "Entry ID"
// @Success      200  {object}  response.StandardApiResponse{data=Entry}
// @Failure      400  {object}  response.StandardApiResponse
// @Router       /entries/{id}/cancel [post]
func (c *Controller) CancelEntry(ctx *gin.Context) {
	c.transition(ctx, ActionCancel, "Left the queue")
}

// CompleteEntry godoc
// @Summary      Mark a called entry as served
// @Tags         entries
// @Produce      json
// @Param        id  path  string  true  "Entry ID"
// @Success      200  {object}  response.StandardApiResponse{data=Entry}
// @Security     BearerAuth
// @Router       /entries/{id}/complete [post]
func (c *Controller) CompleteEntry(ctx *gin.Context) {
	c.transition(ctx, ActionComplete, "Entry completed")
}

func (c *Controller) transition(ctx *gin.Context, action Action, message string) {
	entryID, ok := parseID(ctx, "id", "Entry not found")
	if !ok {
		return
	}

	entry, err := c.service.Transition(ctx.Request.Context(), entryID, action)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, message, entry, nil)
}

// CallNext godoc
// @Summary      Call the next customer
// @Tags         queues
// @Produce      json
// @Param        queueId  path  string  true  "Queue ID"
// @Success      200  {object}  response.StandardApiResponse{data=CallNextResult}
// @Failure      404  {object}  response.StandardApiResponse
// @Security     BearerAuth
// @Router       /queues/{queueId}/call-next [post]
func (c *Controller) CallNext(ctx *gin.Context) {
	queueID, ok := parseID(ctx, "queueId", "Queue not found")
	if !ok {
		return
	}

	result, err := c.service.CallNext(ctx.Request.Context(), queueID)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, result.Message, result, nil)
}

// GetQueue godoc
// @Summary      Queue board with active entries
// @Tags         queues
// @Produce      json
// @Param        queueId  path  string  true  "Queue ID"
// @Success      200  {object}  response.StandardApiResponse{data=QueueBoard}
// @Failure      404  {object}  response.StandardApiResponse
// @Router       /queues/{queueId} [get]
func (c *Controller) GetQueue(ctx *gin.Context) {
	queueID, ok := parseID(ctx, "queueId", "Queue not found")
	if !ok {
		return
	}

	board, err := c.service.GetQueue(ctx.Request.Context(), queueID)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Queue retrieved successfully", board, nil)
}

// ListQueues godoc
// @Summary      Find a queue by code or list a location's queues
// @Tags         queues
// @Produce      json
// @Param        code        query  string  false  "Queue code"
// @Param        locationId  query  string  false  "Location ID"
// @Success      200  {object}  response.StandardApiResponse
// @Router       /queues [get]
func (c *Controller) ListQueues(ctx *gin.Context) {
	if code := ctx.Query("code"); code != "" {
		queue, err := c.service.GetQueueByCode(ctx.Request.Context(), code)
		if err != nil {
			response.RespondError(ctx, err)
			return
		}
		response.RespondJSON(ctx, "success", http.StatusOK, "Queue retrieved successfully", queue, nil)
		return
	}

	raw := ctx.Query("locationId")
	if raw == "" {
		response.RespondError(ctx, apperrors.Validation("code or locationId is required"))
		return
	}
	locationID, err := uuid.Parse(raw)
	if err != nil {
		response.RespondError(ctx, apperrors.NotFound("Location not found"))
		return
	}

	queues, err := c.service.ListByLocation(ctx.Request.Context(), locationID)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Queues retrieved successfully", queues, nil)
}

// CreateQueue godoc
// @Summary      Create a queue
// @Tags         queues
// @Accept       json
// @Produce      json
// @Param        request  body  CreateQueueRequest  true  "Queue"
// @Success      201  {object}  response.StandardApiResponse{data=Queue}
// @Security     BearerAuth
// @Router       /queues [post]
func (c *Controller) CreateQueue(ctx *gin.Context) {
	var req CreateQueueRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	queue, err := c.service.CreateQueue(ctx.Request.Context(), req)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Queue created successfully", queue, nil)
}

// UpdateQueue godoc
// @Summary      Update queue settings
// @Tags         queues
// @Accept       json
// @Produce      json
// @Param        queueId  path  string              true  "Queue ID"
// @Param        request  body  UpdateQueueRequest  true  "Fields to change"
// @Success      200  {object}  response.StandardApiResponse{data=Queue}
// @Security     BearerAuth
// @Router       /queues/{queueId} [patch]
func (c *Controller) UpdateQueue(ctx *gin.Context) {
	queueID, ok := parseID(ctx, "queueId", "Queue not found")
	if !ok {
		return
	}

	var req UpdateQueueRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	queue, err := c.service.UpdateQueue(ctx.Request.Context(), queueID, req)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Queue updated successfully", queue, nil)
}

// parseID reads a uuid path parameter. A malformed id cannot exist, so it is a 404.
func parseID(ctx *gin.Context, param, notFound string) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Param(param))
	if err != nil {
		response.RespondError(ctx, apperrors.NotFound(notFound))
		return uuid.Nil, false
	}
	return id, true
}
