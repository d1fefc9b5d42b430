package locations

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ewait/internal/shared/apperrors"
	"ewait/internal/shared/middleware"
	"ewait/internal/shared/utils/response"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// ListLocations godoc
// @Summary      List the caller's locations with queues
// @Tags         locations
// @Produce      json
// @Success      200  {object}  response.StandardApiResponse{data=[]LocationResponse}
// @Security     BearerAuth
// @Router       /locations [get]
func (c *Controller) ListLocations(ctx *gin.Context) {
	ownerID, err := middleware.CurrentUserID(ctx)
	if err != nil {
		response.RespondError(ctx, apperrors.Unauthorized("Authentication required"))
		return
	}

	locations, err := c.service.ListLocations(ctx.Request.Context(), ownerID)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Locations retrieved successfully", locations, nil)
}

// CreateLocation godoc
// @Summary      Create a location
// @Tags         locations
// @Accept       json
// @Produce      json
// @Param        request  body  CreateLocationRequest  true  "Location"
// @Success      201  {object}  response.StandardApiResponse{data=LocationResponse}
// @Security     BearerAuth
// @Router       /locations [post]
func (c *Controller) CreateLocation(ctx *gin.Context) {
	ownerID, err := middleware.CurrentUserID(ctx)
	if err != nil {
		response.RespondError(ctx, apperrors.Unauthorized("Authentication required"))
		return
	}

	var req CreateLocationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	location, err := c.service.CreateLocation(ctx.Request.Context(), ownerID, req)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Location created successfully", location, nil)
}
