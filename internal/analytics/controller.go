package analytics

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

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

// GetSummary godoc
// @Summary      Owner analytics dashboard
// @Tags         analytics
// @Produce      json
// @Param        days        query  int     false  "Look-back window in days"  default(7)
// @Param        locationId  query  string  false  "Restrict to one location"
// @Success      200  {object}  response.StandardApiResponse{data=Summary}
// @Failure      404  {object}  response.StandardApiResponse
// @Security     BearerAuth
// @Router       /analytics [get]
func (c *Controller) GetSummary(ctx *gin.Context) {
	userID, err := middleware.CurrentUserID(ctx)
	if err != nil {
		response.RespondError(ctx, apperrors.Unauthorized("Authentication required"))
		return
	}

	days := defaultSummaryDays
	if raw := ctx.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			response.RespondError(ctx, apperrors.Validation("days must be a positive integer"))
			return
		}
		days = parsed
	}

	var locationID *uuid.UUID
	if raw := ctx.Query("locationId"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			response.RespondError(ctx, apperrors.NotFound("Location not found"))
			return
		}
		locationID = &parsed
	}

	summary, err := c.service.GetSummary(ctx.Request.Context(), userID, days, locationID)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Analytics retrieved successfully", summary, nil)
}
