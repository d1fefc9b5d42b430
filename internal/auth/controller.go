package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ewait/internal/shared/apperrors"
	"ewait/internal/shared/middleware"
	"ewait/internal/shared/utils/response"
	"ewait/pkg/logger"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// Register godoc
// @Summary      Register a business
// @Description  Creates the owner account, a location and its default queue
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body  RegisterRequest  true  "Registration"
// @Success      201  {object}  response.StandardApiResponse{data=AuthResponse}
// @Failure      409  {object}  response.StandardApiResponse
// @Router       /auth/register [post]
func (c *Controller) Register(ctx *gin.Context) {
	var req RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	resp, err := c.service.Register(ctx.Request.Context(), &req)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Registration successful", resp, nil)
}

// Login godoc
// @Summary      Log in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body  LoginRequest  true  "Credentials"
// @Success      200  {object}  response.StandardApiResponse{data=AuthResponse}
// @Failure      401  {object}  response.StandardApiResponse
// @Router       /auth/login [post]
func (c *Controller) Login(ctx *gin.Context) {
	var req LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	resp, err := c.service.Login(ctx.Request.Context(), &req)
	if err != nil {
		if apperrors.Is(err, apperrors.KindUnauthorized) {
			logger.GetDefault().LogAuthFailure(ctx.Request.Context(), "invalid credentials", ctx.ClientIP())
		}
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Login successful", resp, nil)
}

// RefreshToken godoc
// @Summary      Exchange a refresh token for a new pair
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body  RefreshTokenRequest  true  "Refresh token"
// @Success      200  {object}  response.StandardApiResponse{data=TokenPair}
// @Router       /auth/refresh [post]
func (c *Controller) RefreshToken(ctx *gin.Context) {
	var req RefreshTokenRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}
	if req.RefreshToken == "" {
		response.RespondError(ctx, apperrors.Validation("refreshToken is required"))
		return
	}

	pair, err := c.service.RefreshToken(ctx.Request.Context(), req.RefreshToken)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Token refreshed successfully", pair, nil)
}

// GetMe godoc
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.StandardApiResponse{data=UserResponse}
// @Security     BearerAuth
// @Router       /auth/me [get]
func (c *Controller) GetMe(ctx *gin.Context) {
	userID, err := middleware.CurrentUserID(ctx)
	if err != nil {
		response.RespondError(ctx, apperrors.Unauthorized("User not authenticated"))
		return
	}

	user, err := c.service.Me(ctx.Request.Context(), userID)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "User data retrieved successfully", user, nil)
}
