package payments

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ewait/internal/shared/apperrors"
	"ewait/internal/shared/middleware"
	"ewait/internal/shared/utils/response"
)

const signatureHeader = "x-paystack-signature"

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// Initialize godoc
// @Summary      Start a plan payment
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        request  body  InitializeRequest  true  "Plan"
// @Success      200  {object}  response.StandardApiResponse{data=InitializeResponse}
// @Failure      400  {object}  response.StandardApiResponse
// @Failure      502  {object}  response.StandardApiResponse
// @Security     BearerAuth
// @Router       /payments/initialize [post]
func (c *Controller) Initialize(ctx *gin.Context) {
	userID, err := middleware.CurrentUserID(ctx)
	if err != nil {
		response.RespondError(ctx, apperrors.Unauthorized("User not authenticated"))
		return
	}

	var req InitializeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	result, err := c.service.Initialize(ctx.Request.Context(), userID, req)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Payment initialized", result, nil)
}

// Verify godoc
// @Summary      Verify a payment after the Paystack redirect
// @Tags         payments
// @Produce      json
// @Param        reference  query  string  true  "Payment reference"
// @Success      200  {object}  response.StandardApiResponse{data=VerifyResponse}
// @Failure      400  {object}  response.StandardApiResponse
// @Router       /payments/verify [get]
func (c *Controller) Verify(ctx *gin.Context) {
	result, err := c.service.Verify(ctx.Request.Context(), ctx.Query("reference"))
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Payment verified", result, nil)
}

// Webhook godoc
// @Summary      Paystack webhook
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        x-paystack-signature  header  string  true  "HMAC-SHA512 of the body"
// @Success      200  {object}  response.StandardApiResponse{data=WebhookResponse}
// @Failure      400  {object}  response.StandardApiResponse
// @Router       /payments/webhook [post]
func (c *Controller) Webhook(ctx *gin.Context) {
	body, err := ctx.GetRawData()
	if err != nil {
		response.RespondError(ctx, apperrors.Validation("Invalid webhook payload"))
		return
	}

	if err := c.service.HandleWebhook(ctx.Request.Context(), body, ctx.GetHeader(signatureHeader)); err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Webhook received", WebhookResponse{Received: true}, nil)
}
