package payments

import "github.com/gin-gonic/gin"

func SetupPaymentRoutes(rg *gin.RouterGroup, controller *Controller, requireAuth gin.HandlerFunc) {
	payments := rg.Group("/payments")
	{
		payments.POST("/initialize", requireAuth, controller.Initialize)
		payments.GET("/verify", controller.Verify)
		payments.POST("/webhook", controller.Webhook)
	}
}
