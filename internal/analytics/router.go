package analytics

import "github.com/gin-gonic/gin"

func SetupAnalyticsRoutes(rg *gin.RouterGroup, controller *Controller, requireAuth gin.HandlerFunc) {
	analytics := rg.Group("/analytics")
	analytics.Use(requireAuth)
	{
		analytics.GET("", controller.GetSummary) // GET /api/v1/analytics?days=7&locationId=
	}
}
