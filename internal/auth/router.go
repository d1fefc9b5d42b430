package auth

import "github.com/gin-gonic/gin"

// SetupAuthRoutes registers the public auth endpoints and /auth/me behind requireAuth
func SetupAuthRoutes(rg *gin.RouterGroup, controller *Controller, requireAuth gin.HandlerFunc) {
	auth := rg.Group("/auth")
	{
		auth.POST("/register", controller.Register)
		auth.POST("/login", controller.Login)
		auth.POST("/refresh", controller.RefreshToken)

		auth.GET("/me", requireAuth, controller.GetMe)
	}
}
