package locations

import "github.com/gin-gonic/gin"

func SetupLocationRoutes(rg *gin.RouterGroup, controller *Controller, staff ...gin.HandlerFunc) {
	locations := rg.Group("/locations")
	locations.Use(staff...)
	{
		locations.GET("", controller.ListLocations)   // GET /api/v1/locations
		locations.POST("", controller.CreateLocation) // POST /api/v1/locations
	}
}
