package queues

import "github.com/gin-gonic/gin"

// SetupQueueRoutes registers customer and staff queue routes. staff guards every
// operator-only route.
func SetupQueueRoutes(rg *gin.RouterGroup, controller *Controller, staff ...gin.HandlerFunc) {
	guarded := func(h gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, staff...), h)
	}

	queues := rg.Group("/queues")
	{
		queues.POST("/join", controller.Join)        // POST /api/v1/queues/join
		queues.GET("", controller.ListQueues)        // GET /api/v1/queues?code= | ?locationId=
		queues.GET("/:queueId", controller.GetQueue) // GET /api/v1/queues/:queueId

		queues.POST("", guarded(controller.CreateQueue)...)                  // POST /api/v1/queues
		queues.PATCH("/:queueId", guarded(controller.UpdateQueue)...)        // PATCH /api/v1/queues/:queueId
		queues.POST("/:queueId/call-next", guarded(controller.CallNext)...) // POST /api/v1/queues/:queueId/call-next
	}

	entries := rg.Group("/entries")
	{
		entries.GET("/:id", controller.GetEntryStatus)      // GET /api/v1/entries/:id
		entries.POST("/:id/cancel", controller.CancelEntry) // POST /api/v1/entries/:id/cancel

		entries.PATCH("/:id", guarded(controller.OverrideEntryStatus)...)   // PATCH /api/v1/entries/:id
		entries.POST("/:id/complete", guarded(controller.CompleteEntry)...) // POST /api/v1/entries/:id/complete
	}
}
