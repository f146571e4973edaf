package transport

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dkoshelev/restobook/internal/notify"
	"github.com/dkoshelev/restobook/internal/transport/middleware"
)

func InitRoutes(tableHandler *TableHandler, reservationHandler *ReservationHandler, hub *notify.Hub, logger *zap.Logger) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))

	api := router.Group("/api/v1")
	{
		tables := api.Group("/tables")
		{
			tables.POST("", tableHandler.Create)
			tables.GET("", tableHandler.List)
			tables.GET("/availability", tableHandler.FindAvailable)
			tables.PATCH("/:id/status", tableHandler.UpdateStatus)
			tables.GET("/:id/reservations", reservationHandler.ListForTable)
		}

		reservations := api.Group("/reservations")
		{
			reservations.POST("", reservationHandler.Create)
			reservations.GET("/:id", reservationHandler.Get)
			reservations.PATCH("/:id", reservationHandler.Reschedule)
			reservations.POST("/:id/confirm", reservationHandler.Confirm)
			reservations.POST("/:id/cancel", reservationHandler.Cancel)
		}
	}

	if hub != nil {
		router.GET("/ws/updates", func(c *gin.Context) {
			hub.Serve(c.Writer, c.Request)
		})
	}

	return router
}
