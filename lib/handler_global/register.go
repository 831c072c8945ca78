package handler_global

import (
	"github.com/fragforce/campusevents/lib/handlers"
	"github.com/fragforce/campusevents/lib/metrics"
	"github.com/gin-gonic/gin"
)

//RegisterGlobalHandlers adds the routes that don't need a browser
func RegisterGlobalHandlers(r *gin.Engine) {
	r.GET("/", handlers.GetHealth)
	r.GET("/api/health", handlers.GetHealth)

	r.GET("/metrics", gin.WrapH(metrics.Handler()))
}
