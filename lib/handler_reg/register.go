package handler_reg

import (
	"github.com/fragforce/campusevents/lib/handlers"
	"github.com/gin-gonic/gin"
)

func RegisterHandlers(r *gin.Engine, events *handlers.Events) {
	r.GET("/api/events", events.Get)
}
