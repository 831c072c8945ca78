package handlers

import (
	"net/http"
	"time"

	"github.com/fragforce/campusevents/lib/df"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	RequestIDHeader = "X-Request-ID"
	RequestIDKey    = "request.id"
)

//CORS opens every route to every origin and answers preflights itself
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, "+RequestIDHeader)
		h.Set("Access-Control-Expose-Headers", RequestIDHeader)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

//RequestID tags the request with an id, reusing the caller's when it sent one
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(RequestIDKey, id)
		c.Writer.Header().Set(RequestIDHeader, id)
		c.Next()
	}
}

func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log := df.Log.WithFields(logrus.Fields{
			"request.id":     c.GetString(RequestIDKey),
			"request.method": c.Request.Method,
			"request.path":   c.Request.URL.Path,
			"request.status": c.Writer.Status(),
			"request.took":   time.Since(start),
		})
		if len(c.Errors) > 0 {
			log = log.WithField("request.errors", c.Errors.String())
		}
		log.Debug("Handled request")
	}
}

//NewEngine creates the gin engine with the middleware every route gets
func NewEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), CORS(), RequestLogger())
	return r
}
