package server

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// NewRouter registers every route under apiPath, e.g. "/api/"
func NewRouter(h *Handlers, apiPath string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), requestLogger())

	api := router.Group(strings.TrimSuffix(apiPath, "/"))
	{
		api.GET("/ping", h.Ping)
		api.GET("/statistics/user", h.UserStatistics)

		api.GET("/categories", h.Categories)
		api.GET("/categories/:key", h.Category)

		api.GET("/discover/lists", h.ReviewLists)
		api.GET("/discover/lists/:id", h.ReviewList)
	}

	return router
}

// RequestID tags each request with the caller's X-Request-ID or a new one
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func requestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.WithFields(log.Fields{
			"request_id": requestID(c),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency":    time.Since(start).Round(time.Microsecond),
		}).Debug("request")
	}
}
