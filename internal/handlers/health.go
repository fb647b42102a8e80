package handlers

import (
	"net/http"

	"github.com/JonnyWalker81/moodtrack/backend/internal/apierror"
	"github.com/gin-gonic/gin"
)

// Health reports liveness together with the environment and store driver
func Health(env, driver string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"env":    env,
			"store":  driver,
		})
	}
}

// NotFound writes a problem response for unknown routes
func NotFound(c *gin.Context) {
	apierror.WriteProblem(c, apierror.NewNotFoundError(apierror.GetRequestID(c), "Route "+c.Request.URL.Path))
}
