package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/LovationAdmin/wedding-api/utils"
)

// RequestLogger logs every request once it completes. Query strings carrying
// RSVP tokens are masked.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path += "?" + raw
		}
		utils.LogAPIRequest(c.Request.Method, path, GetAdminID(c), c.Writer.Status(), time.Since(start).String())
	}
}
