package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/LovationAdmin/wedding-api/utils"
)

const (
	adminIDKey    = "admin_id"
	adminEmailKey = "admin_email"
	adminRoleKey  = "admin_role"
)

// TokenParser validates an admin access token
type TokenParser interface {
	ParseToken(token string) (*utils.AdminClaims, error)
}

// AuthMiddleware requires a bearer JWT. Browsers cannot set headers on a
// websocket handshake, so an access_token query parameter is accepted too.
func AuthMiddleware(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ""
		if header := c.GetHeader("Authorization"); header != "" {
			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header"})
				return
			}
			token = strings.TrimSpace(parts[1])
		} else {
			token = c.Query("access_token")
		}

		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization required"})
			return
		}

		claims, err := parser.ParseToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(adminIDKey, claims.Subject)
		c.Set(adminEmailKey, claims.Email)
		c.Set(adminRoleKey, claims.Role)
		c.Next()
	}
}

func GetAdminID(c *gin.Context) string {
	return c.GetString(adminIDKey)
}

func GetAdminRole(c *gin.Context) string {
	return c.GetString(adminRoleKey)
}
