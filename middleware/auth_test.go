package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"

	"github.com/LovationAdmin/wedding-api/utils"
)

type staticParser struct{}

func (staticParser) ParseToken(token string) (*utils.AdminClaims, error) {
	if token != "good" {
		return nil, errors.New("invalid token")
	}
	return &utils.AdminClaims{
		Email:            "admin@example.com",
		Role:             "SUPER_ADMIN",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "admin-1"},
	}, nil
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", AuthMiddleware(staticParser{}), func(c *gin.Context) {
		c.String(http.StatusOK, GetAdminID(c)+"|"+GetAdminRole(c))
	})

	tests := []struct {
		name   string
		header string
		query  string
		status int
	}{
		{"bearer header", "Bearer good", "", http.StatusOK},
		{"lowercase scheme", "bearer good", "", http.StatusOK},
		{"query token", "", "?access_token=good", http.StatusOK},
		{"missing", "", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic good", "", http.StatusUnauthorized},
		{"invalid token", "Bearer bad", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, "admin-1|SUPER_ADMIN", w.Body.String())
			}
		})
	}
}
