package mw

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// AuthClaims are the JWT claims issued at login and checked here.
type AuthClaims struct {
	UserID uint `json:"user_id"`
	jwt.RegisteredClaims
}

// Auth validates the Authorization bearer token and puts the caller's
// user ID on the request context.
func Auth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if h == "" || !strings.HasPrefix(h, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		tokenStr := strings.TrimPrefix(h, "Bearer ")
		token, err := jwt.ParseWithClaims(tokenStr, &AuthClaims{}, func(t *jwt.Token) (interface{}, error) {
			return []byte(jwtSecret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		claims := token.Claims.(*AuthClaims)
		c.Set("userID", claims.UserID)
		c.Next()
	}
}

// MustUserID returns the authenticated user ID set by Auth.
func MustUserID(c *gin.Context) uint {
	v, _ := c.Get("userID")
	return v.(uint)
}
