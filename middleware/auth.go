package middleware

import (
	"net/http"
	"strings"

	"pizza-backend/models"
	"pizza-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// resolveUser validates the bearer token and resolves it to a live user.
// The token must both carry a valid signature and still have a session row;
// logout deletes the row, which revokes the token for every later request.
func resolveUser(db *gorm.DB, c *gin.Context) (*models.User, string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, "", false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, "", false
	}

	token := parts[1]
	claims, err := utils.ValidateToken(token)
	if err != nil {
		return nil, "", false
	}

	var session models.Session
	if err := db.Where("token = ?", token).First(&session).Error; err != nil {
		return nil, "", false
	}

	var user models.User
	if err := db.Preload("Roles").Where("id = ?", claims.UserID).First(&user).Error; err != nil {
		return nil, "", false
	}

	return &user, token, true
}

func AuthMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, token, ok := resolveUser(db, c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
			c.Abort()
			return
		}

		c.Set("user", user)
		c.Set("user_id", user.ID)
		c.Set("token", token)
		c.Next()
	}
}

// OptionalAuthMiddleware resolves the caller when a valid token is attached
// and lets the request through anonymously otherwise. Used on endpoints whose
// response shape depends on the caller's role, like the franchise list.
func OptionalAuthMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if user, token, ok := resolveUser(db, c); ok {
			c.Set("user", user)
			c.Set("user_id", user.ID)
			c.Set("token", token)
		}
		c.Next()
	}
}

func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok || !user.IsAdmin() {
			c.JSON(http.StatusForbidden, gin.H{"message": "admin access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user set by the auth middleware.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, exists := c.Get("user")
	if !exists {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}
