package auth

import (
	"net/http"

	"gamestore/backend/internal/database"
	"gamestore/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// ContextUser holds the loaded user record once RoleMiddleware has run.
const ContextUser = "user"

// RoleMiddleware allows only users holding one of roles.
// It must be used AFTER AuthMiddleware.
func RoleMiddleware(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := UserID(c)
		if userID == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}

		var user models.User
		if err := database.DB.WithContext(c.Request.Context()).First(&user, userID).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Authenticated user not found"})
			return
		}

		for _, role := range roles {
			if user.Role == role {
				c.Set(ContextUser, user)
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient role"})
	}
}

// AdminMiddleware allows only admins.
func AdminMiddleware() gin.HandlerFunc {
	return RoleMiddleware(models.RoleAdmin)
}

// DeveloperMiddleware allows developers and admins.
func DeveloperMiddleware() gin.HandlerFunc {
	return RoleMiddleware(models.RoleDeveloper, models.RoleAdmin)
}

// CurrentUser returns the user loaded by RoleMiddleware.
func CurrentUser(c *gin.Context) (models.User, bool) {
	v, ok := c.Get(ContextUser)
	if !ok {
		return models.User{}, false
	}
	user, ok := v.(models.User)
	return user, ok
}
