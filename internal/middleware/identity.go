package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/sigmadevelopers/portfolio/internal/repository"
)

const identityHeader = "user-id"

// Identity resolves the optional user-id header into the current user. An
// absent or unknown id leaves the request anonymous; it never aborts, the
// handlers decide which operations need an identity.
func Identity(users *repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader(identityHeader)
		if userID == "" {
			c.Next()
			return
		}

		user, err := users.GetByID(c.Request.Context(), userID)
		if err != nil {
			c.Next()
			return
		}

		c.Set("current_user", user)
		c.Next()
	}
}
