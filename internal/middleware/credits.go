package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/yourusername/cvstudio-api/internal/repository"
)

// RequireCredits returns middleware that rejects requests from users whose
// balance cannot cover `cost`. It only checks; the handler performs the
// actual atomic deduction after its preconditions pass, so a rejected fill
// never costs anything.
func RequireCredits(cost int, userRepo *repository.UserRepo) gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDStr := GetUserID(c)
		if userIDStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}

		userID, err := uuid.Parse(userIDStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
			return
		}

		user, err := userRepo.FindByID(c.Request.Context(), userID)
		if err != nil {
			log.Error().Err(err).Msg("Failed to check credit balance")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to check credit balance"})
			return
		}
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unknown user"})
			return
		}

		if user.Credits() < cost {
			c.AbortWithStatusJSON(http.StatusPaymentRequired, gin.H{
				"error":    "insufficient_credits",
				"required": cost,
				"balance":  user.Credits(),
			})
			return
		}

		c.Next()
	}
}
