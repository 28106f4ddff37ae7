package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/yourusername/cvstudio-api/internal/middleware"
	"github.com/yourusername/cvstudio-api/internal/model"
	"github.com/yourusername/cvstudio-api/internal/repository"
)

type AuthHandler struct {
	userRepo *repository.UserRepo
}

func NewAuthHandler(userRepo *repository.UserRepo) *AuthHandler {
	return &AuthHandler{userRepo: userRepo}
}

// CreateSession handles POST /api/auth/session.
// Creates or fetches the user row behind the verified Firebase token; new
// accounts start with the free credit grant.
func (h *AuthHandler) CreateSession(c *gin.Context) {
	firebaseUID := middleware.GetFirebaseUID(c)
	if firebaseUID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	email, _ := c.Get("email")
	emailStr, _ := email.(string)

	user, err := h.userRepo.FindByFirebaseUID(c.Request.Context(), firebaseUID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to look up user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}

	if user == nil {
		var req struct {
			Name string `json:"name"`
		}
		c.ShouldBindJSON(&req)

		user, err = h.userRepo.Create(c.Request.Context(), firebaseUID, emailStr, req.Name)
		if err != nil {
			log.Error().Err(err).Msg("Failed to create user")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
			return
		}
		log.Info().Str("uid", firebaseUID).Msg("New user created")
	}

	c.JSON(http.StatusOK, user)
}

// UpdateAPIKey handles PUT /api/auth/api-key.
// Stores a bring-your-own provider key used instead of the platform default.
func (h *AuthHandler) UpdateAPIKey(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var req struct {
		APIKey   string `json:"apiKey" binding:"required"`
		Provider string `json:"provider" binding:"required"`
		Model    string `json:"model"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.userRepo.UpdateAPIKey(c.Request.Context(), userID, req.APIKey, req.Provider, req.Model); err != nil {
		log.Error().Err(err).Msg("Failed to update API key")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update API key"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"provider": req.Provider, "model": req.Model})
}

// getUserID extracts and parses the user UUID from context
func getUserID(c *gin.Context) (uuid.UUID, error) {
	idStr := middleware.GetUserID(c)
	return uuid.Parse(idStr)
}

// chargeCredits performs the atomic post-success deduction and records the
// transaction. Returns false (with a 402 already written) when the balance
// moved under the cost between the route gate and here.
func chargeCredits(c *gin.Context, userRepo *repository.UserRepo, txRepo *repository.TransactionRepo, userID uuid.UUID, cost int, description string) bool {
	ok, err := userRepo.SpendCredits(c.Request.Context(), userID, cost)
	if err != nil {
		log.Error().Err(err).Msg("Failed to deduct credits")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deduct credits"})
		return false
	}
	if !ok {
		c.JSON(http.StatusPaymentRequired, gin.H{"error": "insufficient_credits", "required": cost})
		return false
	}
	if err := txRepo.Record(c.Request.Context(), userID, -cost, model.TxSpend, description); err != nil {
		log.Error().Err(err).Msg("Failed to record transaction")
	}
	return true
}
