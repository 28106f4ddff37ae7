package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/yourusername/cvstudio-api/internal/model"
	"github.com/yourusername/cvstudio-api/internal/repository"
	"github.com/yourusername/cvstudio-api/internal/service"
)

type BillingHandler struct {
	userRepo *repository.UserRepo
	txRepo   *repository.TransactionRepo
	stripe   *service.StripeService
}

func NewBillingHandler(userRepo *repository.UserRepo, txRepo *repository.TransactionRepo, stripeSvc *service.StripeService) *BillingHandler {
	return &BillingHandler{userRepo: userRepo, txRepo: txRepo, stripe: stripeSvc}
}

// GetCredits handles GET /api/credits
func (h *BillingHandler) GetCredits(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	user, err := h.userRepo.FindByID(c.Request.Context(), userID)
	if err != nil || user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"free":      user.FreeCredits,
		"purchased": user.PurchasedCredits,
		"total":     user.Credits(),
		"packs":     model.CreditPacks,
	})
}

// ListTransactions handles GET /api/transactions
func (h *BillingHandler) ListTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	transactions, err := h.txRepo.List(c.Request.Context(), userID, limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list transactions")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list transactions"})
		return
	}
	if transactions == nil {
		transactions = []model.Transaction{}
	}

	c.JSON(http.StatusOK, transactions)
}

// CreateCheckout handles POST /api/billing/checkout
func (h *BillingHandler) CreateCheckout(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var req struct {
		PackID string `json:"packId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if model.FindCreditPack(req.PackID) == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown credit pack"})
		return
	}

	url, err := h.stripe.CreateCheckoutSession(c.Request.Context(), userID, req.PackID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create checkout session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create checkout session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}

// StripeWebhook handles POST /api/billing/webhook (unauthenticated; verified
// by Stripe signature instead).
func (h *BillingHandler) StripeWebhook(c *gin.Context) {
	event, err := h.stripe.VerifyWebhook(c.Request.Body, c.GetHeader("Stripe-Signature"))
	if err != nil {
		log.Warn().Err(err).Msg("Rejected webhook with bad signature")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid signature"})
		return
	}

	if err := h.stripe.HandleWebhookEvent(c.Request.Context(), event); err != nil {
		log.Error().Err(err).Str("event", string(event.Type)).Msg("Webhook handling failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Webhook handling failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
