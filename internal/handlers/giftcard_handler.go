package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/eazybus/booking-backend/internal/middleware"
	"github.com/eazybus/booking-backend/internal/models"
	"github.com/eazybus/booking-backend/internal/services"
)

// GiftCardHandler serves gift card purchase and redemption
type GiftCardHandler struct {
	cards  *services.GiftCardService
	logger *logrus.Logger
}

// NewGiftCardHandler creates a new GiftCardHandler
func NewGiftCardHandler(cards *services.GiftCardService, logger *logrus.Logger) *GiftCardHandler {
	return &GiftCardHandler{cards: cards, logger: logger}
}

// Purchase handles POST /giftcards
func (h *GiftCardHandler) Purchase(c *gin.Context) {
	var req models.PurchaseGiftCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.cards.Purchase(middleware.UserID(c), &req)
	if err != nil {
		h.logger.WithError(err).Error("Gift card purchase failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"checkout_url": session.URL,
		"session_id":   session.ID,
	})
}

// Redeem handles POST /giftcards/redeem
func (h *GiftCardHandler) Redeem(c *gin.Context) {
	var req models.RedeemGiftCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	wallet, err := h.cards.Redeem(middleware.UserID(c), &req)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"wallet": wallet})
}
