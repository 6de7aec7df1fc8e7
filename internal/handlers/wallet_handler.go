package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/eazybus/booking-backend/internal/middleware"
	"github.com/eazybus/booking-backend/internal/models"
	"github.com/eazybus/booking-backend/internal/services"
)

// WalletHandler serves the stored-value wallet
type WalletHandler struct {
	wallets *services.WalletService
	logger  *logrus.Logger
}

// NewWalletHandler creates a new WalletHandler
func NewWalletHandler(wallets *services.WalletService, logger *logrus.Logger) *WalletHandler {
	return &WalletHandler{wallets: wallets, logger: logger}
}

// Apply handles POST /wallet/apply
func (h *WalletHandler) Apply(c *gin.Context) {
	var req models.ApplyWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	wallet, err := h.wallets.Apply(middleware.UserID(c), &req)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"wallet": wallet})
}

// Get handles GET /wallet
func (h *WalletHandler) Get(c *gin.Context) {
	wallet, err := h.wallets.Get(middleware.UserID(c))
	if err != nil {
		h.logger.WithError(err).Error("Failed to load wallet")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load wallet"})
		return
	}
	if wallet == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no wallet, apply first"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"wallet": wallet})
}

// Transactions handles GET /wallet/transactions
func (h *WalletHandler) Transactions(c *gin.Context) {
	txs, err := h.wallets.Transactions(middleware.UserID(c))
	if err != nil {
		h.logger.WithError(err).Error("Failed to list wallet transactions")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list transactions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": txs, "count": len(txs)})
}

// TopUp handles POST /wallet/topup and returns the hosted-checkout URL
func (h *WalletHandler) TopUp(c *gin.Context) {
	var req models.TopUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.wallets.TopUp(middleware.UserID(c), req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"checkout_url": session.URL,
		"session_id":   session.ID,
	})
}
