package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/eazybus/booking-backend/internal/database"
	"github.com/eazybus/booking-backend/internal/middleware"
	"github.com/eazybus/booking-backend/internal/models"
	"github.com/eazybus/booking-backend/internal/services"
)

// BookingHandler serves the reservation flow
type BookingHandler struct {
	bookings *services.BookingService
	logger   *logrus.Logger
}

// NewBookingHandler creates a new BookingHandler
func NewBookingHandler(bookings *services.BookingService, logger *logrus.Logger) *BookingHandler {
	return &BookingHandler{bookings: bookings, logger: logger}
}

// SelectSeats handles POST /bookings/select
func (h *BookingHandler) SelectSeats(c *gin.Context) {
	var req models.SelectSeatsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.bookings.StageSelection(middleware.UserID(c), &req)
	if err != nil {
		h.respondFlowError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

// AttachPassenger handles POST /bookings/passenger
func (h *BookingHandler) AttachPassenger(c *gin.Context) {
	var req models.PassengerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.bookings.AttachPassenger(middleware.UserID(c), &req); err != nil {
		h.respondFlowError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "passenger attached"})
}

type checkoutRequest struct {
	Method services.SettlementMethod `json:"method" binding:"required,oneof=card eazy-wallet"`
}

// Checkout handles POST /bookings/checkout
func (h *BookingHandler) Checkout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.bookings.Checkout(middleware.UserID(c), req.Method)
	if err != nil {
		h.respondFlowError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// List handles GET /bookings
func (h *BookingHandler) List(c *gin.Context) {
	bookings, err := h.bookings.ListBookings(middleware.UserID(c))
	if err != nil {
		h.logger.WithError(err).Error("Failed to list bookings")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list bookings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings, "count": len(bookings)})
}

// Get handles GET /bookings/:bookingID
func (h *BookingHandler) Get(c *gin.Context) {
	booking, err := h.bookings.GetBooking(middleware.UserID(c), c.Param("bookingID"))
	if err != nil {
		h.logger.WithError(err).Error("Failed to load booking")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load booking"})
		return
	}
	if booking == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

// Ticket handles GET /bookings/:bookingID/ticket and streams the PDF
func (h *BookingHandler) Ticket(c *gin.Context) {
	pdf, err := h.bookings.RenderTicket(middleware.UserID(c), c.Param("bookingID"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+c.Param("bookingID")+".pdf")
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// Invoice handles GET /bookings/:bookingID/invoice and streams the PDF
func (h *BookingHandler) Invoice(c *gin.Context) {
	pdf, err := h.bookings.RenderInvoice(middleware.UserID(c), c.Param("bookingID"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+c.Param("bookingID")+"-invoice.pdf")
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// Cancel handles POST /bookings/:bookingID/cancel
func (h *BookingHandler) Cancel(c *gin.Context) {
	booking, err := h.bookings.Cancel(middleware.UserID(c), c.Param("bookingID"))
	if err != nil {
		h.respondFlowError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"booking": booking,
		"refund":  booking.RefundAmount(),
	})
}

// PaymentWebhook handles POST /payments/webhook. Unauthenticated; trust
// comes from the callback signature.
func (h *BookingHandler) PaymentWebhook(c *gin.Context) {
	var payload services.WebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.bookings.HandlePaymentCallback(&payload); err != nil {
		if errors.Is(err, services.ErrInvalidSignature) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "signature mismatch"})
			return
		}
		h.logger.WithError(err).Error("Payment callback failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "callback processing failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// respondFlowError maps reservation flow errors onto HTTP outcomes
func (h *BookingHandler) respondFlowError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNoSession):
		c.JSON(http.StatusConflict, gin.H{"error": "no staged reservation, search again"})
	case errors.Is(err, services.ErrSeatsTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "seats no longer available, re-select"})
	case errors.Is(err, services.ErrServiceGone):
		c.JSON(http.StatusGone, gin.H{"error": "service is not bookable"})
	case errors.Is(err, services.ErrNotCancellable):
		c.JSON(http.StatusConflict, gin.H{"error": "booking cannot be cancelled"})
	case errors.Is(err, database.ErrInsufficientFunds):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": "insufficient wallet balance"})
	default:
		h.logger.WithError(err).Error("Reservation flow failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}
