package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/eazybus/booking-backend/internal/services"
)

// SearchHandler serves the service catalog to passengers
type SearchHandler struct {
	catalog *services.CatalogService
	logger  *logrus.Logger
}

// NewSearchHandler creates a new SearchHandler
func NewSearchHandler(catalog *services.CatalogService, logger *logrus.Logger) *SearchHandler {
	return &SearchHandler{catalog: catalog, logger: logger}
}

// Search handles GET /services/search?origin=&destination=&date=
func (h *SearchHandler) Search(c *gin.Context) {
	origin := c.Query("origin")
	destination := c.Query("destination")
	date := c.Query("date")
	if origin == "" || destination == "" || date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "origin, destination and date are required"})
		return
	}

	results, err := h.catalog.Search(origin, destination, date)
	if err != nil {
		h.logger.WithError(err).Warn("Service search failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"services": results, "count": len(results)})
}

// SeatMap handles GET /services/:serviceNo/:date and returns the seat
// inventory for seat selection.
func (h *SearchHandler) SeatMap(c *gin.Context) {
	svc, err := h.catalog.GetService(c.Param("serviceNo"), c.Param("date"))
	if err != nil {
		h.logger.WithError(err).Error("Failed to load service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load service"})
		return
	}
	if svc == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "service not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"service":        svc,
		"disabled_seats": svc.DisabledSeatNumbers(),
	})
}
