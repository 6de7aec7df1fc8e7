package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/eazybus/booking-backend/internal/models"
	"github.com/eazybus/booking-backend/internal/services"
)

// AdminHandler serves catalog administration
type AdminHandler struct {
	catalog *services.CatalogService
	recon   *services.ReconciliationService
	logger  *logrus.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(catalog *services.CatalogService, recon *services.ReconciliationService, logger *logrus.Logger) *AdminHandler {
	return &AdminHandler{catalog: catalog, recon: recon, logger: logger}
}

// CreateRoute handles POST /admin/routes
func (h *AdminHandler) CreateRoute(c *gin.Context) {
	var req models.CreateRouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	route, err := h.catalog.CreateRoute(&req)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"route": route})
}

// ListRoutes handles GET /admin/routes
func (h *AdminHandler) ListRoutes(c *gin.Context) {
	routes, err := h.catalog.ListRoutes()
	if err != nil {
		h.logger.WithError(err).Error("Failed to list routes")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list routes"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"routes": routes, "count": len(routes)})
}

// DeleteRoute handles DELETE /admin/routes/:serviceNo
func (h *AdminHandler) DeleteRoute(c *gin.Context) {
	if err := h.catalog.DeleteRoute(c.Param("serviceNo")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "route deleted"})
}

// TriggerRollout handles POST /admin/catalog/rollout for manual recovery
// when the scheduled rollout was missed.
func (h *AdminHandler) TriggerRollout(c *gin.Context) {
	h.recon.SweepCatalog()
	c.JSON(http.StatusOK, gin.H{"message": "catalog rollout triggered"})
}
