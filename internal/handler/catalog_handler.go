package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/hospital-ops-api/internal/service"
	"github.com/noah-isme/hospital-ops-api/pkg/response"
)

// CatalogHandler serves the shift template and event type reference data.
type CatalogHandler struct {
	service *service.CatalogService
}

// NewCatalogHandler constructs the handler.
func NewCatalogHandler(svc *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: svc}
}

// Get godoc
// @Summary Get shift templates and event type categories
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /catalog [get]
func (h *CatalogHandler) Get(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.Catalog(c.Request.Context()), nil)
}

// Refresh godoc
// @Summary Drop the cached catalog snapshot
// @Tags Catalog
// @Success 204
// @Router /catalog/refresh [post]
func (h *CatalogHandler) Refresh(c *gin.Context) {
	h.service.Refresh(c.Request.Context())
	response.NoContent(c)
}
