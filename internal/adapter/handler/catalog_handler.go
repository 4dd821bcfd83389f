package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/srgjo27/urban_spark/internal/core/domain"
)

type CatalogHandler struct {
	catalog *domain.Catalog
}

func NewCatalogHandler(catalog *domain.Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// ListServices filters by ?category=; empty or "All" returns everything.
func (h *CatalogHandler) ListServices(c *gin.Context) {
	category := domain.ServiceCategory(c.Query("category"))
	if category == "All" {
		category = ""
	}
	if category != "" && !category.Valid() {
		badRequest(c, errors.New("unknown category"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"services": h.catalog.Services(category)})
}

func (h *CatalogHandler) GetService(c *gin.Context) {
	svc, err := h.catalog.Service(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, svc)
}

func (h *CatalogHandler) TimeSlots(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"timeSlots": domain.TimeSlots})
}
