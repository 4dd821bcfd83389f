package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/srgjo27/urban_spark/internal/core/services"
)

type BookingHandler struct {
	svc *services.BookingService
}

func NewBookingHandler(svc *services.BookingService) *BookingHandler {
	return &BookingHandler{svc: svc}
}

// Track looks the booking up case-insensitively and returns it with its
// progress timeline.
func (h *BookingHandler) Track(c *gin.Context) {
	resp, err := h.svc.Track(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
