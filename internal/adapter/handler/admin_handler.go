package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/srgjo27/urban_spark/internal/core/domain"
	"github.com/srgjo27/urban_spark/internal/core/services"
)

type loginRequest struct {
	PIN string `json:"pin" binding:"required"`
}

type loginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expiresIn"`
}

type statusRequest struct {
	Status domain.BookingStatus `json:"status" binding:"required"`
}

type AdminHandler struct {
	admin    *services.AdminService
	bookings *services.BookingService
	expires  int64
	logger   *zap.Logger
}

func NewAdminHandler(admin *services.AdminService, bookings *services.BookingService, sessionSeconds int64, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{admin: admin, bookings: bookings, expires: sessionSeconds, logger: logger}
}

func (h *AdminHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	token, err := h.admin.Login(c.Request.Context(), req.PIN)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, loginResponse{Token: token, ExpiresIn: h.expires})
}

func (h *AdminHandler) Logout(c *gin.Context) {
	if err := h.admin.Logout(c.Request.Context(), c.GetString(adminTokenKey)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func parseFilter(c *gin.Context) (services.BookingFilter, error) {
	filter := services.BookingFilter{Search: c.Query("q")}

	status := domain.BookingStatus(c.Query("status"))
	if status == "All" {
		status = ""
	}
	if status != "" && !status.Valid() {
		return filter, domain.ErrInvalidStatus
	}
	filter.Status = status

	return filter, nil
}

func (h *AdminHandler) ListBookings(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		respondError(c, err)
		return
	}

	resp, err := h.bookings.ListBookings(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *AdminHandler) UpdateStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if !req.Status.Valid() {
		badRequest(c, errors.New("status must be one of Pending, Confirmed, Completed, Cancelled"))
		return
	}

	booking, err := h.bookings.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}
