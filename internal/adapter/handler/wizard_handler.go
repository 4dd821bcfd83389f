package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/srgjo27/urban_spark/internal/core/domain"
	"github.com/srgjo27/urban_spark/internal/core/services"
)

type selectServiceRequest struct {
	ServiceID string `json:"serviceId"`
}

type addItemRequest struct {
	ServiceID string `json:"serviceId" binding:"required"`
	PackageID string `json:"packageId" binding:"required"`
}

type scheduleRequest struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

type contactRequest struct {
	Name    string `json:"customerName"`
	Email   string `json:"customerEmail" binding:"omitempty,email"`
	Phone   string `json:"customerPhone"`
	Address string `json:"address"`
}

type paymentMethodRequest struct {
	Method domain.PaymentMethod `json:"paymentMethod" binding:"required,oneof=Online Cash"`
}

type removeItemResponse struct {
	*services.DraftView
	Removed bool `json:"removed"`
}

type WizardHandler struct {
	svc *services.WizardService
}

func NewWizardHandler(svc *services.WizardService) *WizardHandler {
	return &WizardHandler{svc: svc}
}

func (h *WizardHandler) Start(c *gin.Context) {
	d, err := h.svc.Start(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, services.NewDraftView(d))
}

func (h *WizardHandler) Get(c *gin.Context) {
	d, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	h.respond(c, d, err)
}

func (h *WizardHandler) SelectService(c *gin.Context) {
	var req selectServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	d, err := h.svc.SelectService(c.Request.Context(), c.Param("id"), req.ServiceID)
	h.respond(c, d, err)
}

func (h *WizardHandler) AddItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	d, err := h.svc.AddItem(c.Request.Context(), c.Param("id"), req.ServiceID, req.PackageID)
	h.respond(c, d, err)
}

func (h *WizardHandler) RemoveItem(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		badRequest(c, errors.New("item index must be an integer"))
		return
	}

	d, removed, err := h.svc.RemoveItem(c.Request.Context(), c.Param("id"), index)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, removeItemResponse{DraftView: services.NewDraftView(d), Removed: removed})
}

func (h *WizardHandler) SetSchedule(c *gin.Context) {
	var req scheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	d, err := h.svc.SetSchedule(c.Request.Context(), c.Param("id"), req.Date, req.Time)
	h.respond(c, d, err)
}

func (h *WizardHandler) SetContact(c *gin.Context) {
	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	d, err := h.svc.SetContact(c.Request.Context(), c.Param("id"), req.Name, req.Email, req.Phone, req.Address)
	h.respond(c, d, err)
}

func (h *WizardHandler) SetPaymentMethod(c *gin.Context) {
	var req paymentMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	d, err := h.svc.SetPaymentMethod(c.Request.Context(), c.Param("id"), req.Method)
	h.respond(c, d, err)
}

func (h *WizardHandler) Continue(c *gin.Context) {
	d, err := h.svc.Continue(c.Request.Context(), c.Param("id"))
	h.respond(c, d, err)
}

func (h *WizardHandler) Back(c *gin.Context) {
	d, err := h.svc.Back(c.Request.Context(), c.Param("id"))
	h.respond(c, d, err)
}

// Submit takes the card details in the body; they are passed to the gateway
// and never stored. Cash submissions may send an empty body.
func (h *WizardHandler) Submit(c *gin.Context) {
	var card services.CardDetails
	if err := c.ShouldBindJSON(&card); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, err)
		return
	}

	booking, err := h.svc.Submit(c.Request.Context(), c.Param("id"), card)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, booking)
}

func (h *WizardHandler) respond(c *gin.Context, d *domain.BookingDraft, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, services.NewDraftView(d))
}
