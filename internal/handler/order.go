package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mitea/boba-platform-api/internal/dto"
	"github.com/mitea/boba-platform-api/internal/middleware"
	"github.com/mitea/boba-platform-api/internal/model"
	"github.com/mitea/boba-platform-api/internal/service"
	"github.com/mitea/boba-platform-api/internal/validation"
)

type OrderHandler struct {
	svc *service.OrderService
}

func NewOrderHandler(svc *service.OrderService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

func (h *OrderHandler) Checkout(c *gin.Context) {
	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	order, err := h.svc.Checkout(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyCart):
			respondError(c, http.StatusBadRequest, "cart is empty")
		case errors.Is(err, validation.ErrInvalidPhone):
			respondError(c, http.StatusBadRequest, err.Error())
		default:
			respondError(c, http.StatusInternalServerError, "internal server error")
		}
		return
	}
	respondCreated(c, dto.ToOrderResponse(order))
}

func (h *OrderHandler) ListMyOrders(c *gin.Context) {
	orders, err := h.svc.ListByUserID(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal server error")
		return
	}
	out := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, dto.ToOrderResponse(&orders[i]))
	}
	respondOK(c, out)
}

func (h *OrderHandler) GetMyOrder(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	order, err := h.svc.GetForUser(c.Request.Context(), id, middleware.GetUserID(c))
	if err != nil {
		h.respondOrderError(c, err)
		return
	}
	respondOK(c, dto.ToOrderResponse(order))
}

// CancelMyOrder is the customer-side cancel. The transition table allows a
// cancel from any non-terminal delivery stage.
func (h *OrderHandler) CancelMyOrder(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.CancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.svc.GetForUser(c.Request.Context(), id, middleware.GetUserID(c)); err != nil {
		h.respondOrderError(c, err)
		return
	}
	order, err := h.svc.CancelOrder(c.Request.Context(), id, req.Note)
	if err != nil {
		h.respondOrderError(c, err)
		return
	}
	respondOK(c, dto.ToOrderResponse(order))
}

func (h *OrderHandler) StatusHistory(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if middleware.GetUserRole(c) == model.RoleUser {
		if _, err := h.svc.GetForUser(c.Request.Context(), id, middleware.GetUserID(c)); err != nil {
			h.respondOrderError(c, err)
			return
		}
	}
	entries, err := h.svc.StatusHistory(c.Request.Context(), id)
	if err != nil {
		h.respondOrderError(c, err)
		return
	}
	respondOK(c, dto.ToStatusHistory(entries))
}

// TrackingQR serves the PNG directly; the kitchen prints it onto the cup
// sleeve.
func (h *OrderHandler) TrackingQR(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	png, err := h.svc.TrackingQR(c.Request.Context(), id)
	if err != nil {
		h.respondOrderError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

// --- Manager / admin surface ---

func (h *OrderHandler) ListStoreOrders(c *gin.Context) {
	var params dto.ListOrdersParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	orders, total, err := h.svc.ListStoreOrders(c.Request.Context(), params)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal server error")
		return
	}
	out := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, dto.ToOrderResponse(&orders[i]))
	}
	respondList(c, out, dto.NewPagination(params.Page, params.Limit, total))
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	order, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.respondOrderError(c, err)
		return
	}
	respondOK(c, dto.ToOrderResponse(order))
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	order, err := h.svc.UpdateStatus(c.Request.Context(), id, req.Status, req.Note)
	if err != nil {
		h.respondOrderError(c, err)
		return
	}
	respondOK(c, dto.ToOrderResponse(order))
}

func (h *OrderHandler) UpdatePaymentStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.UpdatePaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	order, err := h.svc.UpdatePaymentStatus(c.Request.Context(), id, req.PaymentStatus)
	if err != nil {
		h.respondOrderError(c, err)
		return
	}
	respondOK(c, dto.ToOrderResponse(order))
}

func (h *OrderHandler) respondOrderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrOrderNotFound):
		respondError(c, http.StatusNotFound, "order not found")
	case errors.Is(err, service.ErrOrderAccessDenied):
		respondError(c, http.StatusForbidden, "access denied")
	case errors.Is(err, service.ErrInvalidStatusTransition):
		respondError(c, http.StatusConflict, err.Error())
	default:
		respondError(c, http.StatusInternalServerError, "internal server error")
	}
}
