package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mitea/boba-platform-api/internal/dto"
	"github.com/mitea/boba-platform-api/internal/middleware"
	"github.com/mitea/boba-platform-api/internal/model"
	"github.com/mitea/boba-platform-api/internal/service"
)

type CartHandler struct {
	svc *service.CartService
}

func NewCartHandler(svc *service.CartService) *CartHandler {
	return &CartHandler{svc: svc}
}

func (h *CartHandler) GetCart(c *gin.Context) {
	cart, err := h.svc.GetCart(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal server error")
		return
	}
	respondOK(c, dto.ToCartResponse(cart))
}

func (h *CartHandler) AddItem(c *gin.Context) {
	var req dto.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	item := model.CartItem{
		ProductID:  req.ProductID,
		SizeOption: req.SizeOption,
		SugarLevel: req.SugarLevel,
		IceOption:  req.IceOption,
		Toppings:   req.Toppings,
		Quantity:   req.Quantity,
	}
	if err := h.svc.AddItem(c.Request.Context(), middleware.GetUserID(c), item); err != nil {
		respondCartError(c, err)
		return
	}
	respondCreated(c, nil)
}

func (h *CartHandler) UpdateItem(c *gin.Context) {
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid item id")
		return
	}
	var req dto.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.UpdateItem(c.Request.Context(), middleware.GetUserID(c), itemID, req.Quantity); err != nil {
		respondCartError(c, err)
		return
	}
	respondMessage(c, "item updated")
}

func (h *CartHandler) DeleteItem(c *gin.Context) {
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid item id")
		return
	}
	if err := h.svc.DeleteItem(c.Request.Context(), middleware.GetUserID(c), itemID); err != nil {
		respondCartError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CartHandler) ClearCart(c *gin.Context) {
	if err := h.svc.ClearCart(c.Request.Context(), middleware.GetUserID(c)); err != nil {
		respondError(c, http.StatusInternalServerError, "internal server error")
		return
	}
	c.Status(http.StatusNoContent)
}

// respondCartError is shared with the auth surface, whose merge endpoint
// reports cart sentinels too.
func respondCartError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProductNotFound):
		respondError(c, http.StatusNotFound, "product not found")
	case errors.Is(err, service.ErrProductUnavailable), errors.Is(err, service.ErrToppingUnavailable):
		respondError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrCartItemNotFound):
		respondError(c, http.StatusNotFound, "cart item not found")
	case errors.Is(err, service.ErrGuestCartNotFound):
		respondError(c, http.StatusNotFound, "guest cart not found")
	default:
		respondError(c, http.StatusInternalServerError, "internal server error")
	}
}

// --- Guest cart ---
// Guest endpoints are unauthenticated; the token in the path is the
// client-generated identifier the storefront keeps until login.

func (h *CartHandler) GetGuestCart(c *gin.Context) {
	token := c.Param("token")
	items, err := h.svc.GetGuestCart(c.Request.Context(), token)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal server error")
		return
	}
	if items == nil {
		items = []model.GuestCartItem{}
	}
	respondOK(c, dto.GuestCartResponse{Token: token, Items: items})
}

func (h *CartHandler) AddGuestItem(c *gin.Context) {
	token := c.Param("token")
	var req dto.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	item := model.GuestCartItem{
		ProductID:  req.ProductID,
		SizeOption: req.SizeOption,
		SugarLevel: req.SugarLevel,
		IceOption:  req.IceOption,
		Toppings:   req.Toppings,
		Quantity:   req.Quantity,
	}
	items, err := h.svc.AddGuestItem(c.Request.Context(), token, item)
	if err != nil {
		respondCartError(c, err)
		return
	}
	respondCreated(c, dto.GuestCartResponse{Token: token, Items: items})
}

func (h *CartHandler) DeleteGuestCart(c *gin.Context) {
	if err := h.svc.DeleteGuestCart(c.Request.Context(), c.Param("token")); err != nil {
		respondError(c, http.StatusInternalServerError, "internal server error")
		return
	}
	c.Status(http.StatusNoContent)
}
