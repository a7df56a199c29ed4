package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mitea/boba-platform-api/internal/dto"
	"github.com/mitea/boba-platform-api/internal/service"
)

type CatalogHandler struct {
	svc *service.CatalogService
}

func NewCatalogHandler(svc *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

func (h *CatalogHandler) respondCatalogError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProductNotFound):
		respondError(c, http.StatusNotFound, "product not found")
	case errors.Is(err, service.ErrCategoryNotFound):
		respondError(c, http.StatusNotFound, "category not found")
	case errors.Is(err, service.ErrToppingNotFound):
		respondError(c, http.StatusNotFound, "topping not found")
	default:
		respondError(c, http.StatusInternalServerError, "internal server error")
	}
}

// --- Products ---

func (h *CatalogHandler) ListProducts(c *gin.Context) {
	var params dto.ListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	items, total, err := h.svc.ListProducts(c.Request.Context(), params)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal server error")
		return
	}
	respondList(c, items, dto.NewPagination(params.Page, params.Limit, total))
}

func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.respondCatalogError(c, err)
		return
	}
	respondOK(c, resp)
}

func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req dto.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	resp, err := h.svc.CreateProduct(c.Request.Context(), req)
	if err != nil {
		h.respondCatalogError(c, err)
		return
	}
	respondCreated(c, resp)
}

func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	resp, err := h.svc.UpdateProduct(c.Request.Context(), id, req)
	if err != nil {
		h.respondCatalogError(c, err)
		return
	}
	respondOK(c, resp)
}

func (h *CatalogHandler) SoftDeleteProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.SoftDeleteProduct(c.Request.Context(), id); err != nil {
		h.respondCatalogError(c, err)
		return
	}
	respondMessage(c, "product disabled")
}

func (h *CatalogHandler) SetProductStoreStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.SetStoreStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.SetProductStoreStatus(c.Request.Context(), id, req.StoreStatus); err != nil {
		h.respondCatalogError(c, err)
		return
	}
	respondMessage(c, "store status updated")
}

// --- Categories ---

func (h *CatalogHandler) ListCategories(c *gin.Context) {
	var params dto.ListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	items, total, err := h.svc.ListCategories(c.Request.Context(), params)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal server error")
		return
	}
	respondList(c, items, dto.NewPagination(params.Page, params.Limit, total))
}

func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req dto.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	resp, err := h.svc.CreateCategory(c.Request.Context(), req)
	if err != nil {
		h.respondCatalogError(c, err)
		return
	}
	respondCreated(c, resp)
}

func (h *CatalogHandler) UpdateCategory(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	resp, err := h.svc.UpdateCategory(c.Request.Context(), id, req)
	if err != nil {
		h.respondCatalogError(c, err)
		return
	}
	respondOK(c, resp)
}

func (h *CatalogHandler) SoftDeleteCategory(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.SoftDeleteCategory(c.Request.Context(), id); err != nil {
		h.respondCatalogError(c, err)
		return
	}
	respondMessage(c, "category disabled")
}

// SyncCategories runs the admin consistency pass after category edits.
func (h *CatalogHandler) SyncCategories(c *gin.Context) {
	touched, err := h.svc.SyncCategoriesWithProducts(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal server error")
		return
	}
	respondOK(c, gin.H{"productsUpdated": touched})
}

// --- Toppings ---

func (h *CatalogHandler) ListToppings(c *gin.Context) {
	var params dto.ListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	items, total, err := h.svc.ListToppings(c.Request.Context(), params)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal server error")
		return
	}
	respondList(c, items, dto.NewPagination(params.Page, params.Limit, total))
}

func (h *CatalogHandler) CreateTopping(c *gin.Context) {
	var req dto.CreateToppingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	resp, err := h.svc.CreateTopping(c.Request.Context(), req)
	if err != nil {
		h.respondCatalogError(c, err)
		return
	}
	respondCreated(c, resp)
}

func (h *CatalogHandler) UpdateTopping(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.UpdateToppingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	resp, err := h.svc.UpdateTopping(c.Request.Context(), id, req)
	if err != nil {
		h.respondCatalogError(c, err)
		return
	}
	respondOK(c, resp)
}

func (h *CatalogHandler) DeleteTopping(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteTopping(c.Request.Context(), id); err != nil {
		h.respondCatalogError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Manager store-status endpoints (same rows, store-level flag) ---

func (h *CatalogHandler) SetCategoryStoreStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.SetStoreStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.SetCategoryStoreStatus(c.Request.Context(), id, req.StoreStatus); err != nil {
		h.respondCatalogError(c, err)
		return
	}
	respondMessage(c, "store status updated")
}

func (h *CatalogHandler) SetToppingStoreStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.SetStoreStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.SetToppingStoreStatus(c.Request.Context(), id, req.StoreStatus); err != nil {
		h.respondCatalogError(c, err)
		return
	}
	respondMessage(c, "store status updated")
}
