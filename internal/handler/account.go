package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mitea/boba-platform-api/internal/dto"
	"github.com/mitea/boba-platform-api/internal/service"
)

type AccountHandler struct {
	svc *service.AccountService
}

func NewAccountHandler(svc *service.AccountService) *AccountHandler {
	return &AccountHandler{svc: svc}
}

func (h *AccountHandler) List(c *gin.Context) {
	var params dto.ListUsersParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	users, total, err := h.svc.List(c.Request.Context(), params)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal server error")
		return
	}
	respondList(c, users, dto.NewPagination(params.Page, params.Limit, total))
}

func (h *AccountHandler) SetStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.SetUserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.SetStatus(c.Request.Context(), id, req.Status); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			respondError(c, http.StatusNotFound, "user not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "internal server error")
		return
	}
	respondMessage(c, "user status updated")
}

// Verify lets an admin mark an account verified without the OTP round-trip.
func (h *AccountHandler) Verify(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.Verify(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			respondError(c, http.StatusNotFound, "user not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "internal server error")
		return
	}
	respondMessage(c, "user verified")
}
