package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mitea/boba-platform-api/internal/dto"
	"github.com/mitea/boba-platform-api/internal/middleware"
	"github.com/mitea/boba-platform-api/internal/model"
	"github.com/mitea/boba-platform-api/internal/repository"
	"github.com/mitea/boba-platform-api/internal/service"
	"github.com/mitea/boba-platform-api/internal/validation"
)

type RequestHandler struct {
	svc      *service.RequestService
	userRepo repository.UserRepository
}

func NewRequestHandler(svc *service.RequestService, userRepo repository.UserRepository) *RequestHandler {
	return &RequestHandler{svc: svc, userRepo: userRepo}
}

// managerStore resolves the store the authenticated manager is assigned to.
// A manager without a store assignment cannot file requests.
func (h *RequestHandler) managerStore(c *gin.Context) (uuid.UUID, bool) {
	user, err := h.userRepo.GetByID(c.Request.Context(), middleware.GetUserID(c))
	if err != nil || user == nil {
		respondError(c, http.StatusInternalServerError, "internal server error")
		return uuid.Nil, false
	}
	if user.StoreID == nil {
		respondError(c, http.StatusForbidden, "no store assigned to this account")
		return uuid.Nil, false
	}
	return *user.StoreID, true
}

func (h *RequestHandler) Submit(c *gin.Context) {
	var req dto.SubmitRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	storeID, ok := h.managerStore(c)
	if !ok {
		return
	}

	out, err := h.svc.Submit(c.Request.Context(), middleware.GetUserID(c), storeID, req.Action, req)
	if err != nil {
		h.respondRequestError(c, err)
		return
	}
	respondCreated(c, dto.ToRequestResponse(out))
}

func (h *RequestHandler) ListMyRequests(c *gin.Context) {
	var params dto.ListRequestsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	reqs, total, err := h.svc.ListMyRequests(c.Request.Context(), middleware.GetUserID(c), params)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal server error")
		return
	}
	respondList(c, toRequestResponses(reqs), dto.NewPagination(params.Page, params.Limit, total))
}

func (h *RequestHandler) GetMyRequest(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	req, err := h.svc.GetMyRequest(c.Request.Context(), middleware.GetUserID(c), id)
	if err != nil {
		h.respondRequestError(c, err)
		return
	}
	respondOK(c, dto.ToRequestResponse(req))
}

func (h *RequestHandler) UpdateMyRequest(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.UpdateRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	out, err := h.svc.UpdateMyRequest(c.Request.Context(), middleware.GetUserID(c), id, req)
	if err != nil {
		h.respondRequestError(c, err)
		return
	}
	respondOK(c, dto.ToRequestResponse(out))
}

func (h *RequestHandler) CancelMyRequest(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.CancelRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	out, err := h.svc.CancelMyRequest(c.Request.Context(), middleware.GetUserID(c), id, req.Note)
	if err != nil {
		h.respondRequestError(c, err)
		return
	}
	respondOK(c, dto.ToRequestResponse(out))
}

// PreviewDiff computes the change set without persisting anything; the
// manager UI calls it while composing an update request.
func (h *RequestHandler) PreviewDiff(c *gin.Context) {
	var req dto.PreviewDiffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	respondOK(c, h.svc.PreviewDiff(req.Original, req.Payload))
}

// --- Admin review surface ---

func (h *RequestHandler) ListAll(c *gin.Context) {
	var params dto.ListRequestsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	reqs, total, err := h.svc.ListAll(c.Request.Context(), params)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal server error")
		return
	}
	respondList(c, toRequestResponses(reqs), dto.NewPagination(params.Page, params.Limit, total))
}

func (h *RequestHandler) Approve(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.ReviewRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	out, err := h.svc.Approve(c.Request.Context(), middleware.GetUserID(c), id, req.Note)
	if err != nil {
		h.respondRequestError(c, err)
		return
	}
	respondOK(c, dto.ToRequestResponse(out))
}

func (h *RequestHandler) Reject(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.ReviewRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	out, err := h.svc.Reject(c.Request.Context(), middleware.GetUserID(c), id, req.Note)
	if err != nil {
		h.respondRequestError(c, err)
		return
	}
	respondOK(c, dto.ToRequestResponse(out))
}

func (h *RequestHandler) respondRequestError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrRequestNotFound):
		respondError(c, http.StatusNotFound, "request not found")
	case errors.Is(err, service.ErrRequestNotOwned):
		respondError(c, http.StatusForbidden, "request belongs to another manager")
	case errors.Is(err, service.ErrRequestNotPending):
		respondError(c, http.StatusConflict, "request is no longer pending")
	case errors.Is(err, service.ErrTargetRequired),
		errors.Is(err, validation.ErrReasonTooShort):
		respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrCategoryNotFound),
		errors.Is(err, service.ErrToppingNotFound):
		respondError(c, http.StatusNotFound, err.Error())
	default:
		respondError(c, http.StatusInternalServerError, "internal server error")
	}
}

func toRequestResponses(reqs []model.ChangeRequest) []dto.RequestResponse {
	out := make([]dto.RequestResponse, 0, len(reqs))
	for i := range reqs {
		out = append(out, dto.ToRequestResponse(&reqs[i]))
	}
	return out
}
