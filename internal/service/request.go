package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mitea/boba-platform-api/internal/dto"
	"github.com/mitea/boba-platform-api/internal/model"
	"github.com/mitea/boba-platform-api/internal/repository"
	"github.com/mitea/boba-platform-api/internal/validation"
)

var (
	ErrRequestNotFound   = errors.New("request not found")
	ErrRequestNotPending = errors.New("request is no longer pending")
	ErrRequestNotOwned   = errors.New("request belongs to another manager")
	ErrTargetRequired    = errors.New("target id required for update and delete requests")
)

// RequestService runs the manager-to-admin change workflow: managers submit
// create/update/delete proposals against catalog entities, admins approve or
// reject them, and approval applies the payload to the catalog.
type RequestService struct {
	requestRepo repository.RequestRepository
	catalog     *CatalogService
}

func NewRequestService(requestRepo repository.RequestRepository, catalog *CatalogService) *RequestService {
	return &RequestService{requestRepo: requestRepo, catalog: catalog}
}

func (s *RequestService) ListMyRequests(ctx context.Context, managerID uuid.UUID, params dto.ListRequestsParams) ([]model.ChangeRequest, int, error) {
	offset := (params.Page - 1) * params.Limit
	return s.requestRepo.List(ctx, params.Limit, offset, &managerID, params.Entity, params.Action, params.Status)
}

func (s *RequestService) ListAll(ctx context.Context, params dto.ListRequestsParams) ([]model.ChangeRequest, int, error) {
	offset := (params.Page - 1) * params.Limit
	return s.requestRepo.List(ctx, params.Limit, offset, nil, params.Entity, params.Action, params.Status)
}

func (s *RequestService) GetMyRequest(ctx context.Context, managerID, id uuid.UUID) (*model.ChangeRequest, error) {
	req, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get request: %w", err)
	}
	if req == nil {
		return nil, ErrRequestNotFound
	}
	if req.ManagerID != managerID {
		return nil, ErrRequestNotOwned
	}
	return req, nil
}

// Submit files a new change request. Create requests may omit the reason, in
// which case a descriptive one is generated; update and delete requests must
// carry a meaningful reason.
func (s *RequestService) Submit(ctx context.Context, managerID, storeID uuid.UUID, action model.RequestAction, in dto.SubmitRequestRequest) (*model.ChangeRequest, error) {
	reason := in.Reason
	if action == model.ActionCreate && reason == "" {
		reason = defaultReason(in.Entity, in.Payload)
	}
	if action != model.ActionCreate {
		if err := validation.Reason(reason); err != nil {
			return nil, err
		}
		if in.TargetID == nil {
			return nil, ErrTargetRequired
		}
	}

	req := &model.ChangeRequest{
		StoreID:     storeID,
		ManagerID:   managerID,
		Entity:      in.Entity,
		Action:      action,
		TargetID:    in.TargetID,
		Payload:     in.Payload,
		Reason:      reason,
		Status:      model.RequestStatusPending,
		Tags:        in.Tags,
		Attachments: in.Attachments,
	}

	if in.TargetID != nil {
		original, err := s.snapshotTarget(ctx, in.Entity, *in.TargetID)
		if err != nil {
			return nil, err
		}
		req.Original = original
	}

	if err := s.requestRepo.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	return req, nil
}

// defaultReason builds the human-readable reason shown to the reviewing
// admin when the manager submits a create request without one.
func defaultReason(entity model.RequestEntity, payload map[string]any) string {
	name, _ := payload["name"].(string)
	switch entity {
	case model.EntityTopping:
		return fmt.Sprintf("Yêu cầu thêm topping %q vào cửa hàng", name)
	case model.EntityCategory:
		return fmt.Sprintf("Yêu cầu thêm danh mục %q vào cửa hàng", name)
	default:
		return fmt.Sprintf("Yêu cầu thêm sản phẩm %q vào cửa hàng", name)
	}
}

// snapshotTarget records the entity as it exists at submission time, so the
// reviewing admin sees what the manager was looking at.
func (s *RequestService) snapshotTarget(ctx context.Context, entity model.RequestEntity, targetID uuid.UUID) (map[string]any, error) {
	var (
		v   any
		err error
	)
	switch entity {
	case model.EntityProduct:
		v, err = s.catalog.GetProduct(ctx, targetID)
	case model.EntityCategory:
		var c *model.Category
		c, err = s.catalog.categoryRepo.GetByID(ctx, targetID)
		if err == nil && c == nil {
			err = ErrCategoryNotFound
		}
		v = c
	case model.EntityTopping:
		var t *model.Topping
		t, err = s.catalog.toppingRepo.GetByID(ctx, targetID)
		if err == nil && t == nil {
			err = ErrToppingNotFound
		}
		v = t
	}
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("snapshot target: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("snapshot target: %w", err)
	}
	return out, nil
}

// UpdateMyRequest edits a request that is still pending. Terminal requests
// are immutable.
func (s *RequestService) UpdateMyRequest(ctx context.Context, managerID, id uuid.UUID, in dto.UpdateRequestRequest) (*model.ChangeRequest, error) {
	req, err := s.GetMyRequest(ctx, managerID, id)
	if err != nil {
		return nil, err
	}
	if req.Status != model.RequestStatusPending {
		return nil, ErrRequestNotPending
	}

	if in.Reason != "" {
		if req.Action != model.ActionCreate {
			if err := validation.Reason(in.Reason); err != nil {
				return nil, err
			}
		}
		req.Reason = in.Reason
	}
	req.Payload = in.Payload
	req.Tags = in.Tags
	req.Attachments = in.Attachments

	if err := s.requestRepo.Update(ctx, req); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRequestNotPending
		}
		return nil, fmt.Errorf("update request: %w", err)
	}
	return req, nil
}

// CancelMyRequest moves a pending request to cancelled. The status guard is
// enforced in the database, so a request approved between the read and the
// write is reported as no-longer-pending rather than silently cancelled.
func (s *RequestService) CancelMyRequest(ctx context.Context, managerID, id uuid.UUID, note string) (*model.ChangeRequest, error) {
	req, err := s.GetMyRequest(ctx, managerID, id)
	if err != nil {
		return nil, err
	}
	if req.Status != model.RequestStatusPending {
		return nil, ErrRequestNotPending
	}

	if err := s.requestRepo.SetStatus(ctx, id, model.RequestStatusPending, model.RequestStatusCancelled, note, nil); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRequestNotPending
		}
		return nil, fmt.Errorf("cancel request: %w", err)
	}
	req.Status = model.RequestStatusCancelled
	req.ReviewNote = note
	return req, nil
}

// PreviewDiff computes the field-level changes a payload would make against
// the original, so the manager sees exactly what will change before
// submitting. Unchanged fields are omitted.
func (s *RequestService) PreviewDiff(original, payload map[string]any) []dto.FieldChange {
	fields := make(map[string]struct{}, len(original)+len(payload))
	for k := range original {
		fields[k] = struct{}{}
	}
	for k := range payload {
		fields[k] = struct{}{}
	}

	names := make([]string, 0, len(fields))
	for k := range fields {
		names = append(names, k)
	}
	sort.Strings(names)

	var changes []dto.FieldChange
	for _, name := range names {
		from, to := original[name], payload[name]
		if reflect.DeepEqual(from, to) {
			continue
		}
		changes = append(changes, dto.FieldChange{Field: name, From: from, To: to})
	}
	return changes
}

// Approve applies the request's payload to the catalog and marks it
// approved, in that order: a payload that fails to apply leaves the request
// pending for correction.
func (s *RequestService) Approve(ctx context.Context, adminID, id uuid.UUID, note string) (*model.ChangeRequest, error) {
	req, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get request: %w", err)
	}
	if req == nil {
		return nil, ErrRequestNotFound
	}
	if req.Status != model.RequestStatusPending {
		return nil, ErrRequestNotPending
	}

	if err := s.apply(ctx, req); err != nil {
		return nil, err
	}

	if err := s.requestRepo.SetStatus(ctx, id, model.RequestStatusPending, model.RequestStatusApproved, note, &adminID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRequestNotPending
		}
		return nil, fmt.Errorf("approve request: %w", err)
	}
	req.Status = model.RequestStatusApproved
	req.ReviewNote = note
	req.ReviewedBy = &adminID
	return req, nil
}

func (s *RequestService) Reject(ctx context.Context, adminID, id uuid.UUID, note string) (*model.ChangeRequest, error) {
	req, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get request: %w", err)
	}
	if req == nil {
		return nil, ErrRequestNotFound
	}
	if req.Status != model.RequestStatusPending {
		return nil, ErrRequestNotPending
	}

	if err := s.requestRepo.SetStatus(ctx, id, model.RequestStatusPending, model.RequestStatusRejected, note, &adminID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRequestNotPending
		}
		return nil, fmt.Errorf("reject request: %w", err)
	}
	req.Status = model.RequestStatusRejected
	req.ReviewNote = note
	req.ReviewedBy = &adminID
	return req, nil
}

func (s *RequestService) apply(ctx context.Context, req *model.ChangeRequest) error {
	switch req.Entity {
	case model.EntityProduct:
		return s.applyProduct(ctx, req)
	case model.EntityCategory:
		return s.applyCategory(ctx, req)
	case model.EntityTopping:
		return s.applyTopping(ctx, req)
	}
	return fmt.Errorf("unknown entity %q", req.Entity)
}

func (s *RequestService) applyProduct(ctx context.Context, req *model.ChangeRequest) error {
	switch req.Action {
	case model.ActionCreate:
		in, err := decodePayload[dto.CreateProductRequest](req.Payload)
		if err != nil {
			return err
		}
		_, err = s.catalog.CreateProduct(ctx, in)
		return err
	case model.ActionUpdate:
		in, err := decodePayload[dto.UpdateProductRequest](req.Payload)
		if err != nil {
			return err
		}
		_, err = s.catalog.UpdateProduct(ctx, *req.TargetID, in)
		return err
	case model.ActionDelete:
		return s.catalog.SoftDeleteProduct(ctx, *req.TargetID)
	}
	return fmt.Errorf("unknown action %q", req.Action)
}

func (s *RequestService) applyCategory(ctx context.Context, req *model.ChangeRequest) error {
	switch req.Action {
	case model.ActionCreate:
		in, err := decodePayload[dto.CreateCategoryRequest](req.Payload)
		if err != nil {
			return err
		}
		_, err = s.catalog.CreateCategory(ctx, in)
		return err
	case model.ActionUpdate:
		in, err := decodePayload[dto.UpdateCategoryRequest](req.Payload)
		if err != nil {
			return err
		}
		_, err = s.catalog.UpdateCategory(ctx, *req.TargetID, in)
		return err
	case model.ActionDelete:
		return s.catalog.SoftDeleteCategory(ctx, *req.TargetID)
	}
	return fmt.Errorf("unknown action %q", req.Action)
}

func (s *RequestService) applyTopping(ctx context.Context, req *model.ChangeRequest) error {
	switch req.Action {
	case model.ActionCreate:
		in, err := decodePayload[dto.CreateToppingRequest](req.Payload)
		if err != nil {
			return err
		}
		_, err = s.catalog.CreateTopping(ctx, in)
		return err
	case model.ActionUpdate:
		in, err := decodePayload[dto.UpdateToppingRequest](req.Payload)
		if err != nil {
			return err
		}
		_, err = s.catalog.UpdateTopping(ctx, *req.TargetID, in)
		return err
	case model.ActionDelete:
		return s.catalog.DeleteTopping(ctx, *req.TargetID)
	}
	return fmt.Errorf("unknown action %q", req.Action)
}

func decodePayload[T any](payload map[string]any) (T, error) {
	var out T
	data, err := json.Marshal(payload)
	if err != nil {
		return out, fmt.Errorf("encode payload: %w", err)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("decode payload: %w", err)
	}
	return out, nil
}
