package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/mitea/boba-platform-api/internal/model"
)

type SubmitRequestRequest struct {
	Entity      model.RequestEntity `json:"entity" binding:"required,oneof=product category topping"`
	Action      model.RequestAction `json:"action" binding:"required,oneof=create update delete"`
	TargetID    *uuid.UUID          `json:"targetId"`
	Payload     map[string]any      `json:"payload" binding:"required"`
	Reason      string              `json:"reason"`
	Tags        []string            `json:"tags"`
	Attachments []string            `json:"attachments"`
}

type UpdateRequestRequest struct {
	Payload     map[string]any `json:"payload" binding:"required"`
	Reason      string         `json:"reason"`
	Tags        []string       `json:"tags"`
	Attachments []string       `json:"attachments"`
}

type CancelRequestRequest struct {
	Note string `json:"note"`
}

type ReviewRequestRequest struct {
	Note string `json:"note"`
}

type ListRequestsParams struct {
	Page   int    `form:"page,default=1" binding:"min=1"`
	Limit  int    `form:"limit,default=20" binding:"min=1,max=100"`
	Entity string `form:"entity" binding:"omitempty,oneof=product category topping"`
	Action string `form:"action" binding:"omitempty,oneof=create update delete"`
	Status string `form:"status" binding:"omitempty,oneof=pending approved rejected cancelled"`
}

type PreviewDiffRequest struct {
	Original map[string]any `json:"original" binding:"required"`
	Payload  map[string]any `json:"payload" binding:"required"`
}

// FieldChange is one line of the server-computed diff shown to the manager
// before submission.
type FieldChange struct {
	Field string `json:"field"`
	From  any    `json:"from"`
	To    any    `json:"to"`
}

type RequestResponse struct {
	ID          uuid.UUID           `json:"id"`
	StoreID     uuid.UUID           `json:"storeId"`
	ManagerID   uuid.UUID           `json:"managerId"`
	Entity      model.RequestEntity `json:"entity"`
	Action      model.RequestAction `json:"action"`
	TargetID    *uuid.UUID          `json:"targetId,omitempty"`
	Payload     map[string]any      `json:"payload"`
	Original    map[string]any      `json:"original,omitempty"`
	Reason      string              `json:"reason"`
	Status      model.RequestStatus `json:"status"`
	Tags        []string            `json:"tags,omitempty"`
	Attachments []string            `json:"attachments,omitempty"`
	ReviewNote  string              `json:"reviewNote,omitempty"`
	ReviewedBy  *uuid.UUID          `json:"reviewedBy,omitempty"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

func ToRequestResponse(r *model.ChangeRequest) RequestResponse {
	return RequestResponse{
		ID: r.ID, StoreID: r.StoreID, ManagerID: r.ManagerID,
		Entity: r.Entity, Action: r.Action, TargetID: r.TargetID,
		Payload: r.Payload, Original: r.Original, Reason: r.Reason,
		Status: r.Status, Tags: r.Tags, Attachments: r.Attachments,
		ReviewNote: r.ReviewNote, ReviewedBy: r.ReviewedBy,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}
