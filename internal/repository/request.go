package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mitea/boba-platform-api/internal/model"
)

type RequestRepository interface {
	Create(ctx context.Context, req *model.ChangeRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.ChangeRequest, error)
	List(ctx context.Context, limit, offset int, managerID *uuid.UUID, entity, action, status string) ([]model.ChangeRequest, int, error)
	Update(ctx context.Context, req *model.ChangeRequest) error
	SetStatus(ctx context.Context, id uuid.UUID, from, to model.RequestStatus, note string, reviewedBy *uuid.UUID) error
}

type pgRequestRepo struct{ pool *pgxpool.Pool }

func NewRequestRepository(pool *pgxpool.Pool) RequestRepository {
	return &pgRequestRepo{pool: pool}
}

const requestColumns = `id, store_id, manager_id, entity, action, target_id, payload, original, reason, status, tags, attachments, review_note, reviewed_by, created_at, updated_at`

func (r *pgRequestRepo) Create(ctx context.Context, req *model.ChangeRequest) error {
	req.ID = uuid.New()
	payload, err := json.Marshal(req.Payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	original, err := json.Marshal(req.Original)
	if err != nil {
		return fmt.Errorf("encode original: %w", err)
	}
	tags, err := json.Marshal(req.Tags)
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}
	attachments, err := json.Marshal(req.Attachments)
	if err != nil {
		return fmt.Errorf("encode attachments: %w", err)
	}

	query := `INSERT INTO change_requests (id, store_id, manager_id, entity, action, target_id, payload, original, reason, status, tags, attachments, review_note, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb, $8::jsonb, $9, $10, $11::jsonb, $12::jsonb, '', NOW(), NOW())
			  RETURNING created_at, updated_at`
	err = r.pool.QueryRow(ctx, query,
		req.ID, req.StoreID, req.ManagerID, req.Entity, req.Action, req.TargetID,
		payload, original, req.Reason, req.Status, tags, attachments,
	).Scan(&req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return nil
}

func scanRequest(row pgx.Row) (*model.ChangeRequest, error) {
	req := &model.ChangeRequest{}
	var payload, original, tags, attachments []byte
	err := row.Scan(
		&req.ID, &req.StoreID, &req.ManagerID, &req.Entity, &req.Action,
		&req.TargetID, &payload, &original, &req.Reason, &req.Status,
		&tags, &attachments, &req.ReviewNote, &req.ReviewedBy,
		&req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := decodeRequestJSON(req, payload, original, tags, attachments); err != nil {
		return nil, err
	}
	return req, nil
}

func decodeRequestJSON(req *model.ChangeRequest, payload, original, tags, attachments []byte) error {
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &req.Payload); err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}
	}
	if len(original) > 0 {
		if err := json.Unmarshal(original, &req.Original); err != nil {
			return fmt.Errorf("decode original: %w", err)
		}
	}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &req.Tags); err != nil {
			return fmt.Errorf("decode tags: %w", err)
		}
	}
	if len(attachments) > 0 {
		if err := json.Unmarshal(attachments, &req.Attachments); err != nil {
			return fmt.Errorf("decode attachments: %w", err)
		}
	}
	return nil
}

func (r *pgRequestRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.ChangeRequest, error) {
	req, err := scanRequest(r.pool.QueryRow(ctx,
		`SELECT `+requestColumns+` FROM change_requests WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get request: %w", err)
	}
	return req, nil
}

func (r *pgRequestRepo) List(ctx context.Context, limit, offset int, managerID *uuid.UUID, entity, action, status string) ([]model.ChangeRequest, int, error) {
	where := `WHERE ($1::uuid IS NULL OR manager_id = $1)
			  AND ($2 = '' OR entity = $2)
			  AND ($3 = '' OR action = $3)
			  AND ($4 = '' OR status = $4)`

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM change_requests `+where,
		managerID, entity, action, status).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count requests: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+requestColumns+` FROM change_requests `+where+` ORDER BY created_at DESC LIMIT $5 OFFSET $6`,
		managerID, entity, action, status, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list requests: %w", err)
	}
	defer rows.Close()

	var requests []model.ChangeRequest
	for rows.Next() {
		req := model.ChangeRequest{}
		var payload, original, tags, attachments []byte
		if err := rows.Scan(
			&req.ID, &req.StoreID, &req.ManagerID, &req.Entity, &req.Action,
			&req.TargetID, &payload, &original, &req.Reason, &req.Status,
			&tags, &attachments, &req.ReviewNote, &req.ReviewedBy,
			&req.CreatedAt, &req.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan request: %w", err)
		}
		if err := decodeRequestJSON(&req, payload, original, tags, attachments); err != nil {
			return nil, 0, err
		}
		requests = append(requests, req)
	}
	return requests, total, nil
}

// Update rewrites the mutable fields of a still-pending request. The status
// guard in the WHERE clause keeps a concurrent approval from being clobbered.
func (r *pgRequestRepo) Update(ctx context.Context, req *model.ChangeRequest) error {
	payload, err := json.Marshal(req.Payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	tags, err := json.Marshal(req.Tags)
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}
	attachments, err := json.Marshal(req.Attachments)
	if err != nil {
		return fmt.Errorf("encode attachments: %w", err)
	}

	err = r.pool.QueryRow(ctx,
		`UPDATE change_requests SET payload = $2::jsonb, reason = $3, tags = $4::jsonb, attachments = $5::jsonb, updated_at = NOW()
		 WHERE id = $1 AND status = $6 RETURNING updated_at`,
		req.ID, payload, req.Reason, tags, attachments, model.RequestStatusPending,
	).Scan(&req.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update request: %w", err)
	}
	return nil
}

func (r *pgRequestRepo) SetStatus(ctx context.Context, id uuid.UUID, from, to model.RequestStatus, note string, reviewedBy *uuid.UUID) error {
	ct, err := r.pool.Exec(ctx,
		`UPDATE change_requests SET status = $3, review_note = $4, reviewed_by = $5, updated_at = NOW()
		 WHERE id = $1 AND status = $2`,
		id, from, to, note, reviewedBy,
	)
	if err != nil {
		return fmt.Errorf("set request status: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
