package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mitea/boba-platform-api/internal/dto"
	"github.com/mitea/boba-platform-api/internal/model"
	"github.com/mitea/boba-platform-api/internal/repository"
)

// AccountService is the admin back-office view of user accounts. Accounts
// are never hard-deleted; deactivation is a status flip.
type AccountService struct {
	userRepo repository.UserRepository
}

func NewAccountService(userRepo repository.UserRepository) *AccountService {
	return &AccountService{userRepo: userRepo}
}

func (s *AccountService) List(ctx context.Context, params dto.ListUsersParams) ([]dto.UserDetailResponse, int, error) {
	offset := (params.Page - 1) * params.Limit
	users, total, err := s.userRepo.List(ctx, params.Limit, offset, params.Search, params.Role, params.Status)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	out := make([]dto.UserDetailResponse, 0, len(users))
	for i := range users {
		out = append(out, dto.UserDetailResponse{
			UserResponse: dto.ToUserResponse(&users[i]),
			CreatedAt:    users[i].CreatedAt,
			UpdatedAt:    users[i].UpdatedAt,
		})
	}
	return out, total, nil
}

func (s *AccountService) SetStatus(ctx context.Context, id uuid.UUID, status model.UserStatus) error {
	if err := s.userRepo.SetStatus(ctx, id, status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return fmt.Errorf("set user status: %w", err)
	}
	return nil
}

func (s *AccountService) Verify(ctx context.Context, id uuid.UUID) error {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return ErrUserNotFound
	}
	if err := s.userRepo.SetVerified(ctx, id); err != nil {
		return fmt.Errorf("verify user: %w", err)
	}
	return nil
}
