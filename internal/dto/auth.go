package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/mitea/boba-platform-api/internal/model"
)

type RegisterRequest struct {
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirmPassword" binding:"required,eqfield=Password"`
	Name            string `json:"name"`
	Phone           string `json:"phone"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type GoogleLoginRequest struct {
	IDToken string `json:"idToken" binding:"required"`
}

type VerifyEmailRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required,len=6"`
}

type ResendVerificationRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Token           string `json:"token" binding:"required"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirmPassword" binding:"required,eqfield=Password"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type UserResponse struct {
	ID       uuid.UUID        `json:"id"`
	Email    string           `json:"email"`
	Name     string           `json:"name"`
	Phone    string           `json:"phone,omitempty"`
	Role     model.Role       `json:"role"`
	Status   model.UserStatus `json:"status"`
	Verified bool             `json:"verified"`
}

func ToUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID: u.ID, Email: u.Email, Name: u.Name, Phone: u.Phone,
		Role: u.Role, Status: u.Status, Verified: u.Verified,
	}
}

// --- Account admin ---

type ListUsersParams struct {
	Page   int    `form:"page,default=1" binding:"min=1"`
	Limit  int    `form:"limit,default=20" binding:"min=1,max=100"`
	Search string `form:"search"`
	Role   string `form:"role" binding:"omitempty,oneof=user manager admin"`
	Status string `form:"status" binding:"omitempty,oneof=active inactive"`
}

type SetUserStatusRequest struct {
	Status model.UserStatus `json:"status" binding:"required,oneof=active inactive"`
}

type UserDetailResponse struct {
	UserResponse
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
