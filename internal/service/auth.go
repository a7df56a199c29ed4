package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/api/idtoken"

	"github.com/mitea/boba-platform-api/internal/dto"
	"github.com/mitea/boba-platform-api/internal/model"
	"github.com/mitea/boba-platform-api/internal/repository"
	"github.com/mitea/boba-platform-api/internal/validation"
)

var (
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrInvalidOTP         = errors.New("invalid or expired verification code")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
	ErrGoogleDisabled     = errors.New("google sign-in is not configured")
	ErrUserNotFound       = errors.New("user not found")
)

type AuthService struct {
	userRepo       repository.UserRepository
	redisClient    *redis.Client
	jwtSecret      []byte
	jwtExpiry      time.Duration
	otpTTL         time.Duration
	resetTTL       time.Duration
	googleClientID string
	mailer         Mailer

	// verifyGoogleToken is swapped out in tests; the default calls
	// Google's idtoken validator.
	verifyGoogleToken func(ctx context.Context, token, audience string) (*GoogleIdentity, error)
}

type GoogleIdentity struct {
	Subject string
	Email   string
	Name    string
}

// Mailer delivers verification codes and password-reset tokens to the
// account's email address. The SMTP transport is deployment config;
// LogMailer stands in wherever no mail backend is wired.
type Mailer interface {
	SendVerificationCode(ctx context.Context, email, code string) error
	SendPasswordReset(ctx context.Context, email, token string) error
}

type LogMailer struct {
	log *slog.Logger
}

func NewLogMailer(log *slog.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) SendVerificationCode(_ context.Context, email, _ string) error {
	m.log.Info("verification code issued", "email", email)
	return nil
}

func (m *LogMailer) SendPasswordReset(_ context.Context, email, _ string) error {
	m.log.Info("password reset token issued", "email", email)
	return nil
}

func NewAuthService(
	userRepo repository.UserRepository,
	redisClient *redis.Client,
	jwtSecret string,
	jwtExpiry, otpTTL, resetTTL time.Duration,
	googleClientID string,
	mailer Mailer,
) *AuthService {
	return &AuthService{
		userRepo:          userRepo,
		redisClient:       redisClient,
		jwtSecret:         []byte(jwtSecret),
		jwtExpiry:         jwtExpiry,
		otpTTL:            otpTTL,
		resetTTL:          resetTTL,
		googleClientID:    googleClientID,
		mailer:            mailer,
		verifyGoogleToken: verifyWithGoogle,
	}
}

func verifyWithGoogle(ctx context.Context, token, audience string) (*GoogleIdentity, error) {
	payload, err := idtoken.Validate(ctx, token, audience)
	if err != nil {
		return nil, err
	}
	email, _ := payload.Claims["email"].(string)
	name, _ := payload.Claims["name"].(string)
	return &GoogleIdentity{Subject: payload.Subject, Email: email, Name: name}, nil
}

func (s *AuthService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.UserResponse, error) {
	if err := validation.Password(req.Password, req.Email, req.Name); err != nil {
		return nil, err
	}
	if req.Phone != "" {
		if err := validation.Phone(req.Phone); err != nil {
			return nil, err
		}
	}

	existing, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("check user: %w", err)
	}
	if existing != nil {
		return nil, ErrUserAlreadyExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Email: req.Email, Password: string(hashed),
		Name: req.Name, Phone: req.Phone,
		Role: model.RoleUser, Status: model.UserStatusActive,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	code, err := s.issueOTP(ctx, user.Email)
	if err != nil {
		return nil, fmt.Errorf("issue verification code: %w", err)
	}
	if err := s.mailer.SendVerificationCode(ctx, user.Email, code); err != nil {
		return nil, fmt.Errorf("send verification code: %w", err)
	}

	resp := dto.ToUserResponse(user)
	return &resp, nil
}

// issueOTP generates a 6-digit code and stores it under the email with a
// TTL. The code goes out through the mailer; it is never returned over
// the API.
func (s *AuthService) issueOTP(ctx context.Context, email string) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	code := fmt.Sprintf("%06d", n.Int64())
	if err := s.redisClient.Set(ctx, "otp:"+email, code, s.otpTTL).Err(); err != nil {
		return "", err
	}
	return code, nil
}

func (s *AuthService) VerifyEmail(ctx context.Context, req dto.VerifyEmailRequest) error {
	stored, err := s.redisClient.Get(ctx, "otp:"+req.Email).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrInvalidOTP
		}
		return fmt.Errorf("get otp: %w", err)
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(req.Code)) != 1 {
		return ErrInvalidOTP
	}

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return ErrUserNotFound
	}
	if err := s.userRepo.SetVerified(ctx, user.ID); err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}
	s.redisClient.Del(ctx, "otp:"+req.Email)
	return nil
}

func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return ErrUserNotFound
	}
	if user.Verified {
		return nil
	}
	code, err := s.issueOTP(ctx, email)
	if err != nil {
		return fmt.Errorf("issue verification code: %w", err)
	}
	if err := s.mailer.SendVerificationCode(ctx, email, code); err != nil {
		return fmt.Errorf("send verification code: %w", err)
	}
	return nil
}

func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.Verified {
		return nil, ErrEmailNotVerified
	}
	if user.Status != model.UserStatusActive {
		return nil, ErrAccountInactive
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	return &dto.AuthResponse{Token: token, User: dto.ToUserResponse(user)}, nil
}

// LoginWithGoogle verifies the ID token forwarded by the client and creates
// the account on first sign-in. Google accounts arrive pre-verified.
func (s *AuthService) LoginWithGoogle(ctx context.Context, idToken string) (*dto.AuthResponse, error) {
	if s.googleClientID == "" {
		return nil, ErrGoogleDisabled
	}
	identity, err := s.verifyGoogleToken(ctx, idToken, s.googleClientID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidCredentials, err)
	}

	user, err := s.userRepo.GetByEmail(ctx, identity.Email)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		user = &model.User{
			Email: identity.Email, Name: identity.Name,
			Role: model.RoleUser, Status: model.UserStatusActive,
			Verified: true, GoogleID: identity.Subject,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
	}
	if user.Status != model.UserStatusActive {
		return nil, ErrAccountInactive
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	return &dto.AuthResponse{Token: token, User: dto.ToUserResponse(user)}, nil
}

// CheckAuth is the startup session probe. It never reports an error:
// any failure to resolve the user means "not authenticated" and returns
// (nil, nil), so the frontend can call it unconditionally on load.
func (s *AuthService) CheckAuth(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil || user == nil || user.Status != model.UserStatusActive {
		return nil, nil
	}
	resp := dto.ToUserResponse(user)
	return &resp, nil
}

func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		// Do not reveal whether the email is registered.
		return nil
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}
	token := hex.EncodeToString(buf)
	if err := s.redisClient.Set(ctx, "pwreset:"+token, user.ID.String(), s.resetTTL).Err(); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}
	if err := s.mailer.SendPasswordReset(ctx, email, token); err != nil {
		return fmt.Errorf("send reset token: %w", err)
	}
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, req dto.ResetPasswordRequest) error {
	idStr, err := s.redisClient.Get(ctx, "pwreset:"+req.Token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrInvalidResetToken
		}
		return fmt.Errorf("get reset token: %w", err)
	}
	userID, err := uuid.Parse(idStr)
	if err != nil {
		return ErrInvalidResetToken
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return ErrInvalidResetToken
	}
	if err := validation.Password(req.Password, user.Email, user.Name); err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, userID, string(hashed)); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	s.redisClient.Del(ctx, "pwreset:"+req.Token)
	return nil
}

func (s *AuthService) generateToken(user *model.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":  user.ID.String(),
		"role": string(user.Role),
		"exp":  time.Now().Add(s.jwtExpiry).Unix(),
		"iat":  time.Now().Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}
