package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mitea/boba-platform-api/internal/dto"
	"github.com/mitea/boba-platform-api/internal/model"
	"github.com/mitea/boba-platform-api/internal/validation"
)

type mockUserRepo struct {
	users map[string]*model.User
	byID  map[uuid.UUID]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User), byID: make(map[uuid.UUID]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	m.users[user.Email] = user
	m.byID[user.ID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	return m.byID[id], nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	return m.users[email], nil
}

func (m *mockUserRepo) List(_ context.Context, limit, offset int, search, role, status string) ([]model.User, int, error) {
	var out []model.User
	for _, u := range m.byID {
		out = append(out, *u)
	}
	return out, len(out), nil
}

func (m *mockUserRepo) SetVerified(_ context.Context, id uuid.UUID) error {
	if u, ok := m.byID[id]; ok {
		u.Verified = true
	}
	return nil
}

func (m *mockUserRepo) SetStatus(_ context.Context, id uuid.UUID, status model.UserStatus) error {
	if u, ok := m.byID[id]; ok {
		u.Status = status
	}
	return nil
}

func (m *mockUserRepo) UpdatePassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	if u, ok := m.byID[id]; ok {
		u.Password = passwordHash
	}
	return nil
}

type mockMailer struct {
	codes  map[string]string
	resets map[string]string
}

func newMockMailer() *mockMailer {
	return &mockMailer{codes: make(map[string]string), resets: make(map[string]string)}
}

func (m *mockMailer) SendVerificationCode(_ context.Context, email, code string) error {
	m.codes[email] = code
	return nil
}

func (m *mockMailer) SendPasswordReset(_ context.Context, email, token string) error {
	m.resets[email] = token
	return nil
}

func newTestAuthService(t *testing.T, repo *mockUserRepo) (*AuthService, *miniredis.Miniredis, *mockMailer) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	mailer := newMockMailer()
	svc := NewAuthService(repo, client, "test-secret", time.Hour, 10*time.Minute, 30*time.Minute, "test-client-id", mailer)
	return svc, mr, mailer
}

func TestAuthService_Register(t *testing.T) {
	repo := newMockUserRepo()
	svc, mr, mailer := newTestAuthService(t, repo)

	resp, err := svc.Register(context.Background(), dto.RegisterRequest{
		Email: "test@example.com", Password: "Str0ng!Pass", Name: "Lan",
	})
	require.NoError(t, err)
	assert.Equal(t, "test@example.com", resp.Email)
	assert.Equal(t, model.RoleUser, resp.Role)
	assert.False(t, resp.Verified)

	// The stored code and the mailed code are the same six digits.
	code, err := mr.Get("otp:test@example.com")
	require.NoError(t, err)
	assert.Len(t, code, 6)
	assert.Equal(t, code, mailer.codes["test@example.com"])
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	repo := newMockUserRepo()
	svc, _, _ := newTestAuthService(t, repo)

	repo.users["test@example.com"] = &model.User{Email: "test@example.com"}

	_, err := svc.Register(context.Background(), dto.RegisterRequest{
		Email: "test@example.com", Password: "Str0ng!Pass",
	})
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestAuthService_Register_WeakPassword(t *testing.T) {
	svc, _, _ := newTestAuthService(t, newMockUserRepo())

	_, err := svc.Register(context.Background(), dto.RegisterRequest{
		Email: "test@example.com", Password: "short",
	})
	assert.ErrorIs(t, err, validation.ErrPasswordTooShort)
}

func TestAuthService_VerifyEmail(t *testing.T) {
	repo := newMockUserRepo()
	svc, mr, _ := newTestAuthService(t, repo)

	_, err := svc.Register(context.Background(), dto.RegisterRequest{
		Email: "test@example.com", Password: "Str0ng!Pass",
	})
	require.NoError(t, err)
	code, err := mr.Get("otp:test@example.com")
	require.NoError(t, err)

	err = svc.VerifyEmail(context.Background(), dto.VerifyEmailRequest{Email: "test@example.com", Code: code})
	require.NoError(t, err)
	assert.True(t, repo.users["test@example.com"].Verified)

	// The code is single-use.
	err = svc.VerifyEmail(context.Background(), dto.VerifyEmailRequest{Email: "test@example.com", Code: code})
	assert.ErrorIs(t, err, ErrInvalidOTP)
}

func TestAuthService_VerifyEmail_WrongCode(t *testing.T) {
	repo := newMockUserRepo()
	svc, _, _ := newTestAuthService(t, repo)

	_, err := svc.Register(context.Background(), dto.RegisterRequest{
		Email: "test@example.com", Password: "Str0ng!Pass",
	})
	require.NoError(t, err)

	err = svc.VerifyEmail(context.Background(), dto.VerifyEmailRequest{Email: "test@example.com", Code: "000000"})
	assert.ErrorIs(t, err, ErrInvalidOTP)
}

func seedUser(repo *mockUserRepo, email, password string, verified bool, status model.UserStatus) *model.User {
	hashed, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	user := &model.User{
		ID: uuid.New(), Email: email, Password: string(hashed),
		Role: model.RoleUser, Status: status, Verified: verified,
	}
	repo.users[email] = user
	repo.byID[user.ID] = user
	return user
}

func TestAuthService_Login(t *testing.T) {
	repo := newMockUserRepo()
	svc, _, _ := newTestAuthService(t, repo)
	seedUser(repo, "test@example.com", "Str0ng!Pass", true, model.UserStatusActive)

	resp, err := svc.Login(context.Background(), dto.LoginRequest{
		Email: "test@example.com", Password: "Str0ng!Pass",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "test@example.com", resp.User.Email)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	repo := newMockUserRepo()
	svc, _, _ := newTestAuthService(t, repo)
	seedUser(repo, "test@example.com", "Str0ng!Pass", true, model.UserStatusActive)

	_, err := svc.Login(context.Background(), dto.LoginRequest{
		Email: "test@example.com", Password: "wrong",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Login_Unverified(t *testing.T) {
	repo := newMockUserRepo()
	svc, _, _ := newTestAuthService(t, repo)
	seedUser(repo, "test@example.com", "Str0ng!Pass", false, model.UserStatusActive)

	_, err := svc.Login(context.Background(), dto.LoginRequest{
		Email: "test@example.com", Password: "Str0ng!Pass",
	})
	assert.ErrorIs(t, err, ErrEmailNotVerified)
}

func TestAuthService_Login_Inactive(t *testing.T) {
	repo := newMockUserRepo()
	svc, _, _ := newTestAuthService(t, repo)
	seedUser(repo, "test@example.com", "Str0ng!Pass", true, model.UserStatusInactive)

	_, err := svc.Login(context.Background(), dto.LoginRequest{
		Email: "test@example.com", Password: "Str0ng!Pass",
	})
	assert.ErrorIs(t, err, ErrAccountInactive)
}

func TestAuthService_LoginWithGoogle_FirstSignIn(t *testing.T) {
	repo := newMockUserRepo()
	svc, _, _ := newTestAuthService(t, repo)
	svc.verifyGoogleToken = func(_ context.Context, _, _ string) (*GoogleIdentity, error) {
		return &GoogleIdentity{Subject: "g-123", Email: "g@example.com", Name: "G User"}, nil
	}

	resp, err := svc.LoginWithGoogle(context.Background(), "id-token")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)

	created := repo.users["g@example.com"]
	require.NotNil(t, created)
	assert.True(t, created.Verified)
	assert.Equal(t, "g-123", created.GoogleID)
}

func TestAuthService_LoginWithGoogle_Disabled(t *testing.T) {
	repo := newMockUserRepo()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	svc := NewAuthService(repo, client, "test-secret", time.Hour, 10*time.Minute, 30*time.Minute, "", newMockMailer())

	_, err := svc.LoginWithGoogle(context.Background(), "id-token")
	assert.ErrorIs(t, err, ErrGoogleDisabled)
}

func TestAuthService_CheckAuth_NeverErrors(t *testing.T) {
	repo := newMockUserRepo()
	svc, _, _ := newTestAuthService(t, repo)

	user, err := svc.CheckAuth(context.Background(), uuid.New())
	assert.NoError(t, err)
	assert.Nil(t, user)

	inactive := seedUser(repo, "i@example.com", "Str0ng!Pass", true, model.UserStatusInactive)
	user, err = svc.CheckAuth(context.Background(), inactive.ID)
	assert.NoError(t, err)
	assert.Nil(t, user)
}

func TestAuthService_PasswordReset(t *testing.T) {
	repo := newMockUserRepo()
	svc, mr, mailer := newTestAuthService(t, repo)
	seedUser(repo, "test@example.com", "Str0ng!Pass", true, model.UserStatusActive)

	require.NoError(t, svc.ForgotPassword(context.Background(), "test@example.com"))

	// The token the user receives is the one stored in Redis.
	token := mailer.resets["test@example.com"]
	require.NotEmpty(t, token)
	assert.True(t, mr.Exists("pwreset:"+token))

	err := svc.ResetPassword(context.Background(), dto.ResetPasswordRequest{
		Token: token, Password: "N3w!Passw0rd",
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), dto.LoginRequest{
		Email: "test@example.com", Password: "N3w!Passw0rd",
	})
	assert.NoError(t, err)

	// Reset tokens are single-use.
	err = svc.ResetPassword(context.Background(), dto.ResetPasswordRequest{
		Token: token, Password: "An0ther!Pass",
	})
	assert.ErrorIs(t, err, ErrInvalidResetToken)
}

func TestAuthService_ForgotPassword_UnknownEmail(t *testing.T) {
	svc, mr, mailer := newTestAuthService(t, newMockUserRepo())

	// Unknown addresses succeed silently; nothing is stored or sent.
	require.NoError(t, svc.ForgotPassword(context.Background(), "nobody@example.com"))
	assert.Empty(t, mr.Keys())
	assert.Empty(t, mailer.resets)
}
