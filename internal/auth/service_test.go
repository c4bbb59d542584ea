package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/dhiyug/milkdiary-backend/pkg/auth/session"
	"github.com/dhiyug/milkdiary-backend/pkg/config"
	"github.com/dhiyug/milkdiary-backend/pkg/db/models"
	"github.com/dhiyug/milkdiary-backend/pkg/enums"
	pkgerrors "github.com/dhiyug/milkdiary-backend/pkg/errors"
	"github.com/dhiyug/milkdiary-backend/pkg/security"
	"gorm.io/gorm"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "secret", Issuer: "milkdiary", ExpirationMinutes: 30}
}

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     8,
		ArgonKeyLen:      16,
	}
}

func testUser(t *testing.T, password string) *models.User {
	t.Helper()
	hash, err := security.HashPassword(password, testPasswordConfig())
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	customerID := uint(9)
	return &models.User{
		ID:           4,
		Phone:        "9876543210",
		Name:         "Ramesh",
		PasswordHash: hash,
		Role:         enums.RoleCustomer,
		CustomerID:   &customerID,
	}
}

type stubUserRepo struct {
	user *models.User
	err  error
}

func (s stubUserRepo) FindByPhone(ctx context.Context, phone string) (*models.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.user, nil
}

type stubSessionManager struct {
	refreshToken string
	rotatedID    string
	rotatedToken string
	rotateErr    error
	revoked      []string
	generateErr  error
}

func (s *stubSessionManager) Generate(ctx context.Context, accessID string) (string, error) {
	if s.generateErr != nil {
		return "", s.generateErr
	}
	return s.refreshToken, nil
}

func (s *stubSessionManager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	if s.rotateErr != nil {
		return "", "", s.rotateErr
	}
	return s.rotatedID, s.rotatedToken, nil
}

func (s *stubSessionManager) Revoke(ctx context.Context, accessID string) error {
	s.revoked = append(s.revoked, accessID)
	return nil
}

func newTestService(t *testing.T, repo userRepository, mgr sessionManager) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		SessionManager: mgr,
		JWTConfig:      testJWTConfig(),
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	if _, err := NewService(ServiceParams{SessionManager: &stubSessionManager{}, JWTConfig: testJWTConfig()}); err == nil {
		t.Fatal("expected error without user repo")
	}
	if _, err := NewService(ServiceParams{UserRepo: stubUserRepo{}, JWTConfig: testJWTConfig()}); err == nil {
		t.Fatal("expected error without session manager")
	}
}

func TestLoginSuccess(t *testing.T) {
	user := testUser(t, "s3cret-milk")
	mgr := &stubSessionManager{refreshToken: "refresh-token"}
	svc := newTestService(t, stubUserRepo{user: user}, mgr)

	resp, err := svc.Login(context.Background(), LoginRequest{Phone: "9876543210", Password: "s3cret-milk"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.AccessToken == "" {
		t.Fatal("expected access token")
	}
	if resp.RefreshToken != "refresh-token" {
		t.Fatalf("unexpected refresh token %q", resp.RefreshToken)
	}
	if resp.User == nil || resp.User.ID != user.ID {
		t.Fatal("expected user payload")
	}
	if resp.User.CustomerID == nil || *resp.User.CustomerID != 9 {
		t.Fatal("expected linked customer id in payload")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	user := testUser(t, "s3cret-milk")
	svc := newTestService(t, stubUserRepo{user: user}, &stubSessionManager{})

	_, err := svc.Login(context.Background(), LoginRequest{Phone: "9876543210", Password: "wrong"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLoginUnknownPhone(t *testing.T) {
	svc := newTestService(t, stubUserRepo{err: gorm.ErrRecordNotFound}, &stubSessionManager{})

	_, err := svc.Login(context.Background(), LoginRequest{Phone: "0000000000", Password: "whatever"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLoginLookupFailure(t *testing.T) {
	svc := newTestService(t, stubUserRepo{err: errors.New("boom")}, &stubSessionManager{})

	_, err := svc.Login(context.Background(), LoginRequest{Phone: "9876543210", Password: "whatever"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeInternal {
		t.Fatalf("expected internal error, got %v", err)
	}
}

func TestRefreshRotatesSession(t *testing.T) {
	user := testUser(t, "s3cret-milk")
	mgr := &stubSessionManager{refreshToken: "first", rotatedID: session.NewAccessID(), rotatedToken: "second"}
	svc := newTestService(t, stubUserRepo{user: user}, mgr)

	login, err := svc.Login(context.Background(), LoginRequest{Phone: "9876543210", Password: "s3cret-milk"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	resp, err := svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: "first",
	})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if resp.AccessToken == "" || resp.AccessToken == login.AccessToken {
		t.Fatal("expected a fresh access token")
	}
	if resp.RefreshToken != "second" {
		t.Fatalf("unexpected refresh token %q", resp.RefreshToken)
	}
}

func TestRefreshRejectsInvalidSession(t *testing.T) {
	user := testUser(t, "s3cret-milk")
	mgr := &stubSessionManager{refreshToken: "first", rotateErr: session.ErrInvalidRefreshToken}
	svc := newTestService(t, stubUserRepo{user: user}, mgr)

	login, err := svc.Login(context.Background(), LoginRequest{Phone: "9876543210", Password: "s3cret-milk"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	_, err = svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: "forged",
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	mgr := &stubSessionManager{}
	svc := newTestService(t, stubUserRepo{}, mgr)

	if err := svc.Logout(context.Background(), "access-id"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(mgr.revoked) != 1 || mgr.revoked[0] != "access-id" {
		t.Fatalf("expected revoke call, got %v", mgr.revoked)
	}

	if err := svc.Logout(context.Background(), "  "); err == nil {
		t.Fatal("expected error for blank access id")
	}
}
