package customers

import (
	"context"
	"errors"
	"testing"

	"github.com/dhiyug/milkdiary-backend/internal/users"
	"github.com/dhiyug/milkdiary-backend/pkg/config"
	"github.com/dhiyug/milkdiary-backend/pkg/db/models"
	"github.com/dhiyug/milkdiary-backend/pkg/enums"
	pkgerrors "github.com/dhiyug/milkdiary-backend/pkg/errors"
	"gorm.io/gorm"
)

type stubCustomerRepo struct {
	customer *models.Customer
	findErr  error
	txnCount int64
	countErr error
	deleted  []uint
}

func (s *stubCustomerRepo) Create(ctx context.Context, customer *models.Customer) error {
	customer.ID = 11
	return nil
}

func (s *stubCustomerRepo) FindByID(ctx context.Context, id uint) (*models.Customer, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.customer, nil
}

func (s *stubCustomerRepo) List(ctx context.Context) ([]models.Customer, error) {
	if s.customer == nil {
		return nil, nil
	}
	return []models.Customer{*s.customer}, nil
}

func (s *stubCustomerRepo) CountTransactions(ctx context.Context, customerID uint) (int64, error) {
	if s.countErr != nil {
		return 0, s.countErr
	}
	return s.txnCount, nil
}

func (s *stubCustomerRepo) Delete(ctx context.Context, id uint) error {
	s.deleted = append(s.deleted, id)
	return nil
}

type stubTxRunner struct {
	calls   int
	lastErr error
}

func (s *stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	s.calls++
	s.lastErr = fn(nil)
	return s.lastErr
}

type stubUserRepo struct {
	created *users.CreateUserDTO
	err     error
}

func (s *stubUserRepo) Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.created = &dto
	return &models.User{ID: 3, Phone: dto.Phone, Role: dto.Role, CustomerID: dto.CustomerID}, nil
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

func newTestService(t *testing.T, repo customerRepository, usersRepo userRepository) Service {
	t.Helper()
	svc, _ := newTestServiceWithRunner(t, repo, usersRepo)
	return svc
}

func newTestServiceWithRunner(t *testing.T, repo customerRepository, usersRepo userRepository) (Service, *stubTxRunner) {
	t.Helper()
	runner := &stubTxRunner{}
	svc, err := NewService(ServiceParams{
		DB:   runner,
		Repo: repo,
		RepoFactory: func(tx *gorm.DB) customerRepository {
			return repo
		},
		UserRepoFactory: func(tx *gorm.DB) userRepository {
			return usersRepo
		},
		Password: testPasswordConfig(),
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, runner
}

func TestCreateCustomer(t *testing.T) {
	repo := &stubCustomerRepo{}
	svc := newTestService(t, repo, &stubUserRepo{})

	result, err := svc.Create(context.Background(), CreateCustomerInput{Name: "  Shyam Dairy  ", Phone: "9876501234"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if result.Customer.ID != 11 {
		t.Fatalf("expected id 11 got %d", result.Customer.ID)
	}
	if result.Customer.Name != "Shyam Dairy" {
		t.Fatalf("expected trimmed name, got %q", result.Customer.Name)
	}
	if result.TempPassword != "" {
		t.Fatal("no login requested, must not return a password")
	}
}

func TestCreateCustomerProvisionsLogin(t *testing.T) {
	repo := &stubCustomerRepo{}
	usersRepo := &stubUserRepo{}
	svc := newTestService(t, repo, usersRepo)

	result, err := svc.Create(context.Background(), CreateCustomerInput{
		Name:        "Shyam Dairy",
		Phone:       "9876501234",
		CreateLogin: true,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if result.TempPassword == "" {
		t.Fatal("expected a temporary password")
	}
	if usersRepo.created == nil {
		t.Fatal("expected portal account creation")
	}
	if usersRepo.created.Role != enums.RoleCustomer {
		t.Fatalf("expected customer role, got %s", usersRepo.created.Role)
	}
	if usersRepo.created.CustomerID == nil || *usersRepo.created.CustomerID != 11 {
		t.Fatal("expected account linked to the new customer")
	}
}

func TestCreateCustomerLoginConflictAbortsTransaction(t *testing.T) {
	repo := &stubCustomerRepo{}
	usersRepo := &stubUserRepo{err: errors.New(`duplicate key value violates unique constraint "idx_users_phone"`)}
	svc, runner := newTestServiceWithRunner(t, repo, usersRepo)

	_, err := svc.Create(context.Background(), CreateCustomerInput{
		Name:        "Shyam Dairy",
		Phone:       "9876501234",
		CreateLogin: true,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict error, got %v", err)
	}
	if runner.calls != 1 {
		t.Fatalf("both writes must share one transaction, got %d", runner.calls)
	}
	if runner.lastErr == nil {
		t.Fatal("transaction closure must fail so the customer row rolls back")
	}
}

func TestCreateCustomerLoginRequiresPhone(t *testing.T) {
	svc := newTestService(t, &stubCustomerRepo{}, &stubUserRepo{})

	_, err := svc.Create(context.Background(), CreateCustomerInput{Name: "Shyam", CreateLogin: true})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDeleteRequiresExactNameMatch(t *testing.T) {
	repo := &stubCustomerRepo{customer: &models.Customer{ID: 7, Name: "Shyam Dairy"}}
	svc := newTestService(t, repo, &stubUserRepo{})

	err := svc.Delete(context.Background(), 7, DeleteCustomerInput{ConfirmName: "shyam dairy"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeBusinessRule {
		t.Fatalf("expected business rule error, got %v", err)
	}
	if len(repo.deleted) != 0 {
		t.Fatal("must not delete on mismatched name")
	}
}

func TestDeleteBlockedByTransactions(t *testing.T) {
	repo := &stubCustomerRepo{customer: &models.Customer{ID: 7, Name: "Shyam Dairy"}, txnCount: 12}
	svc := newTestService(t, repo, &stubUserRepo{})

	err := svc.Delete(context.Background(), 7, DeleteCustomerInput{ConfirmName: "Shyam Dairy"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeBusinessRule {
		t.Fatalf("expected business rule error, got %v", err)
	}
	details, ok := typed.Details().(map[string]any)
	if !ok || details["transaction_count"] != int64(12) {
		t.Fatalf("expected transaction count in details, got %v", typed.Details())
	}
	if len(repo.deleted) != 0 {
		t.Fatal("must not delete while transactions exist")
	}
}

func TestDeleteSucceeds(t *testing.T) {
	repo := &stubCustomerRepo{customer: &models.Customer{ID: 7, Name: "Shyam Dairy"}}
	svc := newTestService(t, repo, &stubUserRepo{})

	if err := svc.Delete(context.Background(), 7, DeleteCustomerInput{ConfirmName: "Shyam Dairy"}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(repo.deleted) != 1 || repo.deleted[0] != 7 {
		t.Fatalf("expected delete of customer 7, got %v", repo.deleted)
	}
}

func TestDeleteUnknownCustomer(t *testing.T) {
	repo := &stubCustomerRepo{findErr: gorm.ErrRecordNotFound}
	svc := newTestService(t, repo, &stubUserRepo{})

	err := svc.Delete(context.Background(), 99, DeleteCustomerInput{ConfirmName: "whoever"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGetDependencyError(t *testing.T) {
	repo := &stubCustomerRepo{findErr: errors.New("boom")}
	svc := newTestService(t, repo, &stubUserRepo{})

	_, err := svc.Get(context.Background(), 1)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}
