package customers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dhiyug/milkdiary-backend/internal/users"
	"github.com/dhiyug/milkdiary-backend/pkg/config"
	"github.com/dhiyug/milkdiary-backend/pkg/db"
	"github.com/dhiyug/milkdiary-backend/pkg/db/models"
	"github.com/dhiyug/milkdiary-backend/pkg/enums"
	pkgerrors "github.com/dhiyug/milkdiary-backend/pkg/errors"
	"github.com/dhiyug/milkdiary-backend/pkg/security"
	"gorm.io/gorm"
)

type customerRepository interface {
	Create(ctx context.Context, customer *models.Customer) error
	FindByID(ctx context.Context, id uint) (*models.Customer, error)
	List(ctx context.Context) ([]models.Customer, error)
	CountTransactions(ctx context.Context, customerID uint) (int64, error)
	Delete(ctx context.Context, id uint) error
}

type userRepository interface {
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes register operations.
type Service interface {
	List(ctx context.Context) ([]CustomerDTO, error)
	Get(ctx context.Context, id uint) (*CustomerDTO, error)
	Create(ctx context.Context, input CreateCustomerInput) (*CreateCustomerResult, error)
	Delete(ctx context.Context, id uint, input DeleteCustomerInput) error
}

// ServiceParams packages the customer service dependencies. The repo
// factories default to the GORM-backed repositories; tests swap in stubs.
type ServiceParams struct {
	DB              txRunner
	Repo            customerRepository
	RepoFactory     func(tx *gorm.DB) customerRepository
	UserRepoFactory func(tx *gorm.DB) userRepository
	Password        config.PasswordConfig
}

type service struct {
	db          txRunner
	repo        customerRepository
	repoFactory func(tx *gorm.DB) customerRepository
	userFactory func(tx *gorm.DB) userRepository
	passwordCfg config.PasswordConfig
}

// NewService builds a customer service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("customer repository required")
	}
	if params.RepoFactory == nil {
		params.RepoFactory = func(tx *gorm.DB) customerRepository { return NewRepository(tx) }
	}
	if params.UserRepoFactory == nil {
		params.UserRepoFactory = func(tx *gorm.DB) userRepository { return users.NewRepository(tx) }
	}
	return &service{
		db:          params.DB,
		repo:        params.Repo,
		repoFactory: params.RepoFactory,
		userFactory: params.UserRepoFactory,
		passwordCfg: params.Password,
	}, nil
}

func (s *service) List(ctx context.Context) ([]CustomerDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list customers")
	}
	result := make([]CustomerDTO, 0, len(rows))
	for i := range rows {
		result = append(result, *FromModel(&rows[i]))
	}
	return result, nil
}

func (s *service) Get(ctx context.Context, id uint) (*CustomerDTO, error) {
	customer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
	}
	return FromModel(customer), nil
}

func (s *service) Create(ctx context.Context, input CreateCustomerInput) (*CreateCustomerResult, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer name is required")
	}
	phone := strings.TrimSpace(input.Phone)
	if input.CreateLogin && phone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "phone is required to provision a login")
	}

	var tempPassword, hash string
	if input.CreateLogin {
		var err error
		tempPassword, err = security.GenerateTempPassword(12)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate temp password")
		}
		hash, err = security.HashPassword(tempPassword, s.passwordCfg)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
		}
	}

	customer := &models.Customer{
		Name:    name,
		Phone:   phone,
		Address: strings.TrimSpace(input.Address),
	}

	// The customer row and its portal login commit or roll back together.
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repoFactory(tx).Create(ctx, customer); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create customer")
		}
		if !input.CreateLogin {
			return nil
		}
		customerID := customer.ID
		if _, err := s.userFactory(tx).Create(ctx, users.CreateUserDTO{
			Phone:        phone,
			Name:         name,
			PasswordHash: hash,
			Role:         enums.RoleCustomer,
			CustomerID:   &customerID,
		}); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "an account with this phone already exists")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create portal account")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &CreateCustomerResult{Customer: FromModel(customer)}
	if input.CreateLogin {
		result.TempPassword = tempPassword
	}
	return result, nil
}

// Delete removes a customer after two guards: the operator must retype
// the exact stored name, and the customer must have no ledger rows.
func (s *service) Delete(ctx context.Context, id uint, input DeleteCustomerInput) error {
	customer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
	}

	if strings.TrimSpace(input.ConfirmName) != customer.Name {
		return pkgerrors.New(pkgerrors.CodeBusinessRule, "confirmation name does not match")
	}

	count, err := s.repo.CountTransactions(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count transactions")
	}
	if count > 0 {
		return pkgerrors.New(pkgerrors.CodeBusinessRule,
			fmt.Sprintf("customer has %d transactions; delete them first", count)).
			WithDetails(map[string]any{"transaction_count": count})
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete customer")
	}
	return nil
}
