package transactions

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dhiyug/milkdiary-backend/internal/rates"
	"github.com/dhiyug/milkdiary-backend/pkg/db/models"
	"github.com/dhiyug/milkdiary-backend/pkg/enums"
	pkgerrors "github.com/dhiyug/milkdiary-backend/pkg/errors"
	"github.com/dhiyug/milkdiary-backend/pkg/money"
	"github.com/dhiyug/milkdiary-backend/pkg/pagination"
	"github.com/dhiyug/milkdiary-backend/pkg/timeutil"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	// AdminListLimit caps one admin ledger page.
	AdminListLimit = 300
	// PortalListLimit caps one customer portal ledger page.
	PortalListLimit = 200
	// MaxBatchSize caps how many rows one batch submission may carry.
	MaxBatchSize = 100
)

type ledgerRepository interface {
	Create(ctx context.Context, txn *models.Transaction) error
	CreateAll(ctx context.Context, txns []models.Transaction) error
	FindByID(ctx context.Context, id uint) (*models.Transaction, error)
	List(ctx context.Context, filter ListFilter) ([]models.Transaction, error)
	Delete(ctx context.Context, id uint) error
}

type customerFinder interface {
	FindByID(ctx context.Context, id uint) (*models.Customer, error)
}

type rateResolver interface {
	Resolve(ctx context.Context, milkTypeID uint, fat *decimal.Decimal) (*rates.Resolution, error)
}

// Service exposes ledger operations.
type Service interface {
	Record(ctx context.Context, input RecordInput) (*TransactionDTO, error)
	RecordBatch(ctx context.Context, inputs []RecordInput) (*BatchResult, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	ListForCustomer(ctx context.Context, customerID uint, params ListParams) (*ListResult, error)
	Delete(ctx context.Context, id uint) error
}

type service struct {
	repo      ledgerRepository
	customers customerFinder
	resolver  rateResolver
}

// ServiceParams wires the ledger service dependencies.
type ServiceParams struct {
	Repo      ledgerRepository
	Customers customerFinder
	Resolver  rateResolver
}

// NewService builds a transaction service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	if params.Customers == nil {
		return nil, fmt.Errorf("customer repository required")
	}
	if params.Resolver == nil {
		return nil, fmt.Errorf("rate resolver required")
	}
	return &service{repo: params.Repo, customers: params.Customers, resolver: params.Resolver}, nil
}

// Record validates and persists one ledger row. The applied rate and
// total are resolved now and frozen on the row.
func (s *service) Record(ctx context.Context, input RecordInput) (*TransactionDTO, error) {
	row, err := s.buildRow(ctx, input)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create transaction")
	}
	saved, err := s.repo.FindByID(ctx, row.ID)
	if err != nil {
		// The row committed; degrade to the unhydrated copy.
		return FromModel(row), nil
	}
	return FromModel(saved), nil
}

// RecordBatch validates every row, commits the valid ones atomically,
// and itemizes the rejects by input index. Partial failure is reported
// in the body, not the status code.
func (s *service) RecordBatch(ctx context.Context, inputs []RecordInput) (*BatchResult, error) {
	if len(inputs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one transaction is required")
	}
	if len(inputs) > MaxBatchSize {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("batch size exceeds the limit of %d", MaxBatchSize))
	}

	rows := make([]models.Transaction, 0, len(inputs))
	var itemErrors []BatchItemError
	for i := range inputs {
		row, err := s.buildRow(ctx, inputs[i])
		if err != nil {
			itemErrors = append(itemErrors, BatchItemError{Index: i, Error: itemErrorMessage(err)})
			continue
		}
		rows = append(rows, *row)
	}

	if err := s.repo.CreateAll(ctx, rows); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create transactions")
	}

	result := &BatchResult{Saved: len(rows), Errors: itemErrors}
	if len(itemErrors) == 0 {
		result.Message = fmt.Sprintf("saved %d transactions", len(rows))
	} else {
		result.Message = fmt.Sprintf("saved %d transactions, %d failed", len(rows), len(itemErrors))
	}
	return result, nil
}

// List returns an admin ledger page with optional customer, date, and
// type filters.
func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	return s.list(ctx, params, AdminListLimit)
}

// ListForCustomer returns a portal ledger page pinned to one customer.
// Any caller-supplied customer filter is discarded.
func (s *service) ListForCustomer(ctx context.Context, customerID uint, params ListParams) (*ListResult, error) {
	params.CustomerID = &customerID
	return s.list(ctx, params, PortalListLimit)
}

func (s *service) list(ctx context.Context, params ListParams, maxLimit int) (*ListResult, error) {
	limit := pagination.NormalizeLimitMax(params.Limit, maxLimit)
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}

	rows, err := s.repo.List(ctx, ListFilter{
		CustomerID: params.CustomerID,
		From:       params.From,
		To:         params.To,
		TxnType:    params.TxnType,
		Cursor:     cursor,
		Limit:      pagination.LimitWithBuffer(params.Limit, maxLimit),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list transactions")
	}

	result := &ListResult{Transactions: make([]TransactionDTO, 0, len(rows))}
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		result.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			OccurredAt: last.OccurredAt,
			ID:         last.ID,
		})
	}
	for i := range rows {
		result.Transactions = append(result.Transactions, *FromModel(&rows[i]))
	}
	return result, nil
}

// Delete removes one ledger row.
func (s *service) Delete(ctx context.Context, id uint) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "transaction not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load transaction")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete transaction")
	}
	return nil
}

// buildRow validates one input and produces a persistable row with the
// resolved rate and rounded total applied. An omitted date stores the
// current instant; omitted session and type fall back to Morning/Sell.
func (s *service) buildRow(ctx context.Context, input RecordInput) (*models.Transaction, error) {
	occurredAt := timeutil.NowUTC()
	if raw := strings.TrimSpace(input.TxnDate); raw != "" {
		day, err := timeutil.ParseDate(raw)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "txn_date must be in YYYY-MM-DD format")
		}
		occurredAt = timeutil.DayStartUTC(day)
	}

	session := enums.SessionMorning
	if raw := strings.TrimSpace(input.Session); raw != "" {
		parsed, err := enums.ParseMilkSession(raw)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "session must be Morning or Evening")
		}
		session = parsed
	}

	txnType := enums.TxnSell
	if raw := strings.TrimSpace(input.TxnType); raw != "" {
		parsed, err := enums.ParseTxnType(raw)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "txn_type must be Sell or Purchase")
		}
		txnType = parsed
	}

	qty := input.QtyLiters
	if qty.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "qty_liters must be a non-negative amount")
	}
	fat := input.FatValue
	if fat != nil && fat.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "fat_value must be a non-negative number")
	}

	if _, err := s.customers.FindByID(ctx, input.CustomerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
	}

	resolution, err := s.resolver.Resolve(ctx, input.MilkTypeID, fat)
	if err != nil {
		return nil, err
	}

	return &models.Transaction{
		CustomerID:  input.CustomerID,
		MilkTypeID:  input.MilkTypeID,
		OccurredAt:  occurredAt,
		Session:     session,
		QtyLiters:   qty,
		FatValue:    fat,
		RateApplied: resolution.Rate,
		TotalAmount: money.Total(qty, resolution.Rate),
		TxnType:     txnType,
	}, nil
}

// itemErrorMessage flattens a build failure into a row-level message.
func itemErrorMessage(err error) string {
	if typed := pkgerrors.As(err); typed != nil {
		return typed.Message()
	}
	return "could not save transaction"
}
