package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dhiyug/milkdiary-backend/internal/transactions"
	"github.com/dhiyug/milkdiary-backend/pkg/config"
	"github.com/dhiyug/milkdiary-backend/pkg/db/models"
	pkgerrors "github.com/dhiyug/milkdiary-backend/pkg/errors"
	"github.com/dhiyug/milkdiary-backend/pkg/metrics"
	"github.com/dhiyug/milkdiary-backend/pkg/timeutil"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

const runScope = "run"

type billRepository interface {
	ListWindowTransactions(ctx context.Context, customerID uint, from, to time.Time) ([]models.Transaction, error)
	FindWindow(ctx context.Context, customerID uint, start, end time.Time) (*models.Bill, error)
	Create(ctx context.Context, bill *models.Bill) error
	UpdateTotals(ctx context.Context, id uint, total decimal.Decimal, generatedAt time.Time) error
	List(ctx context.Context, customerID *uint) ([]models.Bill, error)
	FindByID(ctx context.Context, id uint) (*models.Bill, error)
	Delete(ctx context.Context, id uint) error
	MarkPaid(ctx context.Context, id uint) error
}

type customerDirectory interface {
	List(ctx context.Context) ([]models.Customer, error)
	FindByID(ctx context.Context, id uint) (*models.Customer, error)
}

// Service exposes billing aggregation, the periodic generation run, and
// bill lifecycle operations.
type Service interface {
	Preview(ctx context.Context, input PreviewInput) (*Statement, error)
	GenerateForRange(ctx context.Context, input RangeInput) (*RunSummary, error)
	List(ctx context.Context) ([]BillDTO, error)
	ListForCustomer(ctx context.Context, customerID uint) ([]BillDTO, error)
	Get(ctx context.Context, billID uint, ownerScope *uint) (*BillDetail, error)
	RenderPDF(ctx context.Context, billID uint, ownerScope *uint) ([]byte, error)
	Delete(ctx context.Context, billID uint) error
	MarkPaid(ctx context.Context, billID uint) (*BillDTO, error)
}

type service struct {
	repo      billRepository
	customers customerDirectory
	runStats  *metrics.BillingRunMetrics
	renderer  *PDFRenderer
}

// ServiceParams wires the billing service dependencies. RunMetrics may
// be nil when no registry is attached.
type ServiceParams struct {
	Repo       billRepository
	Customers  customerDirectory
	RunMetrics *metrics.BillingRunMetrics
	Billing    config.BillingConfig
}

// NewService builds a billing service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("bill repository required")
	}
	if params.Customers == nil {
		return nil, fmt.Errorf("customer repository required")
	}
	return &service{
		repo:      params.Repo,
		customers: params.Customers,
		runStats:  params.RunMetrics,
		renderer:  NewPDFRenderer(params.Billing),
	}, nil
}

// Preview builds one customer's statement for a window without
// persisting a bill.
func (s *service) Preview(ctx context.Context, input PreviewInput) (*Statement, error) {
	start, end, err := parseRange(input.StartDate, input.EndDate)
	if err != nil {
		return nil, err
	}
	customer, err := s.customers.FindByID(ctx, input.CustomerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
	}

	statement, _, err := s.aggregate(ctx, customer, start, end)
	if err != nil {
		return nil, err
	}
	return statement, nil
}

// GenerateForRange bills every customer with activity in the window.
// An existing bill over the exact same window is rewritten in place;
// customers without matching transactions are skipped. Failures are
// collected per customer and never roll back the others.
func (s *service) GenerateForRange(ctx context.Context, input RangeInput) (*RunSummary, error) {
	start, end, err := parseRange(input.StartDate, input.EndDate)
	if err != nil {
		return nil, err
	}

	customers, err := s.customers.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list customers")
	}

	began := time.Now()
	summary := &RunSummary{
		PeriodStart: start.Format(timeutil.DateLayout),
		PeriodEnd:   end.Format(timeutil.DateLayout),
	}
	var runErr error
	for i := range customers {
		outcome, err := s.billCustomer(ctx, &customers[i], start, end)
		if err != nil {
			runErr = multierr.Append(runErr, fmt.Errorf("customer %d: %w", customers[i].ID, err))
			summary.Failures = append(summary.Failures, RunFailure{
				CustomerID: customers[i].ID,
				Error:      err.Error(),
			})
			s.runStats.IncFailure(runScope)
			continue
		}
		switch outcome {
		case outcomeCreated:
			summary.Created++
			s.runStats.IncCreated(runScope)
		case outcomeUpdated:
			summary.Updated++
			s.runStats.IncUpdated(runScope)
		default:
			summary.Skipped++
			s.runStats.IncSkipped(runScope)
		}
	}
	s.runStats.ObserveDuration(runScope, time.Since(began))

	if runErr != nil && summary.Created+summary.Updated+summary.Skipped == 0 {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, runErr, "billing run failed for every customer")
	}
	return summary, nil
}

// List returns every bill, newest generated first.
func (s *service) List(ctx context.Context) ([]BillDTO, error) {
	return s.list(ctx, nil)
}

// ListForCustomer returns one customer's bills for the portal.
func (s *service) ListForCustomer(ctx context.Context, customerID uint) ([]BillDTO, error) {
	return s.list(ctx, &customerID)
}

func (s *service) list(ctx context.Context, customerID *uint) ([]BillDTO, error) {
	bills, err := s.repo.List(ctx, customerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list bills")
	}
	result := make([]BillDTO, 0, len(bills))
	for i := range bills {
		result = append(result, *FromModel(&bills[i]))
	}
	return result, nil
}

// Get loads one bill and rebuilds its day-grouped breakdown from the
// current ledger. A customer-scoped caller may only fetch their own
// bill; a mismatch is an authorization failure, not a not-found.
func (s *service) Get(ctx context.Context, billID uint, ownerScope *uint) (*BillDetail, error) {
	bill, err := s.loadBill(ctx, billID)
	if err != nil {
		return nil, err
	}
	if ownerScope != nil && bill.CustomerID != *ownerScope {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "bill belongs to another customer")
	}

	start := localDateFromStored(bill.PeriodStart)
	end := localDateFromStored(bill.PeriodEnd)
	statement, _, err := s.aggregate(ctx, &bill.Customer, start, end)
	if err != nil {
		return nil, err
	}
	statement.CustomerID = bill.CustomerID

	return &BillDetail{Bill: *FromModel(bill), Statement: *statement}, nil
}

// RenderPDF produces the printable document for one bill.
func (s *service) RenderPDF(ctx context.Context, billID uint, ownerScope *uint) ([]byte, error) {
	detail, err := s.Get(ctx, billID, ownerScope)
	if err != nil {
		return nil, err
	}
	data, err := s.renderer.Render(detail)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render bill document")
	}
	return data, nil
}

// Delete removes one bill. Paid bills are never deletable, regardless
// of caller role.
func (s *service) Delete(ctx context.Context, billID uint) error {
	bill, err := s.loadBill(ctx, billID)
	if err != nil {
		return err
	}
	if bill.IsPaid {
		return pkgerrors.New(pkgerrors.CodeBusinessRule, "paid bills cannot be deleted")
	}
	if err := s.repo.Delete(ctx, billID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete bill")
	}
	return nil
}

// MarkPaid flags one bill as settled.
func (s *service) MarkPaid(ctx context.Context, billID uint) (*BillDTO, error) {
	bill, err := s.loadBill(ctx, billID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.MarkPaid(ctx, billID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark bill paid")
	}
	bill.IsPaid = true
	return FromModel(bill), nil
}

type billOutcome int

const (
	outcomeSkipped billOutcome = iota
	outcomeCreated
	outcomeUpdated
)

// billCustomer aggregates one customer's window and creates or rewrites
// the covering bill.
func (s *service) billCustomer(ctx context.Context, customer *models.Customer, start, end time.Time) (billOutcome, error) {
	statement, txns, err := s.aggregate(ctx, customer, start, end)
	if err != nil {
		return outcomeSkipped, err
	}
	if len(txns) == 0 {
		return outcomeSkipped, nil
	}

	periodStart := storedDate(start)
	periodEnd := storedDate(end)
	now := timeutil.NowUTC()

	existing, err := s.repo.FindWindow(ctx, customer.ID, periodStart, periodEnd)
	switch {
	case err == nil:
		if err := s.repo.UpdateTotals(ctx, existing.ID, statement.Total, now); err != nil {
			return outcomeSkipped, fmt.Errorf("update bill: %w", err)
		}
		return outcomeUpdated, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		bill := &models.Bill{
			CustomerID:  customer.ID,
			PeriodStart: periodStart,
			PeriodEnd:   periodEnd,
			TotalAmount: statement.Total,
			GeneratedAt: now,
		}
		if err := s.repo.Create(ctx, bill); err != nil {
			return outcomeSkipped, fmt.Errorf("create bill: %w", err)
		}
		return outcomeCreated, nil
	default:
		return outcomeSkipped, fmt.Errorf("find bill window: %w", err)
	}
}

// aggregate sums one customer's window into a day-grouped statement.
// Groups are keyed by the stored UTC calendar date, ascending, with
// rows chronological inside each group.
func (s *service) aggregate(ctx context.Context, customer *models.Customer, start, end time.Time) (*Statement, []models.Transaction, error) {
	from, to := timeutil.WindowUTC(start, end)
	txns, err := s.repo.ListWindowTransactions(ctx, customer.ID, from, to)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load window transactions")
	}

	statement := &Statement{
		CustomerID:   customer.ID,
		CustomerName: customer.Name,
		PeriodStart:  start.Format(timeutil.DateLayout),
		PeriodEnd:    end.Format(timeutil.DateLayout),
		Total:        decimal.Zero,
	}

	var current *DayGroup
	currentDay := time.Time{}
	for i := range txns {
		day := timeutil.UTCDay(txns[i].OccurredAt)
		if current == nil || !day.Equal(currentDay) {
			statement.Days = append(statement.Days, DayGroup{
				Date:     day.Format(timeutil.DateLayout),
				Subtotal: decimal.Zero,
			})
			current = &statement.Days[len(statement.Days)-1]
			currentDay = day
		}
		current.Transactions = append(current.Transactions, *transactions.FromModel(&txns[i]))
		current.Subtotal = current.Subtotal.Add(txns[i].TotalAmount)
		statement.Total = statement.Total.Add(txns[i].TotalAmount)
	}

	return statement, txns, nil
}

func (s *service) loadBill(ctx context.Context, billID uint) (*models.Bill, error) {
	bill, err := s.repo.FindByID(ctx, billID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "bill not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load bill")
	}
	return bill, nil
}

// parseRange validates the inclusive calendar window bounds.
func parseRange(startDate, endDate string) (time.Time, time.Time, error) {
	start, err := timeutil.ParseDate(startDate)
	if err != nil {
		return time.Time{}, time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "start_date must be in YYYY-MM-DD format")
	}
	end, err := timeutil.ParseDate(endDate)
	if err != nil {
		return time.Time{}, time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "end_date must be in YYYY-MM-DD format")
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "end_date must not precede start_date")
	}
	return start, end, nil
}

// storedDate normalizes a local calendar date to the UTC-midnight form
// bill period bounds are persisted in.
func storedDate(d time.Time) time.Time {
	y, m, day := d.In(timeutil.Local).Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

// localDateFromStored is the inverse of storedDate.
func localDateFromStored(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, timeutil.Local)
}
