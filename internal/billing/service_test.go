package billing

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/dhiyug/milkdiary-backend/pkg/config"
	"github.com/dhiyug/milkdiary-backend/pkg/db/models"
	"github.com/dhiyug/milkdiary-backend/pkg/enums"
	pkgerrors "github.com/dhiyug/milkdiary-backend/pkg/errors"
	"github.com/dhiyug/milkdiary-backend/pkg/timeutil"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type stubBillRepo struct {
	txns    map[uint][]models.Transaction
	txnErrs map[uint]error

	bills   []models.Bill
	nextID  uint
	updated []uint
	deleted []uint
	paid    []uint
}

func (s *stubBillRepo) ListWindowTransactions(ctx context.Context, customerID uint, from, to time.Time) ([]models.Transaction, error) {
	if err := s.txnErrs[customerID]; err != nil {
		return nil, err
	}
	var matched []models.Transaction
	for _, txn := range s.txns[customerID] {
		if txn.OccurredAt.Before(from) || txn.OccurredAt.After(to) {
			continue
		}
		matched = append(matched, txn)
	}
	return matched, nil
}

func (s *stubBillRepo) FindWindow(ctx context.Context, customerID uint, start, end time.Time) (*models.Bill, error) {
	for i := range s.bills {
		b := &s.bills[i]
		if b.CustomerID == customerID && b.PeriodStart.Equal(start) && b.PeriodEnd.Equal(end) {
			return b, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubBillRepo) Create(ctx context.Context, bill *models.Bill) error {
	s.nextID++
	bill.ID = s.nextID
	s.bills = append(s.bills, *bill)
	return nil
}

func (s *stubBillRepo) UpdateTotals(ctx context.Context, id uint, total decimal.Decimal, generatedAt time.Time) error {
	s.updated = append(s.updated, id)
	for i := range s.bills {
		if s.bills[i].ID == id {
			s.bills[i].TotalAmount = total
			s.bills[i].GeneratedAt = generatedAt
		}
	}
	return nil
}

func (s *stubBillRepo) List(ctx context.Context, customerID *uint) ([]models.Bill, error) {
	var matched []models.Bill
	for _, b := range s.bills {
		if customerID != nil && b.CustomerID != *customerID {
			continue
		}
		matched = append(matched, b)
	}
	return matched, nil
}

func (s *stubBillRepo) FindByID(ctx context.Context, id uint) (*models.Bill, error) {
	for i := range s.bills {
		if s.bills[i].ID == id {
			return &s.bills[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubBillRepo) Delete(ctx context.Context, id uint) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubBillRepo) MarkPaid(ctx context.Context, id uint) error {
	s.paid = append(s.paid, id)
	return nil
}

type stubCustomerDirectory struct {
	customers []models.Customer
}

func (s *stubCustomerDirectory) List(ctx context.Context) ([]models.Customer, error) {
	return s.customers, nil
}

func (s *stubCustomerDirectory) FindByID(ctx context.Context, id uint) (*models.Customer, error) {
	for i := range s.customers {
		if s.customers[i].ID == id {
			return &s.customers[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func newTestBillingService(t *testing.T, repo *stubBillRepo, dir *stubCustomerDirectory) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:      repo,
		Customers: dir,
		Billing: config.BillingConfig{
			CompanyName: "MILK DIARY PRIVATE LIMITED",
			FooterNote:  "Thank you for choosing Milk Diary Pvt Ltd.",
		},
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func ledgerRow(t *testing.T, customerID uint, localDay, total string) models.Transaction {
	t.Helper()
	day, err := timeutil.ParseDate(localDay)
	if err != nil {
		t.Fatalf("parse day: %v", err)
	}
	amount := decimal.RequireFromString(total)
	return models.Transaction{
		CustomerID:  customerID,
		MilkTypeID:  1,
		OccurredAt:  timeutil.DayStartUTC(day),
		Session:     enums.SessionMorning,
		QtyLiters:   decimal.RequireFromString("2.00"),
		FatValue:    nil,
		RateApplied: decimal.RequireFromString("40.00"),
		TotalAmount: amount,
		TxnType:     enums.TxnSell,
		MilkType:    models.MilkType{ID: 1, Name: "Cow"},
	}
}

func TestGenerateForRangeCreatesUpdatesAndSkips(t *testing.T) {
	active := ledgerRow(t, 1, "2024-01-15", "80.00")
	rebilled := ledgerRow(t, 3, "2024-01-16", "120.00")

	repo := &stubBillRepo{
		txns: map[uint][]models.Transaction{
			1: {active},
			3: {rebilled},
		},
	}
	// Customer 3 already holds a bill over the exact same window.
	repo.bills = append(repo.bills, models.Bill{
		ID:          42,
		CustomerID:  3,
		PeriodStart: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2024, 1, 21, 0, 0, 0, 0, time.UTC),
		TotalAmount: decimal.RequireFromString("999.00"),
	})
	repo.nextID = 42

	dir := &stubCustomerDirectory{customers: []models.Customer{
		{ID: 1, Name: "Ramesh"},
		{ID: 2, Name: "Idle"},
		{ID: 3, Name: "Suresh"},
	}}
	svc := newTestBillingService(t, repo, dir)

	summary, err := svc.GenerateForRange(context.Background(), RangeInput{
		StartDate: "2024-01-15",
		EndDate:   "2024-01-21",
	})
	if err != nil {
		t.Fatalf("GenerateForRange: %v", err)
	}

	if summary.Created != 1 || summary.Updated != 1 || summary.Skipped != 1 {
		t.Fatalf("summary = %+v, want created 1, updated 1, skipped 1", summary)
	}
	if len(summary.Failures) != 0 {
		t.Fatalf("unexpected failures %+v", summary.Failures)
	}

	if len(repo.updated) != 1 || repo.updated[0] != 42 {
		t.Fatalf("updated = %v, want bill 42 rewritten in place", repo.updated)
	}
	reBill, _ := repo.FindByID(context.Background(), 42)
	if reBill.TotalAmount.StringFixed(2) != "120.00" {
		t.Fatalf("regenerated total = %s, want the current ledger sum", reBill.TotalAmount)
	}

	created, _ := repo.FindWindow(context.Background(), 1,
		time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 21, 0, 0, 0, 0, time.UTC))
	if created == nil || created.TotalAmount.StringFixed(2) != "80.00" {
		t.Fatalf("expected a fresh bill of 80.00 for customer 1, got %+v", created)
	}
}

func TestGenerateForRangeCollectsPerCustomerFailures(t *testing.T) {
	repo := &stubBillRepo{
		txns:    map[uint][]models.Transaction{2: {ledgerRow(t, 2, "2024-01-15", "50.00")}},
		txnErrs: map[uint]error{1: gorm.ErrInvalidDB},
	}
	dir := &stubCustomerDirectory{customers: []models.Customer{{ID: 1}, {ID: 2}}}
	svc := newTestBillingService(t, repo, dir)

	summary, err := svc.GenerateForRange(context.Background(), RangeInput{
		StartDate: "2024-01-15",
		EndDate:   "2024-01-21",
	})
	if err != nil {
		t.Fatalf("GenerateForRange: %v", err)
	}
	if summary.Created != 1 {
		t.Fatalf("created = %d, want the healthy customer billed", summary.Created)
	}
	if len(summary.Failures) != 1 || summary.Failures[0].CustomerID != 1 {
		t.Fatalf("failures = %+v, want one entry for customer 1", summary.Failures)
	}
}

func TestPreviewGroupsByStoredUTCDay(t *testing.T) {
	repo := &stubBillRepo{txns: map[uint][]models.Transaction{4: {
		ledgerRow(t, 4, "2024-01-15", "40.00"),
		ledgerRow(t, 4, "2024-01-15", "60.00"),
		ledgerRow(t, 4, "2024-01-16", "80.00"),
	}}}
	dir := &stubCustomerDirectory{customers: []models.Customer{{ID: 4, Name: "Ramesh"}}}
	svc := newTestBillingService(t, repo, dir)

	statement, err := svc.Preview(context.Background(), PreviewInput{
		CustomerID: 4,
		StartDate:  "2024-01-15",
		EndDate:    "2024-01-16",
	})
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}

	if statement.Total.StringFixed(2) != "180.00" {
		t.Fatalf("total = %s, want 180.00", statement.Total)
	}
	if len(statement.Days) != 2 {
		t.Fatalf("day groups = %d, want 2", len(statement.Days))
	}
	// Local midnight on Jan 15 is stored as 18:30 UTC on Jan 14.
	if statement.Days[0].Date != "2024-01-14" || statement.Days[1].Date != "2024-01-15" {
		t.Fatalf("day keys = %s, %s; want stored UTC dates ascending",
			statement.Days[0].Date, statement.Days[1].Date)
	}
	if statement.Days[0].Subtotal.StringFixed(2) != "100.00" {
		t.Fatalf("first day subtotal = %s, want 100.00", statement.Days[0].Subtotal)
	}
	if len(statement.Days[0].Transactions) != 2 {
		t.Fatalf("first day rows = %d, want 2", len(statement.Days[0].Transactions))
	}
}

func TestPreviewRejectsInvertedRange(t *testing.T) {
	svc := newTestBillingService(t, &stubBillRepo{}, &stubCustomerDirectory{})

	_, err := svc.Preview(context.Background(), PreviewInput{
		CustomerID: 1,
		StartDate:  "2024-01-21",
		EndDate:    "2024-01-15",
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func seedBill(repo *stubBillRepo, customerID uint, paid bool) uint {
	repo.nextID++
	repo.bills = append(repo.bills, models.Bill{
		ID:          repo.nextID,
		CustomerID:  customerID,
		PeriodStart: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2024, 1, 21, 0, 0, 0, 0, time.UTC),
		TotalAmount: decimal.RequireFromString("80.00"),
		GeneratedAt: time.Date(2024, 1, 22, 4, 0, 0, 0, time.UTC),
		IsPaid:      paid,
		Customer:    models.Customer{ID: customerID, Name: "Ramesh"},
	})
	return repo.nextID
}

func TestGetOwnershipMismatchIsForbidden(t *testing.T) {
	repo := &stubBillRepo{txns: map[uint][]models.Transaction{}}
	billID := seedBill(repo, 4, false)
	svc := newTestBillingService(t, repo, &stubCustomerDirectory{})

	other := uint(9)
	_, err := svc.Get(context.Background(), billID, &other)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestGetUnknownBill(t *testing.T) {
	svc := newTestBillingService(t, &stubBillRepo{}, &stubCustomerDirectory{})

	_, err := svc.Get(context.Background(), 404, nil)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeletePaidBillRefused(t *testing.T) {
	repo := &stubBillRepo{}
	billID := seedBill(repo, 4, true)
	svc := newTestBillingService(t, repo, &stubCustomerDirectory{})

	err := svc.Delete(context.Background(), billID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeBusinessRule {
		t.Fatalf("expected business rule refusal, got %v", err)
	}
	if len(repo.deleted) != 0 {
		t.Fatalf("paid bill was deleted")
	}
}

func TestDeleteUnpaidBill(t *testing.T) {
	repo := &stubBillRepo{}
	billID := seedBill(repo, 4, false)
	svc := newTestBillingService(t, repo, &stubCustomerDirectory{})

	if err := svc.Delete(context.Background(), billID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(repo.deleted) != 1 || repo.deleted[0] != billID {
		t.Fatalf("deleted = %v, want %d", repo.deleted, billID)
	}
}

func TestMarkPaid(t *testing.T) {
	repo := &stubBillRepo{}
	billID := seedBill(repo, 4, false)
	svc := newTestBillingService(t, repo, &stubCustomerDirectory{})

	dto, err := svc.MarkPaid(context.Background(), billID)
	if err != nil {
		t.Fatalf("MarkPaid: %v", err)
	}
	if !dto.IsPaid {
		t.Fatal("expected the returned bill flagged paid")
	}
	if len(repo.paid) != 1 || repo.paid[0] != billID {
		t.Fatalf("paid = %v, want %d", repo.paid, billID)
	}
}

func TestRenderPDFProducesDocument(t *testing.T) {
	repo := &stubBillRepo{txns: map[uint][]models.Transaction{4: {
		ledgerRow(t, 4, "2024-01-15", "80.00"),
	}}}
	billID := seedBill(repo, 4, false)
	svc := newTestBillingService(t, repo, &stubCustomerDirectory{
		customers: []models.Customer{{ID: 4, Name: "Ramesh"}},
	})

	data, err := svc.RenderPDF(context.Background(), billID, nil)
	if err != nil {
		t.Fatalf("RenderPDF: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("output does not look like a PDF document")
	}
}
