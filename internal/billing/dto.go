package billing

import (
	"time"

	"github.com/dhiyug/milkdiary-backend/internal/transactions"
	"github.com/dhiyug/milkdiary-backend/pkg/db/models"
	"github.com/dhiyug/milkdiary-backend/pkg/timeutil"
	"github.com/shopspring/decimal"
)

// RangeInput bounds a billing window by calendar dates, inclusive.
type RangeInput struct {
	StartDate string `json:"start_date" validate:"required"`
	EndDate   string `json:"end_date" validate:"required"`
}

// PreviewInput names the customer an inline statement is built for.
type PreviewInput struct {
	CustomerID uint   `json:"customer_id" validate:"required"`
	StartDate  string `json:"start_date" validate:"required"`
	EndDate    string `json:"end_date" validate:"required"`
}

// DayGroup collects the transactions of one stored UTC calendar day.
type DayGroup struct {
	Date         string                        `json:"date"`
	Transactions []transactions.TransactionDTO `json:"transactions"`
	Subtotal     decimal.Decimal               `json:"subtotal"`
}

// Statement is one customer's aggregated window. The total is the
// unsigned sum over every transaction type in the window.
type Statement struct {
	CustomerID   uint            `json:"customer_id"`
	CustomerName string          `json:"customer_name,omitempty"`
	PeriodStart  string          `json:"period_start"`
	PeriodEnd    string          `json:"period_end"`
	Total        decimal.Decimal `json:"total"`
	Days         []DayGroup      `json:"days"`
}

// BillDTO exposes one persisted bill.
type BillDTO struct {
	ID           uint            `json:"id"`
	CustomerID   uint            `json:"customer_id"`
	CustomerName string          `json:"customer_name,omitempty"`
	PeriodStart  string          `json:"period_start"`
	PeriodEnd    string          `json:"period_end"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	GeneratedAt  time.Time       `json:"generated_at"`
	IsPaid       bool            `json:"is_paid"`
}

// RunFailure reports one customer the batch run could not bill.
type RunFailure struct {
	CustomerID uint   `json:"customer_id"`
	Error      string `json:"error"`
}

// RunSummary reports the outcome of one billing run. Failures do not
// roll back the customers that succeeded.
type RunSummary struct {
	PeriodStart string       `json:"period_start"`
	PeriodEnd   string       `json:"period_end"`
	Created     int          `json:"created"`
	Updated     int          `json:"updated"`
	Skipped     int          `json:"skipped"`
	Failures    []RunFailure `json:"failures,omitempty"`
}

// BillDetail pairs a bill with its regenerated statement breakdown.
type BillDetail struct {
	Bill      BillDTO   `json:"bill"`
	Statement Statement `json:"statement"`
}

// FromModel maps a persisted bill into a DTO.
func FromModel(m *models.Bill) *BillDTO {
	if m == nil {
		return nil
	}
	return &BillDTO{
		ID:           m.ID,
		CustomerID:   m.CustomerID,
		CustomerName: m.Customer.Name,
		PeriodStart:  m.PeriodStart.UTC().Format(timeutil.DateLayout),
		PeriodEnd:    m.PeriodEnd.UTC().Format(timeutil.DateLayout),
		TotalAmount:  m.TotalAmount,
		GeneratedAt:  m.GeneratedAt,
		IsPaid:       m.IsPaid,
	}
}
