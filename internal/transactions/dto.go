package transactions

import (
	"time"

	"github.com/dhiyug/milkdiary-backend/pkg/db/models"
	"github.com/dhiyug/milkdiary-backend/pkg/enums"
	"github.com/dhiyug/milkdiary-backend/pkg/timeutil"
	"github.com/shopspring/decimal"
)

// RecordInput captures one delivery event as entered by the operator.
// txn_date, session, and txn_type may be omitted: a blank date means
// the current instant, a blank session means Morning, a blank type
// means Sell. Amounts unmarshal straight into decimals so float64
// never owns the conversion.
type RecordInput struct {
	CustomerID uint             `json:"customer_id" validate:"required"`
	MilkTypeID uint             `json:"milk_type_id" validate:"required"`
	TxnDate    string           `json:"txn_date"`
	Session    string           `json:"session"`
	QtyLiters  decimal.Decimal  `json:"qty_liters"`
	FatValue   *decimal.Decimal `json:"fat_value"`
	TxnType    string           `json:"txn_type"`
}

// BatchItemError reports one rejected row of a batch submission.
type BatchItemError struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

// BatchResult summarizes a batch submission. Partial failure is not an
// HTTP error; rejected rows are itemized and the rest are committed.
type BatchResult struct {
	Message string           `json:"message"`
	Saved   int              `json:"saved"`
	Errors  []BatchItemError `json:"errors,omitempty"`
}

// TransactionDTO exposes one ledger row in API responses.
type TransactionDTO struct {
	ID           uint              `json:"id"`
	CustomerID   uint              `json:"customer_id"`
	CustomerName string            `json:"customer_name,omitempty"`
	MilkTypeID   uint              `json:"milk_type_id"`
	MilkTypeName string            `json:"milk_type_name,omitempty"`
	Date         string            `json:"date"`
	Session      enums.MilkSession `json:"session"`
	Qty          decimal.Decimal   `json:"qty"`
	Fat          *decimal.Decimal  `json:"fat,omitempty"`
	Rate         decimal.Decimal   `json:"rate"`
	Total        decimal.Decimal   `json:"total"`
	TxnType      enums.TxnType     `json:"txn_type"`
}

// ListParams filters a ledger page.
type ListParams struct {
	CustomerID *uint
	From       *time.Time
	To         *time.Time
	TxnType    *enums.TxnType
	Limit      int
	Cursor     string
}

// ListResult carries one ledger page plus the cursor for the next one.
type ListResult struct {
	Transactions []TransactionDTO `json:"transactions"`
	NextCursor   string           `json:"next_cursor,omitempty"`
}

// FromModel maps the persisted row into a DTO. The stored UTC instant
// is rendered back as the operator-facing local calendar date.
func FromModel(m *models.Transaction) *TransactionDTO {
	if m == nil {
		return nil
	}
	return &TransactionDTO{
		ID:           m.ID,
		CustomerID:   m.CustomerID,
		CustomerName: m.Customer.Name,
		MilkTypeID:   m.MilkTypeID,
		MilkTypeName: m.MilkType.Name,
		Date:         m.OccurredAt.In(timeutil.Local).Format(timeutil.DateLayout),
		Session:      m.Session,
		Qty:          m.QtyLiters,
		Fat:          m.FatValue,
		Rate:         m.RateApplied,
		Total:        m.TotalAmount,
		TxnType:      m.TxnType,
	}
}
