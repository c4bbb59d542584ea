package dashboard

import (
	"context"
	"time"

	"github.com/dhiyug/milkdiary-backend/pkg/db/models"
	"github.com/dhiyug/milkdiary-backend/pkg/enums"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Repository runs the aggregate queries backing the dashboards.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to dashboard queries.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// dayTotals is the scan target for per-type window sums.
type dayTotals struct {
	Liters decimal.Decimal
	Amount decimal.Decimal
}

// SumWindowByType totals quantity and amount for one transaction type
// inside the inclusive UTC instant window.
func (r *Repository) SumWindowByType(ctx context.Context, txnType enums.TxnType, from, to time.Time) (liters, amount decimal.Decimal, err error) {
	var totals dayTotals
	err = r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Select("COALESCE(SUM(qty_liters), 0) AS liters, COALESCE(SUM(total_amount), 0) AS amount").
		Where("txn_type = ? AND occurred_at >= ? AND occurred_at <= ?", txnType, from, to).
		Scan(&totals).Error
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return totals.Liters, totals.Amount, nil
}

// SumCustomerByType totals one customer's amount for one transaction
// type over the whole ledger.
func (r *Repository) SumCustomerByType(ctx context.Context, customerID uint, txnType enums.TxnType) (decimal.Decimal, error) {
	var totals dayTotals
	err := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Select("COALESCE(SUM(qty_liters), 0) AS liters, COALESCE(SUM(total_amount), 0) AS amount").
		Where("customer_id = ? AND txn_type = ?", customerID, txnType).
		Scan(&totals).Error
	if err != nil {
		return decimal.Zero, err
	}
	return totals.Amount, nil
}

// CountCustomers returns the total customer count.
func (r *Repository) CountCustomers(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Customer{}).Count(&count).Error
	return count, err
}
