package billing

import (
	"context"
	"time"

	"github.com/dhiyug/milkdiary-backend/pkg/db/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Repository handles bill persistence and the window queries billing
// runs aggregate over.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to billing operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListWindowTransactions returns one customer's ledger rows inside the
// inclusive UTC instant window, oldest first so day groups come out
// chronological.
func (r *Repository) ListWindowTransactions(ctx context.Context, customerID uint, from, to time.Time) ([]models.Transaction, error) {
	var txns []models.Transaction
	if err := r.db.WithContext(ctx).
		Preload("MilkType").
		Where("customer_id = ? AND occurred_at >= ? AND occurred_at <= ?", customerID, from, to).
		Order("occurred_at asc, id asc").
		Find(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}

// FindWindow loads the bill covering exactly [start, end] for one
// customer. A bill over a different sub-range is never reused.
func (r *Repository) FindWindow(ctx context.Context, customerID uint, start, end time.Time) (*models.Bill, error) {
	var bill models.Bill
	if err := r.db.WithContext(ctx).
		First(&bill, "customer_id = ? AND period_start = ? AND period_end = ?", customerID, start, end).Error; err != nil {
		return nil, err
	}
	return &bill, nil
}

// Create persists a new bill row.
func (r *Repository) Create(ctx context.Context, bill *models.Bill) error {
	return r.db.WithContext(ctx).Create(bill).Error
}

// UpdateTotals rewrites an existing bill's total and generation stamp
// in place. Regeneration is last-writer-wins.
func (r *Repository) UpdateTotals(ctx context.Context, id uint, total decimal.Decimal, generatedAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Bill{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"total_amount": total,
			"generated_at": generatedAt,
		}).Error
}

// List returns bills newest-generated first, optionally scoped to one
// customer.
func (r *Repository) List(ctx context.Context, customerID *uint) ([]models.Bill, error) {
	query := r.db.WithContext(ctx).
		Preload("Customer").
		Order("generated_at desc, id desc")
	if customerID != nil {
		query = query.Where("customer_id = ?", *customerID)
	}

	var bills []models.Bill
	if err := query.Find(&bills).Error; err != nil {
		return nil, err
	}
	return bills, nil
}

// FindByID loads one bill with its customer.
func (r *Repository) FindByID(ctx context.Context, id uint) (*models.Bill, error) {
	var bill models.Bill
	if err := r.db.WithContext(ctx).
		Preload("Customer").
		First(&bill, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &bill, nil
}

// Delete removes one bill row.
func (r *Repository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Bill{}, "id = ?", id).Error
}

// MarkPaid flags one bill as settled.
func (r *Repository) MarkPaid(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Bill{}).
		Where("id = ?", id).
		Update("is_paid", true).Error
}
