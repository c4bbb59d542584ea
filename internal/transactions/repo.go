package transactions

import (
	"context"
	"time"

	"github.com/dhiyug/milkdiary-backend/pkg/db/models"
	"github.com/dhiyug/milkdiary-backend/pkg/enums"
	"github.com/dhiyug/milkdiary-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Repository handles ledger persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to transaction operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists one ledger row.
func (r *Repository) Create(ctx context.Context, txn *models.Transaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

// CreateAll commits a set of ledger rows atomically. A failure on any
// row rolls the whole set back.
func (r *Repository) CreateAll(ctx context.Context, txns []models.Transaction) error {
	if len(txns) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range txns {
			if err := tx.Create(&txns[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// FindByID loads one ledger row with its customer and milk type.
func (r *Repository) FindByID(ctx context.Context, id uint) (*models.Transaction, error) {
	var txn models.Transaction
	if err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("MilkType").
		First(&txn, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &txn, nil
}

// ListFilter narrows a ledger page at the query level.
type ListFilter struct {
	CustomerID *uint
	From       *time.Time
	To         *time.Time
	TxnType    *enums.TxnType
	Cursor     *pagination.Cursor
	Limit      int
}

// List returns ledger rows newest first, keyed by occurrence time with
// the row id breaking ties so the cursor never skips or repeats rows.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]models.Transaction, error) {
	query := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("MilkType").
		Order("occurred_at desc, id desc").
		Limit(filter.Limit)

	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.From != nil {
		query = query.Where("occurred_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("occurred_at <= ?", *filter.To)
	}
	if filter.TxnType != nil {
		query = query.Where("txn_type = ?", *filter.TxnType)
	}
	if filter.Cursor != nil {
		query = query.Where(
			"(occurred_at < ?) OR (occurred_at = ? AND id < ?)",
			filter.Cursor.OccurredAt, filter.Cursor.OccurredAt, filter.Cursor.ID,
		)
	}

	var txns []models.Transaction
	if err := query.Find(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}

// Delete removes one ledger row by id.
func (r *Repository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Transaction{}, "id = ?", id).Error
}
