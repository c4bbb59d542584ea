package rates

import (
	"context"

	"github.com/dhiyug/milkdiary-backend/pkg/db/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Repository handles milk type and rate chart persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to rate operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListMilkTypes returns every milk type ordered by name.
func (r *Repository) ListMilkTypes(ctx context.Context) ([]models.MilkType, error) {
	var types []models.MilkType
	if err := r.db.WithContext(ctx).Order("name asc").Find(&types).Error; err != nil {
		return nil, err
	}
	return types, nil
}

// FindMilkTypeByID loads a milk type by primary key.
func (r *Repository) FindMilkTypeByID(ctx context.Context, id uint) (*models.MilkType, error) {
	var milkType models.MilkType
	if err := r.db.WithContext(ctx).First(&milkType, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &milkType, nil
}

// CreateMilkType persists a new milk type row.
func (r *Repository) CreateMilkType(ctx context.Context, milkType *models.MilkType) error {
	return r.db.WithContext(ctx).Create(milkType).Error
}

// ListEntries returns the full rate chart with milk types preloaded.
func (r *Repository) ListEntries(ctx context.Context) ([]models.RateChartEntry, error) {
	var entries []models.RateChartEntry
	if err := r.db.WithContext(ctx).
		Preload("MilkType").
		Order("milk_type_id asc, fat_level asc").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// FindEntry loads the chart row for one (milk type, fat level) pair.
func (r *Repository) FindEntry(ctx context.Context, milkTypeID uint, fatLevel int) (*models.RateChartEntry, error) {
	var entry models.RateChartEntry
	if err := r.db.WithContext(ctx).
		First(&entry, "milk_type_id = ? AND fat_level = ?", milkTypeID, fatLevel).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// CreateEntry persists a new chart row.
func (r *Repository) CreateEntry(ctx context.Context, entry *models.RateChartEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// UpdateEntryRate replaces the rate on an existing chart row.
func (r *Repository) UpdateEntryRate(ctx context.Context, id uint, rate decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Model(&models.RateChartEntry{}).
		Where("id = ?", id).
		Update("rate", rate).Error
}
