package rates

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dhiyug/milkdiary-backend/pkg/db"
	"github.com/dhiyug/milkdiary-backend/pkg/db/models"
	pkgerrors "github.com/dhiyug/milkdiary-backend/pkg/errors"
	"github.com/dhiyug/milkdiary-backend/pkg/money"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type rateRepository interface {
	ListMilkTypes(ctx context.Context) ([]models.MilkType, error)
	FindMilkTypeByID(ctx context.Context, id uint) (*models.MilkType, error)
	CreateMilkType(ctx context.Context, milkType *models.MilkType) error
	ListEntries(ctx context.Context) ([]models.RateChartEntry, error)
	FindEntry(ctx context.Context, milkTypeID uint, fatLevel int) (*models.RateChartEntry, error)
	CreateEntry(ctx context.Context, entry *models.RateChartEntry) error
	UpdateEntryRate(ctx context.Context, id uint, rate decimal.Decimal) error
}

// Resolution reports the rate chosen for a transaction and where it came from.
type Resolution struct {
	Rate      decimal.Decimal
	FromChart bool
}

// Service exposes rate chart operations and per-transaction rate resolution.
type Service interface {
	Resolve(ctx context.Context, milkTypeID uint, fat *decimal.Decimal) (*Resolution, error)
	ListMilkTypes(ctx context.Context) ([]MilkTypeDTO, error)
	CreateMilkType(ctx context.Context, input CreateMilkTypeInput) (*MilkTypeDTO, error)
	ListChart(ctx context.Context) ([]ChartEntryDTO, error)
	SaveEntry(ctx context.Context, input SaveEntryInput) (*ChartEntryDTO, error)
}

type service struct {
	repo rateRepository
}

// NewService builds a rate service with the provided repository.
func NewService(repo rateRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("rate repository required")
	}
	return &service{repo: repo}, nil
}

// Resolve picks the per-liter rate for one transaction. A chart entry
// wins only when the fat value is a whole number with a priced row;
// otherwise the milk type's default rate applies.
func (s *service) Resolve(ctx context.Context, milkTypeID uint, fat *decimal.Decimal) (*Resolution, error) {
	milkType, err := s.repo.FindMilkTypeByID(ctx, milkTypeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "milk type not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load milk type")
	}

	if fat != nil && fat.IsInteger() {
		entry, err := s.repo.FindEntry(ctx, milkTypeID, int(fat.IntPart()))
		if err == nil {
			return &Resolution{Rate: entry.Rate, FromChart: true}, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load rate chart entry")
		}
	}

	return &Resolution{Rate: milkType.DefaultRate}, nil
}

func (s *service) ListMilkTypes(ctx context.Context) ([]MilkTypeDTO, error) {
	types, err := s.repo.ListMilkTypes(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list milk types")
	}
	result := make([]MilkTypeDTO, 0, len(types))
	for i := range types {
		result = append(result, *milkTypeFromModel(&types[i]))
	}
	return result, nil
}

func (s *service) CreateMilkType(ctx context.Context, input CreateMilkTypeInput) (*MilkTypeDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "milk type name is required")
	}
	rate, err := decimal.NewFromString(strings.TrimSpace(input.DefaultRate))
	if err != nil || rate.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "default rate must be a non-negative amount")
	}

	milkType := &models.MilkType{
		Name:        name,
		DefaultRate: money.Round2(rate),
	}
	if err := s.repo.CreateMilkType(ctx, milkType); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "milk type already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create milk type")
	}
	return milkTypeFromModel(milkType), nil
}

func (s *service) ListChart(ctx context.Context) ([]ChartEntryDTO, error) {
	entries, err := s.repo.ListEntries(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list rate chart")
	}
	result := make([]ChartEntryDTO, 0, len(entries))
	for i := range entries {
		result = append(result, *entryFromModel(&entries[i]))
	}
	return result, nil
}

// SaveEntry upserts the chart row for one (milk type, fat level) pair.
// An existing pair keeps its row and takes the new rate.
func (s *service) SaveEntry(ctx context.Context, input SaveEntryInput) (*ChartEntryDTO, error) {
	if input.FatLevel < 1 || input.FatLevel > 10 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "fat_level must be between 1 and 10")
	}
	rate, err := decimal.NewFromString(strings.TrimSpace(input.Rate))
	if err != nil || rate.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rate must be a non-negative amount")
	}
	rate = money.Round2(rate)

	milkType, err := s.repo.FindMilkTypeByID(ctx, input.MilkTypeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "milk type not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load milk type")
	}

	existing, err := s.repo.FindEntry(ctx, input.MilkTypeID, input.FatLevel)
	if err == nil {
		if err := s.repo.UpdateEntryRate(ctx, existing.ID, rate); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update rate chart entry")
		}
		existing.Rate = rate
		existing.MilkType = *milkType
		return entryFromModel(existing), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load rate chart entry")
	}

	entry := &models.RateChartEntry{
		MilkTypeID: input.MilkTypeID,
		FatLevel:   input.FatLevel,
		Rate:       rate,
	}
	if err := s.repo.CreateEntry(ctx, entry); err != nil {
		if db.IsUniqueViolation(err, "idx_rate_chart_milk_fat") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "rate chart entry already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create rate chart entry")
	}
	entry.MilkType = *milkType
	return entryFromModel(entry), nil
}
