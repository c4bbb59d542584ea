package rates

import (
	"github.com/dhiyug/milkdiary-backend/pkg/db/models"
	"github.com/shopspring/decimal"
)

// MilkTypeDTO exposes a milk category in API responses.
type MilkTypeDTO struct {
	ID          uint            `json:"id"`
	Name        string          `json:"name"`
	DefaultRate decimal.Decimal `json:"default_rate"`
}

// ChartEntryDTO exposes one priced (milk type, fat level) pair.
type ChartEntryDTO struct {
	ID           uint            `json:"id"`
	MilkTypeID   uint            `json:"milk_type_id"`
	MilkTypeName string          `json:"milk_type_name,omitempty"`
	FatLevel     int             `json:"fat_level"`
	Rate         decimal.Decimal `json:"rate"`
}

// CreateMilkTypeInput captures the fields for a new milk category.
type CreateMilkTypeInput struct {
	Name        string `json:"name" validate:"required,min=2,max=30"`
	DefaultRate string `json:"default_rate" validate:"required"`
}

// SaveEntryInput captures one rate chart upsert.
type SaveEntryInput struct {
	MilkTypeID uint   `json:"milk_type_id" validate:"required"`
	FatLevel   int    `json:"fat_level" validate:"required,min=1,max=10"`
	Rate       string `json:"rate" validate:"required"`
}

func milkTypeFromModel(m *models.MilkType) *MilkTypeDTO {
	if m == nil {
		return nil
	}
	return &MilkTypeDTO{
		ID:          m.ID,
		Name:        m.Name,
		DefaultRate: m.DefaultRate,
	}
}

func entryFromModel(m *models.RateChartEntry) *ChartEntryDTO {
	if m == nil {
		return nil
	}
	return &ChartEntryDTO{
		ID:           m.ID,
		MilkTypeID:   m.MilkTypeID,
		MilkTypeName: m.MilkType.Name,
		FatLevel:     m.FatLevel,
		Rate:         m.Rate,
	}
}
