package models

import "github.com/shopspring/decimal"

// RateChartEntry prices one (milk type, fat level) pair. The compound
// unique index enforces at most one entry per pair.
type RateChartEntry struct {
	ID         uint            `gorm:"primaryKey"`
	MilkTypeID uint            `gorm:"column:milk_type_id;not null;uniqueIndex:idx_rate_chart_milk_fat"`
	FatLevel   int             `gorm:"column:fat_level;not null;uniqueIndex:idx_rate_chart_milk_fat"`
	Rate       decimal.Decimal `gorm:"column:rate;type:numeric(10,2);not null"`

	MilkType MilkType `gorm:"foreignKey:MilkTypeID"`
}
