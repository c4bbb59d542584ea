package models

import "github.com/shopspring/decimal"

// MilkType is a named milk category (Cow, Buffalo) with the per-liter
// rate applied when no fat-specific chart entry matches.
type MilkType struct {
	ID          uint            `gorm:"primaryKey"`
	Name        string          `gorm:"type:varchar(30);not null;uniqueIndex"`
	DefaultRate decimal.Decimal `gorm:"column:default_rate;type:numeric(10,2);not null"`
}
