package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bill aggregates one customer's transactions over a closed date
// interval. The compound unique index backs the regeneration
// idempotence: one row per (customer, window), updated in place.
// Period bounds are stored as UTC-midnight calendar dates.
type Bill struct {
	ID          uint            `gorm:"primaryKey"`
	CustomerID  uint            `gorm:"column:customer_id;not null;uniqueIndex:idx_bills_window"`
	PeriodStart time.Time       `gorm:"column:period_start;type:date;not null;uniqueIndex:idx_bills_window"`
	PeriodEnd   time.Time       `gorm:"column:period_end;type:date;not null;uniqueIndex:idx_bills_window"`
	TotalAmount decimal.Decimal `gorm:"column:total_amount;type:numeric(12,2);not null"`
	GeneratedAt time.Time       `gorm:"column:generated_at;not null"`
	IsPaid      bool            `gorm:"column:is_paid;not null;default:false"`

	Customer Customer `gorm:"foreignKey:CustomerID"`
}
