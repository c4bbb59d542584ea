package models

import (
	"time"

	"github.com/dhiyug/milkdiary-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// Transaction records one delivery event. OccurredAt is the stored UTC
// instant (operator-entered dates are local-midnight converted).
// RateApplied and TotalAmount are frozen at creation time; later rate
// chart edits never touch existing rows.
type Transaction struct {
	ID          uint              `gorm:"primaryKey"`
	CustomerID  uint              `gorm:"column:customer_id;not null;index"`
	MilkTypeID  uint              `gorm:"column:milk_type_id;not null"`
	OccurredAt  time.Time         `gorm:"column:occurred_at;not null;index:idx_transactions_occurred_at"`
	Session     enums.MilkSession `gorm:"type:varchar(12);not null"`
	QtyLiters   decimal.Decimal   `gorm:"column:qty_liters;type:numeric(10,2);not null"`
	FatValue    *decimal.Decimal  `gorm:"column:fat_value;type:numeric(4,1)"`
	RateApplied decimal.Decimal   `gorm:"column:rate_applied;type:numeric(10,2);not null"`
	TotalAmount decimal.Decimal   `gorm:"column:total_amount;type:numeric(12,2);not null"`
	TxnType     enums.TxnType     `gorm:"column:txn_type;type:varchar(10);not null"`

	Customer Customer `gorm:"foreignKey:CustomerID"`
	MilkType MilkType `gorm:"foreignKey:MilkTypeID"`
}
