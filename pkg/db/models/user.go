package models

import (
	"time"

	"github.com/dhiyug/milkdiary-backend/pkg/enums"
)

// User represents a login account. Customer accounts carry a link to
// the customer record they may read.
type User struct {
	ID           uint       `gorm:"primaryKey"`
	Phone        string     `gorm:"type:varchar(30);not null;uniqueIndex"`
	Name         string     `gorm:"type:varchar(120)"`
	PasswordHash string     `gorm:"column:password_hash;not null"`
	Role         enums.Role `gorm:"type:varchar(20);not null;default:'customer'"`
	CustomerID   *uint      `gorm:"column:customer_id"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
