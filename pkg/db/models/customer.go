package models

import "time"

// Customer is a party the business collects milk from or delivers milk to.
type Customer struct {
	ID        uint      `gorm:"primaryKey"`
	Name      string    `gorm:"type:varchar(120);not null"`
	Phone     string    `gorm:"type:varchar(30)"`
	Address   string    `gorm:"type:varchar(250)"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
