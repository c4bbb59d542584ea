package users

import (
	"time"

	"github.com/dhiyug/milkdiary-backend/pkg/db/models"
	"github.com/dhiyug/milkdiary-backend/pkg/enums"
)

// UserDTO exposes safe account data in API responses.
type UserDTO struct {
	ID         uint       `json:"id"`
	Phone      string     `json:"phone"`
	Name       string     `json:"name,omitempty"`
	Role       enums.Role `json:"role"`
	CustomerID *uint      `json:"customer_id,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// FromModel maps the persisted user into a DTO.
func FromModel(m *models.User) *UserDTO {
	if m == nil {
		return nil
	}
	return &UserDTO{
		ID:         m.ID,
		Phone:      m.Phone,
		Name:       m.Name,
		Role:       m.Role,
		CustomerID: m.CustomerID,
		CreatedAt:  m.CreatedAt,
	}
}
