package customers

import (
	"time"

	"github.com/dhiyug/milkdiary-backend/pkg/db/models"
)

// CustomerDTO exposes one register entry in API responses.
type CustomerDTO struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateCustomerInput captures the fields for a new register entry.
// CreateLogin additionally provisions a portal account on the phone
// number with a one-time temporary password.
type CreateCustomerInput struct {
	Name        string `json:"name" validate:"required,min=2,max=120"`
	Phone       string `json:"phone" validate:"omitempty,min=6,max=20"`
	Address     string `json:"address" validate:"omitempty,max=250"`
	CreateLogin bool   `json:"create_login"`
}

// CreateCustomerResult carries the stored customer plus the temporary
// portal password when a login was provisioned.
type CreateCustomerResult struct {
	Customer     *CustomerDTO `json:"customer"`
	TempPassword string       `json:"temp_password,omitempty"`
}

// DeleteCustomerInput requires the operator to retype the exact name.
type DeleteCustomerInput struct {
	ConfirmName string `json:"confirm_name" validate:"required"`
}

// FromModel maps the persisted customer into a DTO.
func FromModel(m *models.Customer) *CustomerDTO {
	if m == nil {
		return nil
	}
	return &CustomerDTO{
		ID:        m.ID,
		Name:      m.Name,
		Phone:     m.Phone,
		Address:   m.Address,
		CreatedAt: m.CreatedAt,
	}
}
