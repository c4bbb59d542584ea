package users

import (
	"context"
	"strings"

	"github.com/dhiyug/milkdiary-backend/pkg/db/models"
	"github.com/dhiyug/milkdiary-backend/pkg/enums"
	"gorm.io/gorm"
)

// CreateUserDTO holds creation-time data for a login account.
type CreateUserDTO struct {
	Phone        string
	Name         string
	PasswordHash string
	Role         enums.Role
	CustomerID   *uint
}

// Repository handles user persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to user operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new user row.
func (r *Repository) Create(ctx context.Context, dto CreateUserDTO) (*models.User, error) {
	user := &models.User{
		Phone:        strings.TrimSpace(dto.Phone),
		Name:         strings.TrimSpace(dto.Name),
		PasswordHash: dto.PasswordHash,
		Role:         dto.Role,
		CustomerID:   dto.CustomerID,
	}
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// FindByID loads a user by primary key.
func (r *Repository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByPhone loads a user by the unique phone column.
func (r *Repository) FindByPhone(ctx context.Context, phone string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "phone = ?", strings.TrimSpace(phone)).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// CountAdmins reports how many operator accounts exist.
func (r *Repository) CountAdmins(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("role = ?", enums.RoleAdmin).
		Count(&count).Error
	return count, err
}
