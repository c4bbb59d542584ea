package auth

import (
	"github.com/dhiyug/milkdiary-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID     uint
	CustomerID *uint
	Role       enums.Role
	JTI        string
}

// AccessTokenClaims represents the typed JWT issued to clients.
// CustomerID is set only for customer-role accounts linked to a
// collection-register customer.
type AccessTokenClaims struct {
	UserID     uint       `json:"user_id"`
	CustomerID *uint      `json:"customer_id,omitempty"`
	Role       enums.Role `json:"role"`
	jwt.RegisteredClaims
}
