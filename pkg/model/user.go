package model

import "time"

const (
	RoleCustomer     = "customer"
	RoleFleetManager = "fleet_manager"
	RoleSupport      = "support"
	RoleFinance      = "finance"
	RoleAdmin        = "admin"
)

// StaffRoles see every booking; customers see only their own.
var StaffRoles = []string{RoleAdmin, RoleFleetManager, RoleSupport, RoleFinance}

func IsStaffRole(role string) bool {
	switch role {
	case RoleAdmin, RoleFleetManager, RoleSupport, RoleFinance:
		return true
	}
	return false
}

type User struct {
	ID           string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Username     string    `json:"username" bson:"username" validate:"required,min=2,max=64"`
	Email        string    `json:"email" bson:"email" validate:"required,email"`
	PasswordHash string    `json:"-" bson:"password_hash"`
	Role         string    `json:"role" bson:"role" validate:"required,oneof=customer fleet_manager support finance admin"`
	Phone        string    `json:"phone,omitempty" bson:"phone,omitempty" validate:"omitempty,e164"`
	Active       bool      `json:"active" bson:"active"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=2,max=64"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	Phone    string `json:"phone,omitempty" validate:"omitempty,e164"`
}

type LoginRequest struct {
	UsernameOrEmail string `json:"username_or_email" validate:"required"`
	Password        string `json:"password" validate:"required"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
}
