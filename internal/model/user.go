package model

import (
	"errors"
	"time"
)

// User represents an authenticated operator.
type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	Name         string     `json:"name"`
	Role         string     `json:"role"`
	CreatedAt    time.Time  `json:"created_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

// Roles. Reviewer roles double as approval-chain stage assignments.
const (
	RoleAdmin        = "admin"
	RoleFaculty      = "faculty"
	RoleAuditor      = "auditor"
	RoleHOD          = "hod"
	RolePrincipal    = "principal"
	RoleACC          = "acc"
	RoleSecretary    = "secretary"
	RoleTrustManager = "trust_manager"
)

// MinPasswordLength is the shortest password accepted at creation or reset.
const MinPasswordLength = 8

// ValidatePassword checks password strength requirements.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return errors.New("password must be at least 8 characters")
	}
	return nil
}

// KnownRole reports whether role is one of the defined roles.
func KnownRole(role string) bool {
	switch role {
	case RoleAdmin, RoleFaculty, RoleAuditor, RoleHOD, RolePrincipal,
		RoleACC, RoleSecretary, RoleTrustManager:
		return true
	}
	return false
}
