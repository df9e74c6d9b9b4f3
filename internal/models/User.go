package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Name     string `json:"name"`
	UserID   string `json:"user_id" gorm:"uniqueIndex;not null"` // login id
	Email    string `json:"email"`
	Password string `json:"-"`
	Profile  string `json:"profile"` // "technician", "engineer", "administrator"

	// Account activation (only used when ACTIVATION_REQUIRED is on)
	IsActive        bool       `json:"is_active"`
	ActivationToken *string    `json:"-" gorm:"index"`
	TokenExpiry     *time.Time `json:"-"`

	// Two-factor login state
	TwoFACode     *string    `json:"-"`
	TwoFAExpiry   *time.Time `json:"-"`
	LastTwoFASent *time.Time `json:"-"`
}
