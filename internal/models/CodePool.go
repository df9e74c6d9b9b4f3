package models

import (
	"gorm.io/gorm"
)

// CodePool is an inclusive integer range reserved for a region, from
// which site codes are drawn. Ranges within a region may overlap; the
// allocator treats that as tolerated duplication risk unless strict
// overlap checking is enabled.
type CodePool struct {
	gorm.Model
	Region    string `json:"region" gorm:"index;not null"`
	StartCode int    `json:"start_code" gorm:"not null"`
	EndCode   int    `json:"end_code" gorm:"not null"`
}
