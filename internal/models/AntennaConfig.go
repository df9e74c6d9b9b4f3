package models

import (
	"gorm.io/gorm"
)

// AntennaConfig holds the physical and logical parameters of one sector
// on a site. Rows are removed together with their owning site.
type AntennaConfig struct {
	gorm.Model
	SiteID         uint    `json:"site_id" gorm:"index;not null"`
	Sector         string  `json:"sector"`
	Azimuth        int     `json:"azimuth"` // degrees from north
	PIRE           float64 `json:"pire"`    // effective radiated power, dBm
	TiltMechanical float64 `json:"tilt_mechanical"`
	TiltElectrical float64 `json:"tilt_electrical"`
}
