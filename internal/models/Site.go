package models

import (
	"gorm.io/gorm"
)

// Site represents one physical cell-tower location. The (region, code,
// delegation) triple identifies a site uniquely across the inventory.
type Site struct {
	gorm.Model
	Region     string  `json:"region" gorm:"uniqueIndex:idx_site_identity;not null"`
	Code       string  `json:"code" gorm:"uniqueIndex:idx_site_identity;not null"`
	Delegation string  `json:"delegation" gorm:"uniqueIndex:idx_site_identity;not null"`
	SiteName   string  `json:"site_name"`
	X          float64 `json:"x"` // latitude
	Y          float64 `json:"y"` // longitude
	HBA        float64 `json:"hba"` // antenna height above ground, meters
	Supplier   string  `json:"supplier"`
	Access     string  `json:"access"`  // access difficulty, e.g. "Easy", "Hard"
	Antenna    string  `json:"antenna"` // antenna type, e.g. "Omni", "Sector"
	Surface    string  `json:"surface"` // mount surface, e.g. "Roof", "Tower"

	AntennaConfigs []AntennaConfig `gorm:"foreignKey:SiteID" json:"antenna_configs,omitempty"`
	KpiStats       []KpiStat       `gorm:"foreignKey:SiteID" json:"kpi_stats,omitempty"`
}
