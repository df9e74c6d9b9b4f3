package models

import (
	"gorm.io/gorm"
)

// KpiStat is one day's aggregated radio-network performance measurement
// for one site. The ledger is append-only; one row per (site, date) by
// convention, not enforced by the schema.
type KpiStat struct {
	gorm.Model
	SiteID             uint    `json:"site_id" gorm:"index:idx_kpi_site_date;not null"`
	Date               string  `json:"date" gorm:"index:idx_kpi_site_date;not null"` // YYYY-MM-DD, lexicographically ordered
	BlockageRate       float64 `json:"blockage_rate"`
	DropRate           float64 `json:"drop_rate"`
	AvailabilityRate   float64 `json:"availability_rate"`
	VoiceTrafficErlang float64 `json:"voice_traffic_erlang"`
	DataTrafficGB      float64 `json:"data_traffic_gb"`
	VolteTrafficGB     float64 `json:"volte_traffic_gb"`
}
