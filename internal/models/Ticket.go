package models

import (
	"gorm.io/gorm"
)

// Ticket statuses. Status only ever advances along this order and
// "Closed" is terminal.
const (
	TicketOpen       = "Open"
	TicketInProgress = "In Progress"
	TicketResolved   = "Resolved"
	TicketClosed     = "Closed"
)

// Ticket priorities.
const (
	PriorityLow    = "Low"
	PriorityMedium = "Medium"
	PriorityHigh   = "High"
)

// Ticket is a unit of requested maintenance work against one site,
// raised by an engineer and assigned to a technician.
type Ticket struct {
	gorm.Model
	SiteID       uint   `json:"site_id" gorm:"index;not null"`
	EngineerID   uint   `json:"engineer_id" gorm:"not null"`
	TechnicianID uint   `json:"technician_id" gorm:"index;not null"`
	Title        string `json:"title" gorm:"not null"`
	Description  string `json:"description"`
	Priority     string `json:"priority" gorm:"default:Medium"`
	Status       string `json:"status" gorm:"default:Open;index"`

	Site          Site           `gorm:"foreignKey:SiteID" json:"site,omitempty"`
	Engineer      User           `gorm:"foreignKey:EngineerID" json:"engineer,omitempty"`
	Technician    User           `gorm:"foreignKey:TechnicianID" json:"technician,omitempty"`
	Interventions []Intervention `gorm:"foreignKey:TicketID" json:"interventions,omitempty"`
}
