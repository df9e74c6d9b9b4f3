package models

import (
	"time"

	"gorm.io/gorm"
)

// Intervention records work a technician performed against a ticket.
// An engineer may later rate it, which closes the parent ticket.
type Intervention struct {
	gorm.Model
	TicketID     uint      `json:"ticket_id" gorm:"index;not null"`
	TechnicianID uint      `json:"technician_id" gorm:"index;not null"`
	Date         time.Time `json:"date"`
	Details      string    `json:"details" gorm:"not null"`

	EngineerRating  *int    `json:"engineer_rating"` // 1-5, set on review
	EngineerComment *string `json:"engineer_comment"`

	Ticket     Ticket `gorm:"foreignKey:TicketID" json:"ticket,omitempty"`
	Technician User   `gorm:"foreignKey:TechnicianID" json:"technician,omitempty"`
}
