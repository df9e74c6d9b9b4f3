package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	logrus "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"netops_dashboard/internal/config"
	"netops_dashboard/internal/models"
)

// statusRank orders ticket statuses; transitions may only move to a
// higher rank, "Closed" is terminal.
var statusRank = map[string]int{
	models.TicketOpen:       0,
	models.TicketInProgress: 1,
	models.TicketResolved:   2,
	models.TicketClosed:     3,
}

// advanceTicketStatus moves a ticket to the target status with a single
// conditional UPDATE: the row changes only if its current status still
// precedes the target. Closes the check-then-update race two concurrent
// workflow calls would otherwise hit.
func advanceTicketStatus(db *gorm.DB, ticketID uint, target string) (bool, error) {
	targetRank, ok := statusRank[target]
	if !ok {
		return false, nil
	}
	allowed := []string{}
	for status, rank := range statusRank {
		if rank < targetRank {
			allowed = append(allowed, status)
		}
	}

	res := db.Model(&models.Ticket{}).
		Where("id = ? AND status IN ?", ticketID, allowed).
		Update("status", target)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// CreateTicket handles POST /tickets. The acting engineer comes from
// the auth context; the assignee must hold the technician profile.
func CreateTicket(c *gin.Context) {
	var input struct {
		SiteID       uint   `json:"site_id" binding:"required"`
		TechnicianID uint   `json:"technician_id" binding:"required"`
		Title        string `json:"title" binding:"required"`
		Description  string `json:"description" binding:"required"`
		Priority     string `json:"priority" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	switch input.Priority {
	case models.PriorityLow, models.PriorityMedium, models.PriorityHigh:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "priority must be Low, Medium or High"})
		return
	}

	var site models.Site
	if err := config.DB.First(&site, input.SiteID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Site not found"})
		return
	}

	var technician models.User
	if err := config.DB.First(&technician, input.TechnicianID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Technician not found"})
		return
	}
	if technician.Profile != "technician" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Assignee is not a technician"})
		return
	}

	ticket := models.Ticket{
		SiteID:       input.SiteID,
		EngineerID:   authUserID(c),
		TechnicianID: input.TechnicianID,
		Title:        input.Title,
		Description:  input.Description,
		Priority:     input.Priority,
		Status:       models.TicketOpen,
	}
	if err := config.DB.Create(&ticket).Error; err != nil {
		logrus.WithError(err).Error("CreateTicket: create failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create ticket: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ticket": ticket, "message": "Ticket created successfully"})
}

// ListTickets handles GET /tickets. Technicians see only their assigned
// tickets; engineers and administrators see everything.
func ListTickets(c *gin.Context) {
	query := config.DB.Preload("Site").Preload("Engineer").Preload("Technician").
		Order("created_at DESC")
	if authProfile(c) == "technician" {
		query = query.Where("technician_id = ?", authUserID(c))
	}

	var tickets []models.Ticket
	if err := query.Find(&tickets).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing tickets: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": tickets})
}

// UpdateTicketStatus handles PUT /tickets/:id/status: the direct status
// edit, and the only way a ticket reaches "In Progress". Forward moves
// only.
func UpdateTicketStatus(c *gin.Context) {
	ticketID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ticket ID"})
		return
	}

	var input struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, ok := statusRank[input.Status]; !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	var ticket models.Ticket
	if err := config.DB.First(&ticket, ticketID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Ticket not found"})
		return
	}

	advanced, err := advanceTicketStatus(config.DB, uint(ticketID), input.Status)
	if err != nil {
		logrus.WithError(err).Error("UpdateTicketStatus: update failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not update status"})
		return
	}
	if !advanced {
		c.JSON(http.StatusConflict, gin.H{"error": "Ticket status cannot move backwards"})
		return
	}

	ticket.Status = input.Status
	c.JSON(http.StatusOK, gin.H{"ticket": ticket, "message": "Ticket status updated"})
}
