package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	logrus "github.com/sirupsen/logrus"

	"netops_dashboard/internal/config"
	"netops_dashboard/internal/models"
)

// HandleInterventionAction handles POST /interventions. The action field
// selects between a technician logging work and an engineer rating it.
func HandleInterventionAction(c *gin.Context) {
	var peek struct {
		Action string `json:"action"`
	}
	if err := c.ShouldBindBodyWith(&peek, binding.JSON); err != nil || peek.Action == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "action is required"})
		return
	}

	switch peek.Action {
	case "log_work":
		logWork(c)
	case "rate_work":
		rateWork(c)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown action: " + peek.Action})
	}
}

// logWork records a technician's intervention and resolves the ticket.
// Only a technician reaches this path; by default the workflow does not
// verify the technician is the assignee (legacy behavior), unless the
// strict assignee toggle is on.
func logWork(c *gin.Context) {
	if authProfile(c) != "technician" {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only technicians can log work"})
		return
	}

	var input struct {
		Action   string `json:"action"`
		TicketID uint   `json:"ticket_id" binding:"required"`
		Details  string `json:"details" binding:"required"`
	}
	if err := c.ShouldBindBodyWith(&input, binding.JSON); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	techID := authUserID(c)

	var ticket models.Ticket
	if err := config.DB.First(&ticket, input.TicketID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Ticket not found"})
		return
	}

	if config.App.StrictAssigneeCheck && ticket.TechnicianID != techID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Ticket is assigned to another technician"})
		return
	}

	tx := config.DB.Begin()
	if tx.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
		return
	}

	intervention := models.Intervention{
		TicketID:     input.TicketID,
		TechnicianID: techID,
		Date:         time.Now(),
		Details:      input.Details,
	}
	if err := tx.Create(&intervention).Error; err != nil {
		tx.Rollback()
		logrus.WithError(err).Error("logWork: create failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not log intervention: " + err.Error()})
		return
	}

	advanced, err := advanceTicketStatus(tx, input.TicketID, models.TicketResolved)
	if err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not resolve ticket"})
		return
	}
	if !advanced {
		tx.Rollback()
		c.JSON(http.StatusConflict, gin.H{"error": "Ticket is not open for work"})
		return
	}

	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Transaction commit failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"intervention": intervention,
		"message":      "Intervention logged and ticket resolved.",
	})
}

// rateWork stores an engineer's rating on an intervention and closes
// the parent ticket. Re-rating overwrites the previous rating; the
// ticket stays closed.
func rateWork(c *gin.Context) {
	profile := authProfile(c)
	if profile != "engineer" && profile != "administrator" {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only engineers can rate work"})
		return
	}

	var input struct {
		Action         string `json:"action"`
		InterventionID uint   `json:"intervention_id" binding:"required"`
		Rating         int    `json:"rating" binding:"required"`
		Comment        string `json:"comment"`
	}
	if err := c.ShouldBindBodyWith(&input, binding.JSON); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Rating < 1 || input.Rating > 5 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rating must be between 1 and 5"})
		return
	}

	var intervention models.Intervention
	if err := config.DB.First(&intervention, input.InterventionID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Intervention not found"})
		return
	}

	if err := config.DB.Model(&intervention).Updates(map[string]interface{}{
		"engineer_rating":  input.Rating,
		"engineer_comment": input.Comment,
	}).Error; err != nil {
		logrus.WithError(err).Error("rateWork: update failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not rate intervention"})
		return
	}

	// Closing is idempotent: advancing an already-closed ticket is a
	// no-op, not an error.
	if _, err := advanceTicketStatus(config.DB, intervention.TicketID, models.TicketClosed); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not close ticket"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Intervention rated successfully."})
}

// ListInterventions handles GET /interventions. Technicians get their
// workable tickets plus their own history; engineers and administrators
// get every intervention with full context. Newest first.
func ListInterventions(c *gin.Context) {
	if authProfile(c) == "technician" {
		techID := authUserID(c)

		var openTickets []models.Ticket
		if err := config.DB.Preload("Site").Preload("Engineer").
			Where("technician_id = ? AND status IN ?", techID,
				[]string{models.TicketOpen, models.TicketInProgress}).
			Find(&openTickets).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing tickets: " + err.Error()})
			return
		}

		var interventions []models.Intervention
		if err := config.DB.Preload("Ticket").Preload("Ticket.Site").
			Where("technician_id = ?", techID).
			Order("date DESC").Find(&interventions).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing interventions: " + err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"open_tickets": openTickets, "interventions": interventions})
		return
	}

	var interventions []models.Intervention
	if err := config.DB.Preload("Ticket").Preload("Ticket.Site").Preload("Technician").
		Order("date DESC").Find(&interventions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing interventions: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"interventions": interventions})
}

// InterventionStats handles GET /api/intervention_stats.
func InterventionStats(c *gin.Context) {
	type countRow struct {
		Label string `json:"label"`
		Count int64  `json:"count"`
	}
	var statusDist, priorityDist []countRow
	if err := config.DB.Model(&models.Ticket{}).
		Select("status AS label, COUNT(*) AS count").
		Group("status").Scan(&statusDist).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch ticket stats"})
		return
	}
	if err := config.DB.Model(&models.Ticket{}).
		Select("priority AS label, COUNT(*) AS count").
		Group("priority").Scan(&priorityDist).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch ticket stats"})
		return
	}

	var topTechs []struct {
		Name          string  `json:"name"`
		ResolvedCount int64   `json:"resolved_count"`
		AvgRating     float64 `json:"avg_rating"`
	}
	if err := config.DB.Model(&models.Intervention{}).
		Select("users.name, COUNT(interventions.id) AS resolved_count, COALESCE(AVG(interventions.engineer_rating), 0) AS avg_rating").
		Joins("JOIN users ON users.id = interventions.technician_id").
		Group("users.name").Order("resolved_count DESC").Limit(5).
		Scan(&topTechs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch technician stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status_dist":   statusDist,
		"top_techs":     topTechs,
		"priority_dist": priorityDist,
	})
}
