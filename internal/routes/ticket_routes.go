package routes

import (
	"netops_dashboard/internal/controllers"
	"netops_dashboard/internal/middleware"

	"github.com/gin-gonic/gin"
)

func TicketRoutes(r *gin.Engine) {
	tickets := r.Group("/tickets")
	tickets.Use(middleware.RequireAuth())
	{
		tickets.GET("", controllers.ListTickets)
	}

	manage := r.Group("/tickets")
	manage.Use(middleware.RequireAuthWithRoles("engineer", "administrator"))
	{
		manage.POST("", controllers.CreateTicket)
		manage.PUT("/:id/status", controllers.UpdateTicketStatus)
	}

	// Both roles hit /interventions; the action decides who may do what
	interventions := r.Group("/interventions")
	interventions.Use(middleware.RequireAuth())
	{
		interventions.GET("", controllers.ListInterventions)
		interventions.POST("", controllers.HandleInterventionAction)
	}

	api := r.Group("/api")
	api.Use(middleware.RequireAuthWithRoles("engineer", "administrator"))
	{
		api.GET("/intervention_stats", controllers.InterventionStats)
	}
}
