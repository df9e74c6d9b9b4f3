package routes

import (
	"netops_dashboard/internal/controllers"
	"netops_dashboard/internal/middleware"

	"github.com/gin-gonic/gin"
)

func KpiRoutes(r *gin.Engine) {
	kpi := r.Group("/kpi")
	kpi.Use(middleware.RequireAuthWithRoles("engineer", "administrator"))
	{
		kpi.POST("/add", controllers.AddKpi)
		kpi.POST("/generate", controllers.GenerateKpiData)
	}

	api := r.Group("/")
	api.Use(middleware.RequireAuthWithRoles("engineer", "administrator"))
	{
		api.GET("/api/kpi_data", controllers.KpiData)
		api.GET("/download/powerbi_data", controllers.DownloadPowerBIData)
	}
}
