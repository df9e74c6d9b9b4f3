package routes

import (
	"netops_dashboard/internal/controllers"
	"netops_dashboard/internal/middleware"

	"github.com/gin-gonic/gin"
)

func SiteRoutes(r *gin.Engine) {
	sites := r.Group("/sites")
	sites.Use(middleware.RequireAuth())
	{
		sites.GET("", controllers.ListSites)
		sites.GET("/:id", controllers.GetSite)
		sites.GET("/:id/antennas", controllers.ListAntennaConfigs)
	}

	manage := r.Group("/sites")
	manage.Use(middleware.RequireAuthWithRoles("engineer", "administrator"))
	{
		manage.POST("", controllers.CreateSite)
		manage.PUT("/:id", controllers.UpdateSite)
		manage.DELETE("/:id", controllers.DeleteSite)
		manage.POST("/:id/antennas", controllers.AddAntennaConfig)
		manage.DELETE("/:id/antennas/:aid", controllers.DeleteAntennaConfig)
	}

	api := r.Group("/api")
	api.Use(middleware.RequireAuth())
	{
		api.GET("/site_inventory", controllers.SiteInventory)
		api.GET("/site-map", controllers.SiteMap)
	}
}
