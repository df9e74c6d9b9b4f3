package routes

import (
	"netops_dashboard/internal/controllers"
	"netops_dashboard/internal/middleware"

	"github.com/gin-gonic/gin"
)

func CodePoolRoutes(r *gin.Engine) {
	pools := r.Group("/manage-site-codes")
	pools.Use(middleware.RequireAuthWithRoles("administrator"))
	{
		pools.POST("/add", controllers.AddSiteCodePool)
		pools.GET("/exploit", controllers.ExploitSiteCodePools)
		pools.POST("/delete", controllers.DeleteSiteCodePools)
		pools.POST("/edit", controllers.EditSiteCodePools)
	}

	// Site-creation forms need the expanded pool regardless of role
	r.GET("/api/site-info", middleware.RequireAuth(), controllers.SiteInfo)
}
