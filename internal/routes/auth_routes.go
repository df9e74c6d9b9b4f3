package routes

import (
	"netops_dashboard/internal/controllers"
	"netops_dashboard/internal/middleware"

	"github.com/gin-gonic/gin"
)

func AuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/register", controllers.RegisterUser)
		auth.POST("/login", controllers.LoginUser)
		auth.POST("/2fa", middleware.RequireTwoFAStage(), controllers.VerifyTwoFA)
		auth.POST("/resend-2fa", middleware.RequireTwoFAStage(), controllers.ResendTwoFA)
	}

	r.GET("/activate/:token", controllers.ActivateAccount)

	api := r.Group("/api")
	api.Use(middleware.RequireAuthWithRoles("engineer", "administrator"))
	{
		api.GET("/technicians", controllers.ListTechnicians)
	}
}
