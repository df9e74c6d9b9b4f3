package main

import (
	"log"
	"net/http"

	"netops_dashboard/internal/config"
	"netops_dashboard/internal/logger"
	"netops_dashboard/internal/middleware"
	"netops_dashboard/internal/routes"
)

func main() {
	// Initialize structured logging to file
	logger.Setup()

	// Connect to the database
	config.InitDB()
	config.LoadSettings()

	// Setup Gin router
	r := routes.SetupRouter()

	// Wrap with CORS
	handler := middleware.EnableCORS(r)

	addr := "0.0.0.0:" + config.App.Port
	log.Printf("Server running at %s", addr)
	log.Fatal(http.ListenAndServe(addr, handler))
}
