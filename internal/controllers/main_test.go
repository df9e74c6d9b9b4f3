package controllers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"netops_dashboard/internal/config"
	"netops_dashboard/internal/middleware"
	"netops_dashboard/internal/models"
)

// setupTestDB points the global handle at a fresh in-memory SQLite
// database and resets settings to their defaults.
func setupTestDB(t *testing.T) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	// In-memory SQLite is per-connection; keep the pool at one
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, config.Migrate(db))
	config.DB = db
	config.App = config.Settings{}
}

// testRouter registers the routes exercised by the controller tests.
func testRouter() *gin.Engine {
	r := gin.New()

	r.POST("/auth/register", RegisterUser)
	r.POST("/auth/login", LoginUser)
	r.POST("/auth/2fa", middleware.RequireTwoFAStage(), VerifyTwoFA)
	r.POST("/auth/resend-2fa", middleware.RequireTwoFAStage(), ResendTwoFA)
	r.GET("/activate/:token", ActivateAccount)

	pools := r.Group("/manage-site-codes", middleware.RequireAuthWithRoles("administrator"))
	pools.POST("/add", AddSiteCodePool)
	pools.GET("/exploit", ExploitSiteCodePools)
	pools.POST("/delete", DeleteSiteCodePools)
	pools.POST("/edit", EditSiteCodePools)
	r.GET("/api/site-info", middleware.RequireAuth(), SiteInfo)

	r.GET("/sites", middleware.RequireAuth(), ListSites)
	manage := r.Group("/sites", middleware.RequireAuthWithRoles("engineer", "administrator"))
	manage.POST("", CreateSite)
	manage.DELETE("/:id", DeleteSite)

	kpi := r.Group("/", middleware.RequireAuthWithRoles("engineer", "administrator"))
	kpi.POST("/kpi/add", AddKpi)
	kpi.GET("/api/kpi_data", KpiData)
	kpi.GET("/download/powerbi_data", DownloadPowerBIData)
	kpi.GET("/api/intervention_stats", InterventionStats)

	tickets := r.Group("/tickets", middleware.RequireAuth())
	tickets.GET("", ListTickets)
	ticketManage := r.Group("/tickets", middleware.RequireAuthWithRoles("engineer", "administrator"))
	ticketManage.POST("", CreateTicket)
	ticketManage.PUT("/:id/status", UpdateTicketStatus)

	interventions := r.Group("/interventions", middleware.RequireAuth())
	interventions.GET("", ListInterventions)
	interventions.POST("", HandleInterventionAction)

	return r
}

// seedUser inserts a user and returns it together with a session token.
func seedUser(t *testing.T, userID, profile string) (models.User, string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)

	user := models.User{
		Name:     "Test " + userID,
		UserID:   userID,
		Email:    userID + "@netops.local",
		Password: string(hash),
		Profile:  profile,
		IsActive: true,
	}
	require.NoError(t, config.DB.Create(&user).Error)

	token, err := middleware.GenerateToken(user.ID, user.Profile)
	require.NoError(t, err)
	return user, token
}

// seedSite inserts one site row.
func seedSite(t *testing.T, region, code, delegation string) models.Site {
	t.Helper()
	site := models.Site{
		Region:     region,
		Code:       code,
		Delegation: delegation,
		SiteName:   "Site " + code,
		X:          36.8,
		Y:          10.2,
		HBA:        30,
		Supplier:   "Huawei",
		Access:     "Easy",
		Antenna:    "Sector",
		Surface:    "Roof",
	}
	require.NoError(t, config.DB.Create(&site).Error)
	return site
}

// doJSON performs a JSON request against the router and returns the
// recorder plus the decoded body.
func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	decoded := map[string]interface{}{}
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") != "text/csv" {
		_ = json.Unmarshal(w.Body.Bytes(), &decoded)
	}
	return w, decoded
}
