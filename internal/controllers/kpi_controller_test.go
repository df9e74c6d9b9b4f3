package controllers

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netops_dashboard/internal/config"
	"netops_dashboard/internal/models"
)

func seedKpi(t *testing.T, siteID uint, date string, block, drop, avail, voice, data float64) {
	t.Helper()
	require.NoError(t, config.DB.Create(&models.KpiStat{
		SiteID:             siteID,
		Date:               date,
		BlockageRate:       block,
		DropRate:           drop,
		AvailabilityRate:   avail,
		VoiceTrafficErlang: voice,
		DataTrafficGB:      data,
	}).Error)
}

func TestKpiOverviewAggregation(t *testing.T) {
	setupTestDB(t)
	r := testRouter()
	_, engToken := seedUser(t, "eng1", "engineer")

	s1 := seedSite(t, "Tunis", "1001", "Carthage")
	s2 := seedSite(t, "Sousse", "2001", "Kantaoui")

	seedKpi(t, s1.ID, "2026-08-01", 1.0, 0.5, 99.0, 40, 100)
	seedKpi(t, s2.ID, "2026-08-01", 3.0, 1.5, 97.0, 60, 200)
	seedKpi(t, s1.ID, "2026-08-02", 2.0, 1.0, 98.0, 50, 150)

	w, body := doJSON(t, r, http.MethodGet, "/api/kpi_data?mode=overview", engToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	dates := body["dates"].([]interface{})
	require.Len(t, dates, 2)
	assert.Equal(t, "2026-08-01", dates[0])
	assert.Equal(t, "2026-08-02", dates[1])

	blockage := body["blocage"].([]interface{})
	assert.InDelta(t, 2.0, blockage[0].(float64), 1e-9) // mean of 1.0 and 3.0
	data := body["data"].([]interface{})
	assert.InDelta(t, 300.0, data[0].(float64), 1e-9) // sum of 100 and 200
}

func TestKpiOperationalWorstOffenders(t *testing.T) {
	setupTestDB(t)
	r := testRouter()
	_, engToken := seedUser(t, "eng1", "engineer")

	s1 := seedSite(t, "Tunis", "1001", "Carthage")
	s2 := seedSite(t, "Sousse", "2001", "Kantaoui")
	s3 := seedSite(t, "Gafsa", "3001", "Ksar")

	// Older date must be ignored
	seedKpi(t, s1.ID, "2026-08-01", 9.0, 9.0, 90.0, 10, 10)
	// Latest date
	seedKpi(t, s1.ID, "2026-08-02", 1.0, 0.5, 99.5, 40, 100)
	seedKpi(t, s2.ID, "2026-08-02", 6.0, 2.0, 95.0, 20, 50)
	// Zero traffic while below full availability
	seedKpi(t, s3.ID, "2026-08-02", 0.2, 0.1, 98.0, 0, 0)

	w, body := doJSON(t, r, http.MethodGet, "/api/kpi_data?mode=operational", engToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2026-08-02", body["date"])

	offenders := body["worst_offenders"].([]interface{})
	require.Len(t, offenders, 3)
	worst := offenders[0].(map[string]interface{})
	assert.Equal(t, "2001", worst["code"]) // 6.0+2.0 is the highest degradation

	anomalies := body["zero_traffic"].([]interface{})
	require.Len(t, anomalies, 1)
	assert.Equal(t, "3001", anomalies[0].(map[string]interface{})["code"])
}

func TestKpiTacticalSupplierBenchmark(t *testing.T) {
	setupTestDB(t)
	r := testRouter()
	_, engToken := seedUser(t, "eng1", "engineer")

	s1 := seedSite(t, "Tunis", "1001", "Carthage")
	s2 := seedSite(t, "Sousse", "2001", "Kantaoui")
	require.NoError(t, config.DB.Model(&s2).Update("supplier", "Nokia").Error)

	seedKpi(t, s1.ID, "2026-08-01", 1.0, 0.4, 99.0, 40, 100)
	seedKpi(t, s2.ID, "2026-08-01", 2.0, 1.2, 97.0, 60, 200)

	w, body := doJSON(t, r, http.MethodGet, "/api/kpi_data?mode=tactical", engToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	benchmark := body["supplier_benchmark"].([]interface{})
	require.Len(t, benchmark, 2)
	sample := body["correlation_sample"].([]interface{})
	assert.Len(t, sample, 2)
}

func TestKpiStrategicTrend(t *testing.T) {
	setupTestDB(t)
	r := testRouter()
	_, engToken := seedUser(t, "eng1", "engineer")

	s1 := seedSite(t, "Tunis", "1001", "Carthage")
	seedKpi(t, s1.ID, "2026-08-01", 1.0, 0.4, 99.0, 40, 100)
	seedKpi(t, s1.ID, "2026-08-02", 1.0, 0.4, 99.0, 50, 150)

	w, body := doJSON(t, r, http.MethodGet, "/api/kpi_data?mode=strategic", engToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	trend := body["trend"].([]interface{})
	require.Len(t, trend, 2)
	first := trend[0].(map[string]interface{})
	assert.Equal(t, "2026-08-01", first["date"])
	assert.InDelta(t, 100.0, first["total_data"].(float64), 1e-9)
	assert.InDelta(t, 40.0, first["total_voice"].(float64), 1e-9)
}

func TestKpiDataUnknownMode(t *testing.T) {
	setupTestDB(t)
	r := testRouter()
	_, engToken := seedUser(t, "eng1", "engineer")

	w, _ := doJSON(t, r, http.MethodGet, "/api/kpi_data?mode=oracle", engToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAddKpiValidation(t *testing.T) {
	setupTestDB(t)
	r := testRouter()
	_, engToken := seedUser(t, "eng1", "engineer")
	site := seedSite(t, "Tunis", "1001", "Carthage")

	w, _ := doJSON(t, r, http.MethodPost, "/kpi/add", engToken, map[string]interface{}{
		"site_id": site.ID, "date": "01/08/2026",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doJSON(t, r, http.MethodPost, "/kpi/add", engToken, map[string]interface{}{
		"site_id": 9999, "date": "2026-08-01",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = doJSON(t, r, http.MethodPost, "/kpi/add", engToken, map[string]interface{}{
		"site_id": site.ID, "date": "2026-08-01", "availability_rate": 99.9,
	})
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestDownloadPowerBIData(t *testing.T) {
	setupTestDB(t)
	r := testRouter()
	_, engToken := seedUser(t, "eng1", "engineer")
	site := seedSite(t, "Tunis", "1001", "Carthage")
	seedKpi(t, site.ID, "2026-08-01", 1.0, 0.4, 99.0, 40, 100)

	w, _ := doJSON(t, r, http.MethodGet, "/download/powerbi_data", engToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "powerbi_data.csv")

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "region,delegation,code,site_name"))
	assert.Contains(t, lines[1], "Tunis")
	assert.Contains(t, lines[1], "2026-08-01")
}
