package controllers

import (
	"encoding/csv"
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	logrus "github.com/sirupsen/logrus"

	"netops_dashboard/internal/config"
	"netops_dashboard/internal/models"
)

const kpiDateLayout = "2006-01-02"

// AddKpi handles POST /kpi/add: one manually entered KPI row.
func AddKpi(c *gin.Context) {
	var input struct {
		SiteID             uint    `json:"site_id" binding:"required"`
		Date               string  `json:"date" binding:"required"`
		BlockageRate       float64 `json:"blockage_rate"`
		DropRate           float64 `json:"drop_rate"`
		AvailabilityRate   float64 `json:"availability_rate"`
		VoiceTrafficErlang float64 `json:"voice_traffic_erlang"`
		DataTrafficGB      float64 `json:"data_traffic_gb"`
		VolteTrafficGB     float64 `json:"volte_traffic_gb"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, err := time.Parse(kpiDateLayout, input.Date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be formatted YYYY-MM-DD"})
		return
	}

	var site models.Site
	if err := config.DB.First(&site, input.SiteID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Site not found"})
		return
	}

	stat := models.KpiStat{
		SiteID:             input.SiteID,
		Date:               input.Date,
		BlockageRate:       input.BlockageRate,
		DropRate:           input.DropRate,
		AvailabilityRate:   input.AvailabilityRate,
		VoiceTrafficErlang: input.VoiceTrafficErlang,
		DataTrafficGB:      input.DataTrafficGB,
		VolteTrafficGB:     input.VolteTrafficGB,
	}
	if err := config.DB.Create(&stat).Error; err != nil {
		logrus.WithError(err).Error("AddKpi: create failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error logging data: " + err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "KPI data logged successfully", "kpi": stat})
}

// GenerateKpiData handles POST /kpi/generate: bulk generation of one
// row per site per day over the requested window, with occasional
// injected incident days.
func GenerateKpiData(c *gin.Context) {
	var input struct {
		Days int `json:"days"`
	}
	// Body is optional; default to a 30-day window
	_ = c.ShouldBindJSON(&input)
	if input.Days <= 0 {
		input.Days = 30
	}

	var sites []models.Site
	if err := config.DB.Find(&sites).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch sites"})
		return
	}

	end := time.Now()
	start := end.AddDate(0, 0, -input.Days)

	rows := []models.KpiStat{}
	for _, site := range sites {
		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			stat := models.KpiStat{
				SiteID:             site.ID,
				Date:               d.Format(kpiDateLayout),
				BlockageRate:       round2(0.1 + rand.Float64()*1.9),
				DropRate:           round2(0.1 + rand.Float64()*1.4),
				AvailabilityRate:   round2(99.0 + rand.Float64()),
				VoiceTrafficErlang: round2(10 + rand.Float64()*90),
				DataTrafficGB:      round2(50 + rand.Float64()*450),
				VolteTrafficGB:     round2(20 + rand.Float64()*180),
			}
			// One day in ten is a degraded "incident" day
			if rand.Float64() < 0.1 {
				stat.BlockageRate = round2(5.0 + rand.Float64()*10.0)
				stat.AvailabilityRate = round2(90.0 + rand.Float64()*8.0)
			}
			rows = append(rows, stat)
		}
	}

	if len(rows) > 0 {
		if err := config.DB.CreateInBatches(rows, 500).Error; err != nil {
			logrus.WithError(err).Error("GenerateKpiData: bulk insert failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error generating data: " + err.Error()})
			return
		}
	}

	c.JSON(http.StatusCreated, gin.H{"message": "KPI data generated", "rows": len(rows)})
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// KpiData handles GET /api/kpi_data?mode=. Each mode re-aggregates
// straight from the ledger; nothing is cached.
func KpiData(c *gin.Context) {
	mode := c.DefaultQuery("mode", "overview")
	switch mode {
	case "overview":
		kpiOverview(c)
	case "operational":
		kpiOperational(c)
	case "tactical":
		kpiTactical(c)
	case "strategic":
		kpiStrategic(c)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown mode: " + mode})
	}
}

// kpiOverview: daily network-wide averages plus total data traffic.
func kpiOverview(c *gin.Context) {
	var rows []struct {
		Date      string  `json:"date"`
		AvgBlock  float64 `json:"avg_block"`
		AvgDrop   float64 `json:"avg_drop"`
		AvgAvail  float64 `json:"avg_avail"`
		TotalData float64 `json:"total_data"`
	}
	if err := config.DB.Model(&models.KpiStat{}).
		Select("date, AVG(blockage_rate) AS avg_block, AVG(drop_rate) AS avg_drop, AVG(availability_rate) AS avg_avail, SUM(data_traffic_gb) AS total_data").
		Group("date").Order("date ASC").Scan(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not aggregate KPI data"})
		return
	}

	dates := make([]string, 0, len(rows))
	blockage := make([]float64, 0, len(rows))
	drop := make([]float64, 0, len(rows))
	avail := make([]float64, 0, len(rows))
	data := make([]float64, 0, len(rows))
	for _, r := range rows {
		dates = append(dates, r.Date)
		blockage = append(blockage, r.AvgBlock)
		drop = append(drop, r.AvgDrop)
		avail = append(avail, r.AvgAvail)
		data = append(data, r.TotalData)
	}
	c.JSON(http.StatusOK, gin.H{
		"dates":   dates,
		"blocage": blockage,
		"coupure": drop,
		"dispo":   avail,
		"data":    data,
	})
}

// kpiOperational: for the most recent date, the worst offenders by
// combined blockage+drop, plus zero-traffic anomalies.
func kpiOperational(c *gin.Context) {
	var latest struct {
		Date string
	}
	if err := config.DB.Model(&models.KpiStat{}).
		Select("MAX(date) AS date").Scan(&latest).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not aggregate KPI data"})
		return
	}
	if latest.Date == "" {
		c.JSON(http.StatusOK, gin.H{"date": nil, "worst_offenders": []gin.H{}, "zero_traffic": []gin.H{}})
		return
	}

	type offenderRow struct {
		SiteID       uint    `json:"site_id"`
		SiteName     string  `json:"site_name"`
		Code         string  `json:"code"`
		BlockageRate float64 `json:"blockage_rate"`
		DropRate     float64 `json:"drop_rate"`
		Degradation  float64 `json:"degradation"`
	}
	var offenders []offenderRow
	if err := config.DB.Model(&models.KpiStat{}).
		Select("kpi_stats.site_id, sites.site_name, sites.code, kpi_stats.blockage_rate, kpi_stats.drop_rate, kpi_stats.blockage_rate + kpi_stats.drop_rate AS degradation").
		Joins("JOIN sites ON sites.id = kpi_stats.site_id").
		Where("kpi_stats.date = ?", latest.Date).
		Order("degradation DESC").Limit(10).Scan(&offenders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not aggregate KPI data"})
		return
	}

	type anomalyRow struct {
		SiteID           uint    `json:"site_id"`
		SiteName         string  `json:"site_name"`
		Code             string  `json:"code"`
		AvailabilityRate float64 `json:"availability_rate"`
	}
	var anomalies []anomalyRow
	if err := config.DB.Model(&models.KpiStat{}).
		Select("kpi_stats.site_id, sites.site_name, sites.code, kpi_stats.availability_rate").
		Joins("JOIN sites ON sites.id = kpi_stats.site_id").
		Where("kpi_stats.date = ? AND kpi_stats.voice_traffic_erlang + kpi_stats.data_traffic_gb = 0 AND kpi_stats.availability_rate < 100", latest.Date).
		Scan(&anomalies).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not aggregate KPI data"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date":            latest.Date,
		"worst_offenders": offenders,
		"zero_traffic":    anomalies,
	})
}

// kpiTactical: supplier benchmarking plus a bounded traffic/blockage
// sample for correlation analysis.
func kpiTactical(c *gin.Context) {
	var bySupplier []struct {
		Supplier string  `json:"supplier"`
		AvgAvail float64 `json:"avg_avail"`
		AvgDrop  float64 `json:"avg_drop"`
	}
	if err := config.DB.Model(&models.KpiStat{}).
		Select("sites.supplier, AVG(kpi_stats.availability_rate) AS avg_avail, AVG(kpi_stats.drop_rate) AS avg_drop").
		Joins("JOIN sites ON sites.id = kpi_stats.site_id").
		Group("sites.supplier").Scan(&bySupplier).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not aggregate KPI data"})
		return
	}

	var sample []struct {
		DataTrafficGB float64 `json:"data_traffic_gb"`
		BlockageRate  float64 `json:"blockage_rate"`
	}
	if err := config.DB.Model(&models.KpiStat{}).
		Select("data_traffic_gb, blockage_rate").
		Limit(100).Scan(&sample).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not aggregate KPI data"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"supplier_benchmark": bySupplier,
		"correlation_sample": sample,
	})
}

// kpiStrategic: long-term traffic trend across the whole history.
func kpiStrategic(c *gin.Context) {
	var rows []struct {
		Date       string  `json:"date"`
		TotalData  float64 `json:"total_data"`
		TotalVoice float64 `json:"total_voice"`
	}
	if err := config.DB.Model(&models.KpiStat{}).
		Select("date, SUM(data_traffic_gb) AS total_data, SUM(voice_traffic_erlang) AS total_voice").
		Group("date").Order("date ASC").Scan(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not aggregate KPI data"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"trend": rows})
}

// DownloadPowerBIData handles GET /download/powerbi_data: every KPI row
// joined with its site context, as a CSV attachment.
func DownloadPowerBIData(c *gin.Context) {
	type exportRow struct {
		Region             string
		Delegation         string
		Code               string
		SiteName           string
		SiteID             uint
		Date               string
		BlockageRate       float64
		DropRate           float64
		AvailabilityRate   float64
		VoiceTrafficErlang float64
		DataTrafficGB      float64
		VolteTrafficGB     float64
	}
	var rows []exportRow
	if err := config.DB.Model(&models.KpiStat{}).
		Select("sites.region, sites.delegation, sites.code, sites.site_name, kpi_stats.site_id, kpi_stats.date, kpi_stats.blockage_rate, kpi_stats.drop_rate, kpi_stats.availability_rate, kpi_stats.voice_traffic_erlang, kpi_stats.data_traffic_gb, kpi_stats.volte_traffic_gb").
		Joins("JOIN sites ON sites.id = kpi_stats.site_id").
		Scan(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not export KPI data"})
		return
	}

	c.Header("Content-Disposition", "attachment; filename=powerbi_data.csv")
	c.Header("Content-Type", "text/csv")

	w := csv.NewWriter(c.Writer)
	w.Write([]string{
		"region", "delegation", "code", "site_name", "site_id", "date",
		"blockage_rate", "drop_rate", "availability_rate",
		"voice_traffic_erlang", "data_traffic_gb", "volte_traffic_gb",
	})
	for _, r := range rows {
		w.Write([]string{
			r.Region, r.Delegation, r.Code, r.SiteName,
			strconv.FormatUint(uint64(r.SiteID), 10), r.Date,
			fmt.Sprintf("%g", r.BlockageRate),
			fmt.Sprintf("%g", r.DropRate),
			fmt.Sprintf("%g", r.AvailabilityRate),
			fmt.Sprintf("%g", r.VoiceTrafficErlang),
			fmt.Sprintf("%g", r.DataTrafficGB),
			fmt.Sprintf("%g", r.VolteTrafficGB),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		logrus.WithError(err).Error("DownloadPowerBIData: csv write failed")
	}
}
