package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	logrus "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"netops_dashboard/internal/config"
	"netops_dashboard/internal/models"

	"github.com/twpayne/go-geom"
	gjson "github.com/twpayne/go-geom/encoding/geojson"
)

// siteExists checks for the (region, delegation, code) identity triple.
func siteExists(db *gorm.DB, region, delegation, code string) (bool, error) {
	var count int64
	err := db.Model(&models.Site{}).
		Where("region = ? AND delegation = ? AND code = ?", region, delegation, code).
		Count(&count).Error
	return count > 0, err
}

// CreateSite registers a new site. The site code must come from a
// generated pool, so an empty code is rejected outright.
func CreateSite(c *gin.Context) {
	var input struct {
		Region     string  `json:"region" binding:"required"`
		SiteCode   string  `json:"site_code"`
		Delegation string  `json:"delegation" binding:"required"`
		SiteName   string  `json:"site_name" binding:"required"`
		X          float64 `json:"x"`
		Y          float64 `json:"y"`
		HBA        float64 `json:"hba"`
		Supplier   string  `json:"supplier"`
		Access     string  `json:"access"`
		Antenna    string  `json:"antenna"`
		Surface    string  `json:"surface"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.SiteCode == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No site code selected. Please generate site codes first."})
		return
	}

	exists, err := siteExists(config.DB, input.Region, input.Delegation, input.SiteCode)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error: " + err.Error()})
		return
	}
	if exists {
		c.JSON(http.StatusConflict, gin.H{"error": "Site already exists"})
		return
	}

	site := models.Site{
		Region:     input.Region,
		Code:       input.SiteCode,
		Delegation: input.Delegation,
		SiteName:   input.SiteName,
		X:          input.X,
		Y:          input.Y,
		HBA:        input.HBA,
		Supplier:   input.Supplier,
		Access:     input.Access,
		Antenna:    input.Antenna,
		Surface:    input.Surface,
	}
	if err := config.DB.Create(&site).Error; err != nil {
		// Unique index backs up the pre-check under concurrent inserts
		if isUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "Site already exists"})
			return
		}
		logrus.WithError(err).Error("CreateSite: create failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create site: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"site": site, "message": "Site added successfully"})
}

// ListSites returns every site in the inventory.
func ListSites(c *gin.Context) {
	var sites []models.Site
	if err := config.DB.Find(&sites).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch sites"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": sites})
}

// GetSite returns one site with its antenna configuration.
func GetSite(c *gin.Context) {
	id := c.Param("id")
	var site models.Site
	if err := config.DB.Preload("AntennaConfigs").First(&site, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Site not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"site": site})
}

// UpdateSite modifies a site's mutable attributes. The identity triple
// (region, delegation, code) is not editable.
func UpdateSite(c *gin.Context) {
	id := c.Param("id")
	var site models.Site
	if err := config.DB.First(&site, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Site not found"})
		return
	}

	var input struct {
		SiteName *string  `json:"site_name"`
		X        *float64 `json:"x"`
		Y        *float64 `json:"y"`
		HBA      *float64 `json:"hba"`
		Supplier *string  `json:"supplier"`
		Access   *string  `json:"access"`
		Antenna  *string  `json:"antenna"`
		Surface  *string  `json:"surface"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.SiteName != nil {
		site.SiteName = *input.SiteName
	}
	if input.X != nil {
		site.X = *input.X
	}
	if input.Y != nil {
		site.Y = *input.Y
	}
	if input.HBA != nil {
		site.HBA = *input.HBA
	}
	if input.Supplier != nil {
		site.Supplier = *input.Supplier
	}
	if input.Access != nil {
		site.Access = *input.Access
	}
	if input.Surface != nil {
		site.Surface = *input.Surface
	}
	if input.Antenna != nil {
		site.Antenna = *input.Antenna
	}

	if err := config.DB.Save(&site).Error; err != nil {
		logrus.WithError(err).Error("UpdateSite: save failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Update failed: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"site": site, "message": "Site updated successfully"})
}

// DeleteSite removes a site together with its antenna configs and KPI
// rows in one transaction.
func DeleteSite(c *gin.Context) {
	id := c.Param("id")
	var site models.Site
	if err := config.DB.First(&site, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Site not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	tx := config.DB.Begin()
	if tx.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
		return
	}

	if err := tx.Where("site_id = ?", site.ID).Delete(&models.AntennaConfig{}).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete antenna configs: " + err.Error()})
		return
	}
	if err := tx.Where("site_id = ?", site.ID).Delete(&models.KpiStat{}).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete KPI rows: " + err.Error()})
		return
	}
	if err := tx.Delete(&site).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete site: " + err.Error()})
		return
	}

	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Transaction commit failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Site deleted successfully"})
}

// AddAntennaConfig attaches a sector configuration to a site.
func AddAntennaConfig(c *gin.Context) {
	siteID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid site ID"})
		return
	}

	var site models.Site
	if err := config.DB.First(&site, siteID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Site not found"})
		return
	}

	var input struct {
		Sector         string  `json:"sector" binding:"required"`
		Azimuth        int     `json:"azimuth"`
		PIRE           float64 `json:"pire"`
		TiltMechanical float64 `json:"tilt_mechanical"`
		TiltElectrical float64 `json:"tilt_electrical"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cfg := models.AntennaConfig{
		SiteID:         site.ID,
		Sector:         input.Sector,
		Azimuth:        input.Azimuth,
		PIRE:           input.PIRE,
		TiltMechanical: input.TiltMechanical,
		TiltElectrical: input.TiltElectrical,
	}
	if err := config.DB.Create(&cfg).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create antenna config: " + err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"antenna_config": cfg})
}

// ListAntennaConfigs lists a site's sector configurations.
func ListAntennaConfigs(c *gin.Context) {
	siteID := c.Param("id")
	var site models.Site
	if err := config.DB.First(&site, siteID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Site not found"})
		return
	}

	var configs []models.AntennaConfig
	if err := config.DB.Where("site_id = ?", site.ID).Find(&configs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch antenna configs"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": configs})
}

// DeleteAntennaConfig removes one sector configuration from a site.
func DeleteAntennaConfig(c *gin.Context) {
	siteID := c.Param("id")
	configID := c.Param("aid")

	var cfg models.AntennaConfig
	if err := config.DB.Where("id = ? AND site_id = ?", configID, siteID).First(&cfg).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Antenna config not found"})
		return
	}
	if err := config.DB.Delete(&cfg).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete antenna config"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Antenna config deleted"})
}

// SiteInventory handles GET /api/site_inventory: inventory counts
// grouped by supplier, region, and access type.
func SiteInventory(c *gin.Context) {
	type countRow struct {
		Label string `json:"label"`
		Count int64  `json:"count"`
	}

	var suppliers, regions, accessTypes []countRow
	if err := config.DB.Model(&models.Site{}).
		Select("supplier AS label, COUNT(*) AS count").
		Group("supplier").Scan(&suppliers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch inventory stats"})
		return
	}
	if err := config.DB.Model(&models.Site{}).
		Select("region AS label, COUNT(*) AS count").
		Group("region").Order("count DESC").Scan(&regions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch inventory stats"})
		return
	}
	if err := config.DB.Model(&models.Site{}).
		Select("access AS label, COUNT(*) AS count").
		Group("access").Scan(&accessTypes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch inventory stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"suppliers":    suppliers,
		"regions":      regions,
		"access_types": accessTypes,
	})
}

// SiteMap handles GET /api/site-map, exporting all site coordinates as
// a GeoJSON FeatureCollection for the map view.
func SiteMap(c *gin.Context) {
	var sites []models.Site
	if err := config.DB.Find(&sites).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch sites"})
		return
	}

	fc := gjson.FeatureCollection{}
	for _, s := range sites {
		// GeoJSON positions are (lon, lat)
		point := geom.NewPointFlat(geom.XY, []float64{s.Y, s.X})
		fc.Features = append(fc.Features, &gjson.Feature{
			ID:       strconv.FormatUint(uint64(s.ID), 10),
			Geometry: point,
			Properties: map[string]interface{}{
				"code":       s.Code,
				"site_name":  s.SiteName,
				"region":     s.Region,
				"delegation": s.Delegation,
				"supplier":   s.Supplier,
			},
		})
	}

	payload, err := fc.MarshalJSON()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not encode site map"})
		return
	}
	c.Data(http.StatusOK, "application/geo+json", payload)
}
