package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	logrus "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"netops_dashboard/internal/config"
	"netops_dashboard/internal/models"
)

type poolBounds struct {
	StartCode int `json:"start_code"`
	EndCode   int `json:"end_code"`
}

type poolUpdate struct {
	OldStart  *int `json:"old_start"`
	OldEnd    *int `json:"old_end"`
	StartCode int  `json:"start_code"`
	EndCode   int  `json:"end_code"`
}

var errPoolExists = errors.New("Code pool already exists for this region.")
var errPoolOverlaps = errors.New("Code pool overlaps an existing range for this region.")

// addCodePool persists one range for a region. An identical
// (region,start,end) triple is rejected. Overlapping-but-not-identical
// ranges are accepted unless strict overlap checking is on; the legacy
// allocator never checked and downstream code drawing tolerates the
// duplicates.
func addCodePool(db *gorm.DB, region string, start, end int) error {
	var count int64
	if err := db.Model(&models.CodePool{}).
		Where("region = ? AND start_code = ? AND end_code = ?", region, start, end).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return errPoolExists
	}

	if config.App.StrictPoolOverlap {
		if err := db.Model(&models.CodePool{}).
			Where("region = ? AND start_code <= ? AND end_code >= ?", region, end, start).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return errPoolOverlaps
		}
	}

	return db.Create(&models.CodePool{Region: region, StartCode: start, EndCode: end}).Error
}

// getCodePools returns a region's ranges ordered by start_code.
func getCodePools(db *gorm.DB, region string) ([]models.CodePool, error) {
	var pools []models.CodePool
	err := db.Where("region = ?", region).Order("start_code ASC").Find(&pools).Error
	return pools, err
}

// expandCodePools unions a region's inclusive ranges into the full
// ascending code sequence. Overlap duplicates are preserved.
func expandCodePools(db *gorm.DB, region string) ([]int, error) {
	pools, err := getCodePools(db, region)
	if err != nil {
		return nil, err
	}
	codes := []int{}
	for _, p := range pools {
		for code := p.StartCode; code <= p.EndCode; code++ {
			codes = append(codes, code)
		}
	}
	return codes, nil
}

// deleteCodePools removes each exact (region,start,end) match.
// Non-matching entries are silently ignored.
func deleteCodePools(db *gorm.DB, region string, pools []poolBounds) error {
	for _, p := range pools {
		if err := db.Where("region = ? AND start_code = ? AND end_code = ?", region, p.StartCode, p.EndCode).
			Delete(&models.CodePool{}).Error; err != nil {
			return err
		}
	}
	return nil
}

// editCodePools replaces ranges identified by their old bounds. Entries
// missing the old bounds are skipped; zero applied updates is still
// success.
func editCodePools(db *gorm.DB, region string, updates []poolUpdate) error {
	for _, u := range updates {
		if u.OldStart == nil || u.OldEnd == nil {
			continue
		}
		if err := db.Model(&models.CodePool{}).
			Where("region = ? AND start_code = ? AND end_code = ?", region, *u.OldStart, *u.OldEnd).
			Updates(map[string]interface{}{"start_code": u.StartCode, "end_code": u.EndCode}).Error; err != nil {
			return err
		}
	}
	return nil
}

// AddSiteCodePool handles POST /manage-site-codes/add.
func AddSiteCodePool(c *gin.Context) {
	var input struct {
		Region    string `json:"region"`
		StartCode *int   `json:"start_code"`
		EndCode   *int   `json:"end_code"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid input data."})
		return
	}
	if input.Region == "" || input.StartCode == nil || input.EndCode == nil || *input.StartCode >= *input.EndCode {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid input data."})
		return
	}

	if err := addCodePool(config.DB, input.Region, *input.StartCode, *input.EndCode); err != nil {
		if errors.Is(err, errPoolExists) || errors.Is(err, errPoolOverlaps) {
			c.JSON(http.StatusConflict, gin.H{"success": false, "message": err.Error()})
			return
		}
		logrus.WithError(err).Error("AddSiteCodePool: store failure")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Could not add code pool."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Code pool added successfully."})
}

// ExploitSiteCodePools handles GET /manage-site-codes/exploit?region=.
func ExploitSiteCodePools(c *gin.Context) {
	region := c.Query("region")
	if region == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Region parameter is required."})
		return
	}

	pools, err := getCodePools(config.DB, region)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Could not fetch code pools."})
		return
	}

	bounds := []poolBounds{}
	for _, p := range pools {
		bounds = append(bounds, poolBounds{StartCode: p.StartCode, EndCode: p.EndCode})
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "code_pools": bounds})
}

// DeleteSiteCodePools handles POST /manage-site-codes/delete.
func DeleteSiteCodePools(c *gin.Context) {
	var input struct {
		Region string       `json:"region"`
		Pools  []poolBounds `json:"pools"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || input.Region == "" || len(input.Pools) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid input data."})
		return
	}

	if err := deleteCodePools(config.DB, input.Region, input.Pools); err != nil {
		logrus.WithError(err).Error("DeleteSiteCodePools: store failure")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Could not delete code pools."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Selected code pools deleted."})
}

// EditSiteCodePools handles POST /manage-site-codes/edit.
func EditSiteCodePools(c *gin.Context) {
	var input struct {
		Region  string       `json:"region"`
		Updates []poolUpdate `json:"updates"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || input.Region == "" || len(input.Updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid input data."})
		return
	}

	if err := editCodePools(config.DB, input.Region, input.Updates); err != nil {
		logrus.WithError(err).Error("EditSiteCodePools: store failure")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error updating selected rows"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Selected code pools updated."})
}

// SiteInfo handles GET /api/site-info?region=, returning the expanded
// code pool for site-creation forms.
func SiteInfo(c *gin.Context) {
	region := c.Query("region")
	if region == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Region parameter is required."})
		return
	}

	codes, err := expandCodePools(config.DB, region)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not expand code pools."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"codes": codes})
}
