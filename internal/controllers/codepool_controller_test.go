package controllers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netops_dashboard/internal/config"
	"netops_dashboard/internal/models"
)

func TestAddCodePoolThenList(t *testing.T) {
	setupTestDB(t)

	require.NoError(t, addCodePool(config.DB, "Tunis", 1000, 1002))

	pools, err := getCodePools(config.DB, "Tunis")
	require.NoError(t, err)
	require.Len(t, pools, 1)
	assert.Equal(t, 1000, pools[0].StartCode)
	assert.Equal(t, 1002, pools[0].EndCode)

	// Identical triple is a duplicate and must not add a second row
	err = addCodePool(config.DB, "Tunis", 1000, 1002)
	assert.ErrorIs(t, err, errPoolExists)

	pools, err = getCodePools(config.DB, "Tunis")
	require.NoError(t, err)
	assert.Len(t, pools, 1)
}

func TestListCodePoolsEmptyRegion(t *testing.T) {
	setupTestDB(t)

	pools, err := getCodePools(config.DB, "Gafsa")
	require.NoError(t, err)
	assert.Empty(t, pools)
}

func TestExpandCodePools(t *testing.T) {
	setupTestDB(t)

	require.NoError(t, addCodePool(config.DB, "Tunis", 2000, 2001))
	require.NoError(t, addCodePool(config.DB, "Tunis", 1000, 1002))
	require.NoError(t, addCodePool(config.DB, "Sousse", 5000, 5001))

	codes, err := expandCodePools(config.DB, "Tunis")
	require.NoError(t, err)
	assert.Equal(t, []int{1000, 1001, 1002, 2000, 2001}, codes)
}

func TestExpandCodePoolsKeepsOverlapDuplicates(t *testing.T) {
	setupTestDB(t)

	// Overlapping ranges are currently permitted; expansion must not
	// deduplicate them.
	require.NoError(t, addCodePool(config.DB, "Tunis", 1000, 1002))
	require.NoError(t, addCodePool(config.DB, "Tunis", 1001, 1003))

	codes, err := expandCodePools(config.DB, "Tunis")
	require.NoError(t, err)
	assert.Equal(t, []int{1000, 1001, 1002, 1001, 1002, 1003}, codes)
}

func TestAddCodePoolStrictOverlap(t *testing.T) {
	setupTestDB(t)
	config.App.StrictPoolOverlap = true

	require.NoError(t, addCodePool(config.DB, "Tunis", 1000, 1002))
	assert.ErrorIs(t, addCodePool(config.DB, "Tunis", 1001, 1003), errPoolOverlaps)
	// Disjoint range still admitted
	assert.NoError(t, addCodePool(config.DB, "Tunis", 2000, 2001))
}

func TestDeleteCodePoolsIgnoresNonMatching(t *testing.T) {
	setupTestDB(t)

	require.NoError(t, addCodePool(config.DB, "Tunis", 1000, 1002))
	require.NoError(t, addCodePool(config.DB, "Tunis", 2000, 2001))

	err := deleteCodePools(config.DB, "Tunis", []poolBounds{
		{StartCode: 1000, EndCode: 1002},
		{StartCode: 9000, EndCode: 9001}, // absent, silently ignored
	})
	require.NoError(t, err)

	pools, err := getCodePools(config.DB, "Tunis")
	require.NoError(t, err)
	require.Len(t, pools, 1)
	assert.Equal(t, 2000, pools[0].StartCode)
}

func TestEditCodePoolsSkipsIncompleteUpdates(t *testing.T) {
	setupTestDB(t)

	require.NoError(t, addCodePool(config.DB, "Tunis", 1000, 1002))

	oldStart, oldEnd := 1000, 1002
	err := editCodePools(config.DB, "Tunis", []poolUpdate{
		{StartCode: 3000, EndCode: 3001}, // missing old bounds, skipped
		{OldStart: &oldStart, OldEnd: &oldEnd, StartCode: 1100, EndCode: 1105},
	})
	require.NoError(t, err)

	pools, err := getCodePools(config.DB, "Tunis")
	require.NoError(t, err)
	require.Len(t, pools, 1)
	assert.Equal(t, 1100, pools[0].StartCode)
	assert.Equal(t, 1105, pools[0].EndCode)

	// Zero applied updates is still success
	assert.NoError(t, editCodePools(config.DB, "Tunis", []poolUpdate{{StartCode: 1, EndCode: 2}}))
}

func TestAddSiteCodePoolEndpoint(t *testing.T) {
	setupTestDB(t)
	r := testRouter()
	_, adminToken := seedUser(t, "admin1", "administrator")
	_, techToken := seedUser(t, "tech1", "technician")

	// start >= end rejected
	w, body := doJSON(t, r, http.MethodPost, "/manage-site-codes/add", adminToken,
		map[string]interface{}{"region": "Tunis", "start_code": 1002, "end_code": 1000})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, body["success"])

	// valid range accepted
	w, body = doJSON(t, r, http.MethodPost, "/manage-site-codes/add", adminToken,
		map[string]interface{}{"region": "Tunis", "start_code": 1000, "end_code": 1002})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])

	// exact duplicate conflicts
	w, _ = doJSON(t, r, http.MethodPost, "/manage-site-codes/add", adminToken,
		map[string]interface{}{"region": "Tunis", "start_code": 1000, "end_code": 1002})
	assert.Equal(t, http.StatusConflict, w.Code)

	// pool management is administrator-only
	w, _ = doJSON(t, r, http.MethodPost, "/manage-site-codes/add", techToken,
		map[string]interface{}{"region": "Tunis", "start_code": 3000, "end_code": 3001})
	assert.Equal(t, http.StatusForbidden, w.Code)

	var count int64
	require.NoError(t, config.DB.Model(&models.CodePool{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestSiteInfoEndpointExpandsPool(t *testing.T) {
	setupTestDB(t)
	r := testRouter()
	_, token := seedUser(t, "eng1", "engineer")

	require.NoError(t, addCodePool(config.DB, "Tunis", 1000, 1002))
	require.NoError(t, addCodePool(config.DB, "Tunis", 2000, 2001))

	w, body := doJSON(t, r, http.MethodGet, "/api/site-info?region=Tunis", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	codes, ok := body["codes"].([]interface{})
	require.True(t, ok)
	require.Len(t, codes, 5)
	assert.EqualValues(t, 1000, codes[0])
	assert.EqualValues(t, 2001, codes[4])

	// Missing region parameter
	w, _ = doJSON(t, r, http.MethodGet, "/api/site-info", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
