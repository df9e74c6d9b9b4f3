package controllers

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
)

// isUniqueViolation reports whether err is a uniqueness-constraint
// failure from either supported driver.
func isUniqueViolation(err error) bool {
	var pgErr *pq.Error
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	// sqlite driver surfaces these as plain error strings
	return strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "duplicate key value")
}

// authUserID returns the user id stored in the gin context by the JWT
// middleware. JWT numeric claims decode as float64.
func authUserID(c *gin.Context) uint {
	return uint(c.MustGet("user_id").(float64))
}

// authProfile returns the profile stored in the gin context.
func authProfile(c *gin.Context) string {
	profile, _ := c.MustGet("profile").(string)
	return profile
}
