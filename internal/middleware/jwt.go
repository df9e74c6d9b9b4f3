package middleware

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// jwtSecret reads the signing key per use so a JWT_SECRET loaded from
// .env during startup is honored.
func jwtSecret() []byte {
	if val := os.Getenv("JWT_SECRET"); val != "" {
		return []byte(val)
	}
	return []byte("supersecret") // fallback
}

// GenerateToken issues a full session token carrying the user's id and
// profile. This is the per-request auth context every protected handler
// reads from the gin context.
func GenerateToken(userID uint, profile string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"profile": profile,
		"exp":     time.Now().Add(72 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret())
}

// GenerateTwoFAToken issues a short-lived token marking a login that
// still has to pass the 2FA code check. It carries stage="2fa" and is
// rejected by RequireAuth.
func GenerateTwoFAToken(userID uint) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"stage":   "2fa",
		"exp":     time.Now().Add(5 * time.Minute).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret())
}

func parseBearer(c *gin.Context) (jwt.MapClaims, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return nil, false
	}
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return jwtSecret(), nil
	})
	if err != nil || !token.Valid {
		return nil, false
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	return claims, ok
}

// authenticate validates the session JWT and stores its claims in the
// context. It aborts the request itself on failure, and never advances
// the handler chain, so callers can run further checks first.
func authenticate(c *gin.Context) bool {
	claims, ok := parseBearer(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
		return false
	}
	if stage, _ := claims["stage"].(string); stage == "2fa" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Two-factor verification pending"})
		return false
	}

	// Store claims in context for downstream handlers
	c.Set("user_id", claims["user_id"])
	c.Set("profile", claims["profile"])
	return true
}

// RequireAuth ensures a valid session JWT is present
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authenticate(c) {
			return
		}
		c.Next()
	}
}

// RequireTwoFAStage ensures the request carries a pending 2FA token.
func RequireTwoFAStage() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := parseBearer(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		if stage, _ := claims["stage"].(string); stage != "2fa" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not a pending two-factor login"})
			return
		}
		c.Set("user_id", claims["user_id"])
		c.Next()
	}
}

// RequireAuthWithRoles ensures the JWT is valid and the user holds one
// of the given profiles. The role check runs before the handler chain
// advances, so a rejected request never reaches the endpoint.
func RequireAuthWithRoles(profiles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authenticate(c) {
			return
		}

		profile, ok := c.MustGet("profile").(string)
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
			return
		}
		for _, p := range profiles {
			if profile == p {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
	}
}
