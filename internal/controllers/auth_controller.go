package controllers

import (
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	logrus "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"netops_dashboard/internal/config"
	"netops_dashboard/internal/mailer"
	"netops_dashboard/internal/middleware"
	"netops_dashboard/internal/models"
)

type registerInput struct {
	Name      string `json:"name" binding:"required"`
	UserID    string `json:"user_id" binding:"required"`
	Email     string `json:"email"`
	Password  string `json:"password" binding:"required"`
	Password2 string `json:"password2" binding:"required"`
	Profile   string `json:"profile" binding:"required"`
}

// RegisterUser creates an account. With ACTIVATION_REQUIRED the account
// starts inactive and an activation link is emailed.
func RegisterUser(c *gin.Context) {
	var input registerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, err := validateAndNormalizeProfile(input.Profile)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.Password != input.Password2 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Passwords do not match"})
		return
	}

	hashed, err := hashPassword(input.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not hash password"})
		return
	}

	user := models.User{
		Name:     input.Name,
		UserID:   input.UserID,
		Email:    input.Email,
		Password: hashed,
		Profile:  profile,
		IsActive: true,
	}

	if config.App.ActivationRequired {
		token := uuid.NewString()
		expiry := time.Now().Add(24 * time.Hour)
		user.IsActive = false
		user.ActivationToken = &token
		user.TokenExpiry = &expiry
	}

	if err := config.DB.Create(&user).Error; err != nil {
		if isUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "User ID already taken"})
			return
		}
		logrus.WithError(err).Error("RegisterUser: create failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create user: " + err.Error()})
		return
	}

	if config.App.ActivationRequired {
		link := fmt.Sprintf("%s/activate/%s", config.App.BaseURL, *user.ActivationToken)
		if err := mailer.SendActivationEmail(user.Email, link); err != nil {
			logrus.WithError(err).Warn("RegisterUser: activation email not sent")
		}
		c.JSON(http.StatusCreated, gin.H{"message": "Registration successful! Check your email to activate your account."})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Registration successful!", "user": prepareUserResponse(user)})
}

// ActivateAccount handles GET /activate/:token.
func ActivateAccount(c *gin.Context) {
	token := c.Param("token")

	var user models.User
	if err := config.DB.Where("activation_token = ?", token).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Invalid activation link"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error: " + err.Error()})
		}
		return
	}

	if user.TokenExpiry == nil || time.Now().After(*user.TokenExpiry) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Activation link has expired"})
		return
	}

	if err := config.DB.Model(&user).Updates(map[string]interface{}{
		"is_active":        true,
		"activation_token": nil,
		"token_expiry":     nil,
	}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not activate account"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Account activated successfully!"})
}

// LoginUser authenticates by login id and password. With TWOFA_ENABLED
// it returns a pending-stage token and emails a code instead of the
// session token.
func LoginUser(c *gin.Context) {
	var body struct {
		UserID   string `json:"user_id" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := config.DB.Where("user_id = ?", body.UserID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error: " + err.Error()})
		}
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(body.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid password"})
		return
	}

	if !user.IsActive {
		c.JSON(http.StatusForbidden, gin.H{"error": "Account not activated. Please check your email."})
		return
	}

	if config.App.TwoFAEnabled {
		if err := issueTwoFACode(&user); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue verification code"})
			return
		}
		token, err := middleware.GenerateTwoFAToken(user.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not generate token"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"twofa_required": true, "token": token})
		return
	}

	token, err := middleware.GenerateToken(user.ID, user.Profile)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": prepareUserResponse(user)})
}

// VerifyTwoFA exchanges a pending-stage token plus a valid code for the
// full session token.
func VerifyTwoFA(c *gin.Context) {
	var body struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := authUserID(c)
	var user models.User
	if err := config.DB.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Session expired. Please log in again."})
		return
	}

	if user.TwoFACode == nil || user.TwoFAExpiry == nil ||
		*user.TwoFACode != body.Code || time.Now().After(*user.TwoFAExpiry) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired code"})
		return
	}

	// Clear 2FA state and grant access
	if err := config.DB.Model(&user).Updates(map[string]interface{}{
		"two_fa_code":   nil,
		"two_fa_expiry": nil,
	}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not clear verification code"})
		return
	}

	token, err := middleware.GenerateToken(user.ID, user.Profile)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not generate token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": prepareUserResponse(user)})
}

// ResendTwoFA re-sends the login code, reusing a still-valid one.
// Resends are rate limited to one per 30 seconds.
func ResendTwoFA(c *gin.Context) {
	userID := authUserID(c)
	var user models.User
	if err := config.DB.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Session expired. Please log in again."})
		return
	}

	now := time.Now()
	if user.LastTwoFASent != nil && now.Before(user.LastTwoFASent.Add(30*time.Second)) {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Please wait before requesting a new code."})
		return
	}

	if err := issueTwoFACode(&user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue verification code"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "A new verification code has been sent to your email."})
}

// ListTechnicians returns the users holding the technician profile, for
// ticket assignment forms.
func ListTechnicians(c *gin.Context) {
	var technicians []models.User
	if err := config.DB.Where("profile = ?", "technician").Find(&technicians).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing technicians: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": technicians})
}

// issueTwoFACode stores a fresh (or still-valid reused) code on the
// user, emails it, and stamps the resend limiter.
func issueTwoFACode(user *models.User) error {
	now := time.Now()
	code := ""
	if user.TwoFACode != nil && user.TwoFAExpiry != nil && now.Before(*user.TwoFAExpiry) {
		code = *user.TwoFACode
	} else {
		code = fmt.Sprintf("%06d", rand.Intn(1000000))
		expiry := now.Add(5 * time.Minute)
		if err := config.DB.Model(user).Updates(map[string]interface{}{
			"two_fa_code":   code,
			"two_fa_expiry": expiry,
		}).Error; err != nil {
			return err
		}
	}

	if err := mailer.SendTwoFACode(user.Email, code); err != nil {
		logrus.WithError(err).Warn("issueTwoFACode: email not sent")
	}

	return config.DB.Model(user).Update("last_two_fa_sent", now).Error
}

func validateAndNormalizeProfile(profileInput string) (string, error) {
	profile := strings.ToLower(strings.TrimSpace(profileInput))
	switch profile {
	case "technician", "engineer", "administrator":
		return profile, nil
	default:
		return "", errors.New("invalid profile")
	}
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func prepareUserResponse(user models.User) gin.H {
	return gin.H{
		"ID":        user.ID,
		"CreatedAt": user.CreatedAt,
		"UpdatedAt": user.UpdatedAt,
		"name":      user.Name,
		"user_id":   user.UserID,
		"email":     user.Email,
		"profile":   user.Profile,
	}
}
