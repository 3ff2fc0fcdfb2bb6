package handler

import (
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/farhanhasbi/PersonalBudgetTrackerAPI/internal/middleware"
	"github.com/farhanhasbi/PersonalBudgetTrackerAPI/internal/models"
	"github.com/farhanhasbi/PersonalBudgetTrackerAPI/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthHandler serves register/login/logout and user management.
type AuthHandler struct {
	DB         *gorm.DB
	JWTSecret  string
	JWTIssuer  string
	TokenTTL   time.Duration
	BcryptCost int
}

func NewAuthHandler(db *gorm.DB, jwtSecret, jwtIssuer string, ttlHours, bcryptCost int) *AuthHandler {
	if ttlHours <= 0 {
		ttlHours = 24
	}
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = 12
	}
	return &AuthHandler{
		DB:         db,
		JWTSecret:  jwtSecret,
		JWTIssuer:  jwtIssuer,
		TokenTTL:   time.Duration(ttlHours) * time.Hour,
		BcryptCost: bcryptCost,
	}
}

var usernameRe = regexp.MustCompile(`^[A-Za-z0-9_]{3,20}$`)

type registerReq struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register creates a user. The very first registered user becomes the admin
// who administers categories; everyone else is a regular user.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if !usernameRe.MatchString(req.Username) {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "username must be 3-20 letters, digits or underscores")
		return
	}
	if len(req.Password) < 8 || len(req.Password) > 32 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "password must be 8-32 characters")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.BcryptCost)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to hash password")
		return
	}

	user := models.User{Username: req.Username, PasswordHash: string(hash)}
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).
			Where("LOWER(username) = LOWER(?)", req.Username).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return errDuplicateUsername
		}

		// first user in the system becomes admin
		var users int64
		if err := tx.Model(&models.User{}).Count(&users).Error; err != nil {
			return err
		}
		user.Role = models.RoleUser
		if users == 0 {
			user.Role = models.RoleAdmin
		}
		return tx.Create(&user).Error
	})
	if errors.Is(err, errDuplicateUsername) {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "username already exists")
		return
	}
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create user")
		return
	}

	util.Created(c, util.Response{
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"role":     user.Role,
		},
	})
}

var errDuplicateUsername = errors.New("username already exists")

type loginReq struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login verifies credentials, opens a session and returns its JWT.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	var user models.User
	if err := h.DB.Where("LOWER(username) = LOWER(?)", strings.TrimSpace(req.Username)).
		First(&user).Error; err != nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "wrong username or password")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "wrong username or password")
		return
	}

	session := models.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(h.TokenTTL),
	}
	if err := h.DB.Create(&session).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create session")
		return
	}

	token, err := util.GenerateToken(h.JWTSecret, h.JWTIssuer, user.ID, session.ID, h.TokenTTL)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to sign token")
		return
	}

	util.Success(c, util.Response{
		"token": token,
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"role":     user.Role,
		},
	})
}

// Logout revokes the session carried by the current token.
func (h *AuthHandler) Logout(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "authentication required")
		return
	}

	// revoke every live session of the user; simplest and safest
	if err := h.DB.Model(&models.Session{}).
		Where("user_id = ? AND revoked = ?", user.ID, false).
		Update("revoked", true).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to revoke session")
		return
	}

	util.Success(c, util.Response{"message": "logged out"})
}

type editUserReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// EditUser lets a user change their own username and/or password.
func (h *AuthHandler) EditUser(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "authentication required")
		return
	}

	var req editUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}
	if req.Username == "" && req.Password == "" {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "nothing to update")
		return
	}

	if req.Username != "" {
		req.Username = strings.TrimSpace(req.Username)
		if !usernameRe.MatchString(req.Username) {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "username must be 3-20 letters, digits or underscores")
			return
		}
		var count int64
		if err := h.DB.Model(&models.User{}).
			Where("LOWER(username) = LOWER(?) AND id <> ?", req.Username, user.ID).
			Count(&count).Error; err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to check username")
			return
		}
		if count > 0 {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "username already exists")
			return
		}
		user.Username = req.Username
	}
	if req.Password != "" {
		if len(req.Password) < 8 || len(req.Password) > 32 {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "password must be 8-32 characters")
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.BcryptCost)
		if err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to hash password")
			return
		}
		user.PasswordHash = string(hash)
	}

	if err := h.DB.Save(user).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to update user")
		return
	}

	util.Success(c, util.Response{
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"role":     user.Role,
		},
	})
}

// DeleteUser removes a user by ID. Admin only. The user's sessions,
// balance and records go with it through the cascade constraints.
func (h *AuthHandler) DeleteUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	res := h.DB.Delete(&models.User{}, id)
	if res.Error != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to delete user")
		return
	}
	if res.RowsAffected == 0 {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "user not found")
		return
	}
	util.Success(c, util.Response{"message": "success deleting data"})
}

// ListUsers returns all users, optionally filtered by a case-insensitive
// username substring. Admin only.
func (h *AuthHandler) ListUsers(c *gin.Context) {
	q := h.DB.Model(&models.User{}).Order("id ASC")
	if username := c.Query("username"); username != "" {
		q = q.Where("LOWER(username) LIKE ?", "%"+strings.ToLower(username)+"%")
	}

	var users []models.User
	if err := q.Find(&users).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to list users")
		return
	}

	items := make([]gin.H, 0, len(users))
	for i := range users {
		items = append(items, gin.H{
			"id":         users[i].ID,
			"username":   users[i].Username,
			"role":       users[i].Role,
			"created_at": users[i].CreatedAt,
		})
	}
	util.Success(c, util.Response{"users": items})
}

// GetMe returns the current authenticated user.
func GetMe(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "authentication required")
		return
	}

	util.Success(c, util.Response{
		"user": gin.H{
			"id":         user.ID,
			"username":   user.Username,
			"role":       user.Role,
			"created_at": user.CreatedAt,
		},
	})
}
