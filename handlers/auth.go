package handlers

import (
	"errors"
	"net/http"
	"strings"

	"pizza-backend/middleware"
	"pizza-backend/models"
	"pizza-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthHandler struct {
	DB *gorm.DB
}

// openSession issues a signed token for the user and records it in the
// sessions table. A token only authorizes while its row exists.
func (h *AuthHandler) openSession(db *gorm.DB, user *models.User) (string, error) {
	token, err := utils.GenerateToken(user.ID, user.Email)
	if err != nil {
		return "", err
	}

	session := models.Session{
		UserID: user.ID,
		Token:  token,
	}
	if err := db.Create(&session).Error; err != nil {
		return "", err
	}
	return token, nil
}

// resolveInvites converts pending franchise admin invites for the user's
// email into franchisee role assignments. Called on register and login.
func (h *AuthHandler) resolveInvites(db *gorm.DB, user *models.User) error {
	var invites []models.FranchiseInvite
	if err := db.Where("email = ?", user.Email).Find(&invites).Error; err != nil {
		return err
	}

	for _, invite := range invites {
		fid := invite.FranchiseID
		role := models.UserRole{
			UserID:      user.ID,
			Role:        models.RoleFranchisee,
			FranchiseID: &fid,
		}
		if err := db.Create(&role).Error; err != nil {
			return err
		}
		user.Roles = append(user.Roles, role)
		if err := db.Delete(&invite).Error; err != nil {
			return err
		}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint")
}

// Register handles POST /api/auth. The presence of a name distinguishes
// registration from login on this path.
func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	user := models.User{
		ID:       uuid.New(),
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashedPassword),
		Roles:    []models.UserRole{{Role: models.RoleDiner}},
	}

	// The unique index on email is the authority here; a concurrent
	// registration with the same email loses the insert and gets a 409.
	if err := h.DB.Create(&user).Error; err != nil {
		if isUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	if err := h.resolveInvites(h.DB, &user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve franchise invites"})
		return
	}

	token, err := h.openSession(h.DB, &user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user, "token": token})
}

// Login handles PUT /api/auth. Unknown email and wrong password return the
// same body so accounts cannot be enumerated.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	var user models.User
	if err := h.DB.Preload("Roles").Where("email = ?", req.Email).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
		return
	}

	if err := h.resolveInvites(h.DB, &user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve franchise invites"})
		return
	}

	token, err := h.openSession(h.DB, &user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user, "token": token})
}

// Logout handles DELETE /api/auth. Deleting the session row revokes the
// token; a second logout with the same token fails in the auth middleware.
func (h *AuthHandler) Logout(c *gin.Context) {
	token, exists := c.Get("token")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
		return
	}

	result := h.DB.Where("token = ?", token).Delete(&models.Session{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to close session"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "logout successful"})
}

// Me handles GET /api/user/me. The role set is read fresh from the database,
// so promotions made after login show up immediately.
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateUser handles PUT /api/user/:id. Self or admin only.
func (h *AuthHandler) UpdateUser(c *gin.Context) {
	caller, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
		return
	}

	targetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	if caller.ID != targetID && !caller.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"message": "forbidden"})
		return
	}

	var req struct {
		Name     *string `json:"name"`
		Email    *string `json:"email"`
		Password *string `json:"password"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	var user models.User
	if err := h.DB.Preload("Roles").Where("id = ?", targetID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}
		user.Password = string(hashed)
	}

	if err := h.DB.Omit("Roles").Save(&user).Error; err != nil {
		if isUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
		return
	}

	// Re-issue a token for the updated identity. Existing sessions stay valid.
	token, err := h.openSession(h.DB, &user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user, "token": token})
}
