package handlers

import (
	"net/http"
	"strconv"

	"pizza-backend/middleware"
	"pizza-backend/models"
	"pizza-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FranchiseHandler struct {
	DB *gorm.DB
}

const franchisePageSize = 20

type franchiseAdmin struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// admins returns the users holding a franchisee role scoped to the franchise.
func (h *FranchiseHandler) admins(franchiseID uuid.UUID) ([]franchiseAdmin, error) {
	admins := []franchiseAdmin{}
	err := h.DB.Model(&models.User{}).
		Select("users.id, users.name, users.email").
		Joins("JOIN user_roles ON user_roles.user_id = users.id").
		Where("user_roles.role = ? AND user_roles.franchise_id = ?", models.RoleFranchisee, franchiseID).
		Scan(&admins).Error
	if err != nil {
		return nil, err
	}
	return admins, nil
}

// franchiseView shapes one franchise for the caller. Anonymous callers and
// plain diners get names only; admins and the franchise's own franchisees
// additionally see the admin list and store revenue.
func (h *FranchiseHandler) franchiseView(f *models.Franchise, caller *models.User) (gin.H, error) {
	privileged := caller != nil && caller.AdministersFranchise(f.ID)

	stores := make([]gin.H, 0, len(f.Stores))
	for _, s := range f.Stores {
		store := gin.H{"id": s.ID, "name": s.Name}
		if privileged {
			store["totalRevenue"] = s.TotalRevenue
		}
		stores = append(stores, store)
	}

	view := gin.H{"id": f.ID, "name": f.Name, "stores": stores}
	if privileged {
		admins, err := h.admins(f.ID)
		if err != nil {
			return nil, err
		}
		view["admins"] = admins
	}
	return view, nil
}

// ListFranchises handles GET /api/franchise. Public: the response carries
// role-scoped fields, so it runs behind the optional auth middleware.
func (h *FranchiseHandler) ListFranchises(c *gin.Context) {
	caller, _ := middleware.CurrentUser(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * franchisePageSize

	query := h.DB.Preload("Stores").Order("created_at")
	if name := c.Query("name"); name != "" {
		query = query.Where("LOWER(name) LIKE LOWER(?)", "%"+name+"%")
	}

	var franchises []models.Franchise
	if err := query.Offset(offset).Limit(franchisePageSize).Find(&franchises).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch franchises"})
		return
	}

	views := make([]gin.H, 0, len(franchises))
	for i := range franchises {
		view, err := h.franchiseView(&franchises[i], caller)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch franchises"})
			return
		}
		views = append(views, view)
	}

	c.JSON(http.StatusOK, gin.H{"franchises": views, "page": page})
}

// ListUserFranchises handles GET /api/franchise/:userId. It lists the
// franchises a user administers, for the franchisee dashboard. Self or
// admin only.
func (h *FranchiseHandler) ListUserFranchises(c *gin.Context) {
	caller, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
		return
	}

	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	if caller.ID != userID && !caller.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"message": "forbidden"})
		return
	}

	var roles []models.UserRole
	if err := h.DB.Where("user_id = ? AND role = ?", userID, models.RoleFranchisee).Find(&roles).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch roles"})
		return
	}

	franchiseIDs := make([]uuid.UUID, 0, len(roles))
	for _, r := range roles {
		if r.FranchiseID != nil {
			franchiseIDs = append(franchiseIDs, *r.FranchiseID)
		}
	}

	views := []gin.H{}
	if len(franchiseIDs) > 0 {
		var franchises []models.Franchise
		if err := h.DB.Preload("Stores").Where("id IN ?", franchiseIDs).Find(&franchises).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch franchises"})
			return
		}
		for i := range franchises {
			view, err := h.franchiseView(&franchises[i], caller)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch franchises"})
				return
			}
			views = append(views, view)
		}
	}

	c.JSON(http.StatusOK, views)
}

// CreateFranchise handles POST /api/franchise. Admin only (route-level).
func (h *FranchiseHandler) CreateFranchise(c *gin.Context) {
	var req struct {
		Name       string `json:"name" binding:"required"`
		AdminEmail string `json:"adminEmail" binding:"required,email"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	franchise := models.Franchise{
		ID:   uuid.New(),
		Name: req.Name,
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&franchise).Error; err != nil {
			return err
		}

		var owner models.User
		if err := tx.Where("email = ?", req.AdminEmail).First(&owner).Error; err == nil {
			fid := franchise.ID
			role := models.UserRole{
				UserID:      owner.ID,
				Role:        models.RoleFranchisee,
				FranchiseID: &fid,
			}
			return tx.Create(&role).Error
		}

		// No such user yet; hold the association until that email shows up.
		invite := models.FranchiseInvite{
			FranchiseID: franchise.ID,
			Email:       req.AdminEmail,
		}
		return tx.Create(&invite).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "Franchise name already in use"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create franchise"})
		return
	}

	admins, err := h.admins(franchise.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch franchise admins"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":     franchise.ID,
		"name":   franchise.Name,
		"stores": []gin.H{},
		"admins": admins,
	})
}

// DeleteFranchise handles DELETE /api/franchise/:id. Admin only
// (route-level). Closing a franchise takes its stores with it.
func (h *FranchiseHandler) DeleteFranchise(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid franchise ID"})
		return
	}

	var franchise models.Franchise
	if err := h.DB.Where("id = ?", id).First(&franchise).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Franchise not found"})
		return
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("franchise_id = ?", id).Delete(&models.Store{}).Error; err != nil {
			return err
		}
		if err := tx.Where("franchise_id = ?", id).Delete(&models.UserRole{}).Error; err != nil {
			return err
		}
		if err := tx.Where("franchise_id = ?", id).Delete(&models.FranchiseInvite{}).Error; err != nil {
			return err
		}
		return tx.Delete(&franchise).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete franchise"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "franchise deleted"})
}

// CreateStore handles POST /api/franchise/:id/store. Global admins and the
// franchise's own franchisees may open stores; everyone else gets a 403.
func (h *FranchiseHandler) CreateStore(c *gin.Context) {
	caller, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
		return
	}

	franchiseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid franchise ID"})
		return
	}

	var franchise models.Franchise
	if err := h.DB.Where("id = ?", franchiseID).First(&franchise).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Franchise not found"})
		return
	}

	if !caller.AdministersFranchise(franchiseID) {
		c.JSON(http.StatusForbidden, gin.H{"message": "forbidden"})
		return
	}

	var req struct {
		Name string `json:"name" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	store := models.Store{
		ID:          uuid.New(),
		FranchiseID: franchiseID,
		Name:        req.Name,
	}

	if err := h.DB.Create(&store).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create store"})
		return
	}

	c.JSON(http.StatusCreated, store)
}
