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

type OrderHandler struct {
	DB *gorm.DB
}

const orderPageSize = 20

// GetMenu handles GET /api/order/menu. Public, no auth required.
func (h *OrderHandler) GetMenu(c *gin.Context) {
	var menu []models.MenuItem
	if err := h.DB.Order("created_at").Find(&menu).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch menu"})
		return
	}

	c.JSON(http.StatusOK, menu)
}

// CreateOrder handles POST /api/order. Prices are snapshotted from the menu
// at order time and the total is their sum; order and items are written in
// one transaction so a failed order leaves nothing behind. Store revenue is
// deliberately not touched here.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	caller, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
		return
	}

	if !caller.HasRole(models.RoleDiner) && !caller.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"message": "forbidden"})
		return
	}

	var req struct {
		StoreID string `json:"storeId" binding:"required"`
		Items   []struct {
			MenuID string `json:"menuId" binding:"required"`
		} `json:"items" binding:"required,min=1"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	storeID, err := uuid.Parse(req.StoreID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid store ID"})
		return
	}

	var store models.Store
	if err := h.DB.Where("id = ?", storeID).First(&store).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Store not found"})
		return
	}

	// Resolve every menu reference before writing anything.
	var total float64
	orderItems := make([]models.OrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		menuID, err := uuid.Parse(item.MenuID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid menu item ID"})
			return
		}

		var menuItem models.MenuItem
		if err := h.DB.Where("id = ?", menuID).First(&menuItem).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown menu item"})
			return
		}

		total += menuItem.Price
		orderItems = append(orderItems, models.OrderItem{
			MenuItemID:  menuItem.ID,
			Description: menuItem.Title,
			Price:       menuItem.Price,
		})
	}

	order := models.Order{
		ID:          uuid.New(),
		UserID:      caller.ID,
		FranchiseID: store.FranchiseID,
		StoreID:     store.ID,
		Total:       total,
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		for i := range orderItems {
			orderItems[i].OrderID = order.ID
		}
		return tx.CreateInBatches(&orderItems, 100).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order"})
		return
	}
	order.Items = orderItems

	fulfillmentToken, err := utils.GenerateFulfillmentToken(order.ID, order.UserID, order.StoreID, order.Total)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sign order"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order, "jwt": fulfillmentToken})
}

// ListOrders handles GET /api/order. Diners see their own history; admins may
// pass dinerId to inspect another diner's.
func (h *OrderHandler) ListOrders(c *gin.Context) {
	caller, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
		return
	}

	dinerID := caller.ID
	if requested := c.Query("dinerId"); requested != "" {
		id, err := uuid.Parse(requested)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid diner ID"})
			return
		}
		if id != caller.ID && !caller.IsAdmin() {
			c.JSON(http.StatusForbidden, gin.H{"message": "forbidden"})
			return
		}
		dinerID = id
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * orderPageSize

	orders := []models.Order{}
	if err := h.DB.Preload("Items").
		Where("user_id = ?", dinerID).
		Order("created_at").
		Offset(offset).Limit(orderPageSize).
		Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"dinerId": dinerID, "orders": orders, "page": page})
}
