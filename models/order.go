package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Order struct {
	ID          uuid.UUID   `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID      uuid.UUID   `gorm:"type:uuid;not null;index" json:"dinerId"`
	FranchiseID uuid.UUID   `gorm:"type:uuid;not null;index" json:"franchiseId"`
	StoreID     uuid.UUID   `gorm:"type:uuid;not null;index" json:"storeId"`
	Total       float64     `gorm:"not null" json:"total"`
	Items       []OrderItem `gorm:"foreignKey:OrderID" json:"items"`
	CreatedAt   time.Time   `json:"date"`
	UpdatedAt   time.Time   `json:"-"`
}

// OrderItem snapshots the menu item's description and price at the time the
// order was placed, so later menu edits never change order history.
type OrderItem struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"-"`
	OrderID     uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	MenuItemID  uuid.UUID `gorm:"type:uuid;not null;index" json:"menuId"`
	Description string    `json:"description"`
	Price       float64   `gorm:"not null" json:"price"`
	CreatedAt   time.Time `json:"-"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
