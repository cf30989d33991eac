package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Franchise struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name      string         `gorm:"uniqueIndex;not null" json:"name"`
	Stores    []Store        `gorm:"foreignKey:FranchiseID" json:"stores"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// FranchiseInvite is a placeholder admin association created when a franchise
// is opened for an email with no registered user yet. It is converted to a
// franchisee role assignment the next time that email registers or logs in.
type FranchiseInvite struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	FranchiseID uuid.UUID `gorm:"type:uuid;not null;index" json:"franchise_id"`
	Email       string    `gorm:"not null;index" json:"email"`
	CreatedAt   time.Time `json:"created_at"`
}

func (f *Franchise) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

func (i *FranchiseInvite) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
