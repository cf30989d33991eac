package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleDiner      = "diner"
	RoleAdmin      = "admin"
	RoleFranchisee = "franchisee"
)

type User struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name      string         `json:"name"`
	Email     string         `gorm:"uniqueIndex;not null" json:"email"`
	Password  string         `gorm:"not null" json:"-"`
	Roles     []UserRole     `gorm:"foreignKey:UserID" json:"roles"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// UserRole is a single role assignment. Franchisee assignments carry the
// franchise they are scoped to; diner and admin assignments are global.
type UserRole struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"-"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"-"`
	Role        string     `gorm:"not null" json:"role"` // diner, admin, franchisee
	FranchiseID *uuid.UUID `gorm:"type:uuid;index" json:"objectId,omitempty"`
	CreatedAt   time.Time  `json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (r *UserRole) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r.Role == role {
			return true
		}
	}
	return false
}

func (u *User) IsAdmin() bool {
	return u.HasRole(RoleAdmin)
}

// AdministersFranchise reports whether the user holds a franchisee role
// scoped to the given franchise. Global admins administer every franchise.
func (u *User) AdministersFranchise(franchiseID uuid.UUID) bool {
	if u.IsAdmin() {
		return true
	}
	for _, r := range u.Roles {
		if r.Role == RoleFranchisee && r.FranchiseID != nil && *r.FranchiseID == franchiseID {
			return true
		}
	}
	return false
}
