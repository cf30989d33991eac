package database

import (
	"fmt"
	"log"
	"os"

	"pizza-backend/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Connect() (*gorm.DB, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "host=localhost user=postgres password=postgres dbname=pizza_backend port=5432 sslmode=disable"
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	// Ensure PostgreSQL has gen_random_uuid() available (pgcrypto extension).
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error; err != nil {
		return fmt.Errorf("failed to enable pgcrypto extension: %w", err)
	}

	return db.AutoMigrate(
		&models.User{},
		&models.UserRole{},
		&models.Session{},
		&models.MenuItem{},
		&models.Franchise{},
		&models.FranchiseInvite{},
		&models.Store{},
		&models.Order{},
		&models.OrderItem{},
	)
}

func CreateDefaultAdmin(db *gorm.DB) error {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	if adminEmail == "" {
		adminEmail = "a@jwt.com"
	}
	if adminPassword == "" {
		adminPassword = "admin"
	}

	var existingUser models.User
	result := db.Where("email = ?", adminEmail).First(&existingUser)
	if result.Error == nil {
		// Admin already exists
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := models.User{
		Name:     "Admin User",
		Email:    adminEmail,
		Password: string(hashedPassword),
		Roles:    []models.UserRole{{Role: models.RoleAdmin}},
	}

	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	log.Printf("Default admin created: %s", adminEmail)
	return nil
}

// SeedMenu loads the default menu when the table is empty. The menu is
// immutable at runtime, so this is the only write path for menu items.
func SeedMenu(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.MenuItem{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	menu := []models.MenuItem{
		{Title: "Veggie", Image: "pizza1.png", Price: 0.0038, Description: "A garden of delight"},
		{Title: "Pepperoni", Image: "pizza2.png", Price: 0.0042, Description: "Spicy treat"},
		{Title: "Margarita", Image: "pizza3.png", Price: 0.0040, Description: "Essential classic"},
		{Title: "Crusty", Image: "pizza4.png", Price: 0.0028, Description: "A dry mouthed favorite"},
	}

	if err := db.Create(&menu).Error; err != nil {
		return err
	}

	log.Printf("Seeded default menu with %d items", len(menu))
	return nil
}
