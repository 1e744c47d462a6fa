package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/appdotbuilder/pc-part-shop/internal/models"
)

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Category{},
		&models.Product{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
	); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
