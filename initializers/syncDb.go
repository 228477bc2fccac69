package initializers

import (
	"log"

	"github.com/illimaniwear/illimani-api/models"
)

func SyncDatabase() {
	err := DB.AutoMigrate(
		&models.Customer{},
		&models.Subscriber{},
		&models.Order{},
		&models.OrderItem{},
		&models.Product{},
		&models.ProductImage{},
		&models.CartItem{},
		&models.WishlistItem{},
	)
	if err != nil {
		log.Fatalf("AutoMigrate failed: %v", err)
	}
	log.Println("Database synced successfully.")
}
