// Package inventory holds the stock reservation procedure invoked after
// an order and its items are committed. Checkout calls it best-effort;
// the manual retry endpoint and the status-change path call it again for
// orders whose first attempt failed.
package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/illimaniwear/illimani-api/models"
	"gorm.io/gorm"
)

var ErrAlreadyReserved = errors.New("inventory already reserved for order")

// Reserve deducts the ordered quantities from product stock in a single
// transaction. Each deduction is a guarded atomic decrement, so stock
// never goes negative under concurrent orders. It is idempotent: an
// order already marked reserved is left alone.
//
// The order items must exist before this runs, which is why checkout
// invokes it explicitly after the items insert instead of relying on an
// insert hook on the orders table.
func Reserve(ctx context.Context, db *gorm.DB, orderID string) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.First(&order, "id = ?", orderID).Error; err != nil {
			return fmt.Errorf("load order %s: %w", orderID, err)
		}
		if order.InventoryReserved {
			return ErrAlreadyReserved
		}

		var items []models.OrderItem
		if err := tx.Where("order_id = ?", orderID).Find(&items).Error; err != nil {
			return fmt.Errorf("load items for order %s: %w", orderID, err)
		}
		if len(items) == 0 {
			return fmt.Errorf("order %s has no items to reserve", orderID)
		}

		for _, item := range items {
			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", item.ProductID, item.Quantity).
				UpdateColumn("stock", gorm.Expr("stock - ?", item.Quantity))
			if res.Error != nil {
				return fmt.Errorf("update stock for product %d: %w", item.ProductID, res.Error)
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("insufficient stock for product %d (need %d)",
					item.ProductID, item.Quantity)
			}
		}

		if err := tx.Model(&models.Order{}).Where("id = ?", orderID).
			Update("inventory_reserved", true).Error; err != nil {
			return fmt.Errorf("mark order %s reserved: %w", orderID, err)
		}
		return nil
	})
}
