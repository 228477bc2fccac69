package models

import "gorm.io/gorm"

type CartItem struct {
	gorm.Model
	CustomerID uint    `json:"customerId" gorm:"index"`
	ProductID  uint    `json:"productId"`
	Quantity   int     `json:"quantity"`
	Size       string  `json:"size"`
	Color      string  `json:"color"`
	UnitPrice  float64 `json:"unitPrice"`
}

type WishlistItem struct {
	gorm.Model
	CustomerID uint `json:"customerId" gorm:"index:idx_wishlist_customer_product,unique"`
	ProductID  uint `json:"productId" gorm:"index:idx_wishlist_customer_product,unique"`
}
