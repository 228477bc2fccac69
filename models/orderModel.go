package models

import "time"

// Order carries a snapshot of the customer data at purchase time. The
// snapshot is intentionally decoupled from the Customer row so later
// profile edits do not rewrite order history.
type Order struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	CustomerID       *uint  `json:"customerId"`
	CustomerName     string `json:"customerName"`
	CustomerPhone    string `json:"customerPhone"`
	CustomerEmail    string `json:"customerEmail"`
	MarketingConsent bool   `json:"marketingConsent"`

	Subtotal     float64 `json:"subtotal"`
	Discount     float64 `json:"discount"`
	ShippingCost float64 `json:"shippingCost"`
	Total        float64 `json:"total"`

	Status        string `json:"status"`
	PaymentMethod string `json:"paymentMethod"`

	DeliveryMethod string   `json:"deliveryMethod"`
	Address        string   `json:"address"`
	Latitude       *float64 `json:"latitude"`
	Longitude      *float64 `json:"longitude"`
	DistanceKm     *float64 `json:"distanceKm"`
	MapLink        string   `json:"mapLink"`
	PickupPoint    string   `json:"pickupPoint"`
	RecipientName  string   `json:"recipientName"`
	RecipientPhone string   `json:"recipientPhone"`

	InventoryReserved bool   `json:"inventoryReserved"`
	PaymentProofKey   string `json:"paymentProofKey"`

	Items []OrderItem `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

type OrderItem struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	OrderID   string `json:"orderId" gorm:"size:36;index"`
	ProductID uint   `json:"productId"`

	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
	Size      string  `json:"size"`
	Color     string  `json:"color"`
	Subtotal  float64 `json:"subtotal"`
}
