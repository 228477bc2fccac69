package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func GetHome(ctx *gin.Context) {
	message := `Welcome to the Illimani Wear API.

The following are the endpoints for this API:

AUTH
- POST "/auth/callback" - Identity provider sign-in callback

PRODUCT
- GET "/product" - Get all products
- GET "/product/:id" - Get product by ID
- POST "/product" - Create new product (admin)
- POST "/product-images" - Add product images (admin)

CHECKOUT & ORDERS
- POST "/checkout" - Place an order
- POST "/order/reserve" - Retry inventory reservation
- POST "/order/:orderId/payment-proof" - Attach payment proof
- GET "/order/:orderId" - Get order by ID
- GET "/customer/:customerId/orders" - Get orders for a customer
- GET "/order" - Retrieve all orders (admin)
- PATCH "/order/:orderId" - Update order status (admin)

CART & WISHLIST
- POST "/cart" | GET "/cart" | DELETE "/cart/:itemId"
- POST "/wishlist" | GET "/wishlist" | DELETE "/wishlist/:productId"

NOTIFICATIONS
- POST "/notifications/order-confirmation" - Send confirmation email
- POST "/notifications/whatsapp" - Send WhatsApp template message`

	ctx.JSON(http.StatusOK, gin.H{
		"message": message,
	})
}
