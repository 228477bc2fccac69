package controllers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/illimaniwear/illimani-api/initializers"
	"github.com/illimaniwear/illimani-api/models"
	"github.com/illimaniwear/illimani-api/utils"
	"gorm.io/gorm"
)

// Notifications run on their own endpoints. Checkout never awaits them,
// so a messaging outage cannot block order placement.

func loadOrderWithItems(ctx *gin.Context, orderID string) (models.Order, bool) {
	var order models.Order
	err := initializers.DB.WithContext(ctx.Request.Context()).
		Preload("Items").First(&order, "id = ?", orderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			sendErrorResponse(ctx, http.StatusNotFound, "Order not found")
		} else {
			log.Println(err)
			sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to fetch order")
		}
		return order, false
	}
	return order, true
}

func orderEmailData(order models.Order) utils.OrderEmailData {
	items := make([]utils.OrderEmailItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, utils.OrderEmailItem{
			Name:      fmt.Sprintf("Producto #%d", item.ProductID),
			Quantity:  item.Quantity,
			Size:      item.Size,
			Color:     item.Color,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.Subtotal,
		})
	}
	return utils.OrderEmailData{
		CustomerName: order.CustomerName,
		OrderNumber:  strings.ToUpper(order.ID[:8]),
		Items:        items,
		Subtotal:     order.Subtotal,
		ShippingCost: order.ShippingCost,
		Total:        order.Total,
		LogoURL:      "https://www.illimaniwear.com/images/logo.png",
	}
}

// SendOrderConfirmationEmail composes the confirmation email for an
// order and sends it over SMTP.
func SendOrderConfirmationEmail(ctx *gin.Context) {
	var body struct {
		OrderID string `json:"orderId" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "orderId is required")
		return
	}

	order, ok := loadOrderWithItems(ctx, body.OrderID)
	if !ok {
		return
	}

	templatePath := filepath.Join("templates", "order_confirmation.html")
	subject := "Confirmación de pedido " + strings.ToUpper(order.ID[:8])
	if err := utils.SendEmail(order.CustomerEmail, subject, orderEmailData(order), templatePath); err != nil {
		log.Println("Error sending confirmation email:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to send confirmation email")
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": "Confirmation email sent"})
}

// SendOrderWhatsApp sends the order template message to the customer's
// phone (or the recipient override when present).
func SendOrderWhatsApp(ctx *gin.Context) {
	var body struct {
		OrderID  string `json:"orderId" binding:"required"`
		Template string `json:"template"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "orderId is required")
		return
	}
	if body.Template == "" {
		body.Template = "order_confirmation"
	}

	order, ok := loadOrderWithItems(ctx, body.OrderID)
	if !ok {
		return
	}

	phone := order.CustomerPhone
	if order.RecipientPhone != "" {
		phone = order.RecipientPhone
	}

	params := []string{
		order.CustomerName,
		strings.ToUpper(order.ID[:8]),
		fmt.Sprintf("%.2f", order.Total),
	}
	if err := utils.SendWhatsAppTemplate(phone, body.Template, params); err != nil {
		log.Println("Error sending whatsapp message:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to send WhatsApp message")
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": "WhatsApp message sent"})
}
