package controllers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/illimaniwear/illimani-api/initializers"
	"github.com/illimaniwear/illimani-api/models"
	"gorm.io/gorm"
)

func customerIDFromContext(ctx *gin.Context) (uint, bool) {
	value, exists := ctx.Get("customerID")
	if !exists {
		return 0, false
	}
	id, ok := value.(uint)
	return id, ok
}

// CreateCartItem adds a product to the signed-in customer's cart. Adding
// the same product/size/color again merges quantities.
func CreateCartItem(ctx *gin.Context) {
	customerID, ok := customerIDFromContext(ctx)
	if !ok {
		sendErrorResponse(ctx, http.StatusUnauthorized, "Sign in required")
		return
	}

	var cartItem models.CartItem
	if err := ctx.ShouldBindJSON(&cartItem); err != nil {
		log.Println("Bind error:", err)
		sendErrorResponse(ctx, http.StatusBadRequest, "Invalid input")
		return
	}
	cartItem.CustomerID = customerID

	var existing models.CartItem
	err := initializers.DB.
		Where("customer_id = ? AND product_id = ? AND size = ? AND color = ?",
			customerID, cartItem.ProductID, cartItem.Size, cartItem.Color).
		First(&existing).Error

	if err == nil {
		existing.Quantity += cartItem.Quantity
		if err := initializers.DB.Save(&existing).Error; err != nil {
			log.Println("Update error:", err)
			sendErrorResponse(ctx, http.StatusInternalServerError, "Unable to update cart item quantity")
			return
		}
		sendJSONResponse(ctx, http.StatusOK, gin.H{
			"message": "Cart item quantity updated",
			"id":      existing.ID,
		})
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Println("Database error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Unable to fetch cart item")
		return
	}

	if err := initializers.DB.Create(&cartItem).Error; err != nil {
		log.Println("Create error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to create cart item")
		return
	}

	sendJSONResponse(ctx, http.StatusCreated, gin.H{
		"message": "Added to cart",
		"id":      cartItem.ID,
	})
}

func GetCart(ctx *gin.Context) {
	customerID, ok := customerIDFromContext(ctx)
	if !ok {
		sendErrorResponse(ctx, http.StatusUnauthorized, "Sign in required")
		return
	}

	var items []models.CartItem
	if err := initializers.DB.Where("customer_id = ?", customerID).Find(&items).Error; err != nil {
		log.Println("Database error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to fetch cart")
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"items": items})
}

func DeleteCartItem(ctx *gin.Context) {
	customerID, ok := customerIDFromContext(ctx)
	if !ok {
		sendErrorResponse(ctx, http.StatusUnauthorized, "Sign in required")
		return
	}

	itemID, err := strconv.Atoi(ctx.Param("itemId"))
	if err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Failed to parse itemId")
		return
	}

	result := initializers.DB.
		Where("customer_id = ?", customerID).
		Delete(&models.CartItem{}, itemID)
	if result.Error != nil {
		log.Println(result.Error)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to delete cart item")
		return
	}
	if result.RowsAffected == 0 {
		sendErrorResponse(ctx, http.StatusNotFound, "Cart item not found")
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": "Cart item removed"})
}
