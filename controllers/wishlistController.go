package controllers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/illimaniwear/illimani-api/initializers"
	"github.com/illimaniwear/illimani-api/models"
	"gorm.io/gorm/clause"
)

// AddWishlistItem is idempotent: re-adding a wished product is a no-op.
func AddWishlistItem(ctx *gin.Context) {
	customerID, ok := customerIDFromContext(ctx)
	if !ok {
		sendErrorResponse(ctx, http.StatusUnauthorized, "Sign in required")
		return
	}

	var body struct {
		ProductID uint `json:"productId" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Invalid input")
		return
	}

	item := models.WishlistItem{CustomerID: customerID, ProductID: body.ProductID}
	if err := initializers.DB.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&item).Error; err != nil {
		log.Println("Wishlist insert failed:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to add to wishlist")
		return
	}

	sendJSONResponse(ctx, http.StatusCreated, gin.H{"message": "Added to wishlist"})
}

func GetWishlist(ctx *gin.Context) {
	customerID, ok := customerIDFromContext(ctx)
	if !ok {
		sendErrorResponse(ctx, http.StatusUnauthorized, "Sign in required")
		return
	}

	var items []models.WishlistItem
	if err := initializers.DB.Where("customer_id = ?", customerID).Find(&items).Error; err != nil {
		log.Println("Database error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to fetch wishlist")
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"items": items})
}

func DeleteWishlistItem(ctx *gin.Context) {
	customerID, ok := customerIDFromContext(ctx)
	if !ok {
		sendErrorResponse(ctx, http.StatusUnauthorized, "Sign in required")
		return
	}

	productID, err := strconv.Atoi(ctx.Param("productId"))
	if err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Failed to parse productId")
		return
	}

	result := initializers.DB.
		Where("customer_id = ? AND product_id = ?", customerID, productID).
		Delete(&models.WishlistItem{})
	if result.Error != nil {
		log.Println(result.Error)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to remove from wishlist")
		return
	}
	if result.RowsAffected == 0 {
		sendErrorResponse(ctx, http.StatusNotFound, "Wishlist item not found")
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": "Removed from wishlist"})
}
