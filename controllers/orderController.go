package controllers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/illimaniwear/illimani-api/initializers"
	"github.com/illimaniwear/illimani-api/inventory"
	"github.com/illimaniwear/illimani-api/models"
	"gorm.io/gorm"
)

func GetOrder(ctx *gin.Context) {
	orderID := ctx.Param("orderId")

	var order models.Order
	result := initializers.DB.WithContext(ctx.Request.Context()).
		Preload("Items").First(&order, "id = ?", orderID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			sendErrorResponse(ctx, http.StatusNotFound, "Order not found")
		} else {
			log.Println(result.Error)
			sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to fetch order")
		}
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"order": order})
}

func GetOrdersByCustomer(ctx *gin.Context) {
	customerID, err := strconv.Atoi(ctx.Param("customerId"))
	if err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Failed to parse customerId")
		return
	}

	sortOrder := ctx.DefaultQuery("sort", "desc")
	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = "desc"
	}

	var orders []models.Order
	result := initializers.DB.WithContext(ctx.Request.Context()).
		Preload("Items").
		Where("customer_id = ?", customerID).
		Order("created_at " + sortOrder).
		Find(&orders)
	if result.Error != nil {
		log.Println(result.Error)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to fetch orders")
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"orders": orders})
}

// GetOrders is the admin listing with pagination, status filter and
// search by order id prefix.
func GetOrders(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "15"))
	offset := (page - 1) * limit

	sortOrder := ctx.DefaultQuery("sort", "desc")
	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = "desc"
	}

	query := initializers.DB.WithContext(ctx.Request.Context()).Preload("Items")
	countQuery := initializers.DB.Model(&models.Order{})

	if search := ctx.Query("search"); search != "" {
		query = query.Where("id LIKE ?", search+"%")
		countQuery = countQuery.Where("id LIKE ?", search+"%")
	}
	if status := ctx.Query("status"); status != "" {
		query = query.Where("status = ?", status)
		countQuery = countQuery.Where("status = ?", status)
	}

	var orders []models.Order
	result := query.Order("created_at " + sortOrder).Limit(limit).Offset(offset).Find(&orders)
	if result.Error != nil {
		log.Println(result.Error)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Unable to fetch orders")
		return
	}

	var count int64
	countQuery.Count(&count)

	totalPages := math.Ceil(float64(count) / float64(limit))
	sendJSONResponse(ctx, http.StatusOK, gin.H{
		"orders": orders,
		"metadata": gin.H{
			"total":       count,
			"currentPage": page,
			"limit":       limit,
			"hasPrevPage": page > 1,
			"hasNextPage": int(totalPages) > page,
		},
	})
}

// UpdateOrderStatus mutates the order status. Moving an order to
// "confirmed" re-attempts the inventory reservation when the initial
// attempt after checkout failed; that retry stays best-effort.
func UpdateOrderStatus(ctx *gin.Context) {
	var body struct {
		Status string `json:"status" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Failed to parse request body")
		return
	}

	orderID := ctx.Param("orderId")

	var order models.Order
	if err := initializers.DB.First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			sendErrorResponse(ctx, http.StatusNotFound, "Order not found")
		} else {
			log.Println(err)
			sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to fetch order")
		}
		return
	}

	if err := initializers.DB.Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("status", body.Status).Error; err != nil {
		log.Println(err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to update order status")
		return
	}

	if body.Status == "confirmed" && !order.InventoryReserved {
		if err := inventory.Reserve(ctx.Request.Context(), initializers.DB, orderID); err != nil &&
			!errors.Is(err, inventory.ErrAlreadyReserved) {
			log.Printf("Reservation retry on status change failed for order %s: %v", orderID, err)
		}
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": "Order status updated successfully."})
}

// RetryReservation is the manual recovery endpoint for orders whose
// reservation attempt at checkout failed.
func RetryReservation(ctx *gin.Context) {
	var body struct {
		OrderID string `json:"orderId" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		sendJSONResponse(ctx, http.StatusBadRequest, gin.H{"error": "orderId is required"})
		return
	}

	err := inventory.Reserve(ctx.Request.Context(), initializers.DB, body.OrderID)
	if err != nil && !errors.Is(err, inventory.ErrAlreadyReserved) {
		log.Printf("Manual reservation failed for order %s: %v", body.OrderID, err)
		sendJSONResponse(ctx, http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"success": true})
}

func getAWSUploader() (*manager.Uploader, error) {
	cfg, err := config.LoadDefaultConfig(context.TODO())
	if err != nil {
		return nil, fmt.Errorf("error loading AWS config: %w", err)
	}
	return manager.NewUploader(s3.NewFromConfig(cfg)), nil
}

// UploadPaymentProof stores the customer's QR transfer screenshot in S3
// and records the object key on the order. A stored object that cannot
// be recorded is reported as a partial failure, not rolled back.
func UploadPaymentProof(ctx *gin.Context) {
	orderID := ctx.Param("orderId")

	var order models.Order
	if err := initializers.DB.First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			sendErrorResponse(ctx, http.StatusNotFound, "Order not found")
		} else {
			log.Println(err)
			sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to fetch order")
		}
		return
	}

	file, err := ctx.FormFile("proof")
	if err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "No file uploaded")
		return
	}

	uploader, err := getAWSUploader()
	if err != nil {
		log.Println(err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to configure storage")
		return
	}

	f, err := file.Open()
	if err != nil {
		log.Printf("Error opening file %s: %v", file.Filename, err)
		sendErrorResponse(ctx, http.StatusBadRequest, "Unable to read uploaded file")
		return
	}
	defer f.Close()

	key := fmt.Sprintf("payment-proofs/%s-%s-%s",
		orderID, time.Now().Format("20060102150405"), file.Filename)

	_, err = uploader.Upload(ctx.Request.Context(), &s3.PutObjectInput{
		Bucket:      aws.String(os.Getenv("S3_BUCKET")),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(file.Header.Get("Content-Type")),
	})
	if err != nil {
		log.Printf("Error uploading proof for order %s: %v", orderID, err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to upload payment proof")
		return
	}

	if err := initializers.DB.Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("payment_proof_key", key).Error; err != nil {
		log.Printf("Proof for order %s uploaded but not recorded: %s", orderID, key)
		sendJSONResponse(ctx, http.StatusOK, gin.H{
			"message": "Proof stored but could not be attached to the order",
			"key":     key,
		})
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{
		"message": "Payment proof uploaded successfully",
		"key":     key,
	})
}
