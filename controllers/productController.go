package controllers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/illimaniwear/illimani-api/cache"
	"github.com/illimaniwear/illimani-api/initializers"
	"github.com/illimaniwear/illimani-api/models"
	"gorm.io/gorm"
)

func respondWithError(ctx *gin.Context, statusCode int, message string, err error) {
	errMsg := ""
	if err != nil {
		errMsg = err.Error()
	}
	ctx.JSON(statusCode, gin.H{
		"message": message,
		"error":   errMsg,
	})
}

func CreateProduct(ctx *gin.Context) {
	var product models.Product
	if err := ctx.ShouldBindJSON(&product); err != nil {
		respondWithError(ctx, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := initializers.DB.Create(&product).Error; err != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Failed to create product", err)
		return
	}

	if err := cache.Del(ctx.Request.Context(), cache.HomeListingKey); err != nil {
		log.Println("Cache invalidation failed:", err)
	}

	ctx.JSON(http.StatusCreated, product)
}

// GetProducts lists the catalog with pagination, name search and
// category filter. The default first page is served from Redis when
// available; checkout invalidates it.
func GetProducts(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "12"))
	offset := (page - 1) * limit
	search := ctx.Query("search")
	category := ctx.Query("category")

	cacheable := page == 1 && search == "" && category == ""
	if cacheable {
		var cached gin.H
		if ok, err := cache.GetJSON(ctx.Request.Context(), cache.HomeListingKey, &cached); err != nil {
			log.Println("Cache read failed:", err)
		} else if ok {
			ctx.JSON(http.StatusOK, cached)
			return
		}
	}

	query := initializers.DB.WithContext(ctx.Request.Context()).Preload("Images")
	if search != "" {
		query = query.Where("name LIKE ?", "%"+search+"%")
	}
	if category != "" {
		query = query.Where("category = ?", category)
	}

	var products []models.Product
	result := query.Limit(limit).Offset(offset).Find(&products)
	if result.Error != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Unable to fetch products", result.Error)
		return
	}

	var count int64
	countQuery := initializers.DB.Model(&models.Product{})
	if search != "" {
		countQuery = countQuery.Where("name LIKE ?", "%"+search+"%")
	}
	if category != "" {
		countQuery = countQuery.Where("category = ?", category)
	}
	countQuery.Count(&count)

	response := gin.H{
		"products": products,
		"metadata": gin.H{
			"total": count,
			"page":  page,
			"limit": limit,
		},
	}

	if cacheable {
		if err := cache.SetJSON(ctx.Request.Context(), cache.HomeListingKey, response, cache.DefaultTTL); err != nil {
			log.Println("Cache write failed:", err)
		}
	}

	ctx.JSON(http.StatusOK, response)
}

func GetProduct(ctx *gin.Context) {
	productID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		respondWithError(ctx, http.StatusBadRequest, "Invalid product ID", err)
		return
	}

	key := cache.ProductKey(uint(productID))
	var cached models.Product
	if ok, err := cache.GetJSON(ctx.Request.Context(), key, &cached); err != nil {
		log.Println("Cache read failed:", err)
	} else if ok {
		ctx.JSON(http.StatusOK, cached)
		return
	}

	var product models.Product
	result := initializers.DB.WithContext(ctx.Request.Context()).
		Preload("Images").First(&product, productID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			respondWithError(ctx, http.StatusNotFound, "Product not found", nil)
		} else {
			respondWithError(ctx, http.StatusInternalServerError, "Unable to retrieve product", result.Error)
		}
		return
	}

	if err := cache.SetJSON(ctx.Request.Context(), key, product, cache.DefaultTTL); err != nil {
		log.Println("Cache write failed:", err)
	}

	ctx.JSON(http.StatusOK, product)
}

func UploadProductImages(ctx *gin.Context) {
	form, err := ctx.MultipartForm()
	if err != nil {
		respondWithError(ctx, http.StatusBadRequest, "Invalid form data", err)
		return
	}

	files := form.File["images"]
	if len(files) == 0 {
		respondWithError(ctx, http.StatusBadRequest, "No files uploaded", nil)
		return
	}

	productIDStr := ctx.PostForm("productId")
	if productIDStr == "" {
		respondWithError(ctx, http.StatusBadRequest, "Missing productId", nil)
		return
	}
	productID, err := strconv.Atoi(productIDStr)
	if err != nil {
		respondWithError(ctx, http.StatusBadRequest, "Invalid productId", err)
		return
	}

	var product models.Product
	if err := initializers.DB.First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondWithError(ctx, http.StatusNotFound, "Product not found", nil)
		} else {
			respondWithError(ctx, http.StatusInternalServerError, "Failed to validate product", err)
		}
		return
	}

	uploader, err := getAWSUploader()
	if err != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Failed to configure AWS", err)
		return
	}

	var uploadedUrls []string
	var failedUploads []string

	for _, file := range files {
		f, openErr := file.Open()
		if openErr != nil {
			log.Printf("Error opening file %s: %v", file.Filename, openErr)
			failedUploads = append(failedUploads, file.Filename)
			continue
		}

		uniqueFilename := fmt.Sprintf("products/%d-%s-%s", productID, time.Now().Format("20060102150405"), file.Filename)

		result, uploadErr := uploader.Upload(ctx.Request.Context(), &s3.PutObjectInput{
			Bucket:      aws.String(os.Getenv("S3_BUCKET")),
			Key:         aws.String(uniqueFilename),
			Body:        f,
			ACL:         "public-read",
			ContentType: aws.String(file.Header.Get("Content-Type")),
		})
		f.Close()

		if uploadErr != nil {
			log.Printf("Error uploading file %s: %v", file.Filename, uploadErr)
			failedUploads = append(failedUploads, file.Filename)
			continue
		}

		uploadedUrls = append(uploadedUrls, result.Location)

		productImage := models.ProductImage{
			Url:       result.Location,
			ProductID: productID,
		}
		if err := initializers.DB.Create(&productImage).Error; err != nil {
			// The object is already in the bucket, so just log.
			log.Printf("Error saving image to database: %v", err)
		}
	}

	if err := cache.InvalidateProducts(ctx.Request.Context(), uint(productID)); err != nil {
		log.Println("Cache invalidation failed:", err)
	}

	response := gin.H{
		"message": "Files processed",
		"urls":    uploadedUrls,
	}
	if len(failedUploads) > 0 {
		response["failed"] = failedUploads
	}
	ctx.JSON(http.StatusOK, response)
}
