package controllers

import (
	"errors"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/illimaniwear/illimani-api/initializers"
	"github.com/illimaniwear/illimani-api/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AuthCallbackRequest struct {
	AuthUserID string `json:"authUserId" binding:"required"`
	Name       string `json:"name"`
	Email      string `json:"email" binding:"required,email"`
	Phone      string `json:"phone"`
}

func generateSessionToken(customer models.Customer) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"customer_id":  customer.ID,
		"auth_user_id": customer.AuthUserID,
		"email":        customer.Email,
		"iat":          time.Now().Unix(),
		"exp":          time.Now().Add(time.Hour * 24 * 30).Unix(),
	})
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}

// AuthCallback receives the identity provider's profile after a
// successful sign-in and runs the same customer upsert rules as
// checkout: the linked identity wins, otherwise the email row is
// claimed and linked.
func AuthCallback(ctx *gin.Context) {
	var req AuthCallbackRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Invalid input")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	db := initializers.DB.WithContext(ctx.Request.Context())

	var customer models.Customer
	err := db.Where("auth_user_id = ?", req.AuthUserID).First(&customer).Error
	switch {
	case err == nil:
		updates := map[string]any{}
		if req.Name != "" {
			updates["name"] = req.Name
		}
		if req.Phone != "" {
			updates["phone"] = req.Phone
		}
		if len(updates) > 0 {
			if err := db.Model(&customer).Updates(updates).Error; err != nil {
				log.Println("Customer update failed:", err)
				sendErrorResponse(ctx, http.StatusInternalServerError, "Internal server error")
				return
			}
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		authUserID := req.AuthUserID
		customer = models.Customer{
			AuthUserID: &authUserID,
			Name:       req.Name,
			Phone:      req.Phone,
			Email:      email,
		}
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoUpdates: clause.AssignmentColumns([]string{"auth_user_id", "name", "phone", "updated_at"}),
		}).Create(&customer).Error; err != nil {
			log.Println("Customer upsert failed:", err)
			sendErrorResponse(ctx, http.StatusInternalServerError, "Internal server error")
			return
		}
		if err := db.Where("email = ?", email).First(&customer).Error; err != nil {
			log.Println("Customer lookup failed:", err)
			sendErrorResponse(ctx, http.StatusInternalServerError, "Internal server error")
			return
		}
	default:
		log.Println("Customer lookup failed:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Internal server error")
		return
	}

	tokenString, err := generateSessionToken(customer)
	if err != nil {
		log.Println("JWT generation error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{
		"token":    tokenString,
		"customer": customer,
	})
}
