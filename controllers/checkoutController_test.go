package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"github.com/illimaniwear/illimani-api/initializers"
	"github.com/illimaniwear/illimani-api/middlewares"
	"github.com/illimaniwear/illimani-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupCheckoutTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Customer{}, &models.Subscriber{},
		&models.Order{}, &models.OrderItem{}, &models.Product{},
	))
	initializers.DB = db

	emailLimiter.Reset()
	ipLimiter.Reset()
	emailLimiter.SetClock(time.Now)
	ipLimiter.SetClock(time.Now)

	router := gin.New()
	router.POST("/checkout", middlewares.Authenticate(), CreateCheckout)
	return router, db
}

func seedProduct(t *testing.T, db *gorm.DB, stock int) models.Product {
	t.Helper()
	product := models.Product{Name: "Polera Illimani", Category: "poleras", Price: 120, Stock: stock}
	require.NoError(t, db.Create(&product).Error)
	return product
}

func validPayload(productID uint, email string) map[string]any {
	return map[string]any{
		"name":             "María Quispe",
		"phone":            "71234567",
		"email":            email,
		"marketingConsent": true,
		"subtotal":         240.0,
		"shippingCost":     15.0,
		"total":            255.0,
		"deliveryMethod":   "delivery",
		"address":          "Av. Busch 1234, La Paz",
		"items": []map[string]any{
			{"productId": productID, "quantity": 2, "unitPrice": 120.0, "size": "M", "color": "rojo", "subtotal": 240.0},
		},
	}
}

func postCheckout(router *gin.Engine, payload map[string]any, headers map[string]string) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/checkout", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	code, _ := body["code"].(string)
	return code
}

func TestHoneypotRejectsRegardlessOfOtherFields(t *testing.T) {
	router, db := setupCheckoutTest(t)
	product := seedProduct(t, db, 10)

	payload := validPayload(product.ID, "bot@example.com")
	payload["website"] = "http://spam.example"

	rec := postCheckout(router, payload, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "honeypot", errorCode(t, rec))

	var count int64
	db.Model(&models.Order{}).Count(&count)
	assert.Zero(t, count)
}

func TestValidationFailsAtFirstCheckInDeclaredOrder(t *testing.T) {
	router, _ := setupCheckoutTest(t)

	payload := map[string]any{
		"name":  "Jo",
		"phone": "123",
		"email": "bad",
		"total": 0,
		"items": []map[string]any{},
	}

	rec := postCheckout(router, payload, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_name", errorCode(t, rec))

	payload["name"] = "José"
	assert.Equal(t, "invalid_phone", errorCode(t, postCheckout(router, payload, nil)))

	payload["phone"] = "71234567"
	assert.Equal(t, "invalid_email", errorCode(t, postCheckout(router, payload, nil)))

	payload["email"] = "jose@example.com"
	assert.Equal(t, "invalid_total", errorCode(t, postCheckout(router, payload, nil)))

	payload["total"] = 100.0
	assert.Equal(t, "empty_cart", errorCode(t, postCheckout(router, payload, nil)))
}

func TestPhoneValidation(t *testing.T) {
	router, db := setupCheckoutTest(t)
	product := seedProduct(t, db, 100)

	for _, phone := range []string{"123456", "123456789", "7123456a", " 7123456", "712-4567", "+59171234567"} {
		payload := validPayload(product.ID, "phone@example.com")
		payload["phone"] = phone
		rec := postCheckout(router, payload, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "phone %q", phone)
		assert.Equal(t, "invalid_phone", errorCode(t, rec), "phone %q", phone)
	}

	// 7 and 8 digit numbers pass.
	for i, phone := range []string{"7123456", "71234567"} {
		payload := validPayload(product.ID, fmt.Sprintf("phone-ok-%d@example.com", i))
		payload["phone"] = phone
		rec := postCheckout(router, payload, nil)
		assert.Equal(t, http.StatusOK, rec.Code, "phone %q", phone)
	}
}

func TestEmailValidation(t *testing.T) {
	router, db := setupCheckoutTest(t)
	product := seedProduct(t, db, 100)

	for _, email := range []string{"a@b", "ab.com", "a @b.com", "a@b .com", "@b.com"} {
		payload := validPayload(product.ID, email)
		rec := postCheckout(router, payload, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "email %q", email)
		assert.Equal(t, "invalid_email", errorCode(t, rec), "email %q", email)
	}
}

func TestSuccessfulCheckout(t *testing.T) {
	router, db := setupCheckoutTest(t)
	product := seedProduct(t, db, 10)

	rec := postCheckout(router, validPayload(product.ID, "maria@example.com"), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		OrderID     string `json:"orderId"`
		OrderNumber string `json:"orderNumber"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.OrderID)
	assert.Len(t, resp.OrderNumber, 8)
	assert.Equal(t, strings.ToUpper(resp.OrderID[:8]), resp.OrderNumber)

	var order models.Order
	require.NoError(t, db.Preload("Items").First(&order, "id = ?", resp.OrderID).Error)
	assert.Equal(t, "pending", order.Status)
	assert.Equal(t, "qr", order.PaymentMethod)
	assert.Zero(t, order.Discount)
	assert.Equal(t, "maria@example.com", order.CustomerEmail)
	require.Len(t, order.Items, 1)
	assert.Equal(t, product.ID, order.Items[0].ProductID)
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.True(t, order.InventoryReserved)
	require.NotNil(t, order.CustomerID)

	var updated models.Product
	require.NoError(t, db.First(&updated, product.ID).Error)
	assert.Equal(t, 8, updated.Stock)

	var customer models.Customer
	require.NoError(t, db.First(&customer, "email = ?", "maria@example.com").Error)
	assert.Equal(t, "María Quispe", customer.Name)
	assert.True(t, customer.MarketingConsent)

	var subscriberCount int64
	db.Model(&models.Subscriber{}).Where("email = ?", "maria@example.com").Count(&subscriberCount)
	assert.EqualValues(t, 1, subscriberCount)
}

func TestNoSubscriberWithoutConsent(t *testing.T) {
	router, db := setupCheckoutTest(t)
	product := seedProduct(t, db, 10)

	payload := validPayload(product.ID, "noconsent@example.com")
	payload["marketingConsent"] = false
	rec := postCheckout(router, payload, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var count int64
	db.Model(&models.Subscriber{}).Count(&count)
	assert.Zero(t, count)
}

func TestReservationFailureDoesNotFailCheckout(t *testing.T) {
	router, db := setupCheckoutTest(t)
	product := seedProduct(t, db, 0)

	rec := postCheckout(router, validPayload(product.ID, "sinstock@example.com"), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		OrderID string `json:"orderId"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	// Order placed, items written, but nothing reserved.
	var order models.Order
	require.NoError(t, db.Preload("Items").First(&order, "id = ?", resp.OrderID).Error)
	assert.False(t, order.InventoryReserved)
	assert.Len(t, order.Items, 1)

	var updated models.Product
	require.NoError(t, db.First(&updated, product.ID).Error)
	assert.Equal(t, 0, updated.Stock)
}

func TestEmailRateLimitAndWindowReset(t *testing.T) {
	router, db := setupCheckoutTest(t)
	product := seedProduct(t, db, 100)

	current := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	emailLimiter.SetClock(func() time.Time { return current })
	ipLimiter.SetClock(func() time.Time { return current })

	for i := 0; i < 3; i++ {
		rec := postCheckout(router, validPayload(product.ID, "heavy@example.com"),
			map[string]string{"X-Forwarded-For": fmt.Sprintf("10.0.0.%d", i)})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	rec := postCheckout(router, validPayload(product.ID, "heavy@example.com"),
		map[string]string{"X-Forwarded-For": "10.0.0.9"})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "rate_limit_email", errorCode(t, rec))

	// Email keys are lower-cased: casing does not dodge the limit.
	rec = postCheckout(router, validPayload(product.ID, "HEAVY@example.com"),
		map[string]string{"X-Forwarded-For": "10.0.0.9"})
	assert.Equal(t, "rate_limit_email", errorCode(t, rec))

	// Past the window the same email goes through again.
	current = current.Add(time.Hour + time.Minute)
	rec = postCheckout(router, validPayload(product.ID, "heavy@example.com"),
		map[string]string{"X-Forwarded-For": "10.0.0.9"})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestIPRateLimit(t *testing.T) {
	router, db := setupCheckoutTest(t)
	product := seedProduct(t, db, 100)

	for i := 0; i < 5; i++ {
		rec := postCheckout(router, validPayload(product.ID, fmt.Sprintf("ip-user-%d@example.com", i)),
			map[string]string{"X-Forwarded-For": "200.87.1.1, 10.0.0.1"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	rec := postCheckout(router, validPayload(product.ID, "ip-user-6@example.com"),
		map[string]string{"X-Forwarded-For": "200.87.1.1, 10.0.0.2"})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "rate_limit_ip", errorCode(t, rec))

	// A different IP is unaffected.
	rec = postCheckout(router, validPayload(product.ID, "ip-user-7@example.com"),
		map[string]string{"X-Forwarded-For": "200.87.1.2"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestItemsInsertFailureReportsServerErrorAndRollsBack(t *testing.T) {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	// Deliberately no order_items table, so the items insert fails right
	// after the order insert succeeded inside the same transaction.
	require.NoError(t, db.AutoMigrate(
		&models.Customer{}, &models.Subscriber{},
		&models.Order{}, &models.Product{},
	))
	initializers.DB = db
	emailLimiter.Reset()
	ipLimiter.Reset()

	router := gin.New()
	router.POST("/checkout", middlewares.Authenticate(), CreateCheckout)

	product := seedProduct(t, db, 10)
	rec := postCheckout(router, validPayload(product.ID, "fallo@example.com"), nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "server_error", errorCode(t, rec))

	// The order row must not survive the failed items insert.
	var count int64
	db.Model(&models.Order{}).Count(&count)
	assert.Zero(t, count)
}

func TestPanicDuringItemsInsertReturnsServerError(t *testing.T) {
	router, db := setupCheckoutTest(t)
	product := seedProduct(t, db, 10)

	require.NoError(t, db.Callback().Create().Before("gorm:create").
		Register("fail_items_insert", func(tx *gorm.DB) {
			if tx.Statement.Table == "order_items" {
				panic("forced insert failure")
			}
		}))

	rec := postCheckout(router, validPayload(product.ID, "panico@example.com"), nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "server_error", errorCode(t, rec))

	var count int64
	db.Model(&models.Order{}).Count(&count)
	assert.Zero(t, count)
}

func TestGuestCheckoutUpdatesExistingCustomer(t *testing.T) {
	router, db := setupCheckoutTest(t)
	product := seedProduct(t, db, 100)

	// First order from a signed-in customer.
	payload := validPayload(product.ID, "shared@example.com")
	payload["authUserId"] = "auth-abc-123"
	rec := postCheckout(router, payload, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Second order as a guest with the same email and a new name.
	guest := validPayload(product.ID, "shared@example.com")
	guest["name"] = "María Q. de Mamani"
	rec = postCheckout(router, guest, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var customers []models.Customer
	require.NoError(t, db.Where("email = ?", "shared@example.com").Find(&customers).Error)
	require.Len(t, customers, 1)
	assert.Equal(t, "María Q. de Mamani", customers[0].Name)
	require.NotNil(t, customers[0].AuthUserID)
	assert.Equal(t, "auth-abc-123", *customers[0].AuthUserID)
}

func TestCheckoutWithSessionTokenLinksCustomer(t *testing.T) {
	router, db := setupCheckoutTest(t)
	product := seedProduct(t, db, 100)
	os.Setenv("JWT_SECRET", "test-secret")
	defer os.Unsetenv("JWT_SECRET")

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"customer_id":  1,
		"auth_user_id": "auth-token-9",
		"email":        "token@example.com",
		"exp":          time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	rec := postCheckout(router, validPayload(product.ID, "token@example.com"),
		map[string]string{"Authorization": "Bearer " + signed})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var customer models.Customer
	require.NoError(t, db.First(&customer, "email = ?", "token@example.com").Error)
	require.NotNil(t, customer.AuthUserID)
	assert.Equal(t, "auth-token-9", *customer.AuthUserID)
}
