package controllers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/illimaniwear/illimani-api/cache"
	"github.com/illimaniwear/illimani-api/initializers"
	"github.com/illimaniwear/illimani-api/inventory"
	"github.com/illimaniwear/illimani-api/models"
	"github.com/illimaniwear/illimani-api/ratelimit"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	maxOrdersPerEmailPerHour = 3
	maxOrdersPerIPPerHour    = 5

	msgCheckoutServerError = "Ocurrió un error al procesar tu pedido. Intenta nuevamente."
)

var (
	emailLimiter = ratelimit.New(maxOrdersPerEmailPerHour, time.Hour)
	ipLimiter    = ratelimit.New(maxOrdersPerIPPerHour, time.Hour)

	phoneRegex = regexp.MustCompile(`^[0-9]{7,8}$`)
	emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

type CheckoutItem struct {
	ProductID uint    `json:"productId"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
	Size      string  `json:"size"`
	Color     string  `json:"color"`
	Subtotal  float64 `json:"subtotal"`
}

type CheckoutRequest struct {
	// Website is a hidden form field. Humans leave it empty.
	Website string `json:"website"`

	AuthUserID       string  `json:"authUserId"`
	Name             string  `json:"name"`
	Phone            string  `json:"phone"`
	Email            string  `json:"email"`
	MarketingConsent bool    `json:"marketingConsent"`
	Subtotal         float64 `json:"subtotal"`
	ShippingCost     float64 `json:"shippingCost"`
	Total            float64 `json:"total"`

	DeliveryMethod string   `json:"deliveryMethod"`
	Address        string   `json:"address"`
	Latitude       *float64 `json:"latitude"`
	Longitude      *float64 `json:"longitude"`
	DistanceKm     *float64 `json:"distanceKm"`
	MapLink        string   `json:"mapLink"`
	PickupPoint    string   `json:"pickupPoint"`
	RecipientName  string   `json:"recipientName"`
	RecipientPhone string   `json:"recipientPhone"`

	Items []CheckoutItem `json:"items"`
}

// validateCheckout runs the structural checks in their declared order and
// returns the first failing code. The honeypot message stays generic so
// bots learn nothing from the rejection.
func validateCheckout(req CheckoutRequest) (code, message string) {
	if req.Website != "" {
		return "honeypot", "Solicitud inválida"
	}
	if len(strings.TrimSpace(req.Name)) < 3 {
		return "invalid_name", "El nombre debe tener al menos 3 caracteres"
	}
	if !phoneRegex.MatchString(req.Phone) {
		return "invalid_phone", "El teléfono debe tener 7 u 8 dígitos"
	}
	if !emailRegex.MatchString(req.Email) {
		return "invalid_email", "El correo electrónico no es válido"
	}
	if req.Total <= 0 {
		return "invalid_total", "El total del pedido no es válido"
	}
	if len(req.Items) == 0 {
		return "empty_cart", "El carrito está vacío"
	}
	return "", ""
}

// clientIP prefers the first hop of X-Forwarded-For, then X-Real-IP.
func clientIP(ctx *gin.Context) string {
	if fwd := ctx.GetHeader("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	if real := ctx.GetHeader("X-Real-IP"); real != "" {
		return real
	}
	return "unknown"
}

// resolveCustomer finds or creates the Customer row for a checkout. A
// known identity wins over the email; otherwise the email's uniqueness is
// the conflict target and an existing row is updated, never skipped.
func resolveCustomer(ctx context.Context, db *gorm.DB, req CheckoutRequest, authUserID string) (*uint, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if authUserID != "" {
		var existing models.Customer
		err := db.WithContext(ctx).Where("auth_user_id = ?", authUserID).First(&existing).Error
		if err == nil {
			if err := db.WithContext(ctx).Model(&existing).Updates(map[string]any{
				"name":              strings.TrimSpace(req.Name),
				"phone":             req.Phone,
				"marketing_consent": req.MarketingConsent,
			}).Error; err != nil {
				return nil, err
			}
			return &existing.ID, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	customer := models.Customer{
		Name:             strings.TrimSpace(req.Name),
		Phone:            req.Phone,
		Email:            email,
		MarketingConsent: req.MarketingConsent,
	}
	assignments := []string{"name", "phone", "marketing_consent", "updated_at"}
	if authUserID != "" {
		customer.AuthUserID = &authUserID
		assignments = append(assignments, "auth_user_id")
	}

	if err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns(assignments),
	}).Create(&customer).Error; err != nil {
		return nil, err
	}

	// Re-read by email: on a conflict-update the driver does not report
	// the surviving row's id reliably.
	var saved models.Customer
	if err := db.WithContext(ctx).Where("email = ?", email).First(&saved).Error; err != nil {
		return nil, err
	}
	return &saved.ID, nil
}

func upsertSubscriber(ctx context.Context, db *gorm.DB, email string) error {
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoNothing: true,
	}).Create(&models.Subscriber{Email: email}).Error
}

// CreateCheckout is the single validated entry point for placing an
// order: validation, rate limiting, customer/subscriber upsert, order +
// items insert in one transaction, then the best-effort inventory
// reservation and catalog cache invalidation.
func CreateCheckout(ctx *gin.Context) {
	var req CheckoutRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Println("Checkout body parse error:", err)
		sendCodedError(ctx, http.StatusInternalServerError, msgCheckoutServerError, "server_error")
		return
	}

	if code, message := validateCheckout(req); code != "" {
		sendCodedError(ctx, http.StatusBadRequest, message, code)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	// Email limit runs first and consumes its quota even when the IP
	// limit would also reject.
	if !emailLimiter.Allow(email) {
		sendCodedError(ctx, http.StatusTooManyRequests,
			"Has alcanzado el límite de pedidos por hora. Intenta más tarde.", "rate_limit_email")
		return
	}
	if !ipLimiter.Allow(clientIP(ctx)) {
		sendCodedError(ctx, http.StatusTooManyRequests,
			"Demasiados pedidos desde esta conexión. Intenta más tarde.", "rate_limit_ip")
		return
	}

	db := initializers.DB
	reqCtx := ctx.Request.Context()

	authUserID := req.AuthUserID
	if fromToken, ok := ctx.Get("authUserID"); ok {
		if s, ok := fromToken.(string); ok && s != "" {
			authUserID = s
		}
	}

	customerID, err := resolveCustomer(reqCtx, db, req, authUserID)
	if err != nil {
		// The order still goes through without a customer link.
		log.Println("Customer upsert failed:", err)
	}

	if req.MarketingConsent {
		if err := upsertSubscriber(reqCtx, db, email); err != nil {
			log.Println("Subscriber upsert failed:", err)
		}
	}

	orderID := uuid.NewString()
	order := models.Order{
		ID:               orderID,
		CustomerID:       customerID,
		CustomerName:     strings.TrimSpace(req.Name),
		CustomerPhone:    req.Phone,
		CustomerEmail:    email,
		MarketingConsent: req.MarketingConsent,
		Subtotal:         req.Subtotal,
		Discount:         0,
		ShippingCost:     req.ShippingCost,
		Total:            req.Total,
		Status:           "pending",
		PaymentMethod:    "qr",
		DeliveryMethod:   req.DeliveryMethod,
		Address:          req.Address,
		Latitude:         req.Latitude,
		Longitude:        req.Longitude,
		DistanceKm:       req.DistanceKm,
		MapLink:          req.MapLink,
		PickupPoint:      req.PickupPoint,
		RecipientName:    req.RecipientName,
		RecipientPhone:   req.RecipientPhone,
	}

	items := make([]models.OrderItem, 0, len(req.Items))
	for _, line := range req.Items {
		items = append(items, models.OrderItem{
			OrderID:   orderID,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			Size:      line.Size,
			Color:     line.Color,
			Subtotal:  line.Subtotal,
		})
	}

	tx := db.WithContext(reqCtx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			log.Println("Checkout panicked:", r)
			sendCodedError(ctx, http.StatusInternalServerError, msgCheckoutServerError, "server_error")
		}
	}()

	// The order row must exist before its items; reservation depends on
	// the items, which is why it is invoked explicitly after the commit
	// instead of hanging off an insert hook on orders.
	if err := tx.Create(&order).Error; err != nil {
		tx.Rollback()
		log.Println("Order insert failed:", err)
		sendCodedError(ctx, http.StatusInternalServerError, msgCheckoutServerError, "server_error")
		return
	}
	if err := tx.Create(&items).Error; err != nil {
		tx.Rollback()
		log.Println("Order items insert failed:", err)
		sendCodedError(ctx, http.StatusInternalServerError, msgCheckoutServerError, "server_error")
		return
	}
	if err := tx.Commit().Error; err != nil {
		log.Println("Order commit failed:", err)
		sendCodedError(ctx, http.StatusInternalServerError, msgCheckoutServerError, "server_error")
		return
	}

	// Best effort from here on: the order is placed regardless.
	if err := inventory.Reserve(reqCtx, db, orderID); err != nil {
		log.Printf("Inventory reservation failed for order %s: %v", orderID, err)
	}

	productIDs := make([]uint, 0, len(items))
	for _, item := range items {
		productIDs = append(productIDs, item.ProductID)
	}
	if err := cache.InvalidateProducts(reqCtx, productIDs...); err != nil {
		log.Println("Catalog cache invalidation failed:", err)
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{
		"orderId": orderID,
		// Display-only short form; the full id stays the source of truth.
		"orderNumber": strings.ToUpper(orderID[:8]),
	})
}
