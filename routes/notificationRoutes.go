package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/illimaniwear/illimani-api/controllers"
)

func NotificationRoutes(server *gin.Engine) {
	server.POST("/notifications/order-confirmation", controllers.SendOrderConfirmationEmail)
	server.POST("/notifications/whatsapp", controllers.SendOrderWhatsApp)
}
