package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/illimaniwear/illimani-api/controllers"
	"github.com/illimaniwear/illimani-api/middlewares"
)

func OrderRoutes(server *gin.Engine) {
	server.POST("/checkout", middlewares.Authenticate(), controllers.CreateCheckout)
	server.POST("/order/reserve", controllers.RetryReservation)
	server.POST("/order/:orderId/payment-proof", controllers.UploadPaymentProof)
	server.GET("/order/:orderId", controllers.GetOrder)
	server.GET("/customer/:customerId/orders", controllers.GetOrdersByCustomer)

	admin := server.Group("/", middlewares.RequireAPIKey())
	{
		admin.GET("/order", controllers.GetOrders)
		admin.PATCH("/order/:orderId", controllers.UpdateOrderStatus)
	}
}
