package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/illimaniwear/illimani-api/controllers"
	"github.com/illimaniwear/illimani-api/middlewares"
)

func ProductRoutes(server *gin.Engine) {
	server.GET("/product", controllers.GetProducts)
	server.GET("/product/:id", controllers.GetProduct)

	admin := server.Group("/", middlewares.RequireAPIKey())
	{
		admin.POST("/product", controllers.CreateProduct)
		admin.POST("/product-images", controllers.UploadProductImages)
	}
}
