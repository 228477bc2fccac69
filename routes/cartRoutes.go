package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/illimaniwear/illimani-api/controllers"
	"github.com/illimaniwear/illimani-api/middlewares"
)

func CartRoutes(server *gin.Engine) {
	cart := server.Group("/cart", middlewares.Authenticate(), middlewares.RequireCustomer())
	{
		cart.POST("", controllers.CreateCartItem)
		cart.GET("", controllers.GetCart)
		cart.DELETE("/:itemId", controllers.DeleteCartItem)
	}

	wishlist := server.Group("/wishlist", middlewares.Authenticate(), middlewares.RequireCustomer())
	{
		wishlist.POST("", controllers.AddWishlistItem)
		wishlist.GET("", controllers.GetWishlist)
		wishlist.DELETE("/:productId", controllers.DeleteWishlistItem)
	}
}
