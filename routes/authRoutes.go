package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/illimaniwear/illimani-api/controllers"
)

func AuthRoutes(server *gin.Engine) {
	server.POST("/auth/callback", controllers.AuthCallback)
}
