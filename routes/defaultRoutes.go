package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/illimaniwear/illimani-api/controllers"
)

func DefaultRoutes(server *gin.Engine) {
	server.GET("/", controllers.GetHome)
}
