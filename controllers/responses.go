package controllers

import "github.com/gin-gonic/gin"

func sendJSONResponse(ctx *gin.Context, status int, data gin.H) {
	ctx.JSON(status, data)
}

func sendErrorResponse(ctx *gin.Context, status int, message string) {
	sendJSONResponse(ctx, status, gin.H{"message": message})
}

// sendCodedError is the checkout error shape: a human-readable Spanish
// message plus a stable machine code the frontend branches on.
func sendCodedError(ctx *gin.Context, status int, message, code string) {
	sendJSONResponse(ctx, status, gin.H{"error": message, "code": code})
}
