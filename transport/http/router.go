package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/propchain/gatekeeper/ports"
	"github.com/propchain/gatekeeper/service"
)

// SetupRouter sets up the Gin router.
func SetupRouter(authService *service.AuthService, tokenizer ports.Tokenizer) *gin.Engine {
	router := gin.Default()

	handlers := NewAuthHandlers(authService)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := router.Group("/auth")
	{
		auth.POST("/register", handlers.Register)
		auth.POST("/login", handlers.Login)
		auth.POST("/web3-login", handlers.Web3Login)
		auth.POST("/refresh-token", handlers.Refresh)
		auth.POST("/logout", AuthMiddleware(tokenizer), handlers.Logout)
		auth.POST("/forgot-password", handlers.ForgotPassword)
		auth.PUT("/reset-password", handlers.ResetPassword)
		auth.GET("/verify-email/:token", handlers.VerifyEmail)
	}

	api := router.Group("/api")
	api.Use(AuthMiddleware(tokenizer))
	{
		api.GET("/me", handlers.Me)
	}

	return router
}
