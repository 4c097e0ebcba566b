package http

import (
	"github.com/gin-gonic/gin"

	"github.com/SNO7E-G/Blockchain-Based-Authentication/ports"
	"github.com/SNO7E-G/Blockchain-Based-Authentication/service"
)

// SetupRouter sets up the Gin router.
func SetupRouter(svc *service.AuthService, issuer ports.CredentialIssuer) *gin.Engine {
	router := gin.Default()

	handlers := NewAuthHandlers(svc, issuer)

	auth := router.Group("/auth")
	{
		auth.POST("/register", handlers.Register)
		auth.POST("/login", handlers.Login)
		auth.POST("/logout", handlers.Logout)
		auth.GET("/status", handlers.Status)
	}

	api := router.Group("/api")
	api.Use(AuthMiddleware(issuer))
	{
		api.GET("/me", handlers.Me)
		api.GET("/authorize", handlers.Authorize)
	}

	return router
}
