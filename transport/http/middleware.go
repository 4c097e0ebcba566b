package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SNO7E-G/Blockchain-Based-Authentication/core"
	"github.com/SNO7E-G/Blockchain-Based-Authentication/ports"
)

// credentialKey is the gin context key holding the validated credential.
const credentialKey = "sessionCredential"

// AuthMiddleware creates middleware that validates the bearer session
// credential on protected routes.
func AuthMiddleware(issuer ports.CredentialIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header"})
			return
		}

		token := strings.TrimPrefix(auth, "Bearer ")

		cred, err := issuer.Validate(token)
		if err != nil {
			msg := "invalid credential"
			if errors.Is(err, core.ErrCredentialExpired) {
				msg = "credential expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}

		c.Set(credentialKey, cred)
		c.Next()
	}
}
