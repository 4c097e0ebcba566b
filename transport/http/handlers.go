package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SNO7E-G/Blockchain-Based-Authentication/core"
	"github.com/SNO7E-G/Blockchain-Based-Authentication/ports"
	"github.com/SNO7E-G/Blockchain-Based-Authentication/service"
)

// AuthHandlers contains HTTP handlers for the auth endpoints.
type AuthHandlers struct {
	svc    *service.AuthService
	issuer ports.CredentialIssuer
}

// NewAuthHandlers creates new auth handlers.
func NewAuthHandlers(svc *service.AuthService, issuer ports.CredentialIssuer) *AuthHandlers {
	return &AuthHandlers{svc: svc, issuer: issuer}
}

// UserResponse reports an authenticated identity.
type UserResponse struct {
	Address  string `json:"address"`
	Username string `json:"username"`
}

// Register handles the registration request. On success the user is also
// authenticated.
func (h *AuthHandlers) Register(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	identity, err := h.svc.Register(c.Request.Context(), req.Username)
	if err != nil {
		status, msg := mapError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusOK, UserResponse{Address: identity.Address.Hex(), Username: identity.Username})
}

// Login handles the authenticate request. The username is optional; when
// present it overrides the ledger-reported one.
func (h *AuthHandlers) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
	}
	// The body is optional; an absent payload means no username override.
	_ = c.ShouldBindJSON(&req)

	identity, err := h.svc.Authenticate(c.Request.Context(), req.Username)
	if err != nil {
		status, msg := mapError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusOK, UserResponse{Address: identity.Address.Hex(), Username: identity.Username})
}

// Logout clears the stored session.
func (h *AuthHandlers) Logout(c *gin.Context) {
	if err := h.svc.Logout(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Status reports the orchestrator state and current identity.
func (h *AuthHandlers) Status(c *gin.Context) {
	resp := gin.H{
		"state":         h.svc.State(),
		"authenticated": h.svc.IsAuthenticated(),
	}

	if user := h.svc.CurrentUser(); user != nil {
		resp["user"] = UserResponse{Address: user.Address.Hex(), Username: user.Username}
	}

	wallet := h.svc.Wallet()
	resp["wallet"] = gin.H{
		"connected": wallet.Connected,
		"address":   wallet.Address.Hex(),
	}
	if wallet.ChainID != nil {
		resp["wallet"].(gin.H)["chainId"] = wallet.ChainID.String()
	}

	c.JSON(http.StatusOK, resp)
}

// Me returns the identity encoded in the presented credential.
func (h *AuthHandlers) Me(c *gin.Context) {
	cred, exists := c.Get(credentialKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	credential := cred.(*core.Credential)
	c.JSON(http.StatusOK, UserResponse{Address: credential.Address.Hex(), Username: credential.Username})
}

// Authorize confirms the presented credential is valid.
func (h *AuthHandlers) Authorize(c *gin.Context) {
	cred, exists := c.Get(credentialKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	credential := cred.(*core.Credential)
	c.JSON(http.StatusOK, gin.H{"authorized": true, "address": credential.Address.Hex()})
}

// mapError translates the core taxonomy to HTTP statuses. The reason
// string is passed through unchanged.
func mapError(err error) (int, string) {
	switch {
	case errors.Is(err, core.ErrUserDeclined):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, core.ErrAuthInFlight):
		return http.StatusConflict, err.Error()
	case errors.Is(err, core.ErrLedgerRejected):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, core.ErrLedgerTimeout):
		return http.StatusGatewayTimeout, err.Error()
	case errors.Is(err, core.ErrGatewayUnavailable):
		return http.StatusBadGateway, err.Error()
	default:
		return http.StatusInternalServerError, err.Error()
	}
}
