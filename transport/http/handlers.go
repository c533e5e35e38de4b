package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/propchain/gatekeeper/core"
	"github.com/propchain/gatekeeper/service"
)

// AuthHandlers contains HTTP handlers for auth endpoints
type AuthHandlers struct {
	authService *service.AuthService
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(authService *service.AuthService) *AuthHandlers {
	return &AuthHandlers{authService: authService}
}

type userResponse struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	WalletAddress string `json:"wallet_address,omitempty"`
	IsVerified    bool   `json:"is_verified"`
}

type tokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	TokenType    string       `json:"token_type"`
	User         userResponse `json:"user"`
}

func toUserResponse(user *core.User) userResponse {
	return userResponse{
		ID:            user.ID,
		Email:         user.Email,
		WalletAddress: user.WalletAddress,
		IsVerified:    user.Verified,
	}
}

// respondError maps domain errors to HTTP status codes. Unexpected errors
// collapse into a generic 500 so internal detail never leaks.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, core.ErrBadRequest), errors.Is(err, core.ErrWeakPassword):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, core.ErrInvalidOrExpiredToken):
		c.JSON(http.StatusBadRequest, gin.H{"error": core.ErrInvalidOrExpiredToken.Error()})
	case errors.Is(err, core.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": core.ErrInvalidCredentials.Error()})
	case errors.Is(err, core.ErrInvalidSignature):
		c.JSON(http.StatusUnauthorized, gin.H{"error": core.ErrInvalidSignature.Error()})
	case errors.Is(err, core.ErrInvalidRefreshToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": core.ErrInvalidRefreshToken.Error()})
	case errors.Is(err, core.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": core.ErrConflict.Error()})
	case errors.Is(err, core.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": core.ErrNotFound.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// Register handles new account creation.
func (h *AuthHandlers) Register(c *gin.Context) {
	var req struct {
		Email         string `json:"email" binding:"required,email"`
		Password      string `json:"password" binding:"required"`
		WalletAddress string `json:"wallet_address"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if _, err := h.authService.Register(c.Request.Context(), req.Email, req.Password, req.WalletAddress); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully. Please check your email for verification.",
	})
}

// Login handles email/password login.
func (h *AuthHandlers) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	h.login(c, core.PasswordCredentials{Email: req.Email, Password: req.Password})
}

// Web3Login handles wallet login.
func (h *AuthHandlers) Web3Login(c *gin.Context) {
	var req struct {
		WalletAddress string `json:"wallet_address" binding:"required"`
		Signature     string `json:"signature" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	h.login(c, core.WalletCredentials{Address: req.WalletAddress, Signature: req.Signature})
}

func (h *AuthHandlers) login(c *gin.Context, creds core.Credentials) {
	pair, user, err := h.authService.Login(c.Request.Context(), creds)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "Bearer",
		User:         toUserResponse(user),
	})
}

// Refresh handles token rotation.
func (h *AuthHandlers) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	pair, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"token_type":    "Bearer",
	})
}

// Logout revokes the authenticated user's refresh token.
func (h *AuthHandlers) Logout(c *gin.Context) {
	userID := c.GetString(ContextUserID)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.authService.Logout(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// ForgotPassword issues a reset ticket. The response is identical whether or
// not the email belongs to an account.
func (h *AuthHandlers) ForgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := h.authService.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "If email exists, a reset link has been sent"})
}

// ResetPassword consumes a reset ticket and sets a new password.
func (h *AuthHandlers) ResetPassword(c *gin.Context) {
	var req struct {
		Token       string `json:"token" binding:"required"`
		NewPassword string `json:"new_password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := h.authService.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password reset successfully"})
}

// VerifyEmail consumes a verification ticket.
func (h *AuthHandlers) VerifyEmail(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := h.authService.VerifyEmail(c.Request.Context(), token); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Email verified successfully"})
}

// Me returns the authenticated user's profile.
func (h *AuthHandlers) Me(c *gin.Context) {
	userID := c.GetString(ContextUserID)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	user, err := h.authService.User(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toUserResponse(user))
}
