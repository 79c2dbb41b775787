package handler

import (
	"errors"
	"net/http"

	"ajnabi/config"
	"ajnabi/internal/auth"
	"ajnabi/internal/repository"
	"ajnabi/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	cfg      *config.Config
	otpSvc   *service.OTPService
	accounts *repository.AccountRepository
}

func NewAuthHandler(cfg *config.Config, otpSvc *service.OTPService, accounts *repository.AccountRepository) *AuthHandler {
	return &AuthHandler{cfg: cfg, otpSvc: otpSvc, accounts: accounts}
}

// SendOTP issues a verification code for a phone number.
func (h *AuthHandler) SendOTP(c *gin.Context) {
	var req struct {
		Phone string `json:"phone" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "phone required"})
		return
	}
	if err := h.otpSvc.SendOTP(req.Phone); err != nil {
		if errors.Is(err, service.ErrInvalidPhone) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not send code"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "sent"})
}

// VerifyOTP exchanges phone+code for a token pair, creating the account on
// first login.
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req struct {
		Phone string `json:"phone" binding:"required"`
		Code  string `json:"code" binding:"required,len=6"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "phone and 6-digit code required"})
		return
	}
	acct, access, refresh, err := h.otpSvc.VerifyOTP(req.Phone, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPhone),
			errors.Is(err, service.ErrInvalidCode),
			errors.Is(err, service.ErrCodeExpired),
			errors.Is(err, service.ErrTooManyAttempts):
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "verification failed"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"account":       acct,
		"access_token":  access,
		"refresh_token": refresh,
	})
}

// Refresh exchanges a refresh token for a new access token.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "refresh_token required"})
		return
	}
	accountID, err := auth.ParseRefreshToken(&h.cfg.JWT, req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
		return
	}
	acct, err := h.accounts.GetByID(accountID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "account not found"})
		return
	}
	access, err := auth.GenerateAccessToken(&h.cfg.JWT, accountID, acct.Phone)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": access})
}
