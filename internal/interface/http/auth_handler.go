package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/devlaunch/launchpage-api/internal/application"
	"github.com/devlaunch/launchpage-api/pkg/response"
	"github.com/devlaunch/launchpage-api/pkg/validation"
)

// forgotPasswordMessage is returned for every forgot-password request,
// existing account or not, so responses cannot be used to enumerate
// registered emails.
const forgotPasswordMessage = "if an account exists with this email, a password reset link has been sent"

type AuthHandler struct {
	Svc    *application.Service
	Logger *logrus.Logger
}

func NewAuthHandler(svc *application.Service, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger}
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type resetPasswordRequest struct {
	Token       string `json:"token" binding:"required,len=64,hexadecimal"`
	NewPassword string `json:"new_password" binding:"required,pwd"`
}

type verifyEmailRequest struct {
	Token string `json:"token" binding:"required"`
}

// ForgotPassword POST /api/auth/forgot-password
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid payload", validation.ToDetails(err))
		return
	}

	h.Svc.ForgotPassword(c.Request.Context(), req.Email)

	response.Success[any](c, http.StatusOK, nil, forgotPasswordMessage)
}

// ResetPassword POST /api/auth/reset-password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid payload", validation.ToDetails(err))
		return
	}

	if err := h.Svc.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		if errors.Is(err, application.ErrInvalidResetToken) {
			response.Error[any](c, http.StatusBadRequest, "INVALID_RESET_TOKEN", "invalid or expired reset token", nil)
			return
		}
		h.Logger.WithError(err).Error("password reset failed")
		response.Error[any](c, http.StatusInternalServerError, "RESET_PASSWORD_FAILED", "failed to reset password", nil)
		return
	}

	response.Success[any](c, http.StatusOK, nil, "password reset successfully")
}

// VerifyEmail POST /api/auth/verify-email
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req verifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid payload", validation.ToDetails(err))
		return
	}

	if err := h.Svc.VerifyEmail(c.Request.Context(), req.Token); err != nil {
		if errors.Is(err, application.ErrInvalidVerifyToken) {
			response.Error[any](c, http.StatusBadRequest, "INVALID_VERIFICATION_TOKEN", "invalid or expired verification token", nil)
			return
		}
		h.Logger.WithError(err).Error("email verification failed")
		response.Error[any](c, http.StatusInternalServerError, "VERIFY_EMAIL_FAILED", "failed to verify email", nil)
		return
	}

	response.Success[any](c, http.StatusOK, gin.H{"verified": true}, "email verified")
}
