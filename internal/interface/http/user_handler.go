package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/devlaunch/launchpage-api/internal/application"
	"github.com/devlaunch/launchpage-api/internal/domain/entity"
	"github.com/devlaunch/launchpage-api/internal/domain/repository"
	"github.com/devlaunch/launchpage-api/internal/interface/middleware"
	"github.com/devlaunch/launchpage-api/pkg/response"
	"github.com/devlaunch/launchpage-api/pkg/validation"
)

// maxAvatarSize caps multipart avatar uploads at 5 MiB.
const maxAvatarSize = 5 << 20

type UserHandler struct {
	Svc    *application.Service
	Logger *logrus.Logger
}

func NewUserHandler(svc *application.Service, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
	Name     string `json:"name" binding:"required,min=1,max=100"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type updateProfileRequest struct {
	Name      *string `json:"name" binding:"omitempty,min=1,max=100"`
	Bio       *string `json:"bio" binding:"omitempty,max=500"`
	AvatarURL *string `json:"avatar_url" binding:"omitempty,url"`
}

// userJSON projects a user for API responses; the password hash is
// never part of the projection.
func userJSON(u *entity.User) gin.H {
	return gin.H{
		"id":             u.ID,
		"email":          u.Email,
		"name":           u.Name,
		"bio":            u.Bio,
		"avatar_url":     u.AvatarURL,
		"email_verified": u.EmailVerified,
		"created_at":     u.CreatedAt,
		"updated_at":     u.UpdatedAt,
	}
}

// Register POST /api/auth/register
func (h *UserHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid payload", validation.ToDetails(err))
		return
	}

	res, err := h.Svc.Register(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		if errors.Is(err, application.ErrEmailTaken) {
			response.Error[any](c, http.StatusConflict, "USER_EXISTS", "user with this email already exists", nil)
			return
		}
		h.Logger.WithError(err).Error("registration failed")
		response.Error[any](c, http.StatusInternalServerError, "REGISTRATION_FAILED", "failed to register user", nil)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"user":       userJSON(res.User),
		"token":      res.Token,
		"expires_at": res.ExpiresAt,
	}, "user registered successfully")
}

// Login POST /api/auth/login
func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid payload", validation.ToDetails(err))
		return
	}

	res, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, application.ErrInvalidCredentials) {
			response.Error[any](c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid email or password", nil)
			return
		}
		h.Logger.WithError(err).Error("login failed")
		response.Error[any](c, http.StatusInternalServerError, "LOGIN_FAILED", "failed to login", nil)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"user":       userJSON(res.User),
		"token":      res.Token,
		"expires_at": res.ExpiresAt,
	}, "login successful")
}

// Me GET /api/auth/me
func (h *UserHandler) Me(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	u, err := h.Svc.GetByID(c.Request.Context(), uid)
	if err != nil {
		if errors.Is(err, application.ErrUserNotFound) {
			response.Error[any](c, http.StatusNotFound, "USER_NOT_FOUND", "user not found", nil)
			return
		}
		h.Logger.WithError(err).WithField("user_id", uid).Error("fetch user failed")
		response.Error[any](c, http.StatusInternalServerError, "FETCH_USER_FAILED", "failed to fetch user", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": userJSON(u)}, "profile")
}

// UpdateProfile PUT /api/auth/profile
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid payload", validation.ToDetails(err))
		return
	}

	u, err := h.Svc.UpdateProfile(c.Request.Context(), uid, repository.ProfilePatch{
		Name:      req.Name,
		Bio:       req.Bio,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		switch {
		case errors.Is(err, application.ErrNoFieldsToUpdate):
			response.Error[any](c, http.StatusBadRequest, "NO_FIELDS_TO_UPDATE", "no fields to update", nil)
		case errors.Is(err, application.ErrUserNotFound):
			response.Error[any](c, http.StatusNotFound, "USER_NOT_FOUND", "user not found", nil)
		default:
			h.Logger.WithError(err).WithField("user_id", uid).Error("update profile failed")
			response.Error[any](c, http.StatusInternalServerError, "UPDATE_PROFILE_FAILED", "failed to update profile", nil)
		}
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": userJSON(u)}, "profile updated successfully")
}

// UploadAvatar POST /api/auth/profile/avatar (multipart field "avatar")
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)

	fh, err := c.FormFile("avatar")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "VALIDATION_ERROR", "avatar file is required", nil)
		return
	}
	if fh.Size > maxAvatarSize {
		response.Error[any](c, http.StatusBadRequest, "VALIDATION_ERROR", "avatar file too large", nil)
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "VALIDATION_ERROR", "could not read avatar file", nil)
		return
	}
	defer func() { _ = f.Close() }()

	u, err := h.Svc.UploadAvatar(c.Request.Context(), uid, f, fh.Filename, fh.Header.Get("Content-Type"))
	if err != nil {
		if errors.Is(err, application.ErrUserNotFound) {
			response.Error[any](c, http.StatusNotFound, "USER_NOT_FOUND", "user not found", nil)
			return
		}
		h.Logger.WithError(err).WithField("user_id", uid).Error("avatar upload failed")
		response.Error[any](c, http.StatusInternalServerError, "AVATAR_UPLOAD_FAILED", "failed to upload avatar", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": userJSON(u)}, "avatar uploaded")
}
