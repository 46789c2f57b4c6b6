package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/devlaunch/launchpage-api/internal/container"
	handlers "github.com/devlaunch/launchpage-api/internal/interface/http"
	"github.com/devlaunch/launchpage-api/internal/interface/middleware"
	"github.com/devlaunch/launchpage-api/pkg/helpers"
)

// AuthModule wires the account endpoints under /api/auth.
// Public: register, login, forgot-password, reset-password, verify-email.
// Protected (bearer token): me, profile, profile/avatar.
type AuthModule struct {
	Users *handlers.UserHandler
	Auth  *handlers.AuthHandler
	JWT   *helpers.JWTManager
}

func NewAuthModule(users *handlers.UserHandler, auth *handlers.AuthHandler, jwt *helpers.JWTManager) *AuthModule {
	return &AuthModule{Users: users, Auth: auth, JWT: jwt}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()

	registerLimiter := middleware.RateLimit(rdb, 10, time.Minute, middleware.KeyByIPAndPath(), nil)
	loginLimiter := middleware.RateLimit(rdb, 10, time.Minute, middleware.KeyByIPAndPath(), nil)
	// forgot-password is the most abusable endpoint; keep it tight
	forgotLimiter := middleware.RateLimit(rdb, 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	resetLimiter := middleware.RateLimit(rdb, 30, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.POST("/auth/register", registerLimiter, m.Users.Register)
	rg.POST("/auth/login", loginLimiter, m.Users.Login)
	rg.POST("/auth/forgot-password", forgotLimiter, m.Auth.ForgotPassword)
	rg.POST("/auth/reset-password", resetLimiter, m.Auth.ResetPassword)
	rg.POST("/auth/verify-email", resetLimiter, m.Auth.VerifyEmail)

	auth := rg.Group("/")
	auth.Use(middleware.JWTAuth(m.JWT))
	auth.Use(middleware.RateLimit(rdb, 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.GET("/auth/me", m.Users.Me)
		auth.PUT("/auth/profile", m.Users.UpdateProfile)
		auth.POST("/auth/profile/avatar", m.Users.UploadAvatar)
	}
}
