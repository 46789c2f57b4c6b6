package router

import (
	"github.com/devlaunch/launchpage-api/internal/application"
	"github.com/devlaunch/launchpage-api/internal/container"
	pginfra "github.com/devlaunch/launchpage-api/internal/infrastructure/postgres"
	handlers "github.com/devlaunch/launchpage-api/internal/interface/http"
	"github.com/devlaunch/launchpage-api/internal/router/modules"
	"github.com/devlaunch/launchpage-api/pkg/mailer"
)

func buildAuthModule() *modules.AuthModule {
	cfg := container.GetConfig()
	logger := container.GetLogger()

	store := pginfra.NewStore(container.GetPGPool())
	notifier := mailer.NewQueueNotifier(
		container.GetRabbitPub(),
		cfg.AppName,
		cfg.VerifyEmailURL,
		cfg.ResetPasswordURL,
	)

	svc := application.NewService(
		store,
		container.GetJWT(),
		notifier,
		container.GetRedis(),
		container.GetGCS(),
		cfg.GCSBucket,
		logger,
		cfg.ResetTokenTTL,
		cfg.MailSendEnabled,
	)

	return modules.NewAuthModule(
		handlers.NewUserHandler(svc, logger),
		handlers.NewAuthHandler(svc, logger),
		container.GetJWT(),
	)
}

// InitModules initializes all application modules and registers them
// with the router registry. Called once during startup.
func InitModules(r *Registry) {
	r.Add(buildAuthModule())
	r.Add(modules.NewDebugModule())
}
