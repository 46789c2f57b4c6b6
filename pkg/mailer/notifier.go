package mailer

import (
	"context"
	"errors"

	"github.com/devlaunch/launchpage-api/pkg/helpers"
)

var errNoPublisher = errors.New("rabbitmq publisher not configured")

// QueueNotifier enqueues notification emails on RabbitMQ for the email
// worker to deliver. Publishing is the only responsibility here;
// delivery failures are the worker's problem.
type QueueNotifier struct {
	Pub              *helpers.RabbitPublisher
	AppName          string
	VerifyEmailURL   string
	ResetPasswordURL string
}

func NewQueueNotifier(pub *helpers.RabbitPublisher, appName, verifyURL, resetURL string) *QueueNotifier {
	return &QueueNotifier{
		Pub:              pub,
		AppName:          appName,
		VerifyEmailURL:   verifyURL,
		ResetPasswordURL: resetURL,
	}
}

func (n *QueueNotifier) SendVerification(ctx context.Context, email, name, token string) error {
	if n.Pub == nil {
		return errNoPublisher
	}
	job := EmailJob{
		To:       email,
		Template: TemplateVerifyEmail,
		Data: map[string]any{
			"Name":      name,
			"AppName":   n.AppName,
			"VerifyURL": n.VerifyEmailURL + "?token=" + token,
		},
	}
	return n.Pub.PublishJSON(ctx, job)
}

func (n *QueueNotifier) SendPasswordReset(ctx context.Context, email, name, token string) error {
	if n.Pub == nil {
		return errNoPublisher
	}
	job := EmailJob{
		To:       email,
		Template: TemplateResetPassword,
		Data: map[string]any{
			"Name":     name,
			"AppName":  n.AppName,
			"ResetURL": n.ResetPasswordURL + "?token=" + token,
		},
	}
	return n.Pub.PublishJSON(ctx, job)
}
