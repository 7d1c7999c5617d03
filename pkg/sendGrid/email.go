package sendGrid

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// EmailRequest is a transactional message. Order confirmations and password
// resets both go through it.
type EmailRequest struct {
	To          string
	Subject     string
	Content     string
	HTMLContent string
}

type EmailService interface {
	Send(ctx context.Context, req *EmailRequest) error
}

type emailService struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
}

func NewEmailService(apiKey string, fromEmail string, fromName string) EmailService {
	return &emailService{client: sendgrid.NewSendClient(apiKey), fromEmail: fromEmail, fromName: fromName}
}

// Send implements EmailService.
func (e *emailService) Send(ctx context.Context, req *EmailRequest) error {

	from := mail.NewEmail(e.fromName, e.fromEmail)
	to := mail.NewEmail("", req.To)

	message := mail.NewV3Mail()
	message.SetFrom(from)

	personalization := mail.NewPersonalization()
	personalization.AddTos(to)
	personalization.Subject = req.Subject
	message.AddPersonalizations(personalization)

	message.AddContent(mail.NewContent("text/plain", req.Content))

	if req.HTMLContent != "" {
		message.AddContent(mail.NewContent("text/html", req.HTMLContent))
	}

	response, err := e.client.SendWithContext(ctx, message)
	if err != nil {
		return err
	}

	if response.StatusCode >= 400 {
		return fmt.Errorf("failed to send email, status code: %d", response.StatusCode)
	}

	return nil
}
