package email

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

const (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

// SendGrid sends mail through the SendGrid v3 API.
type SendGrid struct {
	key  string
	from *sgmail.Email
}

// NewSendGrid creates a SendGrid sender.
func NewSendGrid(apiKey, fromName, fromAddress string) *SendGrid {
	return &SendGrid{
		key:  apiKey,
		from: sgmail.NewEmail(fromName, fromAddress),
	}
}

func (s *SendGrid) SendPasswordReset(ctx context.Context, to, resetURL string) error {
	p := sgmail.NewPersonalization()
	p.Subject = "Reset your password"
	p.AddTos(sgmail.NewEmail("", to))

	m := sgmail.NewV3Mail()
	m.SetFrom(s.from)
	m.AddPersonalizations(p)
	m.AddContent(
		sgmail.NewContent("text/plain",
			"We received a request to reset your password.\n\n"+
				"Open this link to choose a new one:\n"+resetURL+"\n\n"+
				"If you did not request a reset, you can ignore this mail."),
	)

	req := sendgrid.GetRequest(s.key, sendgridEndpoint, sendgridHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(m)

	res, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("sendgrid request: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid request: status %d: %s", res.StatusCode, res.Body)
	}
	return nil
}
