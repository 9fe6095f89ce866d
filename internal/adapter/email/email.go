// Package email sends outbound mail. Two senders exist: SendGrid for real
// deployments and a console sender that only logs, for local development.
package email

import "context"

// Sender delivers transactional mail.
type Sender interface {
	// SendPasswordReset mails a password reset link to the address.
	SendPasswordReset(ctx context.Context, to, resetURL string) error
}
