package domain

import "fmt"

// GatewayErrorKind classifies identity gateway failures. The set is fixed;
// anything unrecognized collapses to GatewayOther.
type GatewayErrorKind string

const (
	GatewayInvalidCredentials  GatewayErrorKind = "invalid-credentials"
	GatewayAccountNotFound     GatewayErrorKind = "account-not-found"
	GatewayAccountDisabled     GatewayErrorKind = "account-disabled"
	GatewayEmailInUse          GatewayErrorKind = "email-in-use"
	GatewayWeakPassword        GatewayErrorKind = "weak-password"
	GatewayInvalidEmail        GatewayErrorKind = "invalid-email"
	GatewayOperationNotAllowed GatewayErrorKind = "operation-not-allowed"
	GatewayRateLimited         GatewayErrorKind = "rate-limited"
	GatewayNetwork             GatewayErrorKind = "network"
	GatewayOther               GatewayErrorKind = "other"
)

// gatewayMessages holds the fixed user-facing string for each kind.
var gatewayMessages = map[GatewayErrorKind]string{
	GatewayInvalidCredentials:  "Incorrect password. Please try again",
	GatewayAccountNotFound:     "No account found with this email address",
	GatewayAccountDisabled:     "This account has been disabled",
	GatewayEmailInUse:          "An account with this email already exists",
	GatewayWeakPassword:        "Password is too weak. Please choose a stronger password",
	GatewayInvalidEmail:        "Invalid email address",
	GatewayOperationNotAllowed: "Email/password accounts are not enabled",
	GatewayRateLimited:         "Too many requests. Please try again later",
	GatewayNetwork:             "Network error. Please check your connection",
	GatewayOther:               "Something went wrong. Please try again",
}

// GatewayError is a classified identity gateway failure. Err carries the
// underlying cause for logs; the user only ever sees UserMessage.
type GatewayError struct {
	Kind GatewayErrorKind
	Err  error
}

func (e *GatewayError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("gateway %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("gateway %s", e.Kind)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// UserMessage returns the fixed user-facing message for the error kind.
func (e *GatewayError) UserMessage() string {
	if msg, ok := gatewayMessages[e.Kind]; ok {
		return msg
	}
	return gatewayMessages[GatewayOther]
}

// NewGatewayError wraps err with a gateway classification.
func NewGatewayError(kind GatewayErrorKind, err error) *GatewayError {
	return &GatewayError{Kind: kind, Err: err}
}
