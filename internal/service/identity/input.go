package identity

import (
	"github.com/avolkov/studytrack/internal/domain"
)

// SignInInput holds parameters for the sign-in operation.
type SignInInput struct {
	Email    string
	Password string
}

// Validate checks that both fields are present.
func (i SignInInput) Validate() error {
	var errs []domain.FieldError

	if i.Email == "" {
		errs = append(errs, domain.FieldError{Field: "email", Message: "required"})
	}
	if i.Password == "" {
		errs = append(errs, domain.FieldError{Field: "password", Message: "required"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// SignUpInput holds parameters for the sign-up operation.
type SignUpInput struct {
	DisplayName string
	Email       string
	Password    string
}

// Validate checks that all fields are present.
func (i SignUpInput) Validate() error {
	var errs []domain.FieldError

	if i.DisplayName == "" {
		errs = append(errs, domain.FieldError{Field: "display_name", Message: "required"})
	} else if len(i.DisplayName) > 120 {
		errs = append(errs, domain.FieldError{Field: "display_name", Message: "too long"})
	}
	if i.Email == "" {
		errs = append(errs, domain.FieldError{Field: "email", Message: "required"})
	}
	if i.Password == "" {
		errs = append(errs, domain.FieldError{Field: "password", Message: "required"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// RefreshInput holds parameters for the token refresh operation.
type RefreshInput struct {
	RefreshToken string
}

// Validate validates the refresh input.
func (i RefreshInput) Validate() error {
	var errs []domain.FieldError

	if i.RefreshToken == "" {
		errs = append(errs, domain.FieldError{Field: "refresh_token", Message: "required"})
	} else if len(i.RefreshToken) > 512 {
		errs = append(errs, domain.FieldError{Field: "refresh_token", Message: "too long"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// ResetPasswordInput holds parameters for completing a password reset.
type ResetPasswordInput struct {
	Token       string
	NewPassword string
}

// Validate validates the reset input.
func (i ResetPasswordInput) Validate() error {
	var errs []domain.FieldError

	if i.Token == "" {
		errs = append(errs, domain.FieldError{Field: "token", Message: "required"})
	} else if len(i.Token) > 512 {
		errs = append(errs, domain.FieldError{Field: "token", Message: "too long"})
	}
	if i.NewPassword == "" {
		errs = append(errs, domain.FieldError{Field: "new_password", Message: "required"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}
