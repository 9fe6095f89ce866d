package identity

import "github.com/avolkov/studytrack/internal/domain"

// AuthResult is returned by SignIn, SignUp and Refresh operations.
type AuthResult struct {
	AccessToken  string
	RefreshToken string // raw token, NOT hash
	User         *domain.User
}
