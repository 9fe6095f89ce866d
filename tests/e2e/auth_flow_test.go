//go:build e2e

package e2e_test

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSignUpSignInRoundTrip(t *testing.T) {
	ts := setupTestServer(t)

	_, _, email := ts.signUp(t)

	status, body := ts.doJSON(t, http.MethodPost, "/auth/signin", map[string]any{
		"email":    email,
		"password": "correct-horse-battery",
	}, "")
	require.Equal(t, http.StatusOK, status, "signin response: %v", body)
	require.NotEmpty(t, body["accessToken"])
	require.NotEmpty(t, body["refreshToken"])

	user, ok := body["user"].(map[string]any)
	require.True(t, ok, "expected user object, got: %v", body)
	require.Equal(t, email, user["email"])
}

func TestSignIn_WrongPassword(t *testing.T) {
	ts := setupTestServer(t)

	_, _, email := ts.signUp(t)

	status, body := ts.doJSON(t, http.MethodPost, "/auth/signin", map[string]any{
		"email":    email,
		"password": "not-the-password",
	}, "")
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, "invalid-credentials", body["error"])
	require.NotEmpty(t, body["message"])
}

func TestSignIn_EmptyPassword(t *testing.T) {
	ts := setupTestServer(t)

	_, _, email := ts.signUp(t)

	status, body := ts.doJSON(t, http.MethodPost, "/auth/signin", map[string]any{
		"email":    email,
		"password": "",
	}, "")
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "Password is required", body["error"])
}

func TestSignIn_UnknownAccount(t *testing.T) {
	ts := setupTestServer(t)

	status, body := ts.doJSON(t, http.MethodPost, "/auth/signin", map[string]any{
		"email":    "ghost@example.com",
		"password": "whatever-password",
	}, "")
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, "account-not-found", body["error"])
}

func TestSignUp_DuplicateEmail(t *testing.T) {
	ts := setupTestServer(t)

	_, _, email := ts.signUp(t)

	status, body := ts.doJSON(t, http.MethodPost, "/auth/signup", map[string]any{
		"displayName": "Copycat",
		"email":       email,
		"password":    "another-password",
	}, "")
	require.Equal(t, http.StatusConflict, status)
	require.Equal(t, "email-in-use", body["error"])
}

func TestRefresh_RotatesToken(t *testing.T) {
	ts := setupTestServer(t)

	_, refresh, _ := ts.signUp(t)

	status, body := ts.doJSON(t, http.MethodPost, "/auth/refresh", map[string]any{
		"refreshToken": refresh,
	}, "")
	require.Equal(t, http.StatusOK, status, "refresh response: %v", body)

	next, _ := body["refreshToken"].(string)
	require.NotEmpty(t, next)
	require.NotEqual(t, refresh, next)

	// The consumed token must be rejected on reuse.
	status, _ = ts.doJSON(t, http.MethodPost, "/auth/refresh", map[string]any{
		"refreshToken": refresh,
	}, "")
	require.Equal(t, http.StatusUnauthorized, status)

	// The rotated token still works.
	status, _ = ts.doJSON(t, http.MethodPost, "/auth/refresh", map[string]any{
		"refreshToken": next,
	}, "")
	require.Equal(t, http.StatusOK, status)
}

func TestSignOut_RevokesRefreshTokens(t *testing.T) {
	ts := setupTestServer(t)

	access, refresh, _ := ts.signUp(t)

	status, _ := ts.doJSON(t, http.MethodPost, "/auth/signout", nil, access)
	require.Equal(t, http.StatusOK, status)

	status, _ = ts.doJSON(t, http.MethodPost, "/auth/refresh", map[string]any{
		"refreshToken": refresh,
	}, "")
	require.Equal(t, http.StatusUnauthorized, status)
}

func TestPasswordReset_FullFlow(t *testing.T) {
	ts := setupTestServer(t)

	_, _, email := ts.signUp(t)

	status, _ := ts.doJSON(t, http.MethodPost, "/auth/password-reset", map[string]any{
		"email": email,
	}, "")
	require.Equal(t, http.StatusOK, status)

	mail := ts.Mail.last(t)
	require.Equal(t, email, mail.To)
	require.True(t, strings.Contains(mail.ResetURL, "token="), "reset URL: %s", mail.ResetURL)

	u, err := url.Parse(mail.ResetURL)
	require.NoError(t, err)
	rawToken := u.Query().Get("token")
	require.NotEmpty(t, rawToken)

	status, body := ts.doJSON(t, http.MethodPost, "/auth/password-reset/confirm", map[string]any{
		"token":       rawToken,
		"newPassword": "fresh-new-password",
	}, "")
	require.Equal(t, http.StatusOK, status, "confirm response: %v", body)

	// Old password no longer works, new one does.
	status, _ = ts.doJSON(t, http.MethodPost, "/auth/signin", map[string]any{
		"email":    email,
		"password": "correct-horse-battery",
	}, "")
	require.Equal(t, http.StatusUnauthorized, status)

	status, _ = ts.doJSON(t, http.MethodPost, "/auth/signin", map[string]any{
		"email":    email,
		"password": "fresh-new-password",
	}, "")
	require.Equal(t, http.StatusOK, status)

	// The reset token is single-use.
	status, _ = ts.doJSON(t, http.MethodPost, "/auth/password-reset/confirm", map[string]any{
		"token":       rawToken,
		"newPassword": "yet-another-password",
	}, "")
	require.Equal(t, http.StatusBadRequest, status)
}

func TestMe_ProfileAndDisplayName(t *testing.T) {
	ts := setupTestServer(t)

	access, _, email := ts.signUp(t)

	status, body := ts.doJSON(t, http.MethodGet, "/auth/me", nil, access)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, email, body["email"])

	status, body = ts.doJSON(t, http.MethodPut, "/auth/me/display-name", map[string]any{
		"displayName": "Night Owl",
	}, access)
	require.Equal(t, http.StatusOK, status, "update response: %v", body)
	require.Equal(t, "Night Owl", body["displayName"])
}

func TestProtectedEndpoints_RequireToken(t *testing.T) {
	ts := setupTestServer(t)

	status, _ := ts.doJSON(t, http.MethodGet, "/auth/me", nil, "")
	require.Equal(t, http.StatusUnauthorized, status)

	status, _ = ts.doJSON(t, http.MethodPost, "/subjects", map[string]any{"name": "Math"}, "")
	require.Equal(t, http.StatusUnauthorized, status)
}
