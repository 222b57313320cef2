package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/contact-log-api/internal/models"
	appErrors "github.com/noah-isme/contact-log-api/pkg/errors"
)

type fakeAuthSrv struct {
	login       models.LoginRequest
	logoutUser  string
	logoutToken string
	err         error
}

func (f *fakeAuthSrv) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	f.login = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.LoginResponse{AccessToken: "access", RefreshToken: "refresh"}, nil
}

func (f *fakeAuthSrv) RefreshToken(ctx context.Context, req models.RefreshTokenRequest) (*models.RefreshTokenResponse, error) {
	return &models.RefreshTokenResponse{AccessToken: "access-2"}, f.err
}

func (f *fakeAuthSrv) Logout(ctx context.Context, refreshToken, userID string, meta models.LoginRequest) error {
	f.logoutUser = userID
	f.logoutToken = refreshToken
	return f.err
}

func TestAuthHandlerLogin(t *testing.T) {
	srv := &fakeAuthSrv{}
	c, rec := newTestContext(http.MethodPost, "/auth/login", nil)
	c.Request.Body = jsonBody(`{"email":"s@example.com","password":"pw"}`)
	c.Request.Header.Set("User-Agent", "test-agent")

	NewAuthHandler(srv).Login(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"access_token":"access"`)
	assert.Equal(t, "s@example.com", srv.login.Email)
	assert.Equal(t, "test-agent", srv.login.UserAgent)
}

func TestAuthHandlerLoginInvalidCredentials(t *testing.T) {
	c, rec := newTestContext(http.MethodPost, "/auth/login", nil)
	c.Request.Body = jsonBody(`{"email":"s@example.com","password":"bad"}`)

	NewAuthHandler(&fakeAuthSrv{err: appErrors.ErrInvalidCredentials}).Login(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthHandlerLogout(t *testing.T) {
	srv := &fakeAuthSrv{}
	handler := NewAuthHandler(srv)

	c, rec := newTestContext(http.MethodPost, "/auth/logout", nil)
	c.Request.Body = jsonBody(`{"refresh_token":"r"}`)
	handler.Logout(c)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	c, _ = newTestContext(http.MethodPost, "/auth/logout", studentClaims)
	c.Request.Body = jsonBody(`{"refresh_token":`)
	handler.Logout(c)
	assert.Equal(t, http.StatusBadRequest, c.Writer.Status())

	c, _ = newTestContext(http.MethodPost, "/auth/logout", studentClaims)
	c.Request.Body = jsonBody(`{"refresh_token":"r"}`)
	handler.Logout(c)
	assert.Equal(t, http.StatusNoContent, c.Writer.Status())
	assert.Equal(t, studentClaims.UserID, srv.logoutUser)
	assert.Equal(t, "r", srv.logoutToken)

	c, _ = newTestContext(http.MethodPost, "/auth/logout", studentClaims)
	handler.Logout(c)
	assert.Equal(t, http.StatusNoContent, c.Writer.Status())
	assert.Empty(t, srv.logoutToken)
}

func TestAuthHandlerMe(t *testing.T) {
	c, rec := newTestContext(http.MethodGet, "/auth/me", &models.JWTClaims{UserID: "u1", Email: "u@example.com", Role: models.RoleTeacher})

	NewAuthHandler(&fakeAuthSrv{}).Me(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"role":"TEACHER"`)
}
