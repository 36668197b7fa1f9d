package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"weddingsite/internal/delivery/http/middleware"
	"weddingsite/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authCookie(rr *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == middleware.AuthCookieName {
			return c
		}
	}
	return nil
}

func TestAuthController_Login(t *testing.T) {
	admin := &domain.AdminUser{ID: "admin-1", Email: "admin@wedding.com", PasswordHash: "secret-hash"}

	tests := []struct {
		name       string
		body       string
		fakeErr    error
		wantStatus int
		wantFields []string
	}{
		{name: "success", body: `{"email":"admin@wedding.com","password":"pw"}`, wantStatus: http.StatusOK},
		{name: "missing fields", body: `{"email":" "}`, wantStatus: http.StatusBadRequest, wantFields: []string{"email", "password"}},
		{name: "bad credentials", body: `{"email":"admin@wedding.com","password":"nope"}`, fakeErr: domain.ErrUnauthorized, wantStatus: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeAuthService{token: "jwt-token", user: admin, err: tt.fakeErr}
			c := NewAuthController(testLogger, svc, 2*time.Hour, true)

			rr := serve("POST /api/auth/login", c.Login, httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(tt.body)))

			require.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())
			if tt.wantStatus != http.StatusOK {
				env := decodeData(t, rr, nil)
				for _, f := range tt.wantFields {
					assert.Contains(t, env.Error.Fields, f)
				}
				assert.Nil(t, authCookie(rr))
				return
			}
			var resp LoginResponse
			decodeData(t, rr, &resp)
			assert.Equal(t, "jwt-token", resp.Token)
			assert.Equal(t, "Bearer", resp.TokenType)
			assert.Equal(t, "admin-1", resp.User.ID)
			assert.Empty(t, resp.User.PasswordHash)

			cookie := authCookie(rr)
			require.NotNil(t, cookie)
			assert.Equal(t, "jwt-token", cookie.Value)
			assert.Equal(t, 7200, cookie.MaxAge)
			assert.True(t, cookie.HttpOnly)
			assert.True(t, cookie.Secure)
			assert.Equal(t, "/", cookie.Path)
		})
	}
}

func TestAuthController_Logout(t *testing.T) {
	c := NewAuthController(testLogger, &fakeAuthService{}, time.Hour, false)

	rr := serve("POST /api/auth/logout", c.Logout, httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil))

	require.Equal(t, http.StatusNoContent, rr.Code)
	cookie := authCookie(rr)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.Less(t, cookie.MaxAge, 0)
}

func TestAuthController_Me(t *testing.T) {
	svc := &fakeAuthService{user: &domain.AdminUser{ID: "admin-1", Email: "admin@wedding.com"}}
	c := NewAuthController(testLogger, svc, time.Hour, false)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req = req.WithContext(middleware.SetUserID(req.Context(), "admin-1"))
	rr := serve("GET /api/auth/me", c.Me, req)
	require.Equal(t, http.StatusOK, rr.Code)
	var u domain.AdminUser
	decodeData(t, rr, &u)
	assert.Equal(t, "admin@wedding.com", u.Email)

	rr = serve("GET /api/auth/me", c.Me, httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))
	require.Equal(t, http.StatusUnauthorized, rr.Code)

	svc.err = domain.ErrNotFound
	rr = serve("GET /api/auth/me", c.Me, req)
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAuthController_Verify(t *testing.T) {
	c := NewAuthController(testLogger, &fakeAuthService{}, time.Hour, false)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/verify", nil)
	req = req.WithContext(middleware.SetUserID(req.Context(), "admin-1"))
	rr := serve("GET /api/auth/verify", c.Verify, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp VerifyResponse
	decodeData(t, rr, &resp)
	assert.True(t, resp.Valid)
	assert.Equal(t, "admin-1", resp.UserID)

	rr = serve("GET /api/auth/verify", c.Verify, httptest.NewRequest(http.MethodGet, "/api/auth/verify", nil))
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}
