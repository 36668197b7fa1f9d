package controllers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	h "weddingsite/internal/delivery/http/helpers"
	"weddingsite/internal/delivery/http/middleware"
	"weddingsite/internal/domain"
)

// LoginRequest is the request body for POST /api/auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate implements Validator.
func (l LoginRequest) Validate() map[string]string {
	errs := map[string]string{}
	if strings.TrimSpace(l.Email) == "" {
		errs["email"] = "is required"
	}
	if l.Password == "" {
		errs["password"] = "is required"
	}
	return errs
}

// LoginResponse is the response body for POST /api/auth/login
type LoginResponse struct {
	Token     string            `json:"token"`
	TokenType string            `json:"tokenType"`
	User      *domain.AdminUser `json:"user"`
}

// VerifyResponse is the response body for GET /api/auth/verify
type VerifyResponse struct {
	Valid  bool   `json:"valid"`
	UserID string `json:"userId"`
}

type AuthController struct {
	Logger       *slog.Logger
	Service      domain.AuthService
	TokenExpiry  time.Duration
	SecureCookie bool
}

func NewAuthController(logger *slog.Logger, svc domain.AuthService, tokenExpiry time.Duration, secureCookie bool) *AuthController {
	return &AuthController{
		Logger:       logger,
		Service:      svc,
		TokenExpiry:  tokenExpiry,
		SecureCookie: secureCookie,
	}
}

func (c *AuthController) setCookie(w http.ResponseWriter, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AuthCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

// Login godoc
// @Summary Log in
// @Description Authenticate an administrator. Returns a JWT and sets it as the HttpOnly authToken cookie.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Login credentials"
// @Success 200 {object} helpers.APIResponse "data contains token, tokenType and user"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/auth/login [post]
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	token, user, err := c.Service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	c.setCookie(w, token, int(c.TokenExpiry.Seconds()))
	h.WriteJSONSuccess(w, http.StatusOK, LoginResponse{Token: token, TokenType: "Bearer", User: user})
}

// Logout godoc
// @Summary Log out
// @Description Clears the authToken cookie. Bearer tokens stay valid until they expire.
// @Tags auth
// @Success 204 "No Content"
// @Router /api/auth/logout [post]
func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	c.setCookie(w, "", -1)
	w.WriteHeader(http.StatusNoContent)
}

// Me godoc
// @Summary Current administrator
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the admin user"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /api/auth/me [get]
func (c *AuthController) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	user, err := c.Service.GetByID(r.Context(), userID)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, user)
}

// Verify godoc
// @Summary Check a token
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data.valid is true"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /api/auth/verify [get]
func (c *AuthController) Verify(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, VerifyResponse{Valid: true, UserID: userID})
}
