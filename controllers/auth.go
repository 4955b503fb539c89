package controllers

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"

	"gitea.com/go-chi/session"
	"go.uber.org/zap"

	"github.com/blogem/expenseflow/authenticator"
	"github.com/blogem/expenseflow/models"
	"github.com/blogem/expenseflow/services"
)

const ssoStateKey = "sso_state"

// AuthController handles sign-up, sign-in and single sign-on
type AuthController struct {
	services *services.Services
	sso      authenticator.Provider
	logger   *zap.Logger
}

// NewAuthController creates a new auth controller
func NewAuthController(services *services.Services, sso authenticator.Provider, logger *zap.Logger) *AuthController {
	return &AuthController{
		services: services,
		sso:      sso,
		logger:   logger,
	}
}

// SSOEnabled reports whether single sign-on routes should be mounted
func (c *AuthController) SSOEnabled() bool {
	return c.sso != nil
}

// Register handles POST /api/auth/register
func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var form models.RegisterForm
	if err := decodeJSON(w, r, &form); err != nil {
		writeError(w, r, c.logger, err)
		return
	}

	result, err := c.services.Users.Register(r.Context(), &form)
	if err != nil {
		writeError(w, r, c.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// Login handles POST /api/auth/login
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var form models.LoginForm
	if err := decodeJSON(w, r, &form); err != nil {
		writeError(w, r, c.logger, err)
		return
	}

	result, err := c.services.Users.Login(r.Context(), &form)
	if err != nil {
		writeError(w, r, c.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Me handles GET /api/auth/me
func (c *AuthController) Me(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		writeError(w, r, c.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// SSOLogin initiates the authentication process with the identity provider
func (c *AuthController) SSOLogin(w http.ResponseWriter, r *http.Request) {
	// Generate random state
	state, err := generateRandomState()
	if err != nil {
		writeError(w, r, c.logger, err)
		return
	}

	// Save the state in the session to validate in callback
	sess := session.GetSession(r)
	if err := sess.Set(ssoStateKey, state); err != nil {
		writeError(w, r, c.logger, err)
		return
	}

	http.Redirect(w, r, c.sso.GetAuthURL(state), http.StatusTemporaryRedirect)
}

// SSOCallback handles the redirect back from the identity provider and
// signs in the existing user owning the verified email
func (c *AuthController) SSOCallback(w http.ResponseWriter, r *http.Request) {
	sess := session.GetSession(r)

	// Verify state
	storedState, _ := sess.Get(ssoStateKey).(string)
	if storedState == "" || r.URL.Query().Get("state") != storedState {
		writeError(w, r, c.logger, models.ValidationErrors{}.Add("state", "invalid or missing state parameter"))
		return
	}
	_ = sess.Delete(ssoStateKey)

	// Exchange the code for a token
	token, err := c.sso.ExchangeCode(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		c.logger.Warn("Failed to exchange authorization code", zap.Error(err))
		writeError(w, r, c.logger, fmt.Errorf("failed to exchange authorization code: %w", models.ErrUnauthorized))
		return
	}

	claims, err := c.sso.GetClaims(r.Context(), token)
	if err != nil {
		c.logger.Warn("Failed to verify ID token", zap.Error(err))
		writeError(w, r, c.logger, fmt.Errorf("failed to verify ID token: %w", models.ErrUnauthorized))
		return
	}

	result, err := c.services.Users.SSOLogin(r.Context(), claims.Email())
	if err != nil {
		writeError(w, r, c.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// generateRandomState generates a random state value for CSRF protection
func generateRandomState() (string, error) {
	b := make([]byte, 32)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
