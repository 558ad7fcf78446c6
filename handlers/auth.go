package handlers

import (
	"net/http"

	"github.com/coursehub/coursehub-api/internal/apperrors"
	"github.com/coursehub/coursehub-api/internal/auth"
	"github.com/coursehub/coursehub-api/internal/tokens"
	"github.com/coursehub/coursehub-api/pkg/middleware"
	"github.com/gin-gonic/gin"
)

type RegistrationRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ActivationRequest struct {
	ActivationToken string `json:"activation_token"`
	ActivationCode  string `json:"activation_code"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthHandler holds dependencies
type AuthHandler struct {
	svc     *auth.Service
	cookies tokens.CookiePolicy
	authn   *middleware.Authenticator
}

func NewAuthHandler(svc *auth.Service, cookies tokens.CookiePolicy, authn *middleware.Authenticator) *AuthHandler {
	return &AuthHandler{svc: svc, cookies: cookies, authn: authn}
}

// Register mounts the auth routes. limiter, when non-nil, guards the
// credential-handling endpoints.
func (h *AuthHandler) Register(rg *gin.RouterGroup, limiter gin.HandlerFunc) {
	rg.POST("/registration", chain(h.Registration, limiter)...)
	rg.POST("/activate-user", chain(h.ActivateUser, limiter)...)
	rg.POST("/login", chain(h.Login, limiter)...)
	rg.GET("/logout", h.authn.RequireAuth(), h.Logout)
	rg.GET("/refresh", h.Refresh)
	rg.GET("/me", h.authn.RequireAuth(), h.Me)
}

// Registration issues an activation token and mails the code.
func (h *AuthHandler) Registration(c *gin.Context) {
	var req RegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	tok, err := h.svc.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success":         true,
		"message":         "Please check your email: " + req.Email + " to activate your account!",
		"activationToken": tok,
	})
}

func (h *AuthHandler) ActivateUser(c *gin.Context) {
	var req ActivationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if _, err := h.svc.CompleteActivation(c.Request.Context(), req.ActivationToken, req.ActivationCode); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true})
}

// Login sets the session cookies and echoes the user and access token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperrors.ErrInvalidCredentials)
		return
	}
	u, pair, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	h.cookies.AttachSessionCookies(c.Writer, pair)
	c.JSON(http.StatusOK, gin.H{"success": true, "user": u.Snapshot(), "accessToken": pair.AccessToken})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		fail(c, apperrors.ErrUnauthenticated)
		return
	}
	refresh, _ := c.Cookie(tokens.RefreshCookie)
	if err := h.svc.Logout(c.Request.Context(), p.UserID, refresh); err != nil {
		fail(c, err)
		return
	}
	h.cookies.ClearSessionCookies(c.Writer)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out successfully"})
}

// Refresh spends the refresh cookie and sets a rotated pair.
func (h *AuthHandler) Refresh(c *gin.Context) {
	refresh, err := c.Cookie(tokens.RefreshCookie)
	if err != nil || refresh == "" {
		fail(c, apperrors.ErrInvalidOrExpiredToken)
		return
	}
	pair, _, err := h.svc.Refresh(c.Request.Context(), refresh)
	if err != nil {
		fail(c, err)
		return
	}
	h.cookies.AttachSessionCookies(c.Writer, pair)
	c.JSON(http.StatusOK, gin.H{"success": true, "accessToken": pair.AccessToken})
}

func (h *AuthHandler) Me(c *gin.Context) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		fail(c, apperrors.ErrUnauthenticated)
		return
	}
	u, err := h.svc.CurrentUser(c.Request.Context(), p.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": u})
}
