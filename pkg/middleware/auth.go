package middleware

import (
	"context"
	"net/http"

	"github.com/coursehub/coursehub-api/internal/apperrors"
	"github.com/coursehub/coursehub-api/internal/models"
	"github.com/coursehub/coursehub-api/internal/tokens"
	"github.com/coursehub/coursehub-api/pkg/logger"
	"github.com/gin-gonic/gin"
)

const principalKey = "principal"

// Principal is the authenticated identity attached to a request.
type Principal struct {
	UserID string
	Role   string
	User   *models.User
}

// AccessVerifier verifies a raw access token.
type AccessVerifier interface {
	ParseAccessToken(raw string) (*tokens.SessionClaims, error)
}

// SessionLookup returns the cached session snapshot, nil when the user has
// logged out.
type SessionLookup interface {
	Session(ctx context.Context, userID string) (*models.User, error)
}

type SessionLookupFunc func(ctx context.Context, userID string) (*models.User, error)

func (f SessionLookupFunc) Session(ctx context.Context, userID string) (*models.User, error) {
	return f(ctx, userID)
}

type Authenticator struct {
	verifier AccessVerifier
	sessions SessionLookup
}

func NewAuthenticator(v AccessVerifier, s SessionLookup) *Authenticator {
	return &Authenticator{verifier: v, sessions: s}
}

// RequireAuth accepts a request only with a valid accessToken cookie whose
// session is still cached. The principal's role comes from the snapshot.
func (a *Authenticator) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(tokens.AccessCookie)
		if err != nil || raw == "" {
			abortWith(c, http.StatusUnauthorized, apperrors.ErrUnauthenticated.Error())
			return
		}
		claims, err := a.verifier.ParseAccessToken(raw)
		if err != nil {
			logger.Debugf("access token rejected: %v", err)
			abortWith(c, http.StatusUnauthorized, apperrors.ErrUnauthenticated.Error())
			return
		}
		u, err := a.sessions.Session(c.Request.Context(), claims.Subject)
		if err != nil {
			logger.Errorf("session lookup for %s failed: %v", claims.Subject, err)
			abortWith(c, http.StatusInternalServerError, "internal server error")
			return
		}
		if u == nil {
			abortWith(c, http.StatusUnauthorized, apperrors.ErrUnauthenticated.Error())
			return
		}
		c.Set(principalKey, &Principal{UserID: u.ID, Role: u.Role, User: u})
		c.Next()
	}
}

// AuthorizeRoles must run after RequireAuth. At least one role is required.
func AuthorizeRoles(role string, more ...string) gin.HandlerFunc {
	allowed := map[string]struct{}{role: {}}
	for _, r := range more {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		p, ok := PrincipalFrom(c)
		if !ok {
			abortWith(c, http.StatusUnauthorized, apperrors.ErrUnauthenticated.Error())
			return
		}
		if _, ok := allowed[p.Role]; !ok {
			abortWith(c, http.StatusForbidden, "Role: "+p.Role+" is not allowed to access this resource")
			return
		}
		c.Next()
	}
}

// PrincipalFrom returns the principal set by RequireAuth.
func PrincipalFrom(c *gin.Context) (*Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil, false
	}
	p, ok := v.(*Principal)
	return p, ok && p != nil
}

func abortWith(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": msg})
}
