package rbac

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const claimsKey = "rbac.claims"

// ErrInactiveUser is returned by Authorizer.CurrentRole for deleted or
// deactivated accounts.
var ErrInactiveUser = errors.New("user is inactive or deleted")

// Authorizer answers permission and entitlement questions.
type Authorizer interface {
	CurrentRole(ctx context.Context, userID uint) (roleID uint, role string, err error)
	RoleHasPermission(ctx context.Context, roleID uint, permission string) (bool, error)
	UserHasModule(ctx context.Context, userID uint, module string) (bool, error)
}

// Guard builds gin middleware around a token issuer and an authorizer.
type Guard struct {
	tokens *TokenIssuer
	authz  Authorizer
	log    *slog.Logger
}

func NewGuard(tokens *TokenIssuer, authz Authorizer, log *slog.Logger) *Guard {
	return &Guard{tokens: tokens, authz: authz, log: log}
}

// Authenticate rejects requests without a valid bearer token. The role in
// the token is replaced by the user's stored role, so role changes and
// deactivation apply to tokens already issued.
func (g *Guard) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		claims, err := g.tokens.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		roleID, role, err := g.authz.CurrentRole(c.Request.Context(), claims.UserID)
		if errors.Is(err, ErrInactiveUser) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "account is disabled"})
			return
		}
		if err != nil {
			g.log.Error("Role lookup failed", "user_id", claims.UserID, "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		claims.RoleID, claims.Role = roleID, role
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// RequirePermission must run after Authenticate.
func (g *Guard) RequirePermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := ClaimsFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
			return
		}
		allowed, err := g.authz.RoleHasPermission(c.Request.Context(), claims.RoleID, permission)
		if err != nil {
			g.log.Error("Permission lookup failed", "permission", permission, "role_id", claims.RoleID, "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "missing permission " + permission})
			return
		}
		c.Next()
	}
}

// RequireModule checks that the caller's pack includes the module.
func (g *Guard) RequireModule(module string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := ClaimsFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
			return
		}
		entitled, err := g.authz.UserHasModule(c.Request.Context(), claims.UserID, module)
		if err != nil {
			g.log.Error("Entitlement lookup failed", "module", module, "user_id", claims.UserID, "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		if !entitled {
			c.AbortWithStatusJSON(http.StatusPaymentRequired, gin.H{"error": "your plan does not include " + module})
			return
		}
		c.Next()
	}
}

// ClaimsFrom returns the claims stored by Authenticate.
func ClaimsFrom(c *gin.Context) (*Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*Claims)
	return claims, ok
}

// WithClaims stores claims on the context; used by tests of downstream handlers.
func WithClaims(c *gin.Context, claims *Claims) {
	c.Set(claimsKey, claims)
}
