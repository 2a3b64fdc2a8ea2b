package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sitefund/backend/internal/infrastructure/auth"
	"github.com/sitefund/backend/internal/interfaces/http/dto"
)

// Context keys set by the JWT middleware
const (
	JWTClaimsKey   = "jwt_claims"
	JWTUserIDKey   = "jwt_user_id"
	JWTTenantIDKey = "jwt_tenant_id"
	JWTRoleKey     = "jwt_role"
	JWTNameKey     = "jwt_name"
)

// JWTMiddlewareConfig configures the JWT authentication middleware
type JWTMiddlewareConfig struct {
	JWTService *auth.JWTService
	// Blacklist is optional; when nil revoked tokens are not checked
	Blacklist auth.TokenBlacklist
	// SkipPaths are exact paths that bypass authentication
	SkipPaths []string
	// SkipPathPrefixes are path prefixes that bypass authentication
	SkipPathPrefixes []string
	Logger           *zap.Logger
}

// JWTAuth returns a middleware that validates Bearer tokens and stores the
// parsed claims in the request context. Every authenticated request is bound
// to the single tenant carried in its token.
func JWTAuth(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if _, ok := skip[path]; ok {
			c.Next()
			return
		}
		for _, prefix := range cfg.SkipPathPrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		tokenString, err := extractBearerToken(c)
		if err != nil {
			abortUnauthorized(c, "Missing or malformed Authorization header")
			return
		}

		claims, err := cfg.JWTService.ValidateToken(tokenString)
		if err != nil {
			logger.Debug("token validation failed",
				zap.String("path", path),
				zap.Error(err))
			switch {
			case errors.Is(err, auth.ErrExpiredToken):
				abortUnauthorized(c, "Token has expired")
			case errors.Is(err, auth.ErrTokenNotYetValid):
				abortUnauthorized(c, "Token is not valid yet")
			default:
				abortUnauthorized(c, "Invalid token")
			}
			return
		}

		if cfg.Blacklist != nil && claims.ID != "" {
			revoked, err := cfg.Blacklist.IsBlacklisted(c.Request.Context(), claims.ID)
			if err != nil {
				// Blacklist lookup failures reject rather than admit: a
				// revoked admin token must not regain access because Redis
				// blipped.
				logger.Error("token blacklist check failed", zap.Error(err))
				abortUnauthorized(c, "Could not verify token")
				return
			}
			if revoked {
				abortUnauthorized(c, "Token has been revoked")
				return
			}
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(JWTUserIDKey, claims.UserID)
		c.Set(JWTTenantIDKey, claims.TenantID)
		c.Set(JWTRoleKey, claims.Role)
		c.Set(JWTNameKey, claims.Name)
		c.Next()
	}
}

// RequireAdmin rejects requests whose token does not carry the admin role.
// It must run after JWTAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := GetClaims(c)
		if !ok {
			abortUnauthorized(c, "Authentication required")
			return
		}
		if !claims.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden,
				dto.NewErrorResponse(dto.ErrCodeForbidden, "Admin role required"))
			return
		}
		c.Next()
	}
}

// GetClaims returns the parsed token claims from the request context
func GetClaims(c *gin.Context) (*auth.Claims, bool) {
	value, exists := c.Get(JWTClaimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*auth.Claims)
	return claims, ok
}

// GetTenantID returns the authenticated tenant ID from the request context
func GetTenantID(c *gin.Context) (uuid.UUID, bool) {
	claims, ok := GetClaims(c)
	if !ok {
		return uuid.Nil, false
	}
	id, err := claims.GetTenantUUID()
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// GetUserID returns the authenticated user ID from the request context
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	claims, ok := GetClaims(c)
	if !ok {
		return uuid.Nil, false
	}
	id, err := claims.GetUserUUID()
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func extractBearerToken(c *gin.Context) (string, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", auth.ErrInvalidToken
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", auth.ErrInvalidToken
	}
	return parts[1], nil
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponse(dto.ErrCodeUnauthorized, message))
}
