package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/salestrack/messenger-service/internal/application"
	"github.com/salestrack/messenger-service/internal/domain/entity"
	"github.com/salestrack/messenger-service/pkg/helpers"
	"github.com/salestrack/messenger-service/pkg/response"
)

// CtxPrincipalKey is the gin context key the auth middleware stores the
// caller's Principal under.
const CtxPrincipalKey = "principal"

// Auth validates the bearer token (Authorization header, falling back
// to the access_token cookie) and injects the caller's Principal.
func Auth(jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			response.Error(c, http.StatusUnauthorized, "missing access token", nil)
			c.Abort()
			return
		}
		claims, err := jwt.Parse(token)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "invalid access token", err.Error())
			c.Abort()
			return
		}
		c.Set(CtxPrincipalKey, application.Principal{
			Email: claims.Email,
			Role:  entity.Role(claims.Role),
		})
		c.Next()
	}
}

// RequireAdmin aborts with 403 unless the authenticated caller holds
// the ADMIN role. It must run after Auth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !PrincipalFrom(c).IsAdmin() {
			response.Error(c, http.StatusForbidden, "user not authorized", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

// PrincipalFrom returns the Principal stored by Auth, or the zero value
// when the request was not authenticated.
func PrincipalFrom(c *gin.Context) application.Principal {
	if v, ok := c.Get(CtxPrincipalKey); ok {
		if p, ok := v.(application.Principal); ok {
			return p
		}
	}
	return application.Principal{}
}

func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		if strings.HasPrefix(h, "Bearer ") {
			return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
		}
	}
	if t, err := c.Cookie("access_token"); err == nil {
		return t
	}
	return ""
}
