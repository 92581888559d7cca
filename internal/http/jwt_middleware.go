package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"royal-villa/internal/response"
	"royal-villa/internal/service"
)

const authClaimsKey = "auth_claims"

// JWTAuthMiddleware valida el Bearer token y guarda claims en el contexto.
func JWTAuthMiddleware(signer *service.TokenSigner) gin.HandlerFunc {
	return func(c *gin.Context) {
		if signer == nil {
			abortWith(c, response.Error(http.StatusInternalServerError, "Authentication not configured", nil))
			return
		}

		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			abortWith(c, response.Error(http.StatusUnauthorized, "Authorization required", []string{"missing bearer token"}))
			return
		}

		token := strings.TrimSpace(header[len("Bearer "):])
		claims, err := signer.Parse(token)
		if err != nil {
			msg := "Invalid token"
			if errors.Is(err, service.ErrTokenExpired) {
				msg = "Token expired"
			}
			abortWith(c, response.Error(http.StatusUnauthorized, msg, []string{err.Error()}))
			return
		}

		c.Set(authClaimsKey, claims)
		c.Next()
	}
}

// RequireRoles exige que el usuario autenticado tenga alguno de los roles.
// Debe ir despues de JWTAuthMiddleware.
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := GetAuthClaims(c)
		if !ok {
			abortWith(c, response.Error(http.StatusUnauthorized, "Authorization required", nil))
			return
		}
		for _, role := range roles {
			if strings.EqualFold(claims.Role, role) {
				c.Next()
				return
			}
		}
		abortWith(c, response.Error(http.StatusForbidden, "Forbidden", []string{fmt.Sprintf("role %q is not allowed", claims.Role)}))
	}
}

// GetAuthClaims obtiene claims de JWT desde el contexto.
func GetAuthClaims(c *gin.Context) (service.Claims, bool) {
	val, ok := c.Get(authClaimsKey)
	if !ok {
		return service.Claims{}, false
	}
	claims, ok := val.(service.Claims)
	return claims, ok
}
