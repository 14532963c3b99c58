package http

import (
	"github.com/gin-gonic/gin"

	"github.com/emersonart/printshop/internal/domain/auth"
)

const authClaimsKey = "auth_claims"

func setClaims(c *gin.Context, claims auth.Claims) {
	c.Set(authClaimsKey, claims)
}

func getClaims(c *gin.Context) (auth.Claims, bool) {
	value, ok := c.Get(authClaimsKey)
	if !ok {
		return auth.Claims{}, false
	}
	claims, ok := value.(auth.Claims)
	return claims, ok
}

// requester names the authenticated subject for audit logs.
func requester(c *gin.Context) string {
	if claims, ok := getClaims(c); ok && claims.Subject != "" {
		return claims.Subject
	}
	return "anonymous"
}
