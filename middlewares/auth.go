package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"storefront/utils"
)

const (
	CtxCustomerID = "customerID"
	CtxAdminID    = "adminID"
	CtxClaims     = "claims"
)

// AuthMiddleware admits customer tokens only and stores the customer id in the context.
func AuthMiddleware(tokens *utils.JWTManager) gin.HandlerFunc {
	return requireRole(tokens, utils.RoleCustomer, CtxCustomerID)
}

// AdminMiddleware admits admin tokens only.
func AdminMiddleware(tokens *utils.JWTManager) gin.HandlerFunc {
	return requireRole(tokens, utils.RoleAdmin, CtxAdminID)
}

func requireRole(tokens *utils.JWTManager, role, idKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			unauth(c, "Access denied. No token provided.")
			return
		}

		claims, err := tokens.ParseToken(strings.TrimSpace(strings.TrimPrefix(auth, "Bearer ")))
		if err != nil {
			unauth(c, "Invalid token.")
			return
		}
		if claims.Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions."})
			return
		}

		c.Set(idKey, claims.ID)
		c.Set(CtxClaims, claims)
		c.Next()
	}
}

func unauth(c *gin.Context, msg string) {
	c.Header("WWW-Authenticate", `Bearer error="invalid_token"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
}

// CustomerID returns the authenticated customer id, or 0.
func CustomerID(c *gin.Context) int64 {
	return c.GetInt64(CtxCustomerID)
}
