package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"smartrfq/desk/internal/auth"
	"smartrfq/desk/internal/services"
)

const (
	// ContextKeyUserID holds the key for user ID in Gin context.
	ContextKeyUserID = "userID"
	// ContextKeyOrgID holds the key for the organization ID in Gin context.
	ContextKeyOrgID = "orgID"
	// ContextKeyToken holds the bearer token forwarded to the RFQ backend.
	ContextKeyToken = "token"
)

// fallbackOrgHeader is accepted from older dashboard builds.
const fallbackOrgHeader = "X-Organization-Id"

// AuthMiddleware verifies the identity token and resolves the organization
// from orgHeader, the legacy header, or the token claims, in that order.
func AuthMiddleware(verifier auth.IIdentityVerifier, orgHeader string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer {token}"})
			return
		}

		tokenString := parts[1]
		claims, err := verifier.Verify(tokenString)
		if err != nil {
			errMsg := fmt.Sprintf("Invalid or expired token: %v", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errMsg})
			return
		}

		orgID := c.GetHeader(orgHeader)
		if orgID == "" {
			orgID = c.GetHeader(fallbackOrgHeader)
		}
		if orgID == "" {
			orgID = claims.OrgID
		}

		SetCaller(c, services.Caller{UserID: claims.UserID(), OrgID: orgID, Token: tokenString})
		c.Next()
	}
}

// SetCaller stores the authenticated caller in the Gin context.
func SetCaller(c *gin.Context, caller services.Caller) {
	c.Set(ContextKeyUserID, caller.UserID)
	c.Set(ContextKeyOrgID, caller.OrgID)
	c.Set(ContextKeyToken, caller.Token)
}

// CallerFrom returns the caller stored by AuthMiddleware. The zero Caller is
// returned for unauthenticated requests; its empty token makes every backend
// call fail with ErrNoToken.
func CallerFrom(c *gin.Context) services.Caller {
	return services.Caller{
		UserID: c.GetString(ContextKeyUserID),
		OrgID:  c.GetString(ContextKeyOrgID),
		Token:  c.GetString(ContextKeyToken),
	}
}
