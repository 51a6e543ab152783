package middleware

import (
	"lifeline/utils"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	OperatorIDKey   = "operatorID"
	OperatorRoleKey = "operatorRole"
)

// AdminGuard protects triage mutations and the triage socket with an
// operator token. A nil JWT service disables the guard.
type AdminGuard struct {
	jwtService *utils.JWTService
}

func NewAdminGuard(jwtService *utils.JWTService) *AdminGuard {
	if jwtService == nil {
		logrus.Warn("ADMIN_JWT_SECRET not set, triage endpoints are open")
	}
	return &AdminGuard{jwtService: jwtService}
}

func (ag *AdminGuard) Enabled() bool {
	return ag != nil && ag.jwtService != nil
}

func (ag *AdminGuard) RequireOperator() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !ag.Enabled() {
			c.Next()
			return
		}

		token := extractToken(c)
		if token == "" {
			utils.UnauthorizedResponse(c, "Operator token required")
			c.Abort()
			return
		}

		claims, err := ag.jwtService.ValidateToken(token)
		if err != nil {
			logrus.WithField("path", c.Request.URL.Path).Warnf("Rejected operator token: %v", err)
			utils.UnauthorizedResponse(c, "Invalid or expired token")
			c.Abort()
			return
		}
		if !claims.CanTriage() {
			utils.ForbiddenResponse(c, "Operator role required")
			c.Abort()
			return
		}

		c.Set(OperatorIDKey, claims.UserID)
		c.Set(OperatorRoleKey, claims.Role)
		c.Next()
	}
}

// extractToken reads a bearer token, falling back to the token query
// parameter that browsers must use for websocket upgrades.
func extractToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	return c.Query("token")
}

// GetOperatorID returns the authenticated operator, if any.
func GetOperatorID(c *gin.Context) string {
	return c.GetString(OperatorIDKey)
}
