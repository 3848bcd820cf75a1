package api

import (
	"metagen/internal/auth"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	callerContextKey = "caller"
)

// AuthMiddleware 校验服务令牌及其权限范围，未配置密钥时直接放行
func (h *HTTPHandler) AuthMiddleware(scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.authManager == nil {
			c.Next()
			return
		}

		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, APIError{
				Code:    ErrCodeUnauthorized,
				Message: "missing authorization header",
			})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, APIError{
				Code:    ErrCodeUnauthorized,
				Message: "invalid authorization header format",
			})
			return
		}

		claims, err := h.authManager.ParseToken(strings.TrimSpace(parts[1]))
		if err != nil {
			logrus.WithError(err).Warn("failed to parse service token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, APIError{
				Code:    ErrCodeSessionExpired,
				Message: "token is invalid or expired",
			})
			return
		}

		if !claims.HasScope(scope) {
			c.AbortWithStatusJSON(http.StatusForbidden, APIError{
				Code:    ErrCodeForbidden,
				Message: "token does not grant " + scope,
			})
			return
		}

		c.Set(callerContextKey, claims)
		c.Next()
	}
}

// CurrentCaller 从上下文获取调用方令牌
func CurrentCaller(c *gin.Context) *auth.Claims {
	value, exists := c.Get(callerContextKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*auth.Claims)
	if !ok {
		return nil
	}
	return claims
}
