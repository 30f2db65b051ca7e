package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"tutorbook/notifications/pkg/jwt"
	"tutorbook/notifications/pkg/response"
)

// 中间件写入上下文的键
const (
	ContextClaims = "claims"
	ContextEmail  = "email"
)

// BearerToken 从 Authorization: Bearer <token> 中提取凭证，缺失或格式不符时返回空串
func BearerToken(c *gin.Context) string {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// MustGetClaims 从 Gin 上下文中安全提取凭证声明。
// 中间件未注入时写入 401 响应，调用方应在 ok=false 时直接 return。
func MustGetClaims(c *gin.Context) (*jwt.Claims, bool) {
	v, exists := c.Get(ContextClaims)
	if !exists {
		response.Unauthorized(c, "未认证")
		return nil, false
	}
	claims, ok := v.(*jwt.Claims)
	if !ok || claims == nil {
		response.Unauthorized(c, "未认证")
		return nil, false
	}
	return claims, true
}
