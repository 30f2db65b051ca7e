package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"tutorbook/notifications/config"
	"tutorbook/notifications/internal/api/handler"
	"tutorbook/notifications/internal/api/middleware"
	"tutorbook/notifications/internal/service"
	"tutorbook/notifications/pkg/response"
)

// maxBodyBytes 本服务只接收很小的 JSON 请求体
const maxBodyBytes = 64 << 10

// Setup 初始化并返回 Gin 路由引擎
// limiter 为 nil 时限流退化为进程内令牌桶
func Setup(cfg *config.Config, h *handler.Handler, authSvc service.AuthService, limiter middleware.WindowLimiter, logger *zap.Logger) *gin.Engine {
	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(maxBodyBytes))

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "接口不存在")
	})

	// ── 健康检查 / 指标 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 批量预约提醒：凭证在处理器内校验，以保证通知对象校验优先
		remind := middleware.RateLimit(limiter, cfg.Server.RateLimit, time.Minute)
		v1.GET("/reminders/appointments", remind, h.Reminder.SendAppointmentReminders)
		v1.GET("/notifications/appt", remind, h.Reminder.SendAppointmentReminders)

		auth := v1.Group("/auth")
		auth.Use(middleware.RateLimit(limiter, cfg.Server.RateLimit, time.Minute))
		auth.Use(middleware.CredentialAuth(authSvc))
		{
			auth.GET("/verify", h.Auth.Verify)
			auth.POST("/revoke", h.Auth.Revoke)
			auth.GET("/supervisor", middleware.SupervisorOnly(), h.Auth.Verify)
		}
	}

	return r
}
