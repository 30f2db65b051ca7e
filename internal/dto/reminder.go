package dto

import (
	"tutorbook/notifications/internal/model"
	"tutorbook/notifications/internal/notify"
)

// ── 批量预约提醒 ──

// BulkReminderRequest 督导手动触发的预约提醒，参数来自查询串
type BulkReminderRequest struct {
	Tutor    bool   `form:"tutor"`    // 通知导师（toUser）
	Pupil    bool   `form:"pupil"`    // 通知学生（fromUser）
	Token    string `form:"token"`    // 督导身份凭证，缺省时读取 Authorization 头
	Location string `form:"location"` // 地点 ID
	Day      string `form:"day"`      // 星期，不区分大小写
}

// BulkReminderResponse 去重后的收件人与命中的全部预约
type BulkReminderResponse struct {
	Tutors       []string            `json:"tutors"`
	Pupils       []string            `json:"pupils"`
	Appointments []model.Appointment `json:"appts"`
	Failures     []notify.Failure    `json:"failures"`
}
