package repository

import (
	"context"

	"gorm.io/gorm"

	"tutorbook/notifications/internal/model"
)

// AppointmentRepository 预约数据访问接口
type AppointmentRepository interface {
	// ListByLocationAndDay 按地点与星期筛选，星期比较不区分大小写
	ListByLocationAndDay(ctx context.Context, locationID, day string) ([]model.Appointment, error)
}

type appointmentRepo struct {
	db *gorm.DB
}

// NewAppointmentRepo 创建 AppointmentRepository 实例
func NewAppointmentRepo(db *gorm.DB) AppointmentRepository {
	return &appointmentRepo{db: db}
}

func (r *appointmentRepo) ListByLocationAndDay(ctx context.Context, locationID, day string) ([]model.Appointment, error) {
	var appts []model.Appointment
	err := r.db.WithContext(ctx).
		Where("location_id = ?", locationID).
		Where("LOWER(time_day) = LOWER(?)", day).
		Order("time_from ASC, created_at ASC").
		Find(&appts).Error
	return appts, err
}
