package repository

import (
	"context"

	"gorm.io/gorm"

	"tutorbook/notifications/internal/model"
)

// ChatRepository 会话数据访问接口
type ChatRepository interface {
	GetByID(ctx context.Context, id string) (*model.Chat, error)
}

type chatRepo struct {
	db *gorm.DB
}

// NewChatRepo 创建 ChatRepository 实例
func NewChatRepo(db *gorm.DB) ChatRepository {
	return &chatRepo{db: db}
}

func (r *chatRepo) GetByID(ctx context.Context, id string) (*model.Chat, error) {
	var chat model.Chat
	err := r.db.WithContext(ctx).
		Where("chat_id = ?", id).
		First(&chat).Error
	if err != nil {
		return nil, err
	}
	return &chat, nil
}
