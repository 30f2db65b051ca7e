package model

import "gorm.io/datatypes"

// Chat 会话表 — 对应 chats
// 事件载荷携带完整 Chatters，落库时只保留 ChatterEmails
type Chat struct {
	ChatID        string                      `gorm:"type:varchar(64);primaryKey"                  json:"id"`
	CreatedBy     ProfileRef                  `gorm:"embedded;embeddedPrefix:created_by_"          json:"createdBy"`
	ChatterEmails datatypes.JSONSlice[string] `gorm:"type:jsonb;not null;default:'[]'"             json:"chatterEmails"`
	Chatters      []ProfileRef                `gorm:"-"                                            json:"chatters,omitempty"`
	BaseModel
}

// TableName 指定表名
func (Chat) TableName() string { return "chats" }

// Validate 校验会话必需字段
func (c *Chat) Validate() error {
	if err := c.CreatedBy.Validate("chat.createdBy"); err != nil {
		return err
	}
	if c.CreatedBy.Name == "" {
		return invalid("chat.createdBy", "name")
	}
	for _, chatter := range c.Chatters {
		if err := chatter.Validate("chat.chatters"); err != nil {
			return err
		}
	}
	return nil
}

// ChatMessage 会话消息（仅随触发事件到达）
type ChatMessage struct {
	ChatID  string     `json:"chatId"`
	SentBy  ProfileRef `json:"sentBy"`
	Message string     `json:"message"`
}

// Validate 校验消息必需字段
func (m *ChatMessage) Validate() error {
	if m.ChatID == "" {
		return invalid("message", "chatId")
	}
	if err := m.SentBy.Validate("message.sentBy"); err != nil {
		return err
	}
	if m.SentBy.Name == "" {
		return invalid("message.sentBy", "name")
	}
	return nil
}
