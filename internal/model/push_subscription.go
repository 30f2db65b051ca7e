package model

// PushSubscription 浏览器推送订阅表 — 对应 push_subscriptions
type PushSubscription struct {
	SubscriptionID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"subscription_id"`
	Email          string `gorm:"type:varchar(254);not null;index"               json:"email"`
	Endpoint       string `gorm:"type:text;not null"                             json:"endpoint"`
	P256dh         string `gorm:"column:p256dh;type:varchar(255);not null"       json:"p256dh"`
	Auth           string `gorm:"type:varchar(255);not null"                     json:"auth"`
	BaseModel
}

// TableName 指定表名
func (PushSubscription) TableName() string { return "push_subscriptions" }
