package service

import "errors"

// ── 通知业务错误 ──

var (
	// ErrInvalidRequest 未指定任何通知对象
	ErrInvalidRequest = errors.New("请指定通知对象（tutor / pupil）")
	// ErrUnauthorized 缺少、无效、已吊销或非督导凭证
	ErrUnauthorized = errors.New("督导身份凭证无效")
	// ErrNotImplemented 触发器尚未实现，按成功处理并记录警告
	ErrNotImplemented = errors.New("该通知尚未实现")
	// ErrNoAdminPhone 未配置反馈短信接收号码
	ErrNoAdminPhone = errors.New("未配置 app.admin_phone")
	// ErrRevocationUnavailable 吊销名单存储不可用
	ErrRevocationUnavailable = errors.New("凭证吊销名单不可用")
)
