package event

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// 记录变更事件类型
const (
	TypeUserCreated        = "user.created"
	TypeChatCreated        = "chat.created"
	TypeMessageCreated     = "message.created"
	TypeFeedbackCreated    = "feedback.created"
	TypeRequestInCreated   = "request.in.created"
	TypeApprovedOutCreated = "approved.out.created"

	TypeClockInCreated      = "clock_in.created"
	TypeClockOutCreated     = "clock_out.created"
	TypeRequestInModified   = "request.in.modified"
	TypeRequestInCanceled   = "request.in.canceled"
	TypeRequestOutRejected  = "request.out.rejected"
	TypeRequestOutModified  = "request.out.modified"
	TypeAppointmentModified = "appointment.modified"
	TypeAppointmentCanceled = "appointment.canceled"
)

// ErrMalformed 事件信封或载荷无法解析
var ErrMalformed = errors.New("事件格式无效")

// Params 记录路径参数
type Params struct {
	User string `json:"user,omitempty"`
	Chat string `json:"chat,omitempty"`
}

// Event 记录变更事件信封
type Event struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Params     Params          `json:"params"`
	Data       json.RawMessage `json:"data"`
}

// Decode 解析事件信封；缺少 id 时补生成
func Decode(raw []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(raw, &ev); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if ev.Type == "" {
		return nil, fmt.Errorf("%w: 缺少 type", ErrMalformed)
	}
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	return &ev, nil
}

// Bind 将载荷解析到 v
func (e *Event) Bind(v any) error {
	if len(e.Data) == 0 || string(e.Data) == "null" {
		return fmt.Errorf("%w: %s 缺少 data", ErrMalformed, e.Type)
	}
	if err := json.Unmarshal(e.Data, v); err != nil {
		return fmt.Errorf("%w: %s data: %v", ErrMalformed, e.Type, err)
	}
	return nil
}
