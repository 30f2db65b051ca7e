package model

// Feedback 用户反馈（仅随触发事件到达）
type Feedback struct {
	From    ProfileRef `json:"from"`
	Message string     `json:"message"`
}

// Validate 校验反馈必需字段
func (f *Feedback) Validate() error {
	if f.From.Name == "" {
		return invalid("feedback.from", "name")
	}
	if f.Message == "" {
		return invalid("feedback", "message")
	}
	return nil
}
