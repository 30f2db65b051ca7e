package model

// Request 辅导请求（仅随触发事件到达，不落库）
type Request struct {
	FromUser ProfileRef  `json:"fromUser"`
	ToUser   ProfileRef  `json:"toUser"`
	Subject  string      `json:"subject"`
	Status   string      `json:"status,omitempty"`
	Location LocationRef `json:"location"`
	Time     TimeRange   `json:"time"`
}

// Parties 返回请求双方
func (r Request) Parties() (from, to ProfileRef) {
	return r.FromUser, r.ToUser
}

// Validate 校验请求必需字段
func (r *Request) Validate() error {
	if r.Subject == "" {
		return invalid("request", "subject")
	}
	if err := r.FromUser.Validate("request.fromUser"); err != nil {
		return err
	}
	if r.FromUser.Name == "" {
		return invalid("request.fromUser", "name")
	}
	return r.ToUser.Validate("request.toUser")
}

// ApprovedRequest 已批准的请求
type ApprovedRequest struct {
	For        Request    `json:"for"`
	ApprovedBy ProfileRef `json:"approvedBy"`
}

// Validate 校验批准记录
func (a *ApprovedRequest) Validate() error {
	if err := a.ApprovedBy.Validate("approvedRequest.approvedBy"); err != nil {
		return err
	}
	if a.ApprovedBy.Name == "" {
		return invalid("approvedRequest.approvedBy", "name")
	}
	if err := a.For.Validate(); err != nil {
		return err
	}
	if a.For.Time.Day == "" {
		return invalid("approvedRequest.for", "time.day")
	}
	return nil
}
