package model

// LocationRef 预约地点
type LocationRef struct {
	ID   string `gorm:"column:id;type:varchar(64)"   json:"id"`
	Name string `gorm:"column:name;type:varchar(120)" json:"name"`
}

// TimeRange 每周固定时段，Day 形如 "Monday"
type TimeRange struct {
	Day  string `gorm:"column:day;type:varchar(16)"  json:"day"`
	From string `gorm:"column:from;type:varchar(16)" json:"from"`
	To   string `gorm:"column:to;type:varchar(16)"   json:"to"`
}

// Participants 请求方（学生）与被请求方（导师）
type Participants struct {
	FromUser ProfileRef `gorm:"embedded;embeddedPrefix:from_user_" json:"fromUser"`
	ToUser   ProfileRef `gorm:"embedded;embeddedPrefix:to_user_"   json:"toUser"`
}

// Parties 返回参与双方
func (p Participants) Parties() (from, to ProfileRef) {
	return p.FromUser, p.ToUser
}

// Appointment 辅导预约表 — 对应 appointments
type Appointment struct {
	AppointmentID string       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id,omitempty"`
	Subject       string       `gorm:"type:varchar(120);not null"                     json:"subject"`
	Location      LocationRef  `gorm:"embedded;embeddedPrefix:location_"              json:"location"`
	Time          TimeRange    `gorm:"embedded;embeddedPrefix:time_"                  json:"time"`
	For           Participants `gorm:"embedded"                                       json:"for"`
	BaseModel
}

// TableName 指定表名
func (Appointment) TableName() string { return "appointments" }

// Parties 返回预约的学生与导师
func (a Appointment) Parties() (from, to ProfileRef) {
	return a.For.Parties()
}

// Validate 校验预约必需字段
func (a *Appointment) Validate() error {
	if a.Subject == "" {
		return invalid("appointment", "subject")
	}
	if a.Location.ID == "" {
		return invalid("appointment", "location.id")
	}
	if a.Time.Day == "" {
		return invalid("appointment", "time.day")
	}
	if err := a.For.FromUser.Validate("appointment.for.fromUser"); err != nil {
		return err
	}
	return a.For.ToUser.Validate("appointment.for.toUser")
}
