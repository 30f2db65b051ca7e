package model

// Gender 性别分类，仅用于文案中的人称代词
const (
	GenderMale   = "Male"
	GenderFemale = "Female"
	GenderOther  = "Other"
)

// Profile 用户档案表 — 对应 users，Email 为联系人主键
type Profile struct {
	Email  string `gorm:"type:varchar(254);primaryKey" json:"email"`
	Name   string `gorm:"type:varchar(120);not null"   json:"name"`
	Phone  string `gorm:"type:varchar(32)"             json:"phone"`
	Gender string `gorm:"type:varchar(16)"             json:"gender,omitempty"`
	Type   string `gorm:"type:varchar(32)"             json:"type,omitempty"` // Tutor | Pupil | Supervisor ...
	BaseModel
}

// TableName 指定表名
func (Profile) TableName() string { return "users" }

// Validate 校验档案必需字段
func (p *Profile) Validate() error {
	if p.Email == "" {
		return invalid("profile", "email")
	}
	if p.Name == "" {
		return invalid("profile", "name")
	}
	return nil
}

// Ref 转换为引用形式
func (p *Profile) Ref() ProfileRef {
	return ProfileRef{
		Email:  p.Email,
		Name:   p.Name,
		Phone:  p.Phone,
		Gender: p.Gender,
		Type:   p.Type,
	}
}

// ProfileRef 其他记录中内嵌的用户引用
type ProfileRef struct {
	Email  string `gorm:"column:email"  json:"email"`
	Name   string `gorm:"column:name"   json:"name"`
	Phone  string `gorm:"column:phone"  json:"phone,omitempty"`
	Gender string `gorm:"column:gender" json:"gender,omitempty"`
	Type   string `gorm:"column:type"   json:"type,omitempty"`
}

// Validate 校验引用至少带有联系人主键
func (r ProfileRef) Validate(record string) error {
	if r.Email == "" {
		return invalid(record, "email")
	}
	return nil
}
