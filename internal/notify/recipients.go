package notify

import (
	"sync"

	"tutorbook/notifications/internal/model"
)

// RoleFilter 选择记录中的哪一方作为收件人
type RoleFilter uint8

const (
	RoleToUser RoleFilter = 1 << iota
	RoleFromUser
	RoleBoth = RoleToUser | RoleFromUser
)

// Party 带有请求方 / 被请求方的记录（预约、请求）
type Party interface {
	Parties() (from, to model.ProfileRef)
}

// RecipientSet 按联系人主键去重的集合，保持首次出现顺序
// 可被并发使用；生命周期限于单次请求或单次事件处理
type RecipientSet struct {
	mu    sync.Mutex
	seen  map[string]struct{}
	order []string
}

// NewRecipientSet 创建集合，exclude 中的主键（发起人）永远不会被认领
func NewRecipientSet(exclude ...string) *RecipientSet {
	s := &RecipientSet{seen: make(map[string]struct{})}
	for _, key := range exclude {
		if key != "" {
			s.seen[key] = struct{}{}
		}
	}
	return s
}

// Claim 首次认领返回 true；空主键、已认领或被排除的主键返回 false
func (s *RecipientSet) Claim(key string) bool {
	if key == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[key]; ok {
		return false
	}
	s.seen[key] = struct{}{}
	s.order = append(s.order, key)
	return true
}

// Keys 返回已认领的主键副本
func (s *RecipientSet) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, len(s.order))
	copy(keys, s.order)
	return keys
}

// Len 已认领数量
func (s *RecipientSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

// ResolveRecipients 从记录中提取去重后的收件人，排除 actor 本人
// 同一记录内先取 toUser 再取 fromUser
func ResolveRecipients[T Party](records []T, filter RoleFilter, actor string) []model.ProfileRef {
	set := NewRecipientSet(actor)
	var out []model.ProfileRef
	for _, rec := range records {
		from, to := rec.Parties()
		if filter&RoleToUser != 0 && set.Claim(to.Email) {
			out = append(out, to)
		}
		if filter&RoleFromUser != 0 && set.Claim(from.Email) {
			out = append(out, from)
		}
	}
	return out
}

// ResolveKeys 同 ResolveRecipients，只返回联系人主键
func ResolveKeys[T Party](records []T, filter RoleFilter, actor string) []string {
	refs := ResolveRecipients(records, filter, actor)
	keys := make([]string, len(refs))
	for i, r := range refs {
		keys[i] = r.Email
	}
	return keys
}

// ResolveChatters 会话成员去重并排除发起人 / 发送者
func ResolveChatters(chatters []model.ProfileRef, actor string) []model.ProfileRef {
	set := NewRecipientSet(actor)
	var out []model.ProfileRef
	for _, c := range chatters {
		if set.Claim(c.Email) {
			out = append(out, c)
		}
	}
	return out
}

// ResolveChatterKeys 仅有成员邮箱时使用
func ResolveChatterKeys(emails []string, actor string) []string {
	set := NewRecipientSet(actor)
	for _, e := range emails {
		set.Claim(e)
	}
	return set.Keys()
}
