package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"tutorbook/notifications/config"
	"tutorbook/notifications/internal/model"
	"tutorbook/notifications/internal/notify"
	"tutorbook/notifications/internal/repository"
	"tutorbook/notifications/internal/transport"
	"tutorbook/notifications/pkg/jwt"
)

// ── Mock ProfileRepository ──

type mockProfileRepo struct {
	mu       sync.Mutex
	profiles map[string]*model.Profile
	lookups  map[string]int
	err      error
}

func newMockProfileRepo(profiles ...*model.Profile) *mockProfileRepo {
	m := &mockProfileRepo{profiles: make(map[string]*model.Profile), lookups: make(map[string]int)}
	for _, p := range profiles {
		m.profiles[p.Email] = p
	}
	return m
}

func (m *mockProfileRepo) GetByEmail(_ context.Context, email string) (*model.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookups[email]++
	if m.err != nil {
		return nil, m.err
	}
	if p, ok := m.profiles[email]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock AppointmentRepository ──

type mockAppointmentRepo struct {
	appts    []model.Appointment
	lastLoc  string
	lastDay  string
	err      error
	nilSlice bool
}

func (m *mockAppointmentRepo) ListByLocationAndDay(_ context.Context, locationID, day string) ([]model.Appointment, error) {
	m.lastLoc, m.lastDay = locationID, day
	if m.err != nil {
		return nil, m.err
	}
	if m.nilSlice {
		return nil, nil
	}
	var out []model.Appointment
	for _, a := range m.appts {
		if a.Location.ID == locationID && a.Time.Day == day {
			out = append(out, a)
		}
	}
	return out, nil
}

// ── Mock ChatRepository ──

type mockChatRepo struct {
	chats map[string]*model.Chat
}

func (m *mockChatRepo) GetByID(_ context.Context, id string) (*model.Chat, error) {
	if c, ok := m.chats[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock PushSubscriptionRepository ──

type mockPushSubRepo struct{}

func (mockPushSubRepo) ListByEmail(context.Context, string) ([]model.PushSubscription, error) {
	return nil, nil
}

// ── Mock RevocationStore ──

type mockRevocationStore struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
	err     error
}

func newMockRevocationStore() *mockRevocationStore {
	return &mockRevocationStore{revoked: make(map[string]time.Duration)}
}

func (m *mockRevocationStore) RevokeToken(_ context.Context, jti string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.revoked[jti] = ttl
	return nil
}

func (m *mockRevocationStore) IsRevoked(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	_, ok := m.revoked[jti]
	return ok, nil
}

// ── Fake 通道 ──

type sentSMS struct {
	Phone string
	Body  string
}

type fakeSenders struct {
	mu      sync.Mutex
	sms     []sentSMS
	emails  []string
	pushes  []string
	failSMS map[string]bool
}

var errCarrier = errors.New("carrier rejected")

func (f *fakeSenders) SendSMS(_ context.Context, phone, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if phone == "" {
		return transport.Fail(transport.ChannelSMS, phone, transport.ErrNoDestination)
	}
	if f.failSMS[phone] {
		return transport.Fail(transport.ChannelSMS, phone, errCarrier)
	}
	f.sms = append(f.sms, sentSMS{Phone: phone, Body: body})
	return nil
}

func (f *fakeSenders) SendEmail(_ context.Context, to model.ProfileRef, _ transport.Email) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.emails = append(f.emails, to.Email)
	return nil
}

func (f *fakeSenders) SendPush(_ context.Context, key, _, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushes = append(f.pushes, key)
	return nil
}

func (f *fakeSenders) smsTo(phone string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, s := range f.sms {
		if s.Phone == phone {
			n++
		}
	}
	return n
}

func (f *fakeSenders) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sms) + len(f.emails) + len(f.pushes)
}

// ── 测试环境 ──

const testAdminPhone = "+15550009999"

type testEnv struct {
	cfg      *config.Config
	jwtMgr   *jwt.Manager
	profiles *mockProfileRepo
	appts    *mockAppointmentRepo
	chats    *mockChatRepo
	revoked  *mockRevocationStore
	senders  *fakeSenders
	svc      *Service
}

func newTestEnv(concurrency int, profiles ...*model.Profile) *testEnv {
	cfg := &config.Config{
		Auth: config.AuthConfig{
			JWTSecret: "test-secret-key-for-unit-testing-2026",
			TokenTTL:  15 * time.Minute,
			Issuer:    "tutorbook",
		},
		App:      config.AppConfig{Name: "Tutorbook", URL: "https://tutorbook.app/app", AdminPhone: testAdminPhone},
		Reminder: config.ReminderConfig{Concurrency: concurrency},
	}

	env := &testEnv{
		cfg:      cfg,
		jwtMgr:   jwt.NewManager(&cfg.Auth),
		profiles: newMockProfileRepo(profiles...),
		appts:    &mockAppointmentRepo{},
		chats:    &mockChatRepo{chats: make(map[string]*model.Chat)},
		revoked:  newMockRevocationStore(),
		senders:  &fakeSenders{failSMS: make(map[string]bool)},
	}

	repo := &repository.Repository{
		Profile:          env.profiles,
		Appointment:      env.appts,
		Chat:             env.chats,
		PushSubscription: mockPushSubRepo{},
	}
	logger := zap.NewNop()
	formatter := notify.MustFormatter(cfg.App.Name, cfg.App.URL)
	dispatcher := notify.NewDispatcher(transport.Senders{
		SMS:     env.senders,
		Email:   env.senders,
		WebPush: env.senders,
	}, logger)

	env.svc = NewService(cfg, repo, env.jwtMgr, env.revoked, formatter, dispatcher, logger)
	return env
}

func (e *testEnv) token(email string, supervisor bool) string {
	tok, err := e.jwtMgr.GenerateIDToken(email, supervisor)
	if err != nil {
		panic(err)
	}
	return tok
}

func profile(email, name, phone, gender string) *model.Profile {
	return &model.Profile{Email: email, Name: name, Phone: phone, Gender: gender}
}
