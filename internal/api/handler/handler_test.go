package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	jwtv5 "github.com/golang-jwt/jwt/v5"

	"tutorbook/notifications/internal/dto"
	"tutorbook/notifications/internal/model"
	"tutorbook/notifications/internal/notify"
	"tutorbook/notifications/internal/service"
	"tutorbook/notifications/pkg/jwt"
	"tutorbook/notifications/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock ReminderService ──

type mockReminderService struct {
	result  *dto.BulkReminderResponse
	err     error
	lastReq *dto.BulkReminderRequest
}

func (m *mockReminderService) SendAppointmentReminders(_ context.Context, req *dto.BulkReminderRequest) (*dto.BulkReminderResponse, error) {
	m.lastReq = req
	return m.result, m.err
}

// ── Mock AuthService ──

type mockAuthService struct {
	revoked   []string
	revokeErr error
}

func (m *mockAuthService) Verify(context.Context, string) (*jwt.Claims, error) {
	return nil, errors.New("not used")
}

func (m *mockAuthService) Revoke(_ context.Context, token string) error {
	if m.revokeErr != nil {
		return m.revokeErr
	}
	m.revoked = append(m.revoked, token)
	return nil
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

func setClaims(email string, supervisor bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextClaims, &jwt.Claims{
			Email:      email,
			Supervisor: supervisor,
			TokenType:  jwt.TokenTypeID,
			RegisteredClaims: jwtv5.RegisteredClaims{
				ExpiresAt: jwtv5.NewNumericDate(time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)),
			},
		})
		c.Next()
	}
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

func serveReminder(mock *mockReminderService, req *http.Request) *httptest.ResponseRecorder {
	r := gin.New()
	r.GET("/reminders", NewReminderHandler(mock).SendAppointmentReminders)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ═══════════════════════════════════════════════════════════
// ReminderHandler Tests
// ═══════════════════════════════════════════════════════════

func TestReminderHandler_Success(t *testing.T) {
	mock := &mockReminderService{result: &dto.BulkReminderResponse{
		Tutors:       []string{"tutor@x"},
		Pupils:       []string{},
		Appointments: []model.Appointment{{Subject: "Algebra"}},
		Failures:     []notify.Failure{},
	}}

	req := httptest.NewRequest("GET", "/reminders?tutor=true&location=loc-1&day=monday&token=tok", nil)
	w := serveReminder(mock, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !mock.lastReq.Tutor || mock.lastReq.Pupil || mock.lastReq.Location != "loc-1" || mock.lastReq.Day != "monday" || mock.lastReq.Token != "tok" {
		t.Errorf("查询参数绑定不符: %+v", mock.lastReq)
	}

	var body struct {
		Code int                      `json:"code"`
		Data dto.BulkReminderResponse `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("响应解析失败: %v", err)
	}
	if body.Code != response.CodeOK || len(body.Data.Tutors) != 1 || len(body.Data.Appointments) != 1 {
		t.Errorf("响应内容不符: %s", w.Body.String())
	}
}

func TestReminderHandler_TokenFromHeader(t *testing.T) {
	mock := &mockReminderService{result: &dto.BulkReminderResponse{}}

	req := httptest.NewRequest("GET", "/reminders?pupil=true&location=loc-1&day=Monday", nil)
	req.Header.Set("Authorization", "Bearer header-token")
	serveReminder(mock, req)

	if mock.lastReq.Token != "header-token" {
		t.Errorf("缺少 token 参数时应读取 Authorization 头，实际 %q", mock.lastReq.Token)
	}
}

func TestReminderHandler_QueryTokenWins(t *testing.T) {
	mock := &mockReminderService{result: &dto.BulkReminderResponse{}}

	req := httptest.NewRequest("GET", "/reminders?pupil=true&token=query-token", nil)
	req.Header.Set("Authorization", "Bearer header-token")
	serveReminder(mock, req)

	if mock.lastReq.Token != "query-token" {
		t.Errorf("查询参数凭证应优先，实际 %q", mock.lastReq.Token)
	}
}

func TestReminderHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantHTTP int
		wantCode int
	}{
		{"invalid", service.ErrInvalidRequest, http.StatusBadRequest, response.CodeInvalidRequest},
		{"unauthorized", service.ErrUnauthorized, http.StatusUnauthorized, response.CodeUnauthorized},
		{"wrapped unauthorized", errors.Join(errors.New("ctx"), service.ErrUnauthorized), http.StatusUnauthorized, response.CodeUnauthorized},
		{"internal", errors.New("db down"), http.StatusInternalServerError, response.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockReminderService{err: tt.err}
			w := serveReminder(mock, httptest.NewRequest("GET", "/reminders?tutor=true&token=t", nil))

			if w.Code != tt.wantHTTP {
				t.Errorf("expected %d, got %d", tt.wantHTTP, w.Code)
			}
			if resp := parseResponse(w); resp.Code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, resp.Code)
			}
		})
	}
}

func TestReminderHandler_BadBool(t *testing.T) {
	mock := &mockReminderService{}
	w := serveReminder(mock, httptest.NewRequest("GET", "/reminders?tutor=maybe", nil))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if mock.lastReq != nil {
		t.Error("参数绑定失败时不应调用服务")
	}
}

// ═══════════════════════════════════════════════════════════
// AuthHandler Tests
// ═══════════════════════════════════════════════════════════

func serveAuth(h *AuthHandler, claims gin.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	r := gin.New()
	if claims != nil {
		r.Use(claims)
	}
	r.GET("/auth/verify", h.Verify)
	r.POST("/auth/revoke", h.Revoke)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthHandler_Verify(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})
	w := serveAuth(h, setClaims("sup@x", true), httptest.NewRequest("GET", "/auth/verify", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body struct {
		Data dto.CredentialResponse `json:"data"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body.Data.Email != "sup@x" || !body.Data.Supervisor || body.Data.ExpiresAt != "2026-10-18T12:00:00Z" {
		t.Errorf("响应内容不符: %+v", body.Data)
	}
}

func TestAuthHandler_Verify_NoClaims(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})
	w := serveAuth(h, nil, httptest.NewRequest("GET", "/auth/verify", nil))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestAuthHandler_Revoke_Self(t *testing.T) {
	mock := &mockAuthService{}
	h := NewAuthHandler(mock)

	req := httptest.NewRequest("POST", "/auth/revoke", nil)
	req.Header.Set("Authorization", "Bearer my-token")
	w := serveAuth(h, setClaims("tutor@x", false), req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if len(mock.revoked) != 1 || mock.revoked[0] != "my-token" {
		t.Errorf("应吊销当前凭证，实际 %v", mock.revoked)
	}
}

func TestAuthHandler_Revoke_OtherRequiresSupervisor(t *testing.T) {
	mock := &mockAuthService{}
	h := NewAuthHandler(mock)

	req := httptest.NewRequest("POST", "/auth/revoke", jsonBody(dto.RevokeTokenRequest{Token: "someone-else"}))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer my-token")
	w := serveAuth(h, setClaims("tutor@x", false), req)

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
	if len(mock.revoked) != 0 {
		t.Error("非督导不应吊销他人凭证")
	}

	req = httptest.NewRequest("POST", "/auth/revoke", jsonBody(dto.RevokeTokenRequest{Token: "someone-else"}))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer sup-token")
	w = serveAuth(h, setClaims("sup@x", true), req)

	if w.Code != http.StatusOK || len(mock.revoked) != 1 || mock.revoked[0] != "someone-else" {
		t.Errorf("督导应可吊销他人凭证: code=%d revoked=%v", w.Code, mock.revoked)
	}
}

func TestAuthHandler_Revoke_ChunkedBody(t *testing.T) {
	mock := &mockAuthService{}
	h := NewAuthHandler(mock)

	req := httptest.NewRequest("POST", "/auth/revoke", jsonBody(dto.RevokeTokenRequest{Token: "someone-else"}))
	req.ContentLength = -1
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer sup-token")
	w := serveAuth(h, setClaims("sup@x", true), req)

	if w.Code != http.StatusOK || len(mock.revoked) != 1 || mock.revoked[0] != "someone-else" {
		t.Errorf("未知长度的请求体也应读取目标凭证: code=%d revoked=%v", w.Code, mock.revoked)
	}
}

func TestAuthHandler_Revoke_EmptyChunkedBody(t *testing.T) {
	mock := &mockAuthService{}
	h := NewAuthHandler(mock)

	req := httptest.NewRequest("POST", "/auth/revoke", io.NopCloser(bytes.NewReader(nil)))
	req.ContentLength = -1
	req.Header.Set("Authorization", "Bearer my-token")
	w := serveAuth(h, setClaims("tutor@x", false), req)

	if w.Code != http.StatusOK || len(mock.revoked) != 1 || mock.revoked[0] != "my-token" {
		t.Errorf("空请求体应吊销当前凭证: code=%d revoked=%v", w.Code, mock.revoked)
	}
}

func TestAuthHandler_Revoke_StoreUnavailable(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{revokeErr: service.ErrRevocationUnavailable})

	req := httptest.NewRequest("POST", "/auth/revoke", nil)
	req.Header.Set("Authorization", "Bearer my-token")
	w := serveAuth(h, setClaims("sup@x", true), req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
}

func TestBearerToken(t *testing.T) {
	tests := map[string]string{
		"Bearer abc":  "abc",
		"bearer abc":  "abc",
		"Basic abc":   "",
		"Bearerabc":   "",
		"":            "",
		"Bearer  abc": "abc",
	}
	for header, want := range tests {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest("GET", "/", nil)
		c.Request.Header.Set("Authorization", header)
		if got := BearerToken(c); got != want {
			t.Errorf("BearerToken(%q) = %q, want %q", header, got, want)
		}
	}
}
