package dto

// RevokeTokenRequest 吊销凭证请求；Token 为空时吊销当前凭证
type RevokeTokenRequest struct {
	Token string `json:"token"`
}

// CredentialResponse 凭证校验结果
type CredentialResponse struct {
	Email      string `json:"email"`
	Supervisor bool   `json:"supervisor"`
	ExpiresAt  string `json:"expires_at,omitempty"`
}
