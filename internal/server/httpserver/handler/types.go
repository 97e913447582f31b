package handler

import "time"

// Response is the standard API response envelope.
type Response struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
	Timestamp int64  `json:"timestamp"`
	Data      any    `json:"data,omitempty"`
	Details   any    `json:"details,omitempty"`
}

// NewResponse creates a success response.
func NewResponse(requestID string, data any) *Response {
	return &Response{
		Code:      "OK",
		Message:   "Success",
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Data:      data,
	}
}

// NewErrorResponse creates an error response.
func NewErrorResponse(requestID, code, message string, details any) *Response {
	return &Response{
		Code:      code,
		Message:   message,
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Details:   details,
	}
}

// MintTokenRequest is the request body for POST /v1/tokens.
type MintTokenRequest struct {
	UserID     string `json:"user_id" yaml:"user_id"`
	Capability *int   `json:"capability" yaml:"capability"`
}

// MintTokenResponse is the response body for POST /v1/tokens.
type MintTokenResponse struct {
	Token      string `json:"token" yaml:"token"`
	Subject    string `json:"sub" yaml:"sub"`
	JTI        string `json:"jti" yaml:"jti"`
	Capability int    `json:"capability" yaml:"capability"`
}

// TokenRequest carries a token, for validate and revoke.
type TokenRequest struct {
	Token string `json:"token" yaml:"token"`
}

// Claims is the JSON view of a token's claims. Only the last 16 hex
// digits of Subject are authenticated.
type Claims struct {
	Subject    string `json:"sub" yaml:"sub"`
	JTI        string `json:"jti" yaml:"jti"`
	Capability int    `json:"capability" yaml:"capability"`
}

// ValidateTokenResponse is the response body for POST /v1/tokens/validate.
type ValidateTokenResponse struct {
	Valid   bool    `json:"valid" yaml:"valid"`
	Revoked bool    `json:"revoked,omitempty" yaml:"revoked,omitempty"`
	Reason  string  `json:"reason,omitempty" yaml:"reason,omitempty"`
	Claims  *Claims `json:"claims,omitempty" yaml:"claims,omitempty"`
}

// RevokeTokenResponse is the response body for POST /v1/tokens/revoke.
// ExpiresAt is omitted when the revocation never lapses.
type RevokeTokenResponse struct {
	Subject   string    `json:"sub" yaml:"sub"`
	JTI       string    `json:"jti" yaml:"jti"`
	ExpiresAt time.Time `json:"expires_at,omitzero" yaml:"expires_at,omitempty"`
}

// HealthResponse is the response body for /health and /ready.
type HealthResponse struct {
	Status  string `json:"status" yaml:"status"`
	Time    string `json:"time" yaml:"time"`
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
	Engine  string `json:"engine,omitempty" yaml:"engine,omitempty"`
}
