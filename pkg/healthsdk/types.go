package healthsdk

import "time"

// ============================================================================
// Auth
// ============================================================================

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

// VerifyOTPRequest is the body of POST /auth/verify-otp.
type VerifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the bearer token issued on login.
type LoginResponse struct {
	Token     string `json:"token"`
	AccountID string `json:"accountId"`
}

// MessageResponse is the generic success body.
type MessageResponse struct {
	Message string `json:"message"`
}

// AccountResponse is the public view of an account. It never carries the
// password hash or any OTP material.
type AccountResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"createdAt"`
}

// ============================================================================
// Diagnosis
// ============================================================================

// DiagnosisRequest is the body of POST /diagnosis.
type DiagnosisRequest struct {
	Symptoms string `json:"symptoms"`
}

// DiagnosisReport is a stored diagnosis.
type DiagnosisReport struct {
	ID        string    `json:"id"`
	AccountID string    `json:"accountId"`
	Symptoms  string    `json:"symptoms"`
	Diagnosis string    `json:"diagnosis"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ============================================================================
// Health
// ============================================================================

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string            `json:"status"`
	Uptime  string            `json:"uptime"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// ErrorResponse is the JSON shape of every error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
