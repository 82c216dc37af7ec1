// Package qr contains DTOs for the QR endpoints.
package qr

// GenerateRequest carries the profile fields sent along with self issuance.
// They are forwarded to the user directory before the code is created.
type GenerateRequest struct {
	FirstName string `json:"first_name" validate:"required,min=1,max=100"`
	LastName  string `json:"last_name" validate:"required,min=1,max=100"`
	Email     string `json:"email" validate:"required,email"`
}

// GenerateResponse is returned by both issuance endpoints.
type GenerateResponse struct {
	QRCodeURL   string `json:"qr_code_url"`
	QRCodeImage string `json:"qr_code_image,omitempty"` // data:image/png;base64,...
	Message     string `json:"message"`
}

// ScanResponse tells the scanner what to do next.
type ScanResponse struct {
	Action string `json:"action"` // "make_call" | "register"
}

// RegisterRequest carries the claimant's profile fields.
type RegisterRequest struct {
	FirstName string `json:"first_name" validate:"required,min=1,max=100"`
	LastName  string `json:"last_name" validate:"required,min=1,max=100"`
	Email     string `json:"email" validate:"required,email"`
}

// RegisterResponse confirms a successful claim.
type RegisterResponse struct {
	QRCodeURL string `json:"qr_code_url"`
	Message   string `json:"message"`
}

// ControlRequest toggles the caller's code. A pointer distinguishes a missing
// field from an explicit false.
type ControlRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

// ControlResponse reports the resulting state.
type ControlResponse struct {
	IsActive bool   `json:"is_active"`
	Message  string `json:"message"`
}

// AnalyticsResponse is the per-code summary.
type AnalyticsResponse struct {
	ScanCount   int64   `json:"scan_count"`
	UniqueUsers int64   `json:"unique_users"`
	LastScanned *string `json:"last_scanned"` // RFC3339, null when never scanned
}

// AdminAnalyticsResponse is the service-wide aggregate.
type AdminAnalyticsResponse struct {
	TotalQRCodes     int64 `json:"total_qr_codes"`
	TotalScans       int64 `json:"total_scans"`
	TotalUniqueUsers int64 `json:"total_unique_users"`
}
