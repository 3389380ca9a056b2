// Package agent provides a Go SDK for fleet agents talking to the Drover
// agent API.
package agent

// Check-in actions returned by the server.
const (
	ActionNone   = "none"
	ActionUpdate = "update"
)

// CheckinRequest represents an agent poll. Both fields are optional.
type CheckinRequest struct {
	CurrentVersion string `json:"current_version,omitempty"`
	Status         string `json:"status,omitempty"`
}

// CheckinResult represents the server's answer to a poll. When Action is
// "update" the remaining fields describe the artifact to fetch.
type CheckinResult struct {
	Action        string        `json:"action"`
	TargetVersion string        `json:"target_version,omitempty"`
	ArtifactURL   string        `json:"artifact_url,omitempty"`
	Checksum      string        `json:"checksum,omitempty"`
	Size          int64         `json:"size,omitempty"`
	Config        *ClientConfig `json:"config,omitempty"`
}

// ClientConfig carries the per-client update preferences the server stores.
// Execution of scripts, restarts and health checks is the consumer's job;
// the SDK only transports the settings.
type ClientConfig struct {
	ServiceDir             string `json:"service_dir,omitempty"`
	RestartCommand         string `json:"restart_command,omitempty"`
	PreUpdateScript        string `json:"pre_update_script,omitempty"`
	PostUpdateScript       string `json:"post_update_script,omitempty"`
	HealthCheckURL         string `json:"health_check_url,omitempty"`
	HealthCheckTimeoutSecs int    `json:"health_check_timeout_secs,omitempty"`
	RollbackOnFailure      bool   `json:"rollback_on_failure"`
}

// ReportResultRequest represents the terminal outcome of an update attempt.
type ReportResultRequest struct {
	Success      bool   `json:"success"`
	Version      string `json:"version,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// ReportResult represents the server's acknowledgement of an outcome report.
type ReportResult struct {
	Status   string `json:"status"`
	UpdateID string `json:"update_id"`
}

// apiResponse represents the standard API response structure.
type apiResponse struct {
	Success bool      `json:"success"`
	Message string    `json:"message,omitempty"`
	Data    any       `json:"data,omitempty"`
	Error   *apiError `json:"error,omitempty"`
}

// apiError carries the server-side error detail inside an apiResponse.
type apiError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}
