package fleet

import (
	"fmt"
	"net/url"
)

// Config is the client-side apply configuration bag. The server transports
// it verbatim in check-in responses; only RollbackOnFailure changes server
// behavior.
type Config struct {
	ServiceDir             string `json:"service_dir,omitempty"`
	RestartCommand         string `json:"restart_command,omitempty"`
	PreUpdateScript        string `json:"pre_update_script,omitempty"`
	PostUpdateScript       string `json:"post_update_script,omitempty"`
	HealthCheckURL         string `json:"health_check_url,omitempty"`
	HealthCheckTimeoutSecs int    `json:"health_check_timeout_secs,omitempty"`
	RollbackOnFailure      bool   `json:"rollback_on_failure"`
}

// DefaultConfig returns the config applied to clients registered without one.
func DefaultConfig() Config {
	return Config{
		HealthCheckTimeoutSecs: 30,
		RollbackOnFailure:      true,
	}
}

// Validate checks the bag for values the server can reject early instead of
// letting every agent in the fleet fail on them.
func (c Config) Validate() error {
	if c.HealthCheckTimeoutSecs < 0 {
		return fmt.Errorf("health_check_timeout_secs cannot be negative")
	}
	if c.HealthCheckURL != "" {
		u, err := url.Parse(c.HealthCheckURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("health_check_url must be an http(s) URL")
		}
	}
	return nil
}
