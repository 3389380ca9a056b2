package fleet

import (
	"strings"
	"testing"
	"time"
)

func TestNewClient(t *testing.T) {
	c, err := NewClient("edge-fra-01", DefaultConfig())
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	if !strings.HasPrefix(c.SID(), "cl_") {
		t.Errorf("SID() = %q, want cl_ prefix", c.SID())
	}
	if !strings.HasPrefix(c.GetAPIToken(), TokenPrefix+"_") {
		t.Errorf("GetAPIToken() = %q, want %s_ prefix", c.GetAPIToken(), TokenPrefix)
	}
	if c.TokenHash() == "" || c.TokenHash() == c.GetAPIToken() {
		t.Error("token hash must be set and differ from the plain token")
	}
	if c.CurrentVersion() != nil || c.TargetVersion() != nil || c.LastSeenAt() != nil {
		t.Error("new clients must start with no version or check-in facts")
	}
}

func TestNewClient_Invalid(t *testing.T) {
	if _, err := NewClient("", DefaultConfig()); err == nil {
		t.Error("NewClient with empty name should fail")
	}
	if _, err := NewClient("   ", DefaultConfig()); err == nil {
		t.Error("NewClient with blank name should fail")
	}
	bad := Config{HealthCheckURL: "ftp://example.com/health"}
	if _, err := NewClient("x", bad); err == nil {
		t.Error("NewClient with non-http health check URL should fail")
	}
}

func TestClient_TokenRoundTrip(t *testing.T) {
	c, err := NewClient("edge-fra-01", DefaultConfig())
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	plain := c.GetAPIToken()
	if !c.VerifyAPIToken(plain) {
		t.Error("VerifyAPIToken rejected the issued token")
	}
	if c.VerifyAPIToken(plain + "x") {
		t.Error("VerifyAPIToken accepted a tampered token")
	}
	if c.VerifyAPIToken("") {
		t.Error("VerifyAPIToken accepted an empty token")
	}

	newPlain, err := c.RegenerateToken()
	if err != nil {
		t.Fatalf("RegenerateToken failed: %v", err)
	}
	if newPlain == plain {
		t.Error("regenerated token must differ from the old one")
	}
	if c.VerifyAPIToken(plain) {
		t.Error("old token must stop verifying after regeneration")
	}
	if !c.VerifyAPIToken(newPlain) {
		t.Error("new token must verify after regeneration")
	}

	c.ClearAPIToken()
	if c.GetAPIToken() != "" {
		t.Error("ClearAPIToken left the plain token in memory")
	}
}

func TestClient_RecordCheckin(t *testing.T) {
	c, err := NewClient("edge-fra-01", DefaultConfig())
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	at := time.Now()
	c.RecordCheckin("1.2.3", at)
	if c.LastSeenAt() == nil || !c.LastSeenAt().Equal(at) {
		t.Error("RecordCheckin did not set last seen")
	}
	if c.CurrentVersion() == nil || *c.CurrentVersion() != "1.2.3" {
		t.Errorf("CurrentVersion() = %v, want 1.2.3", c.CurrentVersion())
	}

	later := at.Add(time.Minute)
	c.RecordCheckin("", later)
	if *c.CurrentVersion() != "1.2.3" {
		t.Error("empty reported version must not clear the stored one")
	}
	if !c.LastSeenAt().Equal(later) {
		t.Error("RecordCheckin with empty version must still bump last seen")
	}
}

func TestClient_TargetLifecycle(t *testing.T) {
	c, err := NewClient("edge-fra-01", DefaultConfig())
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	c.SetTarget("2.0.0")
	if c.TargetVersion() == nil || *c.TargetVersion() != "2.0.0" {
		t.Errorf("TargetVersion() = %v, want 2.0.0", c.TargetVersion())
	}

	c.AdvanceCurrent("2.0.0")
	if c.CurrentVersion() == nil || *c.CurrentVersion() != "2.0.0" {
		t.Errorf("CurrentVersion() = %v, want 2.0.0", c.CurrentVersion())
	}
	if c.TargetVersion() != nil {
		t.Error("AdvanceCurrent must clear the target")
	}

	c.SetTarget("2.1.0")
	c.ClearTarget()
	if c.TargetVersion() != nil {
		t.Error("ClearTarget left a target set")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"default", DefaultConfig(), false},
		{"empty", Config{}, false},
		{"https health check", Config{HealthCheckURL: "https://localhost:8080/health"}, false},
		{"negative timeout", Config{HealthCheckTimeoutSecs: -1}, true},
		{"bad scheme", Config{HealthCheckURL: "file:///etc/passwd"}, true},
		{"not a url", Config{HealthCheckURL: "://"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
