// Package fleet provides domain models and business logic for managed
// update clients.
package fleet

import (
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"github.com/drover-dev/drover/internal/domain/shared/services"
	"github.com/drover-dev/drover/internal/shared/id"
)

// TokenPrefix is the prefix carried by client bearer tokens.
const TokenPrefix = "drv"

// Client represents a managed machine aggregate root. The bearer token is
// only held in plain form immediately after creation or regeneration; the
// persistence layer stores the hash alone.
type Client struct {
	id             uint
	sid            string
	name           string
	tokenHash      string
	apiToken       string // transient, only available after creation or regeneration
	currentVersion *string
	targetVersion  *string
	lastSeenAt     *time.Time
	config         Config
	createdAt      time.Time
	updatedAt      time.Time
	tokenGenerator services.TokenGenerator
}

// NewClient creates a new client with a freshly generated bearer token.
func NewClient(name string, config Config) (*Client, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	tokenGen := services.NewTokenGenerator()
	plainToken, tokenHash, err := tokenGen.GenerateAPIToken(TokenPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to generate client token: %w", err)
	}

	sid, err := id.GenerateWithPrefix(id.PrefixClient, id.DefaultLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate client sid: %w", err)
	}

	now := time.Now()
	return &Client{
		sid:            sid,
		name:           name,
		tokenHash:      tokenHash,
		apiToken:       plainToken,
		config:         config,
		createdAt:      now,
		updatedAt:      now,
		tokenGenerator: tokenGen,
	}, nil
}

// ReconstructClient rebuilds a client from persistence.
func ReconstructClient(
	clientID uint,
	sid string,
	name string,
	tokenHash string,
	currentVersion *string,
	targetVersion *string,
	lastSeenAt *time.Time,
	config Config,
	createdAt, updatedAt time.Time,
) (*Client, error) {
	if clientID == 0 {
		return nil, fmt.Errorf("client ID cannot be zero")
	}
	if sid == "" {
		return nil, fmt.Errorf("client sid is required")
	}
	if name == "" {
		return nil, ErrNameRequired
	}
	if tokenHash == "" {
		return nil, fmt.Errorf("token hash is required")
	}

	return &Client{
		id:             clientID,
		sid:            sid,
		name:           name,
		tokenHash:      tokenHash,
		currentVersion: currentVersion,
		targetVersion:  targetVersion,
		lastSeenAt:     lastSeenAt,
		config:         config,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
		tokenGenerator: services.NewTokenGenerator(),
	}, nil
}

// ID returns the internal client ID
func (c *Client) ID() uint {
	return c.id
}

// SID returns the public client identifier
func (c *Client) SID() string {
	return c.sid
}

// Name returns the client name
func (c *Client) Name() string {
	return c.name
}

// TokenHash returns the bearer token hash
func (c *Client) TokenHash() string {
	return c.tokenHash
}

// CurrentVersion returns the last version the client reported running, nil
// before first contact.
func (c *Client) CurrentVersion() *string {
	return c.currentVersion
}

// TargetVersion returns the version currently aimed at the client, nil when
// no deploy is in effect.
func (c *Client) TargetVersion() *string {
	return c.targetVersion
}

// LastSeenAt returns the time of the last authenticated check-in.
func (c *Client) LastSeenAt() *time.Time {
	return c.lastSeenAt
}

// Config returns the client-side apply configuration bag.
func (c *Client) Config() Config {
	return c.config
}

// CreatedAt returns when the client was registered
func (c *Client) CreatedAt() time.Time {
	return c.createdAt
}

// UpdatedAt returns when the client was last updated
func (c *Client) UpdatedAt() time.Time {
	return c.updatedAt
}

// SetID sets the client ID (only for persistence layer use)
func (c *Client) SetID(clientID uint) error {
	if c.id != 0 {
		return fmt.Errorf("client ID is already set")
	}
	if clientID == 0 {
		return fmt.Errorf("client ID cannot be zero")
	}
	c.id = clientID
	return nil
}

// RegenerateToken issues a replacement bearer token, invalidating the old
// hash. The returned plain token is shown once and never stored.
func (c *Client) RegenerateToken() (string, error) {
	if c.tokenGenerator == nil {
		c.tokenGenerator = services.NewTokenGenerator()
	}

	plainToken, tokenHash, err := c.tokenGenerator.GenerateAPIToken(TokenPrefix)
	if err != nil {
		return "", fmt.Errorf("failed to regenerate client token: %w", err)
	}

	c.apiToken = plainToken
	c.tokenHash = tokenHash
	c.updatedAt = time.Now()

	return plainToken, nil
}

// VerifyAPIToken verifies a presented plain token against the stored hash
// in constant time.
func (c *Client) VerifyAPIToken(plainToken string) bool {
	if c.tokenGenerator == nil {
		c.tokenGenerator = services.NewTokenGenerator()
	}
	computedHash := c.tokenGenerator.HashToken(plainToken)
	return subtle.ConstantTimeCompare([]byte(c.tokenHash), []byte(computedHash)) == 1
}

// GetAPIToken returns the plain bearer token (only available after creation
// or regeneration).
func (c *Client) GetAPIToken() string {
	return c.apiToken
}

// ClearAPIToken clears the plain token from memory.
func (c *Client) ClearAPIToken() {
	c.apiToken = ""
}

// UpdateConfig replaces the apply configuration bag.
func (c *Client) UpdateConfig(config Config) error {
	if err := config.Validate(); err != nil {
		return err
	}
	c.config = config
	c.updatedAt = time.Now()
	return nil
}

// RecordCheckin marks the client as seen and records the version it reports
// running. Empty reported versions leave the stored value untouched.
func (c *Client) RecordCheckin(reportedVersion string, at time.Time) {
	c.lastSeenAt = &at
	if reportedVersion != "" {
		c.currentVersion = &reportedVersion
	}
	c.updatedAt = at
}

// SetTarget aims a version at the client.
func (c *Client) SetTarget(version string) {
	c.targetVersion = &version
	c.updatedAt = time.Now()
}

// ClearTarget removes the deploy target.
func (c *Client) ClearTarget() {
	c.targetVersion = nil
	c.updatedAt = time.Now()
}

// AdvanceCurrent records a completed update: the client now runs version and
// no deploy target remains.
func (c *Client) AdvanceCurrent(version string) {
	c.currentVersion = &version
	c.targetVersion = nil
	c.updatedAt = time.Now()
}
