package id

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

const (
	// Base62 alphabet: 0-9, A-Z, a-z
	alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// DefaultLength is the default length for generated short IDs
	DefaultLength = 12
)

// Prefixes for different entity types (Stripe-style)
const (
	PrefixClient    = "cl"
	PrefixVersion   = "ver"
	PrefixUpdateLog = "upd"
)

// Generate creates a random short ID with the specified length using Base62 encoding.
// The generated ID is cryptographically random and URL-safe.
func Generate(length int) (string, error) {
	if length <= 0 {
		length = DefaultLength
	}

	result := make([]byte, length)
	alphabetLen := big.NewInt(int64(len(alphabet)))

	for i := 0; i < length; i++ {
		num, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", fmt.Errorf("failed to generate random number: %w", err)
		}
		result[i] = alphabet[num.Int64()]
	}

	return string(result), nil
}

// MustGenerate creates a random short ID and panics on error.
// Use this only when you're certain the generation won't fail.
func MustGenerate(length int) string {
	id, err := Generate(length)
	if err != nil {
		panic(err)
	}
	return id
}

// GenerateWithPrefix creates a prefixed ID in the format "prefix_randomstring".
// This follows the Stripe-style ID pattern for human-readable identifiers.
func GenerateWithPrefix(prefix string, length int) (string, error) {
	id, err := Generate(length)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s_%s", prefix, id), nil
}

// MustGenerateWithPrefix creates a prefixed ID and panics on error.
func MustGenerateWithPrefix(prefix string, length int) string {
	id, err := GenerateWithPrefix(prefix, length)
	if err != nil {
		panic(err)
	}
	return id
}

// FormatWithPrefix adds a prefix to an existing short ID.
// Example: FormatWithPrefix("cl", "xK9mP2vL3nQ") returns "cl_xK9mP2vL3nQ"
func FormatWithPrefix(prefix, shortID string) string {
	if shortID == "" {
		return ""
	}
	return fmt.Sprintf("%s_%s", prefix, shortID)
}

// ParsePrefixedID extracts the prefix and short ID from a prefixed ID string.
// Example: ParsePrefixedID("cl_xK9mP2vL3nQ") returns ("cl", "xK9mP2vL3nQ", nil)
func ParsePrefixedID(prefixedID string) (prefix, shortID string, err error) {
	parts := strings.SplitN(prefixedID, "_", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("invalid prefixed ID format: %s", prefixedID)
	}
	return parts[0], parts[1], nil
}

// ValidatePrefix checks if the prefixed ID has the expected prefix.
func ValidatePrefix(prefixedID, expectedPrefix string) error {
	prefix, _, err := ParsePrefixedID(prefixedID)
	if err != nil {
		return err
	}
	if prefix != expectedPrefix {
		return fmt.Errorf("invalid prefix: expected %s, got %s", expectedPrefix, prefix)
	}
	return nil
}

// ExtractShortID extracts the short ID from a prefixed ID, validating the prefix.
// Example: ExtractShortID("cl_xK9mP2vL3nQ", "cl") returns "xK9mP2vL3nQ"
func ExtractShortID(prefixedID, expectedPrefix string) (string, error) {
	if err := ValidatePrefix(prefixedID, expectedPrefix); err != nil {
		return "", err
	}
	_, shortID, _ := ParsePrefixedID(prefixedID)
	return shortID, nil
}

// NewClientID generates a new client short ID.
func NewClientID() (string, error) {
	return Generate(DefaultLength)
}

// NewVersionID generates a new version short ID.
func NewVersionID() (string, error) {
	return Generate(DefaultLength)
}

// NewUpdateLogID generates a new update log short ID.
func NewUpdateLogID() (string, error) {
	return Generate(DefaultLength)
}

// FormatClientID formats a short ID as a client prefixed ID.
func FormatClientID(shortID string) string {
	return FormatWithPrefix(PrefixClient, shortID)
}

// FormatVersionID formats a short ID as a version prefixed ID.
func FormatVersionID(shortID string) string {
	return FormatWithPrefix(PrefixVersion, shortID)
}

// FormatUpdateLogID formats a short ID as an update log prefixed ID.
func FormatUpdateLogID(shortID string) string {
	return FormatWithPrefix(PrefixUpdateLog, shortID)
}

// ParseClientID extracts the short ID from a client prefixed ID.
func ParseClientID(prefixedID string) (string, error) {
	return ExtractShortID(prefixedID, PrefixClient)
}

// ParseVersionID extracts the short ID from a version prefixed ID.
func ParseVersionID(prefixedID string) (string, error) {
	return ExtractShortID(prefixedID, PrefixVersion)
}

// ParseUpdateLogID extracts the short ID from an update log prefixed ID.
func ParseUpdateLogID(prefixedID string) (string, error) {
	return ExtractShortID(prefixedID, PrefixUpdateLog)
}
