package fleet

import "errors"

var (
	// ErrClientNotFound is returned when a client is not found.
	ErrClientNotFound = errors.New("client not found")

	// ErrNameRequired is returned when the client name is empty.
	ErrNameRequired = errors.New("client name is required")

	// ErrNameTaken is returned when registering a client name that is already in use.
	ErrNameTaken = errors.New("client name already in use")

	// ErrInvalidToken is returned when a presented bearer token does not
	// resolve to a client.
	ErrInvalidToken = errors.New("invalid client token")
)
