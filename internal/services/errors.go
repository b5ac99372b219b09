package services

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when a tenant-scoped record does not exist.
var ErrNotFound = errors.New("not found")

// ErrInvalidInput wraps request validation failures.
var ErrInvalidInput = errors.New("invalid input")

// MissingCredentials flags which messaging credentials a tenant lacks.
type MissingCredentials struct {
	WhatsappURL      bool `json:"whatsappUrl"`
	WhatsappAPIKey   bool `json:"whatsappApiKey"`
	WhatsappInstance bool `json:"whatsappInstance"`
}

// Any reports whether at least one credential is missing.
func (m MissingCredentials) Any() bool {
	return m.WhatsappURL || m.WhatsappAPIKey || m.WhatsappInstance
}

func (m MissingCredentials) names() []string {
	var names []string
	if m.WhatsappURL {
		names = append(names, "whatsappUrl")
	}
	if m.WhatsappAPIKey {
		names = append(names, "whatsappApiKey")
	}
	if m.WhatsappInstance {
		names = append(names, "whatsappInstance")
	}
	return names
}

// ConfigurationMissingError means a message had to be sent but the tenant's
// messaging credentials are incomplete.
type ConfigurationMissingError struct {
	Missing MissingCredentials
}

func (e *ConfigurationMissingError) Error() string {
	return fmt.Sprintf("messaging configuration missing: %s", strings.Join(e.Missing.names(), ", "))
}

// DispatchFailedError is one failed transmission. It never aborts a batch.
type DispatchFailedError struct {
	Phone string
	Err   error
}

func (e *DispatchFailedError) Error() string {
	return fmt.Sprintf("dispatch to %s failed: %v", e.Phone, e.Err)
}

func (e *DispatchFailedError) Unwrap() error {
	return e.Err
}
