package tutorkit

import (
	"fmt"
	"strings"
)

// Provider identifies a reasoning backend vendor.
type Provider string

// String returns the provider identifier.
func (p Provider) String() string { return string(p) }

// Supported providers.
const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderGoogle    Provider = "google"
)

// ParseProvider parses a provider name, case-insensitively.
func ParseProvider(s string) (Provider, error) {
	switch p := Provider(strings.ToLower(strings.TrimSpace(s))); p {
	case ProviderOpenAI, ProviderAnthropic, ProviderGoogle:
		return p, nil
	case "":
		return "", fmt.Errorf("provider: %w", ErrEmptyInput)
	default:
		return "", fmt.Errorf("provider: unsupported %q", s)
	}
}
