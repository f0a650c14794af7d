// Package payment wraps the Stripe and PayPal APIs behind small gateways that
// speak the shop's own types.
package payment

import (
	"errors"
	"fmt"
)

var ErrNotConfigured = errors.New("payment provider not configured")

// ProviderError carries a provider failure with its original message and HTTP status.
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s (status %d)", e.Provider, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
