package collector

import (
	"errors"
	"fmt"
)

// ErrProviderFetch wraps network and API failures for a symbol.
var ErrProviderFetch = errors.New("provider fetch failed")

// APIError represents a non-2xx answer from the provider.
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("finnhub API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}
