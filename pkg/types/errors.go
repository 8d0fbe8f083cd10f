package types

import (
	"errors"
)

// Error kinds shared by every layer of the curation pipeline. Layers return a
// usable default together with one of these wrapped, and the orchestrator
// decides what to do based on the kind.
var (
	// ErrTransport covers network failures and non-2xx responses
	ErrTransport = errors.New("transport failure")

	// ErrMalformedResponse is returned when a response body is missing expected fields
	ErrMalformedResponse = errors.New("malformed response")

	// ErrNotCurated marks an issue that was deliberately left out of the output
	ErrNotCurated = errors.New("issue not curated")

	// ErrClassificationDegraded marks a fallback analysis
	ErrClassificationDegraded = errors.New("classification degraded")
)
