package client

import "errors"

// Sentinel errors for REDit server operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrValidation indicates locally malformed input. No network call
	// was made and none will succeed until the input is fixed.
	ErrValidation = errors.New("invalid input")

	// ErrNotFound indicates the requested job, dataset, or algorithm
	// does not exist on the server.
	ErrNotFound = errors.New("not found")

	// ErrService indicates the server answered with a non-2xx status.
	// The wrapped message carries the server's status and body verbatim.
	ErrService = errors.New("server error")

	// ErrTransport indicates the request never produced a response:
	// connection refused, DNS failure, or timeout. The monitor loop
	// retries these a bounded number of times; everywhere else they
	// are fatal.
	ErrTransport = errors.New("transport error")
)
