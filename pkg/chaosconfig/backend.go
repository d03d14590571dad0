package chaosconfig

import "context"

// Backend fetches the raw configuration document for the current
// container. Implementations differ only in transport; the returned
// bytes are expected to hold a JSON document (the parameter-store
// backend returns its string parameter value's bytes as they are).
type Backend interface {
	// Fetch returns the raw configuration bytes, or an error describing
	// why the fetch failed (unreachable endpoint, non-2xx response,
	// missing value, etc).
	Fetch(ctx context.Context) ([]byte, error)

	// Name identifies the backend for cold-start logging.
	Name() string
}
