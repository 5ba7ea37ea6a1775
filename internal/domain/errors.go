package domain

import "errors"

// Error kinds shared by every layer. Wrap them with fmt.Errorf("%w: ...")
// and test with errors.Is.
var (
	// ErrValidation marks malformed or out-of-range input.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks a referenced lot that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict marks a concurrent write race. Retryable.
	ErrConflict = errors.New("concurrent modification")

	// ErrUpstreamFetch marks a network or HTTP failure talking to the price source.
	ErrUpstreamFetch = errors.New("upstream fetch failed")

	// ErrParse marks an upstream payload that arrived but could not be interpreted.
	ErrParse = errors.New("upstream payload unparseable")

	// ErrPersistence marks a record store I/O failure.
	ErrPersistence = errors.New("persistence failure")
)

// ErrorKind names the kind of err for callers that only see a message.
// Unknown errors are reported as "internal".
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrUpstreamFetch):
		return "upstream_fetch"
	case errors.Is(err, ErrParse):
		return "parse"
	case errors.Is(err, ErrPersistence):
		return "persistence"
	default:
		return "internal"
	}
}
