package ledger

import "github.com/simaogato/goldfolio-backend/internal/domain"

// Result is the boundary shape of a ledger mutation: callers get a success
// flag and, on failure, a human-readable reason instead of an error value.
type Result struct {
	Success bool
	Error   string
	Kind    string
}

// ResultOf converts the outcome of a mutation into a Result.
func ResultOf(err error) Result {
	if err == nil {
		return Result{Success: true}
	}
	return Result{
		Success: false,
		Error:   err.Error(),
		Kind:    domain.ErrorKind(err),
	}
}
