package command

import (
	"errors"
	"fmt"

	"github.com/yndnr/confstore-go/internal/core/domain"
)

// Exit codes of confstore-cli.
const (
	ExitOK       = 0
	ExitFailure  = 1
	ExitUsage    = 2
	ExitNotFound = 3
)

// Explain renders err for the terminal with a hint for its class.
func Explain(err error) string {
	if err == nil {
		return ""
	}

	var hint string
	switch {
	case errors.Is(err, domain.ErrResolution):
		hint = "cannot resolve the Config Store endpoint: check --host and --lm-cmd-port, or pass --config-store-url"
	case errors.Is(err, domain.ErrTimeout):
		hint = "request timed out: the daemon did not answer in time, try a larger --timeout"
	case errors.Is(err, domain.ErrTransport):
		hint = "service unreachable: is the Config Store daemon running at this endpoint?"
	case errors.Is(err, domain.ErrSchemaMismatch):
		hint = "unexpected response: the daemon may use another --format or protocol version"
	case errors.Is(err, domain.ErrNotFound):
		hint = "key not found"
	case errors.Is(err, domain.ErrRemote):
		hint = "the Config Store rejected the request"
	case errors.Is(err, domain.ErrInvalidArgument):
		hint = "invalid argument"
	default:
		return err.Error()
	}

	var de *domain.DomainError
	if errors.As(err, &de) && de.Details != "" {
		hint += ": " + de.Details
	}
	return fmt.Sprintf("%s [%s]", hint, domain.GetErrorCode(err))
}

// ExitCode maps err to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, domain.ErrResolution):
		return ExitFailure
	case errors.Is(err, domain.ErrInvalidArgument):
		return ExitUsage
	case errors.Is(err, domain.ErrNotFound):
		return ExitNotFound
	}
	return ExitFailure
}
