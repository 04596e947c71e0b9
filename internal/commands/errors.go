package commands

import (
	"fmt"
	"io"

	"todo/internal/exitcode"
	"todo/internal/service"
)

// ExitCodeFor maps an error's kind to an exit code.
func ExitCodeFor(err error) int {
	switch service.KindOf(err) {
	case service.KindValidation:
		return exitcode.UserError
	case service.KindAuth:
		return exitcode.AuthError
	case service.KindSetup:
		return exitcode.SetupError
	default:
		return exitcode.BackendError
	}
}

// ReportError prints err in the CLI's error format and returns its exit
// code. Backend messages are printed unchanged.
func ReportError(errOut io.Writer, err error) int {
	code := ExitCodeFor(err)
	switch code {
	case exitcode.UserError:
		fmt.Fprintf(errOut, "error: %s\n", err)
	case exitcode.AuthError:
		fmt.Fprintf(errOut, "error: auth error: %s\n", err)
	case exitcode.SetupError:
		fmt.Fprintf(errOut, "error: setup required: %s\n", service.SetupRequiredMessage)
		fmt.Fprintln(errOut, "hint: run `todo setup` and execute the printed SQL, or `todo setup --apply`")
	default:
		fmt.Fprintf(errOut, "error: backend error: %s\n", err)
	}
	return code
}
