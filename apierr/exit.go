package apierr

// Process exit codes.
const (
	ExitOK         = 0
	ExitGeneral    = 1
	ExitAPI        = 2
	ExitAuth       = 3
	ExitNotFound   = 4
	ExitValidation = 5
)

// ExitCode maps an error to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	switch KindOf(err) {
	case Authentication:
		return ExitAuth
	case NotFound:
		return ExitNotFound
	case Validation:
		return ExitValidation
	case RateLimited, Transport, ServerError:
		return ExitAPI
	}
	return ExitGeneral
}
