// Package exitcode provides standardized exit codes for cratebump
package exitcode

// Exit codes for the cratebump CLI
const (
	Success           = 0
	GeneralError      = 1
	InvalidInput      = 2
	EditFailure       = 3
	ValidationFailure = 4
	PublishFailure    = 5
)

// String returns a human-readable description of the exit code
func String(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case InvalidInput:
		return "Invalid input or configuration"
	case EditFailure:
		return "Manifest edit failure"
	case ValidationFailure:
		return "Validation check failure"
	case PublishFailure:
		return "Publish failure"
	default:
		return "Unknown error"
	}
}
