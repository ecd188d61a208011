package errors

// ExitCodeError pairs a failure with the exit code the process should
// terminate with. Fatal paths build one with NewError and hand it to
// framework.HardExitError, which unwraps the code.
type ExitCodeError struct {
	code ExitCode
	error
}

// NewError tags err with an exit code. Returns nil for a nil err so
// callers can tag unconditionally.
func NewError(err error, exitCode ExitCode) *ExitCodeError {
	if err == nil {
		return nil
	}
	return &ExitCodeError{exitCode, err}
}

func (e *ExitCodeError) GetExitCode() ExitCode {
	if e == nil {
		return 0
	}
	return e.code
}
