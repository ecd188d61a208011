package errors

type ExitCode int

// Exit codes reported to the process supervisor. The numbering is part of
// the operational contract; gaps are codes that were retired and may be
// repurposed later.
const (
	SuccessExitCode               ExitCode = 0
	InitializationFailureExitCode ExitCode = 1
	RegistrationFailureExitCode   ExitCode = 2
	DisconnectedExitCode          ExitCode = 5
	OfferProcessingExitCode       ExitCode = 6
	LockUnavailableExitCode       ExitCode = 8
	APIServerExitCode             ExitCode = 9
	AlreadyUninstallingExitCode   ExitCode = 11
	DriverExitedExitCode          ExitCode = 13
)
