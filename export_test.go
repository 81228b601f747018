package drivecli

// Helpers that let the external drivecli_test package reach unexported constructs.

func NewProviderError(msg string, cause error) error {
	return newProviderError(msg, cause)
}

func NewIOError(msg string, cause error) error {
	return newIOError(msg, cause)
}

var IsPortableName = isPortableName
