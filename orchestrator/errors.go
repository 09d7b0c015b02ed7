package orchestrator

import "errors"

// Sentinel errors for orchestrator operations.
var (
	ErrInvalidTransition = errors.New("invalid state transition")
	ErrSubmitDisabled    = errors.New("submit is disabled while the ZPL content is blank")
	ErrInputDisabled     = errors.New("input is disabled outside the input state")
	ErrUnsupportedFile   = errors.New("unsupported file type")
	ErrNoBlob            = errors.New("no PDF is loaded")
	ErrClosed            = errors.New("orchestrator is closed")
)
