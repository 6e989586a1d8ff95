package morph

import "errors"

// Error kinds reported by the engine. Callers match them with errors.Is; the
// returned errors wrap these sentinels with call-specific context.
var (
	ErrInvalidDimensions    = errors.New("invalid dimensions")
	ErrInvalidParameter     = errors.New("invalid parameter")
	ErrUnknownPreset        = errors.New("unknown preset")
	ErrOutOfBounds          = errors.New("out of bounds")
	ErrNotInitialized       = errors.New("session not initialized")
	ErrSessionBusy          = errors.New("session busy")
	ErrNumericalInstability = errors.New("numerical instability")
)
