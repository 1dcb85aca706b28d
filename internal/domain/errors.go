package domain

import "errors"

var (
	ErrEmptyPattern     = errors.New("empty binding pattern")
	ErrUnknownSymbol    = errors.New("unknown key symbol")
	ErrUnknownModifier  = errors.New("unknown modifier")
	ErrInvalidChordKey  = errors.New("invalid chord key")
	ErrEmptyCommand     = errors.New("empty command")
	ErrDuplicatePattern = errors.New("cannot bind same pattern twice")
	ErrGrabActive       = errors.New("a grab session is already active")
	ErrGrabReleased     = errors.New("grab session already released")
	ErrNoDisplay        = errors.New("no X11 display available")
	ErrAlreadyRunning   = errors.New("another chordd instance holds the table lock")
)

// GrabError reports a chord the window system refused to grab
type GrabError struct {
	Chord Chord
	Err   error
}

func (e *GrabError) Error() string {
	return "unable to grab " + e.Chord.String() + ": " + e.Err.Error()
}

func (e *GrabError) Unwrap() error {
	return e.Err
}
