package ports

import "github.com/renato0307/chordd/internal/domain"

// Grabber requests exclusive delivery of a chord from the window system
type Grabber interface {
	Grab(chord domain.Chord) error
}

// GrabSession is the proof that grabs are active. Release ungrabs every chord
// grabbed through the session and is safe to call more than once.
type GrabSession interface {
	Grabber
	Release() error
}

// EventSource delivers decoded key events in arrival order.
// Errors sent on Errors are fatal unless they implement TransientError.
type EventSource interface {
	Events() <-chan domain.KeyEvent
	Errors() <-chan error
}

// TransientError marks event source failures the loop should retry past
type TransientError interface {
	Transient() bool
}
