package domain

// KeyEventKind tells presses from releases
type KeyEventKind int

const (
	KeyOther KeyEventKind = iota
	KeyPress
	KeyRelease
)

func (k KeyEventKind) String() string {
	switch k {
	case KeyPress:
		return "press"
	case KeyRelease:
		return "release"
	default:
		return "other"
	}
}

// KeyEvent is a decoded keyboard notification. The chord carries the raw
// modifier state reported by the display server, lock bits included.
type KeyEvent struct {
	Kind  KeyEventKind
	Chord Chord
}
