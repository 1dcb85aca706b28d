// Package x11 grabs key chords on the X server and reports their presses
// and releases.
package x11

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sync"

	"github.com/renato0307/chordd/internal/domain"
	"github.com/renato0307/chordd/internal/logging"
	"github.com/renato0307/chordd/internal/ports"
)

const eventBuffer = 64

// coreModifiers are the state bits a grab is matched against
const coreModifiers = 0xff

// ErrConnectionLost is sent on Errors when the X connection drops
var ErrConnectionLost = errors.New("X connection closed")

// protocolError is an X error reply; the event loop keeps going after one
type protocolError struct {
	err error
}

func (e protocolError) Error() string   { return "X protocol error: " + e.err.Error() }
func (e protocolError) Unwrap() error   { return e.err }
func (e protocolError) Transient() bool { return true }

type grabKey struct {
	keycode byte
	mods    uint16
}

// Keyboard owns the X connection. One goroutine reads it, so events arrive
// in the order the server sent them.
type Keyboard struct {
	display display
	events  chan domain.KeyEvent
	errors  chan error
	done    chan struct{}
	wg      sync.WaitGroup

	mu     sync.Mutex
	active *GrabSession
	grabs  map[grabKey]domain.Chord
	closed bool
}

// Verify interface compliance at compile time
var (
	_ ports.EventSource = (*Keyboard)(nil)
	_ ports.GrabSession = (*GrabSession)(nil)
	_ ports.TransientError = protocolError{}
)

// NewKeyboard connects to $DISPLAY
func NewKeyboard() (*Keyboard, error) {
	if os.Getenv("DISPLAY") == "" {
		return nil, domain.ErrNoDisplay
	}
	d, err := openDisplay()
	if err != nil {
		return nil, err
	}
	return newKeyboard(d), nil
}

func newKeyboard(d display) *Keyboard {
	k := &Keyboard{
		display: d,
		events:  make(chan domain.KeyEvent, eventBuffer),
		errors:  make(chan error, 1),
		done:    make(chan struct{}),
		grabs:   make(map[grabKey]domain.Chord),
	}
	k.wg.Add(1)
	go k.readEvents()
	return k
}

// Events returns the stream of key events for grabbed chords
func (k *Keyboard) Events() <-chan domain.KeyEvent { return k.events }

// Errors returns failures of the connection
func (k *Keyboard) Errors() <-chan error { return k.errors }

// Acquire opens the grab session. Only one session may be active per keyboard.
func (k *Keyboard) Acquire() (*GrabSession, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.closed {
		return nil, domain.ErrGrabReleased
	}
	if k.active != nil {
		return nil, domain.ErrGrabActive
	}
	k.active = &GrabSession{keyboard: k}
	return k.active, nil
}

// Close releases the active session and closes the connection
func (k *Keyboard) Close() error {
	k.mu.Lock()
	if k.closed {
		k.mu.Unlock()
		return nil
	}
	k.closed = true
	session := k.active
	k.mu.Unlock()

	var err error
	if session != nil {
		err = session.Release()
	}
	close(k.done)
	k.display.Close()
	k.wg.Wait()
	return err
}

func (k *Keyboard) readEvents() {
	defer k.wg.Done()
	for {
		raw, ok, err := k.display.NextEvent()
		if !ok {
			select {
			case <-k.done:
			case k.errors <- ErrConnectionLost:
			}
			return
		}
		if err != nil {
			select {
			case k.errors <- protocolError{err: err}:
			default:
				logging.Logger.Warn("Dropped X protocol error", "error", err)
			}
			continue
		}

		chord, found := k.resolve(raw)
		if !found {
			continue
		}
		kind := domain.KeyRelease
		if raw.press {
			kind = domain.KeyPress
		}
		select {
		case k.events <- domain.KeyEvent{Kind: kind, Chord: chord}:
		case <-k.done:
			return
		}
	}
}

// resolve maps a raw event back to the chord that was grabbed for it.
// Releases fall back to the keycode alone, since modifiers may already be up.
func (k *Keyboard) resolve(raw rawKeyEvent) (domain.Chord, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if c, ok := k.grabs[grabKey{raw.keycode, raw.state & coreModifiers}]; ok {
		return c, true
	}
	if c, ok := k.grabs[grabKey{raw.keycode, uint16(domain.ModAny)}]; ok {
		return c, true
	}
	if !raw.press {
		for key, c := range k.grabs {
			if key.keycode == raw.keycode {
				return c, true
			}
		}
	}
	return domain.Chord{}, false
}

// GrabSession owns the grabs made through it
type GrabSession struct {
	keyboard *Keyboard

	mu       sync.Mutex
	held     []grabKey
	released bool
}

// Grab asks the X server for exclusive delivery of the chord on every keycode
// that produces its keysym
func (s *GrabSession) Grab(chord domain.Chord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.released {
		return domain.ErrGrabReleased
	}
	if chord.Symbol == 0 || chord.Symbol > math.MaxUint32 {
		return fmt.Errorf("%w: %#x", domain.ErrUnknownSymbol, chord.Symbol)
	}
	if chord.Modifiers > math.MaxUint16 {
		return fmt.Errorf("%w: %#x", domain.ErrUnknownModifier, uint32(chord.Modifiers))
	}

	k := s.keyboard
	codes := k.display.Keycodes(uint32(chord.Symbol))
	if len(codes) == 0 {
		return fmt.Errorf("no keycode produces keysym %s", domain.KeysymName(chord.Symbol))
	}

	mods := uint16(chord.Modifiers)
	for _, code := range codes {
		if err := k.display.Grab(code, mods); err != nil {
			return err
		}
		key := grabKey{keycode: code, mods: mods}
		s.held = append(s.held, key)
		k.mu.Lock()
		k.grabs[key] = chord
		k.mu.Unlock()
	}

	logging.Logger.Debug("Grabbed chord", "chord", chord.String(), "keycodes", codes)
	return nil
}

// Release ungrabs every chord. Calling it again is a no-op.
func (s *GrabSession) Release() error {
	s.mu.Lock()
	if s.released {
		s.mu.Unlock()
		return nil
	}
	s.released = true
	held := s.held
	s.held = nil
	s.mu.Unlock()

	k := s.keyboard
	var errs []error
	for _, key := range held {
		if err := k.display.Ungrab(key.keycode, key.mods); err != nil {
			errs = append(errs, err)
		}
	}

	k.mu.Lock()
	for _, key := range held {
		delete(k.grabs, key)
	}
	if k.active == s {
		k.active = nil
	}
	k.mu.Unlock()

	logging.Logger.Debug("Released grabs", "count", len(held))
	return errors.Join(errs...)
}
