package x11

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renato0307/chordd/internal/domain"
	"github.com/renato0307/chordd/internal/services"
)

const (
	symA      = 0x61
	symReturn = 0xff0d
	keycodeA  = 38
	keycodeRt = 36
	deadline  = 2 * time.Second
)

type fakeItem struct {
	ev  rawKeyEvent
	err error
}

// fakeDisplay mimics an X server with a fixed keymap
type fakeDisplay struct {
	keymap  map[uint32][]byte
	queue   chan fakeItem
	closed  chan struct{}
	once    sync.Once
	grabErr error

	mu      sync.Mutex
	grabbed map[grabKey]bool
	ungrabs int
}

func newFakeDisplay() *fakeDisplay {
	return &fakeDisplay{
		keymap: map[uint32][]byte{
			symA:      {keycodeA},
			symReturn: {keycodeRt, 104},
		},
		queue:   make(chan fakeItem, 2*eventBuffer),
		closed:  make(chan struct{}),
		grabbed: make(map[grabKey]bool),
	}
}

func (f *fakeDisplay) Keycodes(sym uint32) []byte { return f.keymap[sym] }

func (f *fakeDisplay) Grab(keycode byte, mods uint16) error {
	if f.grabErr != nil {
		return f.grabErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.grabbed[grabKey{keycode, mods}] = true
	return nil
}

func (f *fakeDisplay) Ungrab(keycode byte, mods uint16) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.grabbed, grabKey{keycode, mods})
	f.ungrabs++
	return nil
}

func (f *fakeDisplay) NextEvent() (rawKeyEvent, bool, error) {
	select {
	case item := <-f.queue:
		return item.ev, true, item.err
	case <-f.closed:
		return rawKeyEvent{}, false, nil
	}
}

func (f *fakeDisplay) Close() {
	f.once.Do(func() { close(f.closed) })
}

func (f *fakeDisplay) press(code byte, state uint16) {
	f.queue <- fakeItem{ev: rawKeyEvent{press: true, keycode: code, state: state}}
}

func (f *fakeDisplay) release(code byte, state uint16) {
	f.queue <- fakeItem{ev: rawKeyEvent{keycode: code, state: state}}
}

func (f *fakeDisplay) grabCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.grabbed)
}

func nextEvent(t *testing.T, k *Keyboard) domain.KeyEvent {
	t.Helper()
	select {
	case ev := <-k.Events():
		return ev
	case <-time.After(deadline):
		t.Fatal("no key event delivered")
		return domain.KeyEvent{}
	}
}

func returnsWithin(t *testing.T, fn func() error) {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- fn() }()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(deadline):
		t.Fatal("call did not return")
	}
}

func TestNewKeyboard_RequiresDisplay(t *testing.T) {
	t.Setenv("DISPLAY", "")

	_, err := NewKeyboard()
	assert.ErrorIs(t, err, domain.ErrNoDisplay)
}

func TestAcquire_SecondSessionFails(t *testing.T) {
	k := newKeyboard(newFakeDisplay())
	defer k.Close()

	_, err := k.Acquire()
	require.NoError(t, err)

	_, err = k.Acquire()
	assert.ErrorIs(t, err, domain.ErrGrabActive)
}

func TestAcquire_AfterReleaseSucceeds(t *testing.T) {
	k := newKeyboard(newFakeDisplay())
	defer k.Close()

	s, err := k.Acquire()
	require.NoError(t, err)
	require.NoError(t, s.Release())

	_, err = k.Acquire()
	assert.NoError(t, err)
}

func TestAcquire_AfterCloseFails(t *testing.T) {
	k := newKeyboard(newFakeDisplay())
	require.NoError(t, k.Close())

	_, err := k.Acquire()
	assert.ErrorIs(t, err, domain.ErrGrabReleased)
}

func TestGrab_ForwardsPressAndRelease(t *testing.T) {
	d := newFakeDisplay()
	k := newKeyboard(d)
	defer k.Close()

	s, err := k.Acquire()
	require.NoError(t, err)
	chord := domain.Chord{Modifiers: domain.Mod4, Symbol: symA}
	require.NoError(t, s.Grab(chord))

	d.press(keycodeA, uint16(domain.Mod4))
	d.release(keycodeA, uint16(domain.Mod4))

	assert.Equal(t, domain.KeyEvent{Kind: domain.KeyPress, Chord: chord}, nextEvent(t, k))
	assert.Equal(t, domain.KeyEvent{Kind: domain.KeyRelease, Chord: chord}, nextEvent(t, k))

	returnsWithin(t, s.Release)
	assert.Zero(t, d.grabCount())
	returnsWithin(t, k.Close)
}

func TestGrab_EventsKeepServerOrder(t *testing.T) {
	d := newFakeDisplay()
	k := newKeyboard(d)
	defer k.Close()

	s, err := k.Acquire()
	require.NoError(t, err)
	a := domain.Chord{Modifiers: domain.Mod4, Symbol: symA}
	ret := domain.Chord{Modifiers: domain.ModCtrl, Symbol: symReturn}
	require.NoError(t, s.Grab(a))
	require.NoError(t, s.Grab(ret))

	d.press(keycodeA, uint16(domain.Mod4))
	d.press(104, uint16(domain.ModCtrl))
	d.release(keycodeA, uint16(domain.Mod4))
	d.release(104, uint16(domain.ModCtrl))

	want := []domain.KeyEvent{
		{Kind: domain.KeyPress, Chord: a},
		{Kind: domain.KeyPress, Chord: ret},
		{Kind: domain.KeyRelease, Chord: a},
		{Kind: domain.KeyRelease, Chord: ret},
	}
	for _, w := range want {
		assert.Equal(t, w, nextEvent(t, k))
	}
}

func TestGrab_GrabsEveryKeycodeOfTheSymbol(t *testing.T) {
	d := newFakeDisplay()
	k := newKeyboard(d)
	defer k.Close()

	s, err := k.Acquire()
	require.NoError(t, err)
	require.NoError(t, s.Grab(domain.Chord{Modifiers: domain.ModCtrl, Symbol: symReturn}))

	assert.Equal(t, 2, d.grabCount())
	require.NoError(t, s.Release())
	assert.Equal(t, 2, d.ungrabs)
}

func TestGrab_ServerRefusalIsReturned(t *testing.T) {
	d := newFakeDisplay()
	d.grabErr = errors.New("BadAccess")
	k := newKeyboard(d)
	defer k.Close()

	s, err := k.Acquire()
	require.NoError(t, err)

	err = s.Grab(domain.Chord{Modifiers: domain.Mod4, Symbol: symA})
	assert.EqualError(t, err, "BadAccess")
}

func TestGrab_RejectsUnmappedAndOversizedChords(t *testing.T) {
	k := newKeyboard(newFakeDisplay())
	defer k.Close()

	s, err := k.Acquire()
	require.NoError(t, err)

	assert.Error(t, s.Grab(domain.Chord{Modifiers: domain.Mod4, Symbol: 0x1008ff13}))
	assert.ErrorIs(t, s.Grab(domain.Chord{Modifiers: domain.Mod4, Symbol: 1 << 32}), domain.ErrUnknownSymbol)
	assert.ErrorIs(t, s.Grab(domain.Chord{Modifiers: 1 << 16, Symbol: symA}), domain.ErrUnknownModifier)
}

func TestGrab_AfterReleaseFails(t *testing.T) {
	k := newKeyboard(newFakeDisplay())
	defer k.Close()

	s, err := k.Acquire()
	require.NoError(t, err)
	require.NoError(t, s.Release())

	assert.ErrorIs(t, s.Grab(domain.Chord{Modifiers: domain.Mod4, Symbol: symA}), domain.ErrGrabReleased)
}

func TestGrab_AnyModifierMatchesAnyState(t *testing.T) {
	d := newFakeDisplay()
	k := newKeyboard(d)
	defer k.Close()

	s, err := k.Acquire()
	require.NoError(t, err)
	chord := domain.Chord{Modifiers: domain.ModAny, Symbol: symA}
	require.NoError(t, s.Grab(chord))

	d.press(keycodeA, uint16(domain.ModShift|domain.Mod2))

	assert.Equal(t, domain.KeyEvent{Kind: domain.KeyPress, Chord: chord}, nextEvent(t, k))
}

func TestGrab_ReleaseAfterModifiersLifted(t *testing.T) {
	d := newFakeDisplay()
	k := newKeyboard(d)
	defer k.Close()

	s, err := k.Acquire()
	require.NoError(t, err)
	chord := domain.Chord{Modifiers: domain.Mod4, Symbol: symA}
	require.NoError(t, s.Grab(chord))

	d.press(keycodeA, uint16(domain.Mod4))
	d.release(keycodeA, 0)

	nextEvent(t, k)
	assert.Equal(t, domain.KeyEvent{Kind: domain.KeyRelease, Chord: chord}, nextEvent(t, k))
}

func TestGrab_UngrabbedPressIsIgnored(t *testing.T) {
	d := newFakeDisplay()
	k := newKeyboard(d)
	defer k.Close()

	s, err := k.Acquire()
	require.NoError(t, err)
	chord := domain.Chord{Modifiers: domain.Mod4, Symbol: symA}
	require.NoError(t, s.Grab(chord))

	d.press(keycodeRt, 0)
	d.press(keycodeA, uint16(domain.Mod4))

	assert.Equal(t, domain.KeyEvent{Kind: domain.KeyPress, Chord: chord}, nextEvent(t, k))
}

func TestRelease_IsIdempotent(t *testing.T) {
	d := newFakeDisplay()
	k := newKeyboard(d)
	defer k.Close()

	s, err := k.Acquire()
	require.NoError(t, err)
	require.NoError(t, s.Grab(domain.Chord{Modifiers: domain.Mod4, Symbol: symA}))

	require.NoError(t, s.Release())
	require.NoError(t, s.Release())
	assert.Equal(t, 1, d.ungrabs)
}

func TestClose_ReleasesActiveSession(t *testing.T) {
	d := newFakeDisplay()
	k := newKeyboard(d)

	s, err := k.Acquire()
	require.NoError(t, err)
	require.NoError(t, s.Grab(domain.Chord{Modifiers: domain.Mod4, Symbol: symA}))

	returnsWithin(t, k.Close)
	assert.Zero(t, d.grabCount())
	returnsWithin(t, k.Close)
}

func TestClose_WithUnreadEvents(t *testing.T) {
	d := newFakeDisplay()
	k := newKeyboard(d)

	s, err := k.Acquire()
	require.NoError(t, err)
	require.NoError(t, s.Grab(domain.Chord{Modifiers: domain.Mod4, Symbol: symA}))

	for i := 0; i < eventBuffer+4; i++ {
		d.press(keycodeA, uint16(domain.Mod4))
	}
	returnsWithin(t, k.Close)
}

func TestErrors_ProtocolErrorIsTransient(t *testing.T) {
	d := newFakeDisplay()
	k := newKeyboard(d)
	defer k.Close()

	d.queue <- fakeItem{err: errors.New("BadWindow")}

	select {
	case err := <-k.Errors():
		assert.True(t, services.IsTransient(err))
		assert.ErrorContains(t, err, "BadWindow")
	case <-time.After(deadline):
		t.Fatal("no error delivered")
	}
}

func TestErrors_LostConnectionIsFatal(t *testing.T) {
	d := newFakeDisplay()
	k := newKeyboard(d)
	defer k.Close()

	d.Close()

	select {
	case err := <-k.Errors():
		assert.ErrorIs(t, err, ErrConnectionLost)
		assert.False(t, services.IsTransient(err))
	case <-time.After(deadline):
		t.Fatal("no error delivered")
	}
}

func TestKeyboard_LiveServer(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping X server test in short mode")
	}
	k, err := NewKeyboard()
	if errors.Is(err, domain.ErrNoDisplay) {
		t.Skip("no X display")
	}
	require.NoError(t, err)
	defer k.Close()

	s, err := k.Acquire()
	require.NoError(t, err)
	// mod4+mod5+F35 is unlikely to be held by anything else
	err = s.Grab(domain.Chord{Modifiers: domain.Mod4 | domain.Mod5, Symbol: 0xffe0})
	if err != nil {
		t.Skipf("keymap has no F35: %v", err)
	}

	returnsWithin(t, s.Release)
	returnsWithin(t, k.Close)
}
