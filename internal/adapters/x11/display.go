package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"

	"github.com/renato0307/chordd/internal/domain"
)

// rawKeyEvent is a key press or release as the server reports it
type rawKeyEvent struct {
	press   bool
	keycode byte
	state   uint16
}

// display is the part of an X connection the keyboard needs
type display interface {
	// Keycodes lists the keycodes whose mapping contains sym
	Keycodes(sym uint32) []byte
	Grab(keycode byte, mods uint16) error
	Ungrab(keycode byte, mods uint16) error
	// NextEvent blocks for the next key event. ok is false once the
	// connection is closed; err carries protocol errors.
	NextEvent() (ev rawKeyEvent, ok bool, err error)
	Close()
}

// xgbDisplay is a display backed by one xgb connection grabbing on the root window
type xgbDisplay struct {
	conn       *xgb.Conn
	root       xproto.Window
	minKeycode xproto.Keycode
	perKeycode int
	keysyms    []xproto.Keysym
}

var _ display = (*xgbDisplay)(nil)

// openDisplay connects to $DISPLAY and loads the keyboard mapping
func openDisplay() (*xgbDisplay, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNoDisplay, err)
	}

	setup := xproto.Setup(conn)
	count := byte(setup.MaxKeycode - setup.MinKeycode + 1)
	mapping, err := xproto.GetKeyboardMapping(conn, setup.MinKeycode, count).Reply()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to read keyboard mapping: %w", err)
	}

	return &xgbDisplay{
		conn:       conn,
		root:       setup.DefaultScreen(conn).Root,
		minKeycode: setup.MinKeycode,
		perKeycode: int(mapping.KeysymsPerKeycode),
		keysyms:    mapping.Keysyms,
	}, nil
}

func (d *xgbDisplay) Keycodes(sym uint32) []byte {
	if d.perKeycode == 0 {
		return nil
	}
	var codes []byte
	for i := 0; i < len(d.keysyms)/d.perKeycode; i++ {
		for col := 0; col < d.perKeycode; col++ {
			if uint32(d.keysyms[i*d.perKeycode+col]) == sym {
				codes = append(codes, byte(d.minKeycode)+byte(i))
				break
			}
		}
	}
	return codes
}

func (d *xgbDisplay) Grab(keycode byte, mods uint16) error {
	return xproto.GrabKeyChecked(d.conn, true, d.root, mods, xproto.Keycode(keycode),
		xproto.GrabModeAsync, xproto.GrabModeAsync).Check()
}

func (d *xgbDisplay) Ungrab(keycode byte, mods uint16) error {
	return xproto.UngrabKeyChecked(d.conn, xproto.Keycode(keycode), d.root, mods).Check()
}

func (d *xgbDisplay) NextEvent() (rawKeyEvent, bool, error) {
	for {
		ev, xerr := d.conn.WaitForEvent()
		if ev == nil && xerr == nil {
			return rawKeyEvent{}, false, nil
		}
		if xerr != nil {
			return rawKeyEvent{}, true, xerr
		}
		switch e := ev.(type) {
		case xproto.KeyPressEvent:
			return rawKeyEvent{press: true, keycode: byte(e.Detail), state: e.State}, true, nil
		case xproto.KeyReleaseEvent:
			return rawKeyEvent{keycode: byte(e.Detail), state: e.State}, true, nil
		}
	}
}

func (d *xgbDisplay) Close() {
	d.conn.Close()
}
