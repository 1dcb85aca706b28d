package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// SymbolResolver maps a key name to a keysym. Zero means the name is unknown.
type SymbolResolver interface {
	Resolve(name string) uint64
}

// KeysymTable resolves X11 keysym names the way XStringToKeysym does:
// names are case-sensitive ("a" and "A" are different keys).
type KeysymTable struct {
	names map[string]uint64
}

// Compile-time interface verification
var _ SymbolResolver = (*KeysymTable)(nil)

// keysyms holds the named keysyms beyond the Latin-1 letters and digits,
// which are generated in init.
var keysyms = map[string]uint64{
	"space":        0x0020,
	"exclam":       0x0021,
	"quotedbl":     0x0022,
	"numbersign":   0x0023,
	"dollar":       0x0024,
	"percent":      0x0025,
	"ampersand":    0x0026,
	"apostrophe":   0x0027,
	"parenleft":    0x0028,
	"parenright":   0x0029,
	"asterisk":     0x002a,
	"plus":         0x002b,
	"comma":        0x002c,
	"minus":        0x002d,
	"period":       0x002e,
	"slash":        0x002f,
	"colon":        0x003a,
	"semicolon":    0x003b,
	"less":         0x003c,
	"equal":        0x003d,
	"greater":      0x003e,
	"question":     0x003f,
	"at":           0x0040,
	"bracketleft":  0x005b,
	"backslash":    0x005c,
	"bracketright": 0x005d,
	"asciicircum":  0x005e,
	"underscore":   0x005f,
	"grave":        0x0060,
	"braceleft":    0x007b,
	"bar":          0x007c,
	"braceright":   0x007d,
	"asciitilde":   0x007e,

	"BackSpace":   0xff08,
	"Tab":         0xff09,
	"Return":      0xff0d,
	"Pause":       0xff13,
	"Scroll_Lock": 0xff14,
	"Sys_Req":     0xff15,
	"Escape":      0xff1b,
	"Home":        0xff50,
	"Left":        0xff51,
	"Up":          0xff52,
	"Right":       0xff53,
	"Down":        0xff54,
	"Prior":       0xff55,
	"Page_Up":     0xff55,
	"Next":        0xff56,
	"Page_Down":   0xff56,
	"End":         0xff57,
	"Print":       0xff61,
	"Insert":      0xff63,
	"Menu":        0xff67,
	"Num_Lock":    0xff7f,
	"Shift_L":     0xffe1,
	"Shift_R":     0xffe2,
	"Control_L":   0xffe3,
	"Control_R":   0xffe4,
	"Caps_Lock":   0xffe5,
	"Alt_L":       0xffe9,
	"Alt_R":       0xffea,
	"Super_L":     0xffeb,
	"Super_R":     0xffec,
	"Delete":      0xffff,

	"KP_Enter":    0xff8d,
	"KP_Add":      0xffab,
	"KP_Subtract": 0xffad,
	"KP_Multiply": 0xffaa,
	"KP_Divide":   0xffaf,

	"XF86MonBrightnessUp":   0x1008ff02,
	"XF86MonBrightnessDown": 0x1008ff03,
	"XF86AudioLowerVolume":  0x1008ff11,
	"XF86AudioMute":         0x1008ff12,
	"XF86AudioRaiseVolume":  0x1008ff13,
	"XF86AudioPlay":         0x1008ff14,
	"XF86AudioStop":         0x1008ff15,
	"XF86AudioPrev":         0x1008ff16,
	"XF86AudioNext":         0x1008ff17,
	"XF86AudioMicMute":      0x1008ffb2,
}

// keysymNames is the reverse of keysyms, preferring the first alias in sorted order
var keysymNames = map[uint64]string{}

func init() {
	for c := 'a'; c <= 'z'; c++ {
		keysyms[string(c)] = uint64(c)
		keysyms[string(c-'a'+'A')] = uint64(c - 'a' + 'A')
	}
	for c := '0'; c <= '9'; c++ {
		keysyms[string(c)] = uint64(c)
		keysyms["KP_"+string(c)] = 0xffb0 + uint64(c-'0')
	}
	for i := 1; i <= 35; i++ {
		keysyms["F"+strconv.Itoa(i)] = 0xffbe + uint64(i-1)
	}
	for name, sym := range keysyms {
		if prev, ok := keysymNames[sym]; !ok || name < prev {
			keysymNames[sym] = name
		}
	}
}

// MaxKeysym is the largest value the X protocol allows for a keysym (29 bits)
const MaxKeysym = 0x1fffffff

// NewKeysymTable returns a resolver over the built-in keysym names
func NewKeysymTable() *KeysymTable {
	return &KeysymTable{names: keysyms}
}

// Resolve implements SymbolResolver. Besides names it accepts hex keysym
// literals such as "0x1008ff13" up to MaxKeysym.
func (t *KeysymTable) Resolve(name string) uint64 {
	if sym, ok := t.names[name]; ok {
		return sym
	}
	if hex, ok := strings.CutPrefix(strings.ToLower(name), "0x"); ok {
		sym, err := strconv.ParseUint(hex, 16, 64)
		if err == nil && sym <= MaxKeysym {
			return sym
		}
	}
	return 0
}

// KeysymName returns the symbolic name of a keysym, or its hex literal
func KeysymName(sym uint64) string {
	if name, ok := keysymNames[sym]; ok {
		return name
	}
	return fmt.Sprintf("0x%x", sym)
}
