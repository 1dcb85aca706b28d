package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Modifiers(t *testing.T) {
	tests := []struct {
		pattern  string
		expected Modifier
	}{
		{"shift + a", ModShift},
		{"ctrl + a", ModCtrl},
		{"control + a", ModCtrl},
		{"CTRL + a", ModCtrl},
		{"lock + a", ModLock},
		{"mod1 + a", Mod1},
		{"mod2 + a", Mod2},
		{"mod3 + a", Mod3},
		{"mod4 + a", Mod4},
		{"mod5 + a", Mod5},
		{"any + a", ModAny},
		{"alt + a", Mod1},
		{"super + a", Mod4},
		{"ctrl + alt + shift + a", ModCtrl | Mod1 | ModShift},
		{"ctrl+shift+a", ModCtrl | ModShift},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			chord, err := ParseChord(tt.pattern)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, chord.Modifiers)
			assert.Equal(t, uint64('a'), chord.Symbol)
		})
	}
}

func TestParse_Symbols(t *testing.T) {
	tests := []struct {
		pattern  string
		expected uint64
	}{
		{"super + Return", 0xff0d},
		{"super + Tab", 0xff09},
		{"super + comma", 0x2c},
		{"super + bracketleft", 0x5b},
		{"super + grave", 0x60},
		{"super + space", 0x20},
		{"super + F1", 0xffbe},
		{"super + F12", 0xffc9},
		{"super + 1", '1'},
		{"super + A", 'A'},
		{"XF86AudioMute", 0x1008ff12},
		{"super + 0x1008ff13", 0x1008ff13},
		{"super + 0x1fffffff", MaxKeysym},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			chord, err := ParseChord(tt.pattern)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, chord.Symbol)
		})
	}
}

func TestParse_LastSymbolWins(t *testing.T) {
	chord, err := ParseChord("ctrl + a + b")
	require.NoError(t, err)
	assert.Equal(t, Chord{Modifiers: ModCtrl, Symbol: 'b'}, chord)
}

func TestParse_ModifierOnly(t *testing.T) {
	chord, err := ParseChord("ctrl + shift")
	require.NoError(t, err)
	assert.Equal(t, Chord{Modifiers: ModCtrl | ModShift}, chord)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name     string
		pattern  string
		expected error
	}{
		{"empty", "", ErrEmptyPattern},
		{"only separators", " + + ", ErrEmptyPattern},
		{"unknown symbol", "super + nosuchkey", ErrUnknownSymbol},
		{"symbols are case sensitive", "super + return", ErrUnknownSymbol},
		{"bad hex", "super + 0xzz", ErrUnknownSymbol},
		{"hex beyond keysym range", "super + 0x20000000", ErrUnknownSymbol},
		{"hex beyond 32 bits", "super + 0x100000000", ErrUnknownSymbol},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseChord(tt.pattern)
			assert.ErrorIs(t, err, tt.expected)
		})
	}
}

type fixedResolver map[string]uint64

func (r fixedResolver) Resolve(name string) uint64 {
	return r[name]
}

func TestParser_CustomAliasesAndResolver(t *testing.T) {
	p := NewParser(map[string]Modifier{"hyper": Mod3}, fixedResolver{"launch": 42})

	chord, err := p.Parse("hyper + launch")
	require.NoError(t, err)
	assert.Equal(t, Chord{Modifiers: Mod3, Symbol: 42}, chord)

	// default aliases are replaced, not merged
	_, err = p.Parse("super + launch")
	assert.ErrorIs(t, err, ErrUnknownSymbol)
}

func TestKeysymName(t *testing.T) {
	assert.Equal(t, "a", KeysymName('a'))
	assert.Equal(t, "Page_Up", KeysymName(0xff55))
	assert.Equal(t, "0xdead", KeysymName(0xdead))
}
