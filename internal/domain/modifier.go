package domain

import (
	"fmt"
	"strings"
)

// Modifier is a set of held modifier keys, using the X11 core protocol bit layout
type Modifier uint32

const (
	ModShift Modifier = 1 << 0
	ModLock  Modifier = 1 << 1
	ModCtrl  Modifier = 1 << 2
	Mod1     Modifier = 1 << 3
	Mod2     Modifier = 1 << 4
	Mod3     Modifier = 1 << 5
	Mod4     Modifier = 1 << 6
	Mod5     Modifier = 1 << 7
	ModAny   Modifier = 1 << 15
)

// modifierNames maps the canonical modifier names to their mask bits.
// Lookups are done on lowercased tokens.
var modifierNames = map[string]Modifier{
	"any":     ModAny,
	"shift":   ModShift,
	"ctrl":    ModCtrl,
	"control": ModCtrl,
	"lock":    ModLock,
	"mod1":    Mod1,
	"mod2":    Mod2,
	"mod3":    Mod3,
	"mod4":    Mod4,
	"mod5":    Mod5,
}

// orderedModifiers is the display order used by String
var orderedModifiers = []struct {
	mod  Modifier
	name string
}{
	{ModAny, "any"},
	{ModCtrl, "ctrl"},
	{ModShift, "shift"},
	{ModLock, "lock"},
	{Mod1, "mod1"},
	{Mod2, "mod2"},
	{Mod3, "mod3"},
	{Mod4, "mod4"},
	{Mod5, "mod5"},
}

// DefaultAliases are the xmodmap names most setups use for the generic mod groups
func DefaultAliases() map[string]Modifier {
	return map[string]Modifier{
		"alt":      Mod1,
		"numlock":  Mod2,
		"num_lock": Mod2,
		"super":    Mod4,
	}
}

// ModifierFromName resolves a canonical modifier name (case-insensitive)
func ModifierFromName(name string) (Modifier, bool) {
	m, ok := modifierNames[strings.ToLower(strings.TrimSpace(name))]
	return m, ok
}

// ParseAliases turns an alias -> canonical modifier name map into masks.
// Alias targets may themselves be a combination such as "mod1+shift".
func ParseAliases(raw map[string]string) (map[string]Modifier, error) {
	aliases := make(map[string]Modifier, len(raw))
	for alias, target := range raw {
		var mask Modifier
		for _, part := range strings.Split(target, "+") {
			m, ok := ModifierFromName(part)
			if !ok {
				return nil, fmt.Errorf("%w: alias %q targets %q", ErrUnknownModifier, alias, part)
			}
			mask |= m
		}
		aliases[strings.ToLower(strings.TrimSpace(alias))] = mask
	}
	return aliases, nil
}

// Has reports whether all bits of mod are set
func (m Modifier) Has(mod Modifier) bool {
	return m&mod == mod
}

// String renders the mask as "ctrl+shift+mod4"
func (m Modifier) String() string {
	if m == 0 {
		return ""
	}
	var parts []string
	rest := m
	for _, om := range orderedModifiers {
		if m&om.mod != 0 {
			parts = append(parts, om.name)
			rest &^= om.mod
		}
	}
	if rest != 0 {
		parts = append(parts, fmt.Sprintf("0x%x", uint32(rest)))
	}
	return strings.Join(parts, "+")
}

// Locks holds the masks OR'ed into every binding so it fires regardless of lock key state
type Locks struct {
	Num  Modifier
	Caps Modifier
}

// DefaultLocks uses the usual num-lock group (mod2) and the core Lock bit for caps-lock
func DefaultLocks() Locks {
	return Locks{Num: Mod2, Caps: ModLock}
}
