package domain

import (
	"fmt"
	"strings"
)

// Parser turns binding patterns such as "ctrl + shift + a" into chords
type Parser struct {
	aliases  map[string]Modifier
	resolver SymbolResolver
}

// NewParser creates a parser. A nil resolver falls back to the built-in keysym
// table and nil aliases fall back to DefaultAliases.
func NewParser(aliases map[string]Modifier, resolver SymbolResolver) *Parser {
	if aliases == nil {
		aliases = DefaultAliases()
	}
	if resolver == nil {
		resolver = NewKeysymTable()
	}
	return &Parser{aliases: aliases, resolver: resolver}
}

// Modifier resolves a canonical modifier name or an alias
func (p *Parser) Modifier(name string) (Modifier, bool) {
	if m, ok := ModifierFromName(name); ok {
		return m, true
	}
	m, ok := p.aliases[strings.ToLower(strings.TrimSpace(name))]
	return m, ok
}

// Parse splits the pattern on '+' and accumulates modifiers and the key symbol.
//
// Modifier tokens are OR'ed together. Any other token is looked up as a keysym
// and replaces the symbol collected so far, so "a + b" binds b.
func (p *Parser) Parse(pattern string) (Chord, error) {
	var chord Chord
	for _, token := range strings.Split(pattern, "+") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		if m, ok := p.Modifier(token); ok {
			chord.Modifiers |= m
			continue
		}
		sym := p.resolver.Resolve(token)
		if sym == 0 {
			return Chord{}, fmt.Errorf("%w: %q in pattern %q", ErrUnknownSymbol, token, pattern)
		}
		chord.Symbol = sym
	}
	if chord.IsZero() {
		return Chord{}, fmt.Errorf("%w: %q", ErrEmptyPattern, pattern)
	}
	return chord, nil
}

// ParseChord parses a pattern with the default aliases and keysym table
func ParseChord(pattern string) (Chord, error) {
	return NewParser(nil, nil).Parse(pattern)
}
