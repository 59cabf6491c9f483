// Package lexer defines the pull-based token source the rule compiler reads
// from. The grammar itself belongs to the compiler; this package only fixes
// the contract between the two.
//
// Nothing in this module tokenizes rule source yet. The compiler that
// produces artifacts is the consumer; SliceScanner and ScannerFunc exist for
// tests and for feeding pre-tokenized input.
package lexer

import (
	"errors"
	"fmt"
)

// SymbolKind identifies a token class. Values other than KindEOF are owned by
// the grammar.
type SymbolKind int

// KindEOF marks end of input. A scanner keeps returning it once the input is
// exhausted; it is never reported as an error.
const KindEOF SymbolKind = 0

// Symbol is one token.
type Symbol struct {
	Kind   SymbolKind
	Value  any
	Line   int
	Column int
}

// EOF returns the end-of-input sentinel positioned at line and column.
func EOF(line, column int) Symbol {
	return Symbol{Kind: KindEOF, Line: line, Column: column}
}

// IsEOF reports whether s is the end-of-input sentinel.
func (s Symbol) IsEOF() bool {
	return s.Kind == KindEOF
}

// ErrUntokenizable is wrapped by every ScanError.
var ErrUntokenizable = errors.New("lexer: input cannot be tokenized")

// ScanError reports input that does not form a token.
type ScanError struct {
	Line   int
	Column int
	Text   string
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("lexer: unexpected %q at %d:%d", e.Text, e.Line, e.Column)
}

func (e *ScanError) Unwrap() error {
	return ErrUntokenizable
}

// Scanner produces the next token from its input.
type Scanner interface {
	NextToken() (Symbol, error)
}

// ScannerFunc adapts a function to Scanner.
type ScannerFunc func() (Symbol, error)

func (f ScannerFunc) NextToken() (Symbol, error) { return f() }

// SliceScanner replays a fixed token sequence and then the sentinel.
type SliceScanner struct {
	symbols []Symbol
	pos     int
	eof     *Symbol
}

// NewSliceScanner returns a scanner over symbols. A sentinel inside symbols
// ends the stream early.
func NewSliceScanner(symbols ...Symbol) *SliceScanner {
	return &SliceScanner{symbols: symbols}
}

func (s *SliceScanner) NextToken() (Symbol, error) {
	if s.eof != nil {
		return *s.eof, nil
	}
	if s.pos >= len(s.symbols) {
		line, column := 0, 0
		if n := len(s.symbols); n > 0 {
			line, column = s.symbols[n-1].Line, s.symbols[n-1].Column
		}
		eof := EOF(line, column)
		s.eof = &eof
		return eof, nil
	}
	sym := s.symbols[s.pos]
	s.pos++
	if sym.IsEOF() {
		s.eof = &sym
	}
	return sym, nil
}

// Collect pulls tokens until the sentinel and returns them without it. The
// first scanner error stops collection and is returned with the tokens read
// so far.
func Collect(s Scanner) ([]Symbol, error) {
	var out []Symbol
	for {
		sym, err := s.NextToken()
		if err != nil {
			return out, err
		}
		if sym.IsEOF() {
			return out, nil
		}
		out = append(out, sym)
	}
}
