package lexer

import (
	"errors"
	"testing"
)

const (
	kindIdent SymbolKind = iota + 1
	kindNumber
)

func TestSliceScannerReturnsSentinelRepeatedly(t *testing.T) {
	s := NewSliceScanner(
		Symbol{Kind: kindIdent, Value: "ageAtDiagnosis", Line: 1, Column: 1},
		Symbol{Kind: kindNumber, Value: 18, Line: 1, Column: 18},
	)
	got, err := Collect(s)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 symbols, got %d", len(got))
	}
	for i := 0; i < 3; i++ {
		sym, err := s.NextToken()
		if err != nil {
			t.Fatalf("next token after end: %v", err)
		}
		if !sym.IsEOF() {
			t.Fatalf("expected sentinel, got %+v", sym)
		}
		if sym.Line != 1 || sym.Column != 18 {
			t.Fatalf("sentinel should sit at the last token, got %d:%d", sym.Line, sym.Column)
		}
	}
}

func TestSliceScannerStopsAtEmbeddedSentinel(t *testing.T) {
	s := NewSliceScanner(
		Symbol{Kind: kindIdent, Value: "sex"},
		EOF(2, 1),
		Symbol{Kind: kindIdent, Value: "ignored"},
	)
	got, err := Collect(s)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(got) != 1 || got[0].Value != "sex" {
		t.Fatalf("unexpected symbols: %+v", got)
	}
	for i := 0; i < 2; i++ {
		sym, _ := s.NextToken()
		if !sym.IsEOF() || sym.Line != 2 || sym.Column != 1 {
			t.Fatalf("call %d: expected the embedded sentinel at 2:1, got %+v", i, sym)
		}
	}
}

func TestEmptySliceScanner(t *testing.T) {
	sym, err := NewSliceScanner().NextToken()
	if err != nil || !sym.IsEOF() {
		t.Fatalf("expected immediate sentinel, got %+v, %v", sym, err)
	}
}

func TestCollectStopsOnScanError(t *testing.T) {
	calls := 0
	s := ScannerFunc(func() (Symbol, error) {
		calls++
		if calls == 1 {
			return Symbol{Kind: kindIdent, Value: "x", Line: 1, Column: 1}, nil
		}
		return Symbol{}, &ScanError{Line: 1, Column: 3, Text: "#"}
	})
	got, err := Collect(s)
	if len(got) != 1 {
		t.Fatalf("expected tokens read before the error, got %+v", got)
	}
	if !errors.Is(err, ErrUntokenizable) {
		t.Fatalf("expected ErrUntokenizable, got %v", err)
	}
	var scanErr *ScanError
	if !errors.As(err, &scanErr) || scanErr.Column != 3 {
		t.Fatalf("expected ScanError at column 3, got %v", err)
	}
	if err.Error() != `lexer: unexpected "#" at 1:3` {
		t.Fatalf("unexpected message: %s", err.Error())
	}
}
