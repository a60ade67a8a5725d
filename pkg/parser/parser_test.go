package parser

import (
	"strings"
	"testing"

	"github.com/lePerdu/tixasm/pkg/assembler"
)

func assemble(t *testing.T, src string) *assembler.State {
	t.Helper()
	s := assembler.New()
	p := New(s)
	if err := p.Parse(strings.NewReader(src), "test"); err != nil {
		t.Fatalf("Parse(%q) = %v, want no error", src, err)
	}
	return s
}

func TestScenarioLdImm8(t *testing.T) {
	s := assemble(t, ".text\nld a, 0x42\n")
	want := []byte{0x3E, 0x42}
	if string(s.TextBytes()) != string(want) {
		t.Errorf("TextBytes() = % X, want % X", s.TextBytes(), want)
	}
}

func TestScenarioLdImm16(t *testing.T) {
	s := assemble(t, ".text\nld hl, 0x1234\n")
	want := []byte{0x21, 0x34, 0x12}
	if string(s.TextBytes()) != string(want) {
		t.Errorf("TextBytes() = % X, want % X", s.TextBytes(), want)
	}
}

func TestScenarioSelfReferentialJr(t *testing.T) {
	s := assemble(t, ".text\nlabel: jr label\n")
	want := []byte{0x18, 0xFE}
	if string(s.TextBytes()) != string(want) {
		t.Errorf("TextBytes() = % X, want % X", s.TextBytes(), want)
	}
}

func TestScenarioRst(t *testing.T) {
	s := assemble(t, ".text\nrst 0x20\n")
	want := []byte{0xE7}
	if string(s.TextBytes()) != string(want) {
		t.Errorf("TextBytes() = % X, want % X", s.TextBytes(), want)
	}
}

func TestScenarioIm(t *testing.T) {
	s := assemble(t, ".text\nim 2\n")
	want := []byte{0xED, 0x5E}
	if string(s.TextBytes()) != string(want) {
		t.Errorf("TextBytes() = % X, want % X", s.TextBytes(), want)
	}
}

func TestScenarioForwardJpToLabel(t *testing.T) {
	s := assemble(t, ".text\nstart: ld a, 0xFF\njp start\n")
	want := []byte{0x3E, 0xFF, 0xC3, 0x00, 0x00}
	if string(s.TextBytes()) != string(want) {
		t.Errorf("TextBytes() = % X, want % X", s.TextBytes(), want)
	}
}

// TestScenarioIndexedDisplacement exercises the (ix+d)/(iy+d) grammar added
// alongside the catalog's indexed-addressing templates.
func TestScenarioIndexedDisplacement(t *testing.T) {
	s := assemble(t, ".text\nld a, (ix+5)\n")
	want := []byte{0xDD, 0x7E, 0x05}
	if string(s.TextBytes()) != string(want) {
		t.Errorf("TextBytes() = % X, want % X", s.TextBytes(), want)
	}
}

func TestScenarioEquateAndExpression(t *testing.T) {
	s := assemble(t, ".text\n.equ two, 2\nld a, two+1\n")
	want := []byte{0x3E, 0x03}
	if string(s.TextBytes()) != string(want) {
		t.Errorf("TextBytes() = % X, want % X", s.TextBytes(), want)
	}
}

func TestScenarioDbDw(t *testing.T) {
	s := assemble(t, ".text\n.db 1, 2, 3\n.dw 0x1234\n")
	want := []byte{0x01, 0x02, 0x03, 0x34, 0x12}
	if string(s.TextBytes()) != string(want) {
		t.Errorf("TextBytes() = % X, want % X", s.TextBytes(), want)
	}
}

func TestErrorUnresolvedSymbol(t *testing.T) {
	s := assembler.New()
	p := New(s)
	err := p.Parse(strings.NewReader(".text\nld a, label\n"), "test")
	if err == nil {
		t.Fatal("Parse() = nil, want an error for the unresolved symbol")
	}
}

func TestErrorOutOfRangeRelJump(t *testing.T) {
	s := assembler.New()
	p := New(s)
	src := ".text\n.org 200\nfar:\n.org 0\njr far\n"
	err := p.Parse(strings.NewReader(src), "test")
	if err == nil {
		t.Fatal("Parse() = nil, want a range error for the out-of-range branch")
	}
}

func TestErrorDuplicateLabel(t *testing.T) {
	s := assembler.New()
	p := New(s)
	err := p.Parse(strings.NewReader(".text\nfoo: nop\nfoo: nop\n"), "test")
	if err == nil {
		t.Fatal("Parse() = nil, want a duplicate-definition error")
	}
}

func TestCommentsAreIgnored(t *testing.T) {
	s := assemble(t, ".text\nld a, 0x42 ; load the accumulator\n")
	want := []byte{0x3E, 0x42}
	if string(s.TextBytes()) != string(want) {
		t.Errorf("TextBytes() = % X, want % X", s.TextBytes(), want)
	}
}
