package reloc

import (
	"testing"

	"github.com/lePerdu/tixasm/pkg/expr"
	"github.com/lePerdu/tixasm/pkg/section"
	"github.com/lePerdu/tixasm/pkg/symtab"
)

func TestResolveConst8Bit(t *testing.T) {
	table := New()
	buf := make(map[section.Section][]byte)
	buf[section.Text] = []byte{0x3E, 0x00}
	table.AddExpr(Kind8Bit, section.Text, 1, 0, expr.NewConst(section.Abs, 0x42))

	if errs := table.Resolve(buf); len(errs) != 0 {
		t.Fatalf("Resolve() = %v, want no errors", errs)
	}
	if buf[section.Text][1] != 0x42 {
		t.Errorf("buf[1] = %#x, want 0x42", buf[section.Text][1])
	}
}

func TestResolveRelJumpForward(t *testing.T) {
	syms := symtab.New()
	entry, err := syms.Define("target", symtab.Object, section.Text, 10)
	if err != nil {
		t.Fatalf("Define: %v", err)
	}

	table := New()
	buf := map[section.Section][]byte{section.Text: {0x18, 0x00}}
	table.AddExpr(KindRelJump, section.Text, 1, 2, expr.NewSym(entry))

	if errs := table.Resolve(buf); len(errs) != 0 {
		t.Fatalf("Resolve() = %v, want no errors", errs)
	}
	if buf[section.Text][1] != 8 {
		t.Errorf("buf[1] = %d, want 8 (10 - bias 2)", buf[section.Text][1])
	}
}

func TestResolveRelJumpOutOfRange(t *testing.T) {
	syms := symtab.New()
	entry, err := syms.Define("far", symtab.Object, section.Text, 500)
	if err != nil {
		t.Fatalf("Define: %v", err)
	}

	table := New()
	buf := map[section.Section][]byte{section.Text: {0x18, 0x00}}
	table.AddExpr(KindRelJump, section.Text, 1, 2, expr.NewSym(entry))

	errs := table.Resolve(buf)
	if len(errs) != 1 {
		t.Fatalf("Resolve() = %v, want exactly one range error", errs)
	}
}

func TestResolveUnresolvedSymbol(t *testing.T) {
	syms := symtab.New()
	entry := syms.Reference("undefined")

	table := New()
	buf := map[section.Section][]byte{section.Text: {0x3E, 0x00}}
	table.AddExpr(Kind8Bit, section.Text, 1, 0, expr.NewSym(entry))

	errs := table.Resolve(buf)
	if len(errs) != 1 {
		t.Fatalf("Resolve() = %v, want exactly one unresolved-symbol error", errs)
	}
}

func TestResolveRstOrsIntoBaseByte(t *testing.T) {
	table := New()
	buf := map[section.Section][]byte{section.Text: {0xC7}}
	table.AddExpr(KindRst, section.Text, 0, 0, expr.NewConst(section.Abs, 0x20))

	if errs := table.Resolve(buf); len(errs) != 0 {
		t.Fatalf("Resolve() = %v, want no errors", errs)
	}
	if buf[section.Text][0] != 0xE7 {
		t.Errorf("buf[0] = %#x, want 0xE7", buf[section.Text][0])
	}
}

func TestResolveImSelectorBits(t *testing.T) {
	table := New()
	buf := map[section.Section][]byte{section.Text: {0xED, 0x46}}
	table.AddExpr(KindIm, section.Text, 1, 0, expr.NewConst(section.Abs, 2))

	if errs := table.Resolve(buf); len(errs) != 0 {
		t.Fatalf("Resolve() = %v, want no errors", errs)
	}
	if buf[section.Text][1] != 0x5E {
		t.Errorf("buf[1] = %#x, want 0x5E", buf[section.Text][1])
	}
}

func TestResolveOffsetOutOfBounds(t *testing.T) {
	table := New()
	buf := map[section.Section][]byte{section.Text: {0x3E}}
	table.AddExpr(Kind8Bit, section.Text, 5, 0, expr.NewConst(section.Abs, 1))

	errs := table.Resolve(buf)
	if len(errs) != 1 {
		t.Fatalf("Resolve() = %v, want exactly one out-of-bounds error", errs)
	}
}

func TestLen(t *testing.T) {
	table := New()
	if table.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", table.Len())
	}
	table.AddExpr(Kind8Bit, section.Text, 0, 0, expr.NewConst(section.Abs, 1))
	if table.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", table.Len())
	}
}
