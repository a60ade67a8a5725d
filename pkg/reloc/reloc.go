// Package reloc implements the relocation table: a deferred list of
// instruction-encoded values keyed by (section, offset), resolved and
// patched into the assembled output after all input has been seen.
package reloc

import (
	"fmt"

	"github.com/lePerdu/tixasm/pkg/expr"
	"github.com/lePerdu/tixasm/pkg/section"
	"github.com/lePerdu/tixasm/pkg/symtab"
)

// Kind identifies how a relocation's resolved value is range-checked and
// patched into the output buffer.
type Kind uint8

const (
	KindUndef Kind = iota

	// KindRelJump is for jr/djnz: the entry's Bias is the address directly
	// after the instruction; the final byte is sym_value - bias, which must
	// fit in a signed byte.
	KindRelJump

	Kind8Bit   // either signed or unsigned byte range (-128..255)
	KindU8Bit  // unsigned byte (ports)
	KindS8Bit  // signed byte ((IX+d)/(IY+d) displacement)
	Kind16Bit  // either signed or unsigned word range
	KindU16Bit // unsigned word (direct/extended addresses)
	KindS16Bit // signed word

	// KindRst and KindIm OR their resolved value into the base opcode byte
	// rather than writing it to a separate slot.
	KindRst
	KindIm

	// KindBit ORs a 0-7 bit index, shifted left 3, into the base opcode
	// byte — the same OR-in shape as Rst/Im, extended to cover BIT/RES/SET,
	// which the reference implementation left unhandled at this layer.
	KindBit
)

func (k Kind) String() string {
	switch k {
	case KindRelJump:
		return "rel-jump"
	case Kind8Bit:
		return "8-bit"
	case KindU8Bit:
		return "unsigned 8-bit"
	case KindS8Bit:
		return "signed 8-bit"
	case Kind16Bit:
		return "16-bit"
	case KindU16Bit:
		return "unsigned 16-bit"
	case KindS16Bit:
		return "signed 16-bit"
	case KindRst:
		return "rst"
	case KindIm:
		return "im"
	case KindBit:
		return "bit index"
	default:
		return "undef"
	}
}

// InRange reports whether value is representable in the range this Kind
// patches into the output.
func InRange(k Kind, value int32) bool {
	switch k {
	case Kind8Bit:
		return value >= -128 && value <= 255
	case KindU8Bit:
		return value >= 0 && value <= 255
	case KindRelJump, KindS8Bit:
		return value >= -128 && value <= 127
	case Kind16Bit:
		return value >= -32768 && value <= 65535
	case KindU16Bit:
		return value >= 0 && value <= 65535
	case KindS16Bit:
		return value >= -32768 && value <= 32767
	case KindRst:
		return value&^0x38 == 0
	case KindIm:
		return value == 0 || value == 1 || value == 2
	case KindBit:
		return value >= 0 && value <= 7
	default:
		return false
	}
}

// Entry is a single pending relocation: a patch site (section, offset) and
// a payload that resolves to a value once all symbols are known.
//
// Payload is either a direct symbol reference or an owned expression tree
// (deep-cloned from the parser's copy, so the parser's own tree can keep
// evolving or be discarded independently). Exactly one of Sym/Expr is set.
type Entry struct {
	Kind    Kind
	Section section.Section
	Offset  int
	Bias    int32

	Sym  *symtab.Entry
	Expr *expr.Node
}

// Table accumulates relocation entries during encoding and resolves them
// during Resolve.
type Table struct {
	entries []*Entry
}

// New creates an empty relocation table.
func New() *Table {
	return &Table{}
}

// AddSym files a relocation whose payload directly references sym. The
// driver in pkg/assembler files every operand through AddExpr instead.
func (t *Table) AddSym(kind Kind, sec section.Section, offset int, bias int32, sym *symtab.Entry) *Entry {
	e := &Entry{Kind: kind, Section: sec, Offset: offset, Bias: bias, Sym: sym}
	t.entries = append(t.entries, e)
	return e
}

// AddExpr files a relocation whose payload is a deep clone of ex, so the
// caller's own copy remains free to evolve or be discarded.
func (t *Table) AddExpr(kind Kind, sec section.Section, offset int, bias int32, ex *expr.Node) *Entry {
	e := &Entry{Kind: kind, Section: sec, Offset: offset, Bias: bias, Expr: ex.Clone()}
	t.entries = append(t.entries, e)
	return e
}

// Len reports the number of pending relocation entries.
func (t *Table) Len() int {
	return len(t.entries)
}

// Entries returns the table's entries in registration order. The returned
// slice must not be mutated by the caller.
func (t *Table) Entries() []*Entry {
	return t.entries
}

// ResolveError describes one relocation entry that could not be resolved or
// patched cleanly.
type ResolveError struct {
	Entry  *Entry
	Reason string
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("relocation at %s+%d: %s", e.Entry.Section, e.Entry.Offset, e.Reason)
}

// Resolve walks every pending entry, evaluates its payload to a final
// value, range-checks it against Kind, and patches it into buffers (keyed
// by section). Every failing entry produces a ResolveError; Resolve keeps
// going past failures so that a single run surfaces every problem instead
// of stopping at the first. The returned slice is empty if every entry
// resolved and patched cleanly.
func (t *Table) Resolve(buffers map[section.Section][]byte) []*ResolveError {
	var errs []*ResolveError
	for _, e := range t.entries {
		value, err := e.resolveValue()
		if err != nil {
			errs = append(errs, &ResolveError{Entry: e, Reason: err.Error()})
			continue
		}

		var patched int32
		if e.Kind == KindRelJump {
			patched = value - e.Bias
		} else {
			patched = value + e.Bias
		}

		if !InRange(e.Kind, patched) {
			errs = append(errs, &ResolveError{
				Entry:  e,
				Reason: fmt.Sprintf("value %d out of range for %s", patched, e.Kind),
			})
			continue
		}

		buf := buffers[e.Section]
		if buf == nil || e.Offset < 0 || e.Offset >= len(buf) {
			errs = append(errs, &ResolveError{Entry: e, Reason: "patch offset out of bounds"})
			continue
		}

		switch e.Kind {
		case KindRelJump, Kind8Bit, KindU8Bit, KindS8Bit:
			buf[e.Offset] = byte(patched)
		case Kind16Bit, KindU16Bit, KindS16Bit:
			if e.Offset+1 >= len(buf) {
				errs = append(errs, &ResolveError{Entry: e, Reason: "patch offset out of bounds"})
				continue
			}
			buf[e.Offset] = byte(patched)
			buf[e.Offset+1] = byte(patched >> 8)
		case KindRst:
			buf[e.Offset] |= byte(patched)
		case KindIm:
			buf[e.Offset] |= imSelectorBits(patched)
		case KindBit:
			buf[e.Offset] |= byte(patched) << 3
		}
	}
	return errs
}

func imSelectorBits(mode int32) byte {
	switch mode {
	case 1:
		return 0x10
	case 2:
		return 0x18
	default:
		return 0x00
	}
}

func (e *Entry) resolveValue() (int32, error) {
	if e.Expr != nil {
		if !e.Expr.Evaluate() {
			return 0, fmt.Errorf("could not resolve expression: %s", e.Expr.Msg)
		}
		switch e.Expr.Kind {
		case expr.KindConst:
			return e.Expr.Value, nil
		case expr.KindSym:
			return 0, fmt.Errorf("unresolved symbol %q", e.Expr.Sym.Name)
		default:
			return 0, fmt.Errorf("expression did not resolve to a value")
		}
	}

	if e.Sym == nil {
		return 0, fmt.Errorf("relocation has no payload")
	}
	if e.Sym.Type == symtab.Undef {
		return 0, fmt.Errorf("unresolved symbol %q", e.Sym.Name)
	}
	return e.Sym.Value, nil
}
