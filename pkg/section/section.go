// Package section implements the three-valued section algebra that governs
// which arithmetic combinations of addresses are legal: TEXT, DATA and ABS
// (absolute, section-less) values.
package section

import "fmt"

// Section tags an address or constant by the logical address space it
// belongs to.
type Section uint8

const (
	Undef Section = 0
	Text  Section = 1
	Data  Section = 2
)

// Abs is the set-union of Text and Data: a value that does not depend on
// where any section is ultimately loaded. It is the bitwise-or of the two
// concrete sections, so the result of Combine equals the bitwise-and of its
// operands whenever they are compatible; Combine itself spells the cases out
// with comparisons.
const Abs = Text | Data

func (s Section) String() string {
	switch s {
	case Undef:
		return "undef"
	case Text:
		return "text"
	case Data:
		return "data"
	case Abs:
		return "abs"
	default:
		return fmt.Sprintf("section(%d)", uint8(s))
	}
}

// IsAbs reports whether s is the absolute section.
func (s Section) IsAbs() bool { return s == Abs }

// ErrMixedSection is returned by Combine when the two sections are different
// concrete (non-absolute) sections — e.g. TEXT + DATA.
type ErrMixedSection struct {
	A, B Section
}

func (e *ErrMixedSection) Error() string {
	return fmt.Sprintf("mixed-section arithmetic: %s and %s", e.A, e.B)
}

// Combine implements sec(a) ⊓ sec(b): ABS combined with anything yields the
// other operand unchanged ("absolute + relocatable = relocatable"); two equal
// concrete sections yield that section; two different concrete sections are
// illegal.
func Combine(a, b Section) (Section, error) {
	if a == Abs {
		return b, nil
	}
	if b == Abs {
		return a, nil
	}
	if a == b {
		return a, nil
	}
	return Undef, &ErrMixedSection{A: a, B: b}
}
