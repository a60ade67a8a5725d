package inst

import "fmt"

// OperandKind classifies one operand slot, either of a parsed operand or of
// a catalog template. Most kinds match only themselves; Imm and Ext are
// wildcards a parser uses for an operand whose precise slot kind is decided
// only once it is matched against a template (see Match).
type OperandKind uint8

const (
	KindNone OperandKind = iota

	immBandStart
	// KindImm is a bare numeric/expression literal with no further
	// context — the parser emits this for any operand that is just an
	// expression, and the matcher resolves it to whichever concrete
	// immediate-family kind the matched template expects.
	KindImm
	KindImm8
	KindImm16
	KindRst
	KindRel
	KindBit
	KindIm
	immBandEnd

	extBandStart
	// KindExt is a parenthesized expression, "(nn)" — direct memory
	// addressing. Unlike KindImm, this kind also appears directly as a
	// template's concrete kind, since "(nn)" addressing has no further
	// specialization besides KindPort.
	KindExt
	KindPort
	extBandEnd

	// 8-bit registers.
	KindA
	KindF
	KindB
	KindC
	KindD
	KindE
	KindH
	KindL
	KindI
	KindR
	KindIXH
	KindIXL
	KindIYH
	KindIYL

	// 16-bit registers.
	KindBC
	KindDE
	KindHL
	KindSP
	KindIX
	KindIY
	KindAF
	KindAFShadow

	// Register-indirect memory operands.
	KindIndBC
	KindIndDE
	KindIndHL
	KindIndSP
	KindIndC
	KindIndIX // (IX+d) — carries a signed displacement expression
	KindIndIY // (IY+d) — carries a signed displacement expression

	// Condition codes. KindC above doubles as the "C" flag condition; the
	// parser always emits KindC, and which meaning applies follows from the
	// mnemonic's templates (jr/jp/call/ret register it as a condition, the
	// others as an 8-bit register), exactly as the reference grammar aliases
	// OP_fC to OP_C instead of giving it a separate value.
	KindNZ
	KindZ
	KindNC
	KindPO
	KindPE
	KindP
	KindM
)

var kindNames = map[OperandKind]string{
	KindNone: "none", KindImm: "imm", KindImm8: "imm8", KindImm16: "imm16",
	KindRst: "rst", KindRel: "rel", KindBit: "bit", KindIm: "im",
	KindExt: "ext", KindPort: "port",
	KindA: "a", KindF: "f", KindB: "b", KindC: "c", KindD: "d", KindE: "e",
	KindH: "h", KindL: "l", KindI: "i", KindR: "r",
	KindIXH: "ixh", KindIXL: "ixl", KindIYH: "iyh", KindIYL: "iyl",
	KindBC: "bc", KindDE: "de", KindHL: "hl", KindSP: "sp",
	KindIX: "ix", KindIY: "iy", KindAF: "af", KindAFShadow: "af'",
	KindIndBC: "(bc)", KindIndDE: "(de)", KindIndHL: "(hl)", KindIndSP: "(sp)",
	KindIndC: "(c)", KindIndIX: "(ix+d)", KindIndIY: "(iy+d)",
	KindNZ: "nz", KindZ: "z", KindNC: "nc", KindPO: "po", KindPE: "pe",
	KindP: "p", KindM: "m",
}

func (k OperandKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// IndirectOf returns the register-indirect kind corresponding to a register
// kind (e.g. KindHL -> KindIndHL), or KindNone if r has no indirect form.
func IndirectOf(r OperandKind) OperandKind {
	switch r {
	case KindA:
		return KindNone // (a) has no indirect kind in this set
	case KindC:
		return KindIndC
	case KindBC:
		return KindIndBC
	case KindDE:
		return KindIndDE
	case KindHL:
		return KindIndHL
	case KindSP:
		return KindIndSP
	case KindIX:
		return KindIndIX
	case KindIY:
		return KindIndIY
	default:
		return KindNone
	}
}

// castable reports whether an operand of kind "from" may satisfy a template
// slot of kind "want" — the generalization that lets a single catalog
// template serve many different literal-valued operands without the
// catalog needing one entry per concrete immediate kind.
func castable(from, want OperandKind) bool {
	switch from {
	case KindImm:
		return want > immBandStart && want < immBandEnd
	case KindExt:
		return want > extBandStart && want < extBandEnd
	default:
		return from == want
	}
}
