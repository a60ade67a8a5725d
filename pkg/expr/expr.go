// Package expr implements the assembler's expression engine: a tree of
// constants, symbol references, and unary/binary operators, with partial
// evaluation under the section algebra in package section.
package expr

import (
	"fmt"

	"github.com/lePerdu/tixasm/pkg/section"
	"github.com/lePerdu/tixasm/pkg/symtab"
)

// Kind discriminates the variant a Node currently holds. A Node can change
// Kind over its lifetime: Evaluate folds a Binary/Unary node into Const (or
// Invalid) in place, and a Sym node folds to Const when it is built or
// evaluated after its referent has been defined.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindConst
	KindSym
	KindUnary
	KindBinary
)

func (k Kind) String() string {
	switch k {
	case KindConst:
		return "const"
	case KindSym:
		return "sym"
	case KindUnary:
		return "unary"
	case KindBinary:
		return "binary"
	default:
		return "invalid"
	}
}

// Operator identifies which unary or binary operation a node applies. Binary
// operator values are chosen to match their ASCII source spelling, the way
// the reference grammar aligns operator tokens with character literals.
type Operator byte

const (
	Add    Operator = '+'
	Sub    Operator = '-'
	Mul    Operator = '*'
	Div    Operator = '/'
	Mod    Operator = '%'
	And    Operator = '&'
	Xor    Operator = '^'
	Or     Operator = '|'
	Not    Operator = '~' // unary bitwise complement
	Negate Operator = 0xff // unary arithmetic negation; no single-char token
)

func (op Operator) String() string {
	switch op {
	case Add:
		return "+"
	case Sub:
		return "-"
	case Mul:
		return "*"
	case Div:
		return "/"
	case Mod:
		return "%"
	case And:
		return "&"
	case Xor:
		return "^"
	case Or:
		return "|"
	case Not:
		return "~"
	case Negate:
		return "neg"
	default:
		return fmt.Sprintf("op(%#x)", byte(op))
	}
}

// Node is an expression tree node. Exactly one group of fields is meaningful
// at a time, selected by Kind:
//
//	KindConst:   Section, Value
//	KindSym:     Sym, Addend
//	KindUnary:   Op, Operands[0]
//	KindBinary:  Op, Operands[0], Operands[1]
//	KindInvalid: Msg
type Node struct {
	Kind Kind

	Section section.Section
	Value   int32

	Sym    *symtab.Entry
	Addend int32

	Op       Operator
	Operands [2]*Node

	Msg string
}

// IsAbs reports whether n is a Const node in the absolute section — the gate
// used by operators that require compile-time-known operands.
func (n *Node) IsAbs() bool {
	return n != nil && n.Kind == KindConst && n.Section.IsAbs()
}

// NewConst builds a constant node carrying a section tag and value.
func NewConst(sec section.Section, value int32) *Node {
	return &Node{Kind: KindConst, Section: sec, Value: value}
}

// NewSym builds a node referencing a symbol table entry. If the symbol is
// already defined (Type == symtab.Object), the node is eagerly folded to a
// Const.
func NewSym(sym *symtab.Entry) *Node {
	n := &Node{Kind: KindSym, Sym: sym, Addend: 0}
	resolveSym(n)
	return n
}

// resolveSym folds n in place from Sym to Const if its referent is now a
// defined object symbol. It is a no-op for any other Kind, and a no-op if
// the symbol is still undefined.
func resolveSym(n *Node) {
	if n.Kind != KindSym {
		return
	}
	if n.Sym.Type != symtab.Object {
		return
	}
	sec := n.Sym.Section
	val := n.Sym.Value + n.Addend
	n.Kind = KindConst
	n.Sym = nil
	n.Section = sec
	n.Value = val
}

// NewUnary builds a unary expression node (Negate or Not). Construction
// attempts an immediate partial fold against op, the way binary nodes do;
// on success the returned node is already a Const, otherwise it stays a
// Unary node.
func NewUnary(op Operator, operand *Node) *Node {
	n := &Node{Kind: KindUnary, Op: op, Operands: [2]*Node{operand, nil}}
	foldUnary(n, operand)
	return n
}

// NewBinary builds a binary expression node. Construction attempts an
// immediate partial fold against op1/op2; if the fold succeeds, the returned
// node is the folded Const (or, for Add/Sub of a symbol and an absolute
// constant, a Sym with an adjusted addend) instead of an operator node. A
// fold that fails leaves a Binary node; it becomes Invalid only in Evaluate. This mirrors the reference builder's non-recursive
// simplification of simple constant-only subtrees.
func NewBinary(op Operator, op1, op2 *Node) *Node {
	n := &Node{Kind: KindBinary, Op: op, Operands: [2]*Node{op1, op2}}
	foldBinary(n, op1, op2)
	return n
}

// Clone returns a deep copy of n. Used when a relocation entry must outlive
// the parser's live copy of an expression tree.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case KindConst:
		return NewConst(n.Section, n.Value)
	case KindSym:
		c := &Node{Kind: KindSym, Sym: n.Sym, Addend: n.Addend}
		resolveSym(c)
		return c
	case KindUnary:
		return NewUnary(n.Op, n.Operands[0].Clone())
	case KindBinary:
		return NewBinary(n.Op, n.Operands[0].Clone(), n.Operands[1].Clone())
	default:
		c := &Node{Kind: KindInvalid, Msg: n.Msg}
		return c
	}
}

// Evaluate attempts to fully evaluate n. On success it mutates n in place to
// KindConst and returns true. On failure it mutates n in place to
// KindInvalid with a descriptive Msg and returns false. Leaf nodes (Const,
// already-Invalid) resolve trivially; a Sym leaf is resolved if possible but
// is still considered "evaluated" even if it remains unresolved, matching
// the reference evaluator's leniency for top-level symbol references.
func (n *Node) Evaluate() bool {
	if n == nil {
		return false
	}

	switch n.Kind {
	case KindConst:
		return true
	case KindSym:
		resolveSym(n)
		return true
	case KindInvalid:
		return false
	}

	if n.Kind == KindUnary {
		op := n.Operands[0]
		if !op.Evaluate() {
			invalidate(n, op.Msg)
			return false
		}
		if !foldUnary(n, op) {
			invalidate(n, unaryErrMsg(n.Op))
			return false
		}
		return true
	}

	op1, op2 := n.Operands[0], n.Operands[1]
	if !op1.Evaluate() {
		invalidate(n, op1.Msg)
		return false
	}
	if !op2.Evaluate() {
		invalidate(n, op2.Msg)
		return false
	}
	if !foldBinary(n, op1, op2) {
		invalidate(n, binaryErrMsg(n.Op))
		return false
	}
	return true
}

func invalidate(n *Node, msg string) {
	if msg == "" {
		msg = "invalid expression"
	}
	n.Kind = KindInvalid
	n.Sym = nil
	n.Operands = [2]*Node{}
	n.Msg = msg
}

func unaryErrMsg(op Operator) string {
	switch op {
	case Negate:
		return "could not negate operand"
	case Not:
		return "could not complement operand"
	default:
		return "invalid unary expression"
	}
}

func binaryErrMsg(op Operator) string {
	switch op {
	case Add:
		return "could not add operands"
	case Sub:
		return "could not subtract operands"
	case Mul:
		return "could not multiply operands"
	case Div:
		return "could not divide operands"
	case Mod:
		return "could not modulo operands"
	case And:
		return "could not AND operands"
	case Xor:
		return "could not XOR operands"
	case Or:
		return "could not OR operands"
	default:
		return "invalid binary expression"
	}
}

// foldUnary attempts to fold n from its operand op (already resolved as far
// as possible) according to n.Op. On success n becomes KindConst and true is
// returned; on failure n is left unmodified and false is returned.
//
// Both Negate and Not require an absolute constant operand.
func foldUnary(n *Node, op *Node) bool {
	resolveSym(op)
	if !op.IsAbs() {
		return false
	}

	var value int32
	switch n.Op {
	case Negate:
		value = -op.Value
	case Not:
		value = ^op.Value
	default:
		return false
	}

	n.Kind = KindConst
	n.Section = section.Abs
	n.Value = value
	n.Operands = [2]*Node{}
	return true
}

// foldBinary attempts to fold n from op1/op2 (already resolved as far as
// possible) according to n.Op. On success n becomes KindConst or KindSym and
// true is returned; on failure n is left unmodified and false is returned.
//
// Add and Sub allow a mix of constants and symbols, requiring at least the
// constant side (for Add) or the subtrahend (for Sub) to be absolute — this
// is what lets "label + 2" and "label - 2" style expressions work without
// the label being known at build time. A symbol or relocatable subtrahend
// ("label - origin_label") does not fold. Every other operator
// requires both operands to already be absolute constants.
func foldBinary(n *Node, op1, op2 *Node) bool {
	resolveSym(op1)
	resolveSym(op2)

	switch n.Op {
	case Add:
		return foldAdd(n, op1, op2)
	case Sub:
		return foldSub(n, op1, op2)
	case Mul:
		return foldAbsOnly(n, op1, op2, func(a, b int32) int32 { return a * b })
	case Div:
		if op1.IsAbs() && op2.IsAbs() && op2.Value == 0 {
			return false
		}
		return foldAbsOnly(n, op1, op2, func(a, b int32) int32 { return a / b })
	case Mod:
		if op1.IsAbs() && op2.IsAbs() && op2.Value == 0 {
			return false
		}
		return foldAbsOnly(n, op1, op2, func(a, b int32) int32 { return a % b })
	case And:
		return foldAbsOnly(n, op1, op2, func(a, b int32) int32 { return a & b })
	case Xor:
		return foldAbsOnly(n, op1, op2, func(a, b int32) int32 { return a ^ b })
	case Or:
		return foldAbsOnly(n, op1, op2, func(a, b int32) int32 { return a | b })
	default:
		return false
	}
}

func foldAdd(n *Node, op1, op2 *Node) bool {
	switch {
	case op1.Kind == KindConst && op2.Kind == KindConst:
		if !op1.Section.IsAbs() && !op2.Section.IsAbs() {
			return false
		}
		sec, err := section.Combine(op1.Section, op2.Section)
		if err != nil {
			return false
		}
		n.Kind = KindConst
		n.Section = sec
		n.Value = op1.Value + op2.Value
		n.Operands = [2]*Node{}
		return true

	case op1.Kind == KindConst && op2.Kind == KindSym:
		if !op1.Section.IsAbs() {
			return false
		}
		n.Kind = KindSym
		n.Sym = op2.Sym
		n.Addend = op2.Addend + op1.Value
		n.Operands = [2]*Node{}
		return true

	case op1.Kind == KindSym && op2.Kind == KindConst:
		if !op2.Section.IsAbs() {
			return false
		}
		n.Kind = KindSym
		n.Sym = op1.Sym
		n.Addend = op1.Addend + op2.Value
		n.Operands = [2]*Node{}
		return true

	default:
		return false
	}
}

func foldSub(n *Node, op1, op2 *Node) bool {
	if !op2.IsAbs() {
		return false
	}

	switch op1.Kind {
	case KindConst:
		n.Kind = KindConst
		n.Section = op1.Section
		n.Value = op1.Value - op2.Value
		n.Operands = [2]*Node{}
		return true
	case KindSym:
		n.Kind = KindSym
		n.Sym = op1.Sym
		n.Addend = op1.Addend - op2.Value
		n.Operands = [2]*Node{}
		return true
	default:
		return false
	}
}

// foldAbsOnly implements the mul/div/mod/and/xor/or family: both operands
// must already be absolute constants. This corrects the reference
// implementation's inverted guard, which rejected exactly the case that
// should succeed.
func foldAbsOnly(n *Node, op1, op2 *Node, apply func(a, b int32) int32) bool {
	if !op1.IsAbs() || !op2.IsAbs() {
		return false
	}
	n.Kind = KindConst
	n.Section = section.Abs
	n.Value = apply(op1.Value, op2.Value)
	n.Operands = [2]*Node{}
	return true
}
