// Package assembler implements the assembler driver: the mutable run state
// (current section, per-section program counters, symbol table, relocation
// table, output buffers) and the operations a parser calls to drive it.
package assembler

import (
	"fmt"
	"strings"

	"github.com/lePerdu/tixasm/pkg/expr"
	"github.com/lePerdu/tixasm/pkg/inst"
	"github.com/lePerdu/tixasm/pkg/reloc"
	"github.com/lePerdu/tixasm/pkg/section"
	"github.com/lePerdu/tixasm/pkg/symtab"
)

// Diagnostic is one position-tagged report produced during assembly.
type Diagnostic struct {
	Line int
	Msg  string
}

func (d Diagnostic) String() string {
	if d.Line > 0 {
		return fmt.Sprintf("line %d: %s", d.Line, d.Msg)
	}
	return d.Msg
}

// Diagnostics collects every Diagnostic reported during a run, in the order
// they were added — grounded on db47h-ngaro's asm.ErrAsm, the pack's idiom
// for "accumulate several position-tagged problems and keep going."
type Diagnostics []Diagnostic

// Error implements the error interface, joining every diagnostic onto its
// own line. An empty Diagnostics is not itself a failure; callers check
// Failed (or len(diags) > 0 for hard errors specifically) rather than
// relying on this being non-empty.
func (d Diagnostics) Error() string {
	lines := make([]string, len(d))
	for i, diag := range d {
		lines[i] = diag.String()
	}
	return strings.Join(lines, "\n")
}

// Operand is one parsed instruction operand: a kind (register, condition, or
// one of the generic immediate/extended-address wildcards) plus, for
// expression-bearing kinds, the expression itself.
type Operand struct {
	Kind inst.OperandKind
	Expr *expr.Node
}

// State is the full mutable assembler run state threaded through every
// driver operation. The zero value is not usable; construct with New.
type State struct {
	sec     section.Section
	pc      map[section.Section]*expr.Node
	symbols *symtab.Table
	relocs  *reloc.Table
	buffers map[section.Section][]byte

	line   int
	diags  Diagnostics
	failed bool
}

// New creates a fresh assembler state. The active section starts as ABS,
// matching the reference driver's initial `asm_pc = &asm_abs_pc`.
func New() *State {
	s := &State{
		pc: map[section.Section]*expr.Node{
			section.Text: expr.NewConst(section.Text, 0),
			section.Data: expr.NewConst(section.Data, 0),
			section.Abs:  expr.NewConst(section.Abs, 0),
		},
		symbols: symtab.New(),
		relocs:  reloc.New(),
		buffers: map[section.Section][]byte{
			section.Text: {},
			section.Data: {},
		},
		sec: section.Abs,
	}
	return s
}

// SetLine records the current source line, attached to any diagnostic
// reported by a subsequent driver call. The parser calls this once per
// statement before driving the rest of the operations for that statement.
func (s *State) SetLine(line int) {
	s.line = line
}

// Symbols exposes the run's symbol table, e.g. so a parser can look up a
// symbol for a `$`-relative expression.
func (s *State) Symbols() *symtab.Table {
	return s.symbols
}

// Section reports the currently active section.
func (s *State) Section() section.Section {
	return s.sec
}

// PC returns the current section's program-counter expression. Per spec,
// the PC is itself an expression (not a plain integer) so that `$` closes
// over its definition site symbolically; callers that need a concrete
// address should Clone and Evaluate the result.
func (s *State) PC() *expr.Node {
	return s.pc[s.sec]
}

func (s *State) report(format string, args ...interface{}) {
	s.diags = append(s.diags, Diagnostic{Line: s.line, Msg: fmt.Sprintf(format, args...)})
	s.failed = true
}

// Report appends a diagnostic and marks the run failed, for a hard error
// external to the driver's own operations — a parser syntax error, for
// instance — so that parser and driver share one diagnostic stream instead
// of each keeping an independent one.
func (s *State) Report(format string, args ...interface{}) {
	s.report(format, args...)
}

// Diagnostics returns every diagnostic reported so far, in order.
func (s *State) Diagnostics() Diagnostics {
	return s.diags
}

// Failed reports whether any hard error has been reported during the run.
func (s *State) Failed() bool {
	return s.failed
}

// SetSection switches the active section; subsequent PC and emission
// operations apply to sec until the next SetSection call.
func (s *State) SetSection(sec section.Section) {
	s.sec = sec
}

// SetPC sets the current section's PC to a fresh constant with the given
// value, tagged with the current section.
func (s *State) SetPC(value int32) {
	s.pc[s.sec] = expr.NewConst(s.sec, value)
}

// SetPCExpr sets the current section's PC to a clone of e, so the caller's
// own copy of e remains independently owned.
func (s *State) SetPCExpr(e *expr.Node) {
	if e == nil {
		return
	}
	s.pc[s.sec] = e.Clone()
}

// AdvancePC advances the current section's PC by n, by building an Add of
// the existing PC expression and n rather than discarding it. A constant PC
// folds to a new constant; a PC holding a symbolic term (e.g. from
// SetPCExpr) keeps that term, with n folded into its addend or left in an
// unresolved Add node.
func (s *State) AdvancePC(n int32) {
	s.pc[s.sec] = expr.NewBinary(expr.Add, s.pc[s.sec], expr.NewConst(section.Abs, n))
}

// pcValue evaluates the current section's PC to a concrete int32, reporting
// a diagnostic and returning 0 if it is not yet resolvable.
func (s *State) pcValue() (int32, bool) {
	pc := s.pc[s.sec].Clone()
	if !pc.Evaluate() || pc.Kind != expr.KindConst {
		s.report("program counter is not a compile-time constant in section %s", s.sec)
		return 0, false
	}
	return pc.Value, true
}

// DefineLabel defines name as an OBJECT symbol at the current section's PC.
func (s *State) DefineLabel(name string) (*symtab.Entry, error) {
	value, ok := s.pcValue()
	if !ok {
		return nil, fmt.Errorf("cannot define label %q: %s", name, s.diags[len(s.diags)-1].Msg)
	}
	e, err := s.symbols.Define(name, symtab.Object, s.sec, value)
	if err != nil {
		s.report("%s", err.Error())
		return nil, err
	}
	return e, nil
}

// DefineEquate defines name as an OBJECT symbol whose value is the result of
// evaluating value. value itself is left unchanged: a clone of it is
// evaluated.
func (s *State) DefineEquate(name string, value *expr.Node) (*symtab.Entry, error) {
	v := value.Clone()
	if !v.Evaluate() || v.Kind != expr.KindConst {
		err := fmt.Errorf("equate %q does not resolve to a constant", name)
		s.report("%s", err.Error())
		return nil, err
	}
	e, err := s.symbols.Define(name, symtab.Object, v.Section, v.Value)
	if err != nil {
		s.report("%s", err.Error())
		return nil, err
	}
	return e, nil
}

// EmitBytes appends data to the current section's output buffer and
// advances the section's PC by len(data). Emitting while the active section
// is ABS is a user error: ABS has no backing output image.
func (s *State) EmitBytes(data []byte) error {
	if s.sec == section.Abs {
		err := fmt.Errorf("cannot emit bytes while the active section is ABS")
		s.report("%s", err.Error())
		return err
	}
	s.buffers[s.sec] = append(s.buffers[s.sec], data...)
	s.AdvancePC(int32(len(data)))
	return nil
}

// EmitInstruction matches mnemonic+op1+op2 against the opcode catalog,
// writes the matched template's bytes to the current section's output
// buffer, files a relocation entry for every operand slot that carries an
// expression, and advances the PC by the template size.
func (s *State) EmitInstruction(mnemonic string, op1, op2 *Operand) error {
	if s.sec == section.Abs {
		err := fmt.Errorf("cannot emit an instruction while the active section is ABS")
		s.report("%s", err.Error())
		return err
	}

	oc := inst.Lookup(mnemonic)
	if oc == nil {
		err := fmt.Errorf("unknown mnemonic %q", mnemonic)
		s.report("%s", err.Error())
		return err
	}

	k1, k2 := inst.KindNone, inst.KindNone
	if op1 != nil {
		k1 = op1.Kind
	}
	if op2 != nil {
		k2 = op2.Kind
	}

	tmpl := inst.Match(oc, k1, k2)
	if tmpl == nil {
		err := fmt.Errorf("no instruction template for %q with operands %s, %s", mnemonic, k1, k2)
		s.report("%s", err.Error())
		return err
	}

	offset := len(s.buffers[s.sec])
	bytes := make([]byte, len(tmpl.Bytes))
	copy(bytes, tmpl.Bytes)

	pcAfter, _ := s.pcValue()
	pcAfter += int32(tmpl.Size)

	s.fileOperandReloc(tmpl.Op1Kind, tmpl.Op1Off, op1, offset, pcAfter)
	s.fileOperandReloc(tmpl.Op2Kind, tmpl.Op2Off, op2, offset, pcAfter)

	s.buffers[s.sec] = append(s.buffers[s.sec], bytes...)
	s.AdvancePC(int32(tmpl.Size))
	return nil
}

// fileOperandReloc records a relocation entry for one matched operand slot,
// if that slot carries a value (off >= 0) and the operand supplies an
// expression (register/condition operands have none and need no patch).
func (s *State) fileOperandReloc(slotKind inst.OperandKind, off int, op *Operand, baseOffset int, pcAfter int32) {
	if off < 0 || op == nil || op.Expr == nil {
		return
	}

	kind, bias := relocKindFor(slotKind, pcAfter)
	if kind == reloc.KindUndef {
		return
	}
	s.relocs.AddExpr(kind, s.sec, baseOffset+off, bias, op.Expr)
}

// relocKindFor maps a template's declared operand slot kind to the
// relocation kind and bias used to resolve it, mirroring
// original_source/src/opcode.c's instr_apply_op switch.
func relocKindFor(slotKind inst.OperandKind, pcAfter int32) (reloc.Kind, int32) {
	switch slotKind {
	case inst.KindImm8:
		return reloc.Kind8Bit, 0
	case inst.KindImm16:
		return reloc.Kind16Bit, 0
	case inst.KindPort:
		return reloc.KindU8Bit, 0
	case inst.KindExt:
		return reloc.KindU16Bit, 0
	case inst.KindRel:
		return reloc.KindRelJump, pcAfter
	case inst.KindIndIX, inst.KindIndIY:
		return reloc.KindS8Bit, 0
	case inst.KindRst:
		return reloc.KindRst, 0
	case inst.KindIm:
		return reloc.KindIm, 0
	case inst.KindBit:
		return reloc.KindBit, 0
	default:
		return reloc.KindUndef, 0
	}
}

// Finalize resolves every filed relocation against the final symbol table,
// patching the output buffers in place, and reports a diagnostic for each
// entry that fails to resolve or range-check. It returns an error if any
// hard error was reported during the entire run (parsing and resolution),
// matching spec.md §6's exit-status contract.
func (s *State) Finalize() error {
	for _, rerr := range s.relocs.Resolve(s.buffers) {
		s.report("%s", rerr.Error())
	}
	if s.failed {
		return s.diags
	}
	return nil
}

// TextBytes returns the assembled TEXT section image.
func (s *State) TextBytes() []byte {
	return s.buffers[section.Text]
}

// DataBytes returns the assembled DATA section image.
func (s *State) DataBytes() []byte {
	return s.buffers[section.Data]
}

// RelocationCount reports how many relocation entries were filed during the
// run, for verbose reporting by a driver's caller.
func (s *State) RelocationCount() int {
	return s.relocs.Len()
}
