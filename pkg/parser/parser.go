package parser

import (
	"io"
	"strings"

	"github.com/lePerdu/tixasm/pkg/assembler"
	"github.com/lePerdu/tixasm/pkg/expr"
	"github.com/lePerdu/tixasm/pkg/inst"
	"github.com/lePerdu/tixasm/pkg/section"
)

// registerKinds maps a lowercased register or condition name to its operand
// kind. KindC is deliberately shared between the "C" register and the "C"
// flag condition — inst.Match resolves the ambiguity per-mnemonic, since a
// template set only ever registers one of the two meanings for a given
// mnemonic (see pkg/inst.OperandKind).
var registerKinds = map[string]inst.OperandKind{
	"a": inst.KindA, "f": inst.KindF, "b": inst.KindB, "c": inst.KindC,
	"d": inst.KindD, "e": inst.KindE, "h": inst.KindH, "l": inst.KindL,
	"i": inst.KindI, "r": inst.KindR,
	"ixh": inst.KindIXH, "ixl": inst.KindIXL, "iyh": inst.KindIYH, "iyl": inst.KindIYL,
	"bc": inst.KindBC, "de": inst.KindDE, "hl": inst.KindHL, "sp": inst.KindSP,
	"ix": inst.KindIX, "iy": inst.KindIY, "af": inst.KindAF, "af'": inst.KindAFShadow,
	"nz": inst.KindNZ, "z": inst.KindZ, "nc": inst.KindNC,
	"po": inst.KindPO, "pe": inst.KindPE, "p": inst.KindP, "m": inst.KindM,
}

// Parser consumes a token stream and drives an assembler.State. It has no
// access to the state's internals beyond its exported driver surface,
// matching the core's parser-produces-statement-callbacks design.
type Parser struct {
	lex    *lexer
	tok    token
	peeked *token
	state  *assembler.State
}

// New creates a Parser that drives state.
func New(state *assembler.State) *Parser {
	return &Parser{state: state}
}

// Parse reads and assembles src (named name for diagnostics) into the
// parser's State, then finalizes it. The returned error is the same one
// Finalize would return: non-nil iff any hard error was reported, across
// both parsing and resolution.
func (p *Parser) Parse(src io.Reader, name string) error {
	p.lex = newLexer(src, name)
	p.advance()
	for p.tok.kind != tokEOF {
		p.parseStatement()
	}
	return p.state.Finalize()
}

func (p *Parser) advance() {
	if p.peeked != nil {
		p.tok = *p.peeked
		p.peeked = nil
		return
	}
	p.tok = p.lex.scan()
}

// peek returns the token after the current one without consuming it,
// buffering at most one token of lookahead.
func (p *Parser) peek() token {
	if p.peeked == nil {
		t := p.lex.scan()
		p.peeked = &t
	}
	return *p.peeked
}

func (p *Parser) skipToEOL() {
	for p.tok.kind != tokEOL && p.tok.kind != tokEOF {
		p.advance()
	}
}

func (p *Parser) expectEndOfStatement() {
	if p.tok.kind != tokEOL && p.tok.kind != tokEOF {
		p.state.Report("unexpected token after statement")
		p.skipToEOL()
	}
	if p.tok.kind == tokEOL {
		p.advance()
	}
}

// parseStatement parses a single source line: an optional label, then an
// optional mnemonic or directive, ending at EOL or EOF.
func (p *Parser) parseStatement() {
	for p.tok.kind == tokEOL {
		p.advance()
	}
	if p.tok.kind == tokEOF {
		return
	}

	p.state.SetLine(p.tok.line)

	for p.tok.kind == tokIdent && p.peekIsLabelColon() {
		name := p.tok.text
		p.advance() // ident
		p.advance() // ':'
		p.state.DefineLabel(name)
	}

	switch {
	case p.tok.kind == tokEOL || p.tok.kind == tokEOF:
		p.expectEndOfStatement()
		return
	case p.tok.kind == tokIdent && strings.HasPrefix(p.tok.text, "."):
		p.parseDirective()
	case p.tok.kind == tokIdent:
		p.parseInstruction()
	default:
		p.state.Report("expected a label, mnemonic, or directive")
		p.skipToEOL()
	}
	p.expectEndOfStatement()
}

// peekIsLabelColon reports whether the current ident token is immediately
// followed by ':', without consuming either.
func (p *Parser) peekIsLabelColon() bool {
	n := p.peek()
	return n.kind == tokPunct && n.r == ':'
}

func (p *Parser) parseDirective() {
	name := strings.ToLower(p.tok.text)
	p.advance()
	switch name {
	case ".text":
		p.state.SetSection(section.Text)
	case ".data":
		p.state.SetSection(section.Data)
	case ".abs":
		p.state.SetSection(section.Abs)
	case ".org":
		e := p.parseExpr()
		p.state.SetPCExpr(e)
	case ".equ":
		if p.tok.kind != tokIdent {
			p.state.Report(".equ requires a name")
			p.skipToEOL()
			return
		}
		name := p.tok.text
		p.advance()
		if !p.expectPunct(',') {
			return
		}
		e := p.parseExpr()
		p.state.DefineEquate(name, e)
	case ".db":
		p.parseDataList(1)
	case ".dw":
		p.parseDataList(2)
	default:
		p.state.Report("unknown directive %q", name)
		p.skipToEOL()
	}
}

// parseDataList parses a comma-separated list of expressions for .db/.dw and
// emits each as width little-endian bytes. Each expression must already be
// resolvable to a constant at this point in the source; a forward reference
// is reported rather than filed as a relocation, since directive data has no
// matched instruction template to anchor one to.
func (p *Parser) parseDataList(width int) {
	for {
		e := p.parseExpr()
		v := e.Clone()
		if !v.Evaluate() || v.Kind != expr.KindConst {
			p.state.Report("value in data directive must be a compile-time constant")
		} else {
			buf := make([]byte, width)
			for i := 0; i < width; i++ {
				buf[i] = byte(v.Value >> (8 * i))
			}
			p.state.EmitBytes(buf)
		}
		if p.tok.kind == tokPunct && p.tok.r == ',' {
			p.advance()
			continue
		}
		break
	}
}

func (p *Parser) parseInstruction() {
	mnemonic := p.tok.text
	p.advance()

	var op1, op2 *assembler.Operand
	if p.tok.kind != tokEOL && p.tok.kind != tokEOF {
		op1 = p.parseOperand()
		if p.tok.kind == tokPunct && p.tok.r == ',' {
			p.advance()
			op2 = p.parseOperand()
		}
	}
	p.state.EmitInstruction(strings.ToUpper(mnemonic), op1, op2)
}

func (p *Parser) expectPunct(r rune) bool {
	if p.tok.kind != tokPunct || p.tok.r != r {
		p.state.Report("expected %q", string(r))
		p.skipToEOL()
		return false
	}
	p.advance()
	return true
}

// parseOperand parses one instruction operand: a bare register/condition
// name, a register-indirect or indexed form in parens, an extended/port
// address in parens, or a generic immediate expression.
func (p *Parser) parseOperand() *assembler.Operand {
	if p.tok.kind == tokIdent {
		if k, ok := registerKinds[strings.ToLower(p.tok.text)]; ok {
			p.advance()
			return &assembler.Operand{Kind: k}
		}
	}

	if p.tok.kind == tokPunct && p.tok.r == '(' {
		return p.parseIndirectOperand()
	}

	e := p.parseExpr()
	return &assembler.Operand{Kind: inst.KindImm, Expr: e}
}

func (p *Parser) parseIndirectOperand() *assembler.Operand {
	p.advance() // '('

	if p.tok.kind == tokIdent {
		switch strings.ToLower(p.tok.text) {
		case "bc":
			p.advance()
			p.expectPunct(')')
			return &assembler.Operand{Kind: inst.KindIndBC}
		case "de":
			p.advance()
			p.expectPunct(')')
			return &assembler.Operand{Kind: inst.KindIndDE}
		case "hl":
			p.advance()
			p.expectPunct(')')
			return &assembler.Operand{Kind: inst.KindIndHL}
		case "sp":
			p.advance()
			p.expectPunct(')')
			return &assembler.Operand{Kind: inst.KindIndSP}
		case "c":
			p.advance()
			p.expectPunct(')')
			return &assembler.Operand{Kind: inst.KindIndC}
		case "ix", "iy":
			isIY := strings.ToLower(p.tok.text) == "iy"
			p.advance()
			disp := p.parseDisplacement()
			p.expectPunct(')')
			if isIY {
				return &assembler.Operand{Kind: inst.KindIndIY, Expr: disp}
			}
			return &assembler.Operand{Kind: inst.KindIndIX, Expr: disp}
		}
	}

	e := p.parseExpr()
	p.expectPunct(')')
	return &assembler.Operand{Kind: inst.KindExt, Expr: e}
}

// parseDisplacement parses the signed offset in an (ix+d)/(iy+d) operand.
// The sign is mandatory in source but not required to be present at all
// (bare "(ix)" means a zero displacement).
func (p *Parser) parseDisplacement() *expr.Node {
	switch {
	case p.tok.kind == tokPunct && p.tok.r == '+':
		p.advance()
		return p.parseMulDiv()
	case p.tok.kind == tokPunct && p.tok.r == '-':
		p.advance()
		return expr.NewUnary(expr.Negate, p.parseMulDiv())
	default:
		return expr.NewConst(section.Abs, 0)
	}
}

// --- expression grammar: | then ^ then & then + - then * / % then unary ---

func (p *Parser) parseExpr() *expr.Node {
	return p.parseOr()
}

func (p *Parser) parseOr() *expr.Node {
	n := p.parseXor()
	for p.tok.kind == tokPunct && p.tok.r == '|' {
		p.advance()
		n = expr.NewBinary(expr.Or, n, p.parseXor())
	}
	return n
}

func (p *Parser) parseXor() *expr.Node {
	n := p.parseAnd()
	for p.tok.kind == tokPunct && p.tok.r == '^' {
		p.advance()
		n = expr.NewBinary(expr.Xor, n, p.parseAnd())
	}
	return n
}

func (p *Parser) parseAnd() *expr.Node {
	n := p.parseAddSub()
	for p.tok.kind == tokPunct && p.tok.r == '&' {
		p.advance()
		n = expr.NewBinary(expr.And, n, p.parseAddSub())
	}
	return n
}

func (p *Parser) parseAddSub() *expr.Node {
	n := p.parseMulDiv()
	for p.tok.kind == tokPunct && (p.tok.r == '+' || p.tok.r == '-') {
		op := expr.Add
		if p.tok.r == '-' {
			op = expr.Sub
		}
		p.advance()
		n = expr.NewBinary(op, n, p.parseMulDiv())
	}
	return n
}

func (p *Parser) parseMulDiv() *expr.Node {
	n := p.parseUnary()
	for p.tok.kind == tokPunct && (p.tok.r == '*' || p.tok.r == '/' || p.tok.r == '%') {
		op := expr.Mul
		switch p.tok.r {
		case '/':
			op = expr.Div
		case '%':
			op = expr.Mod
		}
		p.advance()
		n = expr.NewBinary(op, n, p.parseUnary())
	}
	return n
}

func (p *Parser) parseUnary() *expr.Node {
	if p.tok.kind == tokPunct && p.tok.r == '-' {
		p.advance()
		return expr.NewUnary(expr.Negate, p.parseUnary())
	}
	if p.tok.kind == tokPunct && p.tok.r == '~' {
		p.advance()
		return expr.NewUnary(expr.Not, p.parseUnary())
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() *expr.Node {
	switch {
	case p.tok.kind == tokNumber || p.tok.kind == tokChar:
		v := p.tok.num
		p.advance()
		return expr.NewConst(section.Abs, v)
	case p.tok.kind == tokPunct && p.tok.r == '$':
		p.advance()
		return p.state.PC().Clone()
	case p.tok.kind == tokPunct && p.tok.r == '(':
		p.advance()
		e := p.parseExpr()
		p.expectPunct(')')
		return e
	case p.tok.kind == tokIdent:
		name := p.tok.text
		p.advance()
		sym := p.state.Symbols().Reference(name)
		return expr.NewSym(sym)
	default:
		p.state.Report("expected an expression")
		p.skipToEOL()
		return expr.NewConst(section.Abs, 0)
	}
}
