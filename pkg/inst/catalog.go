// Package inst implements the opcode catalog and instruction matcher: a
// mnemonic-keyed table of encoding templates, matched against a pair of
// operand kinds using first-match-wins semantics.
package inst

import "strings"

// Template is one candidate encoding for a mnemonic. Op1Off/Op2Off give the
// byte offset within Bytes where that operand's value belongs, or -1 if the
// operand contributes no value byte (a bare register, condition, or no
// operand at all). For Rst and Im, the offset instead points at the base
// opcode byte that the resolved value is OR'd into, matching how those two
// encodings are not simple byte/word patches.
type Template struct {
	Op1Kind, Op2Kind OperandKind
	Size             int
	Op1Off, Op2Off   int
	Bytes            []byte
}

// Opcode holds every encoding template registered for one mnemonic.
type Opcode struct {
	Mnemonic  string
	Templates []Template
}

var catalog = map[string]*Opcode{}

func register(mnemonic string, templates ...Template) {
	catalog[strings.ToUpper(mnemonic)] = &Opcode{Mnemonic: mnemonic, Templates: templates}
}

// Lookup finds the Opcode for mnemonic, case-insensitively, or nil if the
// mnemonic is not registered.
func Lookup(mnemonic string) *Opcode {
	return catalog[strings.ToUpper(mnemonic)]
}

// Match returns the first template on oc whose operand kinds are castable
// from (k1, k2), or nil if none match. Ordering within oc.Templates is load
// bearing: where more than one template could satisfy a pair of operand
// kinds, the first in registration order is the instruction's required
// encoding.
func Match(oc *Opcode, k1, k2 OperandKind) *Template {
	if oc == nil {
		return nil
	}
	for i := range oc.Templates {
		t := &oc.Templates[i]
		if operandMatches(k1, t.Op1Kind) && operandMatches(k2, t.Op2Kind) {
			return t
		}
	}
	return nil
}

func operandMatches(operand, slot OperandKind) bool {
	if operand == KindNone && slot == KindNone {
		return true
	}
	return castable(operand, slot)
}

func init() {
	registerLoads()
	registerExchanges()
	registerStack()
	registerArithmetic8()
	registerIncDec()
	registerArithmetic16()
	registerRotatesAndMisc()
	registerControlFlow()
	registerIO()
	registerBitOps()
	registerIndexed()
}

// registerLoads covers the 8-bit and 16-bit LD forms: register-to-register,
// immediate loads, (HL)/(BC)/(DE) indirect loads, and the direct-address
// 16-bit loads.
func registerLoads() {
	regs8 := []struct {
		kind OperandKind
		name string
		enc  uint8 // 3-bit register encoding used in LD r,r' (B,C,D,E,H,L,-,A)
	}{
		{KindB, "B", 0}, {KindC, "C", 1}, {KindD, "D", 2}, {KindE, "E", 3},
		{KindH, "H", 4}, {KindL, "L", 5}, {KindA, "A", 7},
	}

	var ldRR []Template
	for _, dst := range regs8 {
		for _, src := range regs8 {
			ldRR = append(ldRR, Template{
				Op1Kind: dst.kind, Op2Kind: src.kind, Size: 1,
				Op1Off: -1, Op2Off: -1,
				Bytes: []byte{0x40 | dst.enc<<3 | src.enc},
			})
		}
	}
	for _, dst := range regs8 {
		ldRR = append(ldRR, Template{
			Op1Kind: dst.kind, Op2Kind: KindIndHL, Size: 1, Op1Off: -1, Op2Off: -1,
			Bytes: []byte{0x46 | dst.enc<<3},
		})
	}
	for _, src := range regs8 {
		ldRR = append(ldRR, Template{
			Op1Kind: KindIndHL, Op2Kind: src.kind, Size: 1, Op1Off: -1, Op2Off: -1,
			Bytes: []byte{0x70 | src.enc},
		})
	}
	for _, dst := range regs8 {
		ldRR = append(ldRR, Template{
			Op1Kind: dst.kind, Op2Kind: KindImm8, Size: 2, Op1Off: -1, Op2Off: 1,
			Bytes: []byte{0x06 | dst.enc<<3, 0x00},
		})
	}
	ldRR = append(ldRR, Template{
		Op1Kind: KindIndHL, Op2Kind: KindImm8, Size: 2, Op1Off: -1, Op2Off: 1,
		Bytes: []byte{0x36, 0x00},
	})
	register("LD", ldRR...)
	registerLoads16()
	registerLoadsMemory()
}

func registerLoads16() {
	pairs := []struct {
		kind OperandKind
		enc  uint8
	}{
		{KindBC, 0}, {KindDE, 1}, {KindHL, 2}, {KindSP, 3},
	}
	for _, p := range pairs {
		catalog["LD"].Templates = append(catalog["LD"].Templates, Template{
			Op1Kind: p.kind, Op2Kind: KindImm16, Size: 3, Op1Off: -1, Op2Off: 1,
			Bytes: []byte{0x01 | p.enc<<4, 0x00, 0x00},
		})
	}
	catalog["LD"].Templates = append(catalog["LD"].Templates,
		Template{Op1Kind: KindIX, Op2Kind: KindImm16, Size: 4, Op1Off: -1, Op2Off: 2,
			Bytes: []byte{0xDD, 0x21, 0x00, 0x00}},
		Template{Op1Kind: KindIY, Op2Kind: KindImm16, Size: 4, Op1Off: -1, Op2Off: 2,
			Bytes: []byte{0xFD, 0x21, 0x00, 0x00}},
		Template{Op1Kind: KindSP, Op2Kind: KindHL, Size: 1, Op1Off: -1, Op2Off: -1,
			Bytes: []byte{0xF9}},
		Template{Op1Kind: KindSP, Op2Kind: KindIX, Size: 2, Op1Off: -1, Op2Off: -1,
			Bytes: []byte{0xDD, 0xF9}},
		Template{Op1Kind: KindSP, Op2Kind: KindIY, Size: 2, Op1Off: -1, Op2Off: -1,
			Bytes: []byte{0xFD, 0xF9}},
	)
}

func registerLoadsMemory() {
	catalog["LD"].Templates = append(catalog["LD"].Templates,
		Template{Op1Kind: KindA, Op2Kind: KindIndBC, Size: 1, Op1Off: -1, Op2Off: -1, Bytes: []byte{0x0A}},
		Template{Op1Kind: KindA, Op2Kind: KindIndDE, Size: 1, Op1Off: -1, Op2Off: -1, Bytes: []byte{0x1A}},
		Template{Op1Kind: KindIndBC, Op2Kind: KindA, Size: 1, Op1Off: -1, Op2Off: -1, Bytes: []byte{0x02}},
		Template{Op1Kind: KindIndDE, Op2Kind: KindA, Size: 1, Op1Off: -1, Op2Off: -1, Bytes: []byte{0x12}},
		Template{Op1Kind: KindA, Op2Kind: KindExt, Size: 3, Op1Off: -1, Op2Off: 1, Bytes: []byte{0x3A, 0x00, 0x00}},
		Template{Op1Kind: KindExt, Op2Kind: KindA, Size: 3, Op1Off: 1, Op2Off: -1, Bytes: []byte{0x32, 0x00, 0x00}},
		Template{Op1Kind: KindHL, Op2Kind: KindExt, Size: 3, Op1Off: -1, Op2Off: 1, Bytes: []byte{0x2A, 0x00, 0x00}},
		Template{Op1Kind: KindExt, Op2Kind: KindHL, Size: 3, Op1Off: 1, Op2Off: -1, Bytes: []byte{0x22, 0x00, 0x00}},
		Template{Op1Kind: KindBC, Op2Kind: KindExt, Size: 4, Op1Off: -1, Op2Off: 2, Bytes: []byte{0xED, 0x4B, 0x00, 0x00}},
		Template{Op1Kind: KindDE, Op2Kind: KindExt, Size: 4, Op1Off: -1, Op2Off: 2, Bytes: []byte{0xED, 0x5B, 0x00, 0x00}},
		Template{Op1Kind: KindSP, Op2Kind: KindExt, Size: 4, Op1Off: -1, Op2Off: 2, Bytes: []byte{0xED, 0x7B, 0x00, 0x00}},
		Template{Op1Kind: KindExt, Op2Kind: KindBC, Size: 4, Op1Off: 2, Op2Off: -1, Bytes: []byte{0xED, 0x43, 0x00, 0x00}},
		Template{Op1Kind: KindExt, Op2Kind: KindDE, Size: 4, Op1Off: 2, Op2Off: -1, Bytes: []byte{0xED, 0x53, 0x00, 0x00}},
		Template{Op1Kind: KindExt, Op2Kind: KindSP, Size: 4, Op1Off: 2, Op2Off: -1, Bytes: []byte{0xED, 0x73, 0x00, 0x00}},
		Template{Op1Kind: KindI, Op2Kind: KindA, Size: 2, Op1Off: -1, Op2Off: -1, Bytes: []byte{0xED, 0x47}},
		Template{Op1Kind: KindR, Op2Kind: KindA, Size: 2, Op1Off: -1, Op2Off: -1, Bytes: []byte{0xED, 0x4F}},
		Template{Op1Kind: KindA, Op2Kind: KindI, Size: 2, Op1Off: -1, Op2Off: -1, Bytes: []byte{0xED, 0x57}},
		Template{Op1Kind: KindA, Op2Kind: KindR, Size: 2, Op1Off: -1, Op2Off: -1, Bytes: []byte{0xED, 0x5F}},
	)
}

func registerExchanges() {
	register("EX",
		Template{Op1Kind: KindDE, Op2Kind: KindHL, Size: 1, Op1Off: -1, Op2Off: -1, Bytes: []byte{0xEB}},
		Template{Op1Kind: KindAF, Op2Kind: KindAFShadow, Size: 1, Op1Off: -1, Op2Off: -1, Bytes: []byte{0x08}},
		Template{Op1Kind: KindIndSP, Op2Kind: KindHL, Size: 1, Op1Off: -1, Op2Off: -1, Bytes: []byte{0xE3}},
		Template{Op1Kind: KindIndSP, Op2Kind: KindIX, Size: 2, Op1Off: -1, Op2Off: -1, Bytes: []byte{0xDD, 0xE3}},
		Template{Op1Kind: KindIndSP, Op2Kind: KindIY, Size: 2, Op1Off: -1, Op2Off: -1, Bytes: []byte{0xFD, 0xE3}},
	)
	register("EXX", Template{Size: 1, Op1Off: -1, Op2Off: -1, Bytes: []byte{0xD9}})
	register("LDI", Template{Size: 2, Op1Off: -1, Op2Off: -1, Bytes: []byte{0xED, 0xA0}})
	register("LDD", Template{Size: 2, Op1Off: -1, Op2Off: -1, Bytes: []byte{0xED, 0xA8}})
	register("LDIR", Template{Size: 2, Op1Off: -1, Op2Off: -1, Bytes: []byte{0xED, 0xB0}})
	register("LDDR", Template{Size: 2, Op1Off: -1, Op2Off: -1, Bytes: []byte{0xED, 0xB8}})
	register("CPI", Template{Size: 2, Op1Off: -1, Op2Off: -1, Bytes: []byte{0xED, 0xA1}})
	register("CPD", Template{Size: 2, Op1Off: -1, Op2Off: -1, Bytes: []byte{0xED, 0xA9}})
	register("CPIR", Template{Size: 2, Op1Off: -1, Op2Off: -1, Bytes: []byte{0xED, 0xB1}})
	register("CPDR", Template{Size: 2, Op1Off: -1, Op2Off: -1, Bytes: []byte{0xED, 0xB9}})
}

func registerStack() {
	pairs := []struct {
		kind OperandKind
		enc  uint8
	}{
		{KindBC, 0}, {KindDE, 1}, {KindHL, 2}, {KindAF, 3},
	}
	var push, pop []Template
	for _, p := range pairs {
		push = append(push, Template{Op1Kind: p.kind, Size: 1, Op1Off: -1, Op2Off: -1, Bytes: []byte{0xC5 | p.enc<<4}})
		pop = append(pop, Template{Op1Kind: p.kind, Size: 1, Op1Off: -1, Op2Off: -1, Bytes: []byte{0xC1 | p.enc<<4}})
	}
	push = append(push,
		Template{Op1Kind: KindIX, Size: 2, Op1Off: -1, Op2Off: -1, Bytes: []byte{0xDD, 0xE5}},
		Template{Op1Kind: KindIY, Size: 2, Op1Off: -1, Op2Off: -1, Bytes: []byte{0xFD, 0xE5}},
	)
	pop = append(pop,
		Template{Op1Kind: KindIX, Size: 2, Op1Off: -1, Op2Off: -1, Bytes: []byte{0xDD, 0xE1}},
		Template{Op1Kind: KindIY, Size: 2, Op1Off: -1, Op2Off: -1, Bytes: []byte{0xFD, 0xE1}},
	)
	register("PUSH", push...)
	register("POP", pop...)
}

// registerArithmetic8 covers ADD/ADC/SUB/SBC/AND/XOR/OR/CP against an 8-bit
// register, (HL), or an immediate byte. Both the one-operand form ("sub b")
// and the explicit accumulator form ("sub a, b") are registered, matching
// real-world Z80 assemblers that accept either spelling.
func registerArithmetic8() {
	regs8 := []struct {
		kind OperandKind
		name string
		enc  uint8
	}{
		{KindB, "B", 0}, {KindC, "C", 1}, {KindD, "D", 2}, {KindE, "E", 3},
		{KindH, "H", 4}, {KindL, "L", 5}, {KindA, "A", 7},
	}
	ops := []struct {
		mnemonic  string
		base      uint8
		immBase   uint8
		needsA    bool // ADD/ADC/SBC always require the explicit "A," form
	}{
		{"ADD", 0x80, 0xC6, true},
		{"ADC", 0x88, 0xCE, true},
		{"SUB", 0x90, 0xD6, false},
		{"SBC", 0x98, 0xDE, true},
		{"AND", 0xA0, 0xE6, false},
		{"XOR", 0xA8, 0xEE, false},
		{"OR", 0xB0, 0xF6, false},
		{"CP", 0xB8, 0xFE, false},
	}
	for _, op := range ops {
		var templates []Template
		for _, r := range regs8 {
			templates = append(templates, Template{
				Op1Kind: KindA, Op2Kind: r.kind, Size: 1, Op1Off: -1, Op2Off: -1,
				Bytes: []byte{op.base | r.enc},
			})
		}
		templates = append(templates, Template{
			Op1Kind: KindA, Op2Kind: KindIndHL, Size: 1, Op1Off: -1, Op2Off: -1,
			Bytes: []byte{op.base | 0x06},
		})
		templates = append(templates, Template{
			Op1Kind: KindA, Op2Kind: KindImm8, Size: 2, Op1Off: -1, Op2Off: 1,
			Bytes: []byte{op.immBase, 0x00},
		})
		if !op.needsA {
			for _, r := range regs8 {
				templates = append(templates, Template{
					Op1Kind: r.kind, Size: 1, Op1Off: -1, Op2Off: -1,
					Bytes: []byte{op.base | r.enc},
				})
			}
			templates = append(templates, Template{
				Op1Kind: KindIndHL, Size: 1, Op1Off: -1, Op2Off: -1,
				Bytes: []byte{op.base | 0x06},
			})
			templates = append(templates, Template{
				Op1Kind: KindImm8, Size: 2, Op1Off: 1, Op2Off: -1,
				Bytes: []byte{op.immBase, 0x00},
			})
		}
		register(op.mnemonic, templates...)
	}
}

func registerIncDec() {
	regs8 := []struct {
		kind OperandKind
		enc  uint8
	}{
		{KindB, 0}, {KindC, 1}, {KindD, 2}, {KindE, 3},
		{KindH, 4}, {KindL, 5}, {KindIndHL, 6}, {KindA, 7},
	}
	var inc, dec []Template
	for _, r := range regs8 {
		inc = append(inc, Template{Op1Kind: r.kind, Size: 1, Op1Off: -1, Op2Off: -1, Bytes: []byte{0x04 | r.enc<<3}})
		dec = append(dec, Template{Op1Kind: r.kind, Size: 1, Op1Off: -1, Op2Off: -1, Bytes: []byte{0x05 | r.enc<<3}})
	}
	pairs := []struct {
		kind OperandKind
		enc  uint8
	}{
		{KindBC, 0}, {KindDE, 1}, {KindHL, 2}, {KindSP, 3},
	}
	for _, p := range pairs {
		inc = append(inc, Template{Op1Kind: p.kind, Size: 1, Op1Off: -1, Op2Off: -1, Bytes: []byte{0x03 | p.enc<<4}})
		dec = append(dec, Template{Op1Kind: p.kind, Size: 1, Op1Off: -1, Op2Off: -1, Bytes: []byte{0x0B | p.enc<<4}})
	}
	inc = append(inc,
		Template{Op1Kind: KindIX, Size: 2, Op1Off: -1, Op2Off: -1, Bytes: []byte{0xDD, 0x23}},
		Template{Op1Kind: KindIY, Size: 2, Op1Off: -1, Op2Off: -1, Bytes: []byte{0xFD, 0x23}},
	)
	dec = append(dec,
		Template{Op1Kind: KindIX, Size: 2, Op1Off: -1, Op2Off: -1, Bytes: []byte{0xDD, 0x2B}},
		Template{Op1Kind: KindIY, Size: 2, Op1Off: -1, Op2Off: -1, Bytes: []byte{0xFD, 0x2B}},
	)
	register("INC", inc...)
	register("DEC", dec...)
}

func registerArithmetic16() {
	pairs := []struct {
		kind OperandKind
		enc  uint8
	}{
		{KindBC, 0}, {KindDE, 1}, {KindHL, 2}, {KindSP, 3},
	}
	var add []Template
	for _, p := range pairs {
		add = append(add, Template{Op1Kind: KindHL, Op2Kind: p.kind, Size: 1, Op1Off: -1, Op2Off: -1, Bytes: []byte{0x09 | p.enc<<4}})
	}
	ixPairs := []struct {
		kind OperandKind
		enc  uint8
	}{
		{KindBC, 0}, {KindDE, 1}, {KindIX, 2}, {KindSP, 3},
	}
	for _, p := range ixPairs {
		add = append(add, Template{Op1Kind: KindIX, Op2Kind: p.kind, Size: 2, Op1Off: -1, Op2Off: -1, Bytes: []byte{0xDD, 0x09 | p.enc<<4}})
	}
	iyPairs := []struct {
		kind OperandKind
		enc  uint8
	}{
		{KindBC, 0}, {KindDE, 1}, {KindIY, 2}, {KindSP, 3},
	}
	for _, p := range iyPairs {
		add = append(add, Template{Op1Kind: KindIY, Op2Kind: p.kind, Size: 2, Op1Off: -1, Op2Off: -1, Bytes: []byte{0xFD, 0x09 | p.enc<<4}})
	}
	register("ADD", append(catalog["ADD"].Templates, add...)...)

	var adc, sbc []Template
	for _, p := range pairs {
		adc = append(adc, Template{Op1Kind: KindHL, Op2Kind: p.kind, Size: 2, Op1Off: -1, Op2Off: -1, Bytes: []byte{0xED, 0x4A | p.enc<<4}})
		sbc = append(sbc, Template{Op1Kind: KindHL, Op2Kind: p.kind, Size: 2, Op1Off: -1, Op2Off: -1, Bytes: []byte{0xED, 0x42 | p.enc<<4}})
	}
	register("ADC", append(catalog["ADC"].Templates, adc...)...)
	register("SBC", append(catalog["SBC"].Templates, sbc...)...)
}

func registerRotatesAndMisc() {
	register("RLCA", Template{Size: 1, Op1Off: -1, Op2Off: -1, Bytes: []byte{0x07}})
	register("RRCA", Template{Size: 1, Op1Off: -1, Op2Off: -1, Bytes: []byte{0x0F}})
	register("RLA", Template{Size: 1, Op1Off: -1, Op2Off: -1, Bytes: []byte{0x17}})
	register("RRA", Template{Size: 1, Op1Off: -1, Op2Off: -1, Bytes: []byte{0x1F}})
	register("DAA", Template{Size: 1, Op1Off: -1, Op2Off: -1, Bytes: []byte{0x27}})
	register("CPL", Template{Size: 1, Op1Off: -1, Op2Off: -1, Bytes: []byte{0x2F}})
	register("SCF", Template{Size: 1, Op1Off: -1, Op2Off: -1, Bytes: []byte{0x37}})
	register("CCF", Template{Size: 1, Op1Off: -1, Op2Off: -1, Bytes: []byte{0x3F}})
	register("NOP", Template{Size: 1, Op1Off: -1, Op2Off: -1, Bytes: []byte{0x00}})
	register("HALT", Template{Size: 1, Op1Off: -1, Op2Off: -1, Bytes: []byte{0x76}})
	register("DI", Template{Size: 1, Op1Off: -1, Op2Off: -1, Bytes: []byte{0xF3}})
	register("EI", Template{Size: 1, Op1Off: -1, Op2Off: -1, Bytes: []byte{0xFB}})
	register("NEG", Template{Size: 2, Op1Off: -1, Op2Off: -1, Bytes: []byte{0xED, 0x44}})
	register("RETN", Template{Size: 2, Op1Off: -1, Op2Off: -1, Bytes: []byte{0xED, 0x45}})
	register("RETI", Template{Size: 2, Op1Off: -1, Op2Off: -1, Bytes: []byte{0xED, 0x4D}})
	register("RLD", Template{Size: 2, Op1Off: -1, Op2Off: -1, Bytes: []byte{0xED, 0x6F}})
	register("RRD", Template{Size: 2, Op1Off: -1, Op2Off: -1, Bytes: []byte{0xED, 0x67}})

	// IM n: the expected value (0, 1, 2) is never written directly into the
	// instruction bytes — it selects which of the three fixed encodings is
	// used, so Op1Off points at the second byte only to record where the
	// OR'd-in selector bits belong.
	register("IM", Template{Op1Kind: KindIm, Size: 2, Op1Off: 1, Op2Off: -1, Bytes: []byte{0xED, 0x46}})
}

func registerControlFlow() {
	conditions := []struct {
		kind OperandKind
		enc  uint8
	}{
		{KindNZ, 0}, {KindZ, 1}, {KindNC, 2}, {KindC, 3},
		{KindPO, 4}, {KindPE, 5}, {KindP, 6}, {KindM, 7},
	}
	jrConditions := conditions[:4] // JR/DJNZ only support NZ, Z, NC, C

	register("JP",
		Template{Op1Kind: KindImm16, Size: 3, Op1Off: 1, Op2Off: -1, Bytes: []byte{0xC3, 0x00, 0x00}},
		Template{Op1Kind: KindIndHL, Size: 1, Op1Off: -1, Op2Off: -1, Bytes: []byte{0xE9}},
		Template{Op1Kind: KindIndIX, Size: 2, Op1Off: -1, Op2Off: -1, Bytes: []byte{0xDD, 0xE9}},
		Template{Op1Kind: KindIndIY, Size: 2, Op1Off: -1, Op2Off: -1, Bytes: []byte{0xFD, 0xE9}},
	)
	for _, c := range conditions {
		catalog["JP"].Templates = append(catalog["JP"].Templates, Template{
			Op1Kind: c.kind, Op2Kind: KindImm16, Size: 3, Op1Off: -1, Op2Off: 1,
			Bytes: []byte{0xC2 | c.enc<<3, 0x00, 0x00},
		})
	}

	register("JR",
		Template{Op1Kind: KindRel, Size: 2, Op1Off: 1, Op2Off: -1, Bytes: []byte{0x18, 0x00}},
	)
	jrBase := []uint8{0x20, 0x28, 0x30, 0x38}
	for i, c := range jrConditions {
		catalog["JR"].Templates = append(catalog["JR"].Templates, Template{
			Op1Kind: c.kind, Op2Kind: KindRel, Size: 2, Op1Off: -1, Op2Off: 1,
			Bytes: []byte{jrBase[i], 0x00},
		})
	}
	register("DJNZ", Template{Op1Kind: KindRel, Size: 2, Op1Off: 1, Op2Off: -1, Bytes: []byte{0x10, 0x00}})

	register("CALL",
		Template{Op1Kind: KindImm16, Size: 3, Op1Off: 1, Op2Off: -1, Bytes: []byte{0xCD, 0x00, 0x00}},
	)
	for _, c := range conditions {
		catalog["CALL"].Templates = append(catalog["CALL"].Templates, Template{
			Op1Kind: c.kind, Op2Kind: KindImm16, Size: 3, Op1Off: -1, Op2Off: 1,
			Bytes: []byte{0xC4 | c.enc<<3, 0x00, 0x00},
		})
	}

	register("RET", Template{Size: 1, Op1Off: -1, Op2Off: -1, Bytes: []byte{0xC9}})
	for _, c := range conditions {
		catalog["RET"].Templates = append(catalog["RET"].Templates, Template{
			Op1Kind: c.kind, Size: 1, Op1Off: -1, Op2Off: -1,
			Bytes: []byte{0xC0 | c.enc<<3},
		})
	}

	// RST n: like IM, the value is OR'd into the base byte rather than
	// written as a separate slot byte.
	register("RST", Template{Op1Kind: KindRst, Size: 1, Op1Off: 0, Op2Off: -1, Bytes: []byte{0xC7}})
}

func registerIO() {
	register("OUT", Template{Op1Kind: KindPort, Op2Kind: KindA, Size: 2, Op1Off: 1, Op2Off: -1, Bytes: []byte{0xD3, 0x00}})
	catalog["OUT"].Templates = append(catalog["OUT"].Templates,
		Template{Op1Kind: KindIndC, Op2Kind: KindA, Size: 2, Op1Off: -1, Op2Off: -1, Bytes: []byte{0xED, 0x79}},
	)
	register("IN", Template{Op1Kind: KindA, Op2Kind: KindPort, Size: 2, Op1Off: -1, Op2Off: 1, Bytes: []byte{0xDB, 0x00}})
	catalog["IN"].Templates = append(catalog["IN"].Templates,
		Template{Op1Kind: KindA, Op2Kind: KindIndC, Size: 2, Op1Off: -1, Op2Off: -1, Bytes: []byte{0xED, 0x78}},
	)
}

// registerBitOps builds the CB-prefixed rotate/shift and BIT/RES/SET
// families for every register plus (HL), following the teacher's
// grid-of-loops construction style for the dense CB opcode space.
func registerBitOps() {
	regs := []struct {
		kind OperandKind
		enc  uint8
	}{
		{KindB, 0}, {KindC, 1}, {KindD, 2}, {KindE, 3},
		{KindH, 4}, {KindL, 5}, {KindIndHL, 6}, {KindA, 7},
	}
	shifts := []struct {
		mnemonic string
		base     uint8
	}{
		{"RLC", 0x00}, {"RRC", 0x08}, {"RL", 0x10}, {"RR", 0x18},
		{"SLA", 0x20}, {"SRA", 0x28}, {"SLL", 0x30}, {"SRL", 0x38},
	}
	for _, sh := range shifts {
		var templates []Template
		for _, r := range regs {
			templates = append(templates, Template{
				Op1Kind: r.kind, Size: 2, Op1Off: -1, Op2Off: -1,
				Bytes: []byte{0xCB, sh.base | r.enc},
			})
		}
		register(sh.mnemonic, templates...)
	}

	// BIT/RES/SET n, r: n is a compile-time bit index (0-7) that is OR'd
	// into the base opcode byte, exactly like Rst and Im above — one
	// template per register, not per bit.
	bitFamilies := []struct {
		mnemonic string
		base     uint8
	}{
		{"BIT", 0x40}, {"RES", 0x80}, {"SET", 0xC0},
	}
	for _, fam := range bitFamilies {
		var templates []Template
		for _, r := range regs {
			templates = append(templates, Template{
				Op1Kind: KindBit, Op2Kind: r.kind, Size: 2, Op1Off: 1, Op2Off: -1,
				Bytes: []byte{0xCB, fam.base | r.enc},
			})
		}
		register(fam.mnemonic, templates...)
	}
}

// registerIndexed adds the (IX+d)/(IY+d) indexed-memory addressing forms:
// loads, arithmetic, INC/DEC, and BIT/RES/SET against a displaced byte in
// index-register memory, grounded on the OP_iIX/OP_iIY template rows in the
// source's opcode tables (8-bit register encodings reduce to the same
// `base | 0x06` slot the plain (HL) forms already use, since (IX+d)/(IY+d)
// occupy the (HL) encoding's slot with a DD/FD prefix and a displacement
// byte inserted).
func registerIndexed() {
	regs8 := []struct {
		kind OperandKind
		enc  uint8
	}{
		{KindB, 0}, {KindC, 1}, {KindD, 2}, {KindE, 3},
		{KindH, 4}, {KindL, 5}, {KindA, 7},
	}
	indexPrefixes := []struct {
		indKind OperandKind
		prefix  byte
	}{
		{KindIndIX, 0xDD}, {KindIndIY, 0xFD},
	}

	for _, idx := range indexPrefixes {
		var ld []Template
		for _, r := range regs8 {
			ld = append(ld,
				Template{
					Op1Kind: r.kind, Op2Kind: idx.indKind, Size: 3, Op1Off: -1, Op2Off: 2,
					Bytes: []byte{idx.prefix, 0x46 | r.enc<<3, 0x00},
				},
				Template{
					Op1Kind: idx.indKind, Op2Kind: r.kind, Size: 3, Op1Off: 2, Op2Off: -1,
					Bytes: []byte{idx.prefix, 0x70 | r.enc, 0x00},
				},
			)
		}
		ld = append(ld, Template{
			Op1Kind: idx.indKind, Op2Kind: KindImm8, Size: 4, Op1Off: 2, Op2Off: 3,
			Bytes: []byte{idx.prefix, 0x36, 0x00, 0x00},
		})
		register("LD", append(catalog["LD"].Templates, ld...)...)

		aluOps := []struct {
			mnemonic string
			base     uint8
			needsA   bool
		}{
			{"ADD", 0x80, true}, {"ADC", 0x88, true}, {"SUB", 0x90, false},
			{"SBC", 0x98, true}, {"AND", 0xA0, false}, {"XOR", 0xA8, false},
			{"OR", 0xB0, false}, {"CP", 0xB8, false},
		}
		for _, op := range aluOps {
			tmpl := Template{
				Op1Kind: KindA, Op2Kind: idx.indKind, Size: 3, Op1Off: -1, Op2Off: 2,
				Bytes: []byte{idx.prefix, op.base | 0x06, 0x00},
			}
			register(op.mnemonic, append(catalog[op.mnemonic].Templates, tmpl)...)
			if !op.needsA {
				bare := Template{
					Op1Kind: idx.indKind, Size: 3, Op1Off: 2, Op2Off: -1,
					Bytes: []byte{idx.prefix, op.base | 0x06, 0x00},
				}
				register(op.mnemonic, append(catalog[op.mnemonic].Templates, bare)...)
			}
		}

		register("INC", append(catalog["INC"].Templates, Template{
			Op1Kind: idx.indKind, Size: 3, Op1Off: 2, Op2Off: -1,
			Bytes: []byte{idx.prefix, 0x34, 0x00},
		})...)
		register("DEC", append(catalog["DEC"].Templates, Template{
			Op1Kind: idx.indKind, Size: 3, Op1Off: 2, Op2Off: -1,
			Bytes: []byte{idx.prefix, 0x35, 0x00},
		})...)

		bitFamilies := []struct {
			mnemonic string
			base     uint8
		}{
			{"BIT", 0x40}, {"RES", 0x80}, {"SET", 0xC0},
		}
		for _, fam := range bitFamilies {
			tmpl := Template{
				Op1Kind: KindBit, Op2Kind: idx.indKind, Size: 4, Op1Off: 3, Op2Off: 2,
				Bytes: []byte{idx.prefix, 0xCB, 0x00, fam.base | 0x06},
			}
			register(fam.mnemonic, append(catalog[fam.mnemonic].Templates, tmpl)...)
		}
	}
}
