package inst

import "testing"

func TestLookupCaseInsensitive(t *testing.T) {
	for _, name := range []string{"ld", "LD", "Ld", "lD"} {
		if Lookup(name) == nil {
			t.Fatalf("Lookup(%q) = nil, want the LD opcode", name)
		}
	}
	if Lookup("nope") != nil {
		t.Fatalf("Lookup(\"nope\") = non-nil, want nil for unregistered mnemonic")
	}
}

func TestMatchScenarioEncodings(t *testing.T) {
	cases := []struct {
		mnemonic string
		k1, k2   OperandKind
		want     []byte
	}{
		{"LD", KindA, KindImm, []byte{0x3E, 0x00}},
		{"LD", KindHL, KindImm, []byte{0x21, 0x00, 0x00}},
		{"JR", KindImm, KindNone, []byte{0x18, 0x00}},
		{"RST", KindImm, KindNone, []byte{0xC7}},
		{"IM", KindImm, KindNone, []byte{0xED, 0x46}},
		{"JP", KindImm, KindNone, []byte{0xC3, 0x00, 0x00}},
	}
	for _, tc := range cases {
		oc := Lookup(tc.mnemonic)
		if oc == nil {
			t.Fatalf("Lookup(%q) = nil", tc.mnemonic)
		}
		tmpl := Match(oc, tc.k1, tc.k2)
		if tmpl == nil {
			t.Fatalf("Match(%s, %s, %s) = nil, want a template", tc.mnemonic, tc.k1, tc.k2)
		}
		if string(tmpl.Bytes) != string(tc.want) {
			t.Errorf("Match(%s, %s, %s).Bytes = % X, want % X", tc.mnemonic, tc.k1, tc.k2, tmpl.Bytes, tc.want)
		}
	}
}

func TestMatchLdRegisterToRegister(t *testing.T) {
	oc := Lookup("LD")
	tmpl := Match(oc, KindB, KindC)
	if tmpl == nil {
		t.Fatal("Match(LD, B, C) = nil")
	}
	if string(tmpl.Bytes) != string([]byte{0x41}) {
		t.Errorf("LD B,C = % X, want 41", tmpl.Bytes)
	}

	tmpl = Match(oc, KindA, KindIndHL)
	if tmpl == nil || string(tmpl.Bytes) != string([]byte{0x7E}) {
		t.Errorf("LD A,(HL) = %+v, want 7E", tmpl)
	}

	tmpl = Match(oc, KindIndHL, KindA)
	if tmpl == nil || string(tmpl.Bytes) != string([]byte{0x77}) {
		t.Errorf("LD (HL),A = %+v, want 77", tmpl)
	}
}

// TestMatchFirstWinsBareVsAccumulatorForm exercises first-match-wins
// ordering for an operator that registers both "SUB r" and "SUB A, r": the
// accumulator form is registered first, the bare-register form is only
// reached after every accumulator template is passed over, and both
// spellings encode to the same byte.
func TestMatchFirstWinsBareVsAccumulatorForm(t *testing.T) {
	oc := Lookup("SUB")
	tmpl := Match(oc, KindB, KindNone)
	if tmpl == nil {
		t.Fatal("Match(SUB, B, none) = nil")
	}
	if string(tmpl.Bytes) != string([]byte{0x90}) {
		t.Errorf("SUB B = % X, want 90", tmpl.Bytes)
	}

	tmpl = Match(oc, KindA, KindB)
	if tmpl == nil || string(tmpl.Bytes) != string([]byte{0x90}) {
		t.Errorf("SUB A,B = %+v, want 90", tmpl)
	}
}

func TestMatchAddRequiresExplicitAccumulator(t *testing.T) {
	oc := Lookup("ADD")
	if tmpl := Match(oc, KindB, KindNone); tmpl != nil {
		t.Fatalf("Match(ADD, B, none) = %+v, want nil (ADD has no bare-register form)", tmpl)
	}
	tmpl := Match(oc, KindA, KindB)
	if tmpl == nil || string(tmpl.Bytes) != string([]byte{0x80}) {
		t.Errorf("ADD A,B = %+v, want 80", tmpl)
	}
}

func TestMatchIncDec(t *testing.T) {
	oc := Lookup("INC")
	tmpl := Match(oc, KindHL, KindNone)
	if tmpl == nil || string(tmpl.Bytes) != string([]byte{0x23}) {
		t.Errorf("INC HL = %+v, want 23", tmpl)
	}
	tmpl = Match(oc, KindIndHL, KindNone)
	if tmpl == nil || string(tmpl.Bytes) != string([]byte{0x34}) {
		t.Errorf("INC (HL) = %+v, want 34", tmpl)
	}

	oc = Lookup("DEC")
	tmpl = Match(oc, KindIX, KindNone)
	if tmpl == nil || string(tmpl.Bytes) != string([]byte{0xDD, 0x2B}) {
		t.Errorf("DEC IX = %+v, want DD 2B", tmpl)
	}
}

func TestMatchPushPop(t *testing.T) {
	tmpl := Match(Lookup("PUSH"), KindAF, KindNone)
	if tmpl == nil || string(tmpl.Bytes) != string([]byte{0xF5}) {
		t.Errorf("PUSH AF = %+v, want F5", tmpl)
	}
	tmpl = Match(Lookup("POP"), KindIY, KindNone)
	if tmpl == nil || string(tmpl.Bytes) != string([]byte{0xFD, 0xE1}) {
		t.Errorf("POP IY = %+v, want FD E1", tmpl)
	}
}

func TestMatchCBPrefixedRotate(t *testing.T) {
	tmpl := Match(Lookup("RLC"), KindB, KindNone)
	if tmpl == nil || string(tmpl.Bytes) != string([]byte{0xCB, 0x00}) {
		t.Errorf("RLC B = %+v, want CB 00", tmpl)
	}
	tmpl = Match(Lookup("SRL"), KindIndHL, KindNone)
	if tmpl == nil || string(tmpl.Bytes) != string([]byte{0xCB, 0x3E}) {
		t.Errorf("SRL (HL) = %+v, want CB 3E", tmpl)
	}
}

// TestMatchBitResSet confirms the one-template-per-register model: the
// literal bit index is not part of the matched template's kind, only the
// register is, and the template's Op1Off marks where the bit number must
// later be OR'd in by the relocation resolver.
func TestMatchBitResSet(t *testing.T) {
	cases := []struct {
		mnemonic string
		reg      OperandKind
		want     []byte
	}{
		{"BIT", KindA, []byte{0xCB, 0x47}},
		{"RES", KindB, []byte{0xCB, 0x80}},
		{"SET", KindIndHL, []byte{0xCB, 0xC6}},
	}
	for _, tc := range cases {
		oc := Lookup(tc.mnemonic)
		tmpl := Match(oc, KindBit, tc.reg)
		if tmpl == nil {
			t.Fatalf("Match(%s, bit, %s) = nil", tc.mnemonic, tc.reg)
		}
		if string(tmpl.Bytes) != string(tc.want) {
			t.Errorf("%s n,%s base bytes = % X, want % X", tc.mnemonic, tc.reg, tmpl.Bytes, tc.want)
		}
		if tmpl.Op1Off != 1 {
			t.Errorf("%s n,%s Op1Off = %d, want 1 (OR-in target byte)", tc.mnemonic, tc.reg, tmpl.Op1Off)
		}
	}
}

func TestMatchJrOnlySupportsFourConditions(t *testing.T) {
	oc := Lookup("JR")
	for _, c := range []OperandKind{KindNZ, KindZ, KindNC, KindC} {
		if tmpl := Match(oc, c, KindImm); tmpl == nil {
			t.Errorf("Match(JR, %s, imm) = nil, want a template", c)
		}
	}
	for _, c := range []OperandKind{KindPO, KindPE, KindP, KindM} {
		if tmpl := Match(oc, c, KindImm); tmpl != nil {
			t.Errorf("Match(JR, %s, imm) = %+v, want nil (JR has no PO/PE/P/M form)", c, tmpl)
		}
	}
}

func TestMatchJpCallRetSupportAllEightConditions(t *testing.T) {
	for _, mnemonic := range []string{"JP", "CALL"} {
		oc := Lookup(mnemonic)
		for _, c := range []OperandKind{KindNZ, KindZ, KindNC, KindC, KindPO, KindPE, KindP, KindM} {
			if tmpl := Match(oc, c, KindImm); tmpl == nil {
				t.Errorf("Match(%s, %s, imm) = nil, want a template", mnemonic, c)
			}
		}
	}
	oc := Lookup("RET")
	for _, c := range []OperandKind{KindNZ, KindZ, KindNC, KindC, KindPO, KindPE, KindP, KindM} {
		if tmpl := Match(oc, c, KindNone); tmpl == nil {
			t.Errorf("Match(RET, %s, none) = nil, want a template", c)
		}
	}
}

func TestMatchNoOperandOpcode(t *testing.T) {
	tmpl := Match(Lookup("NOP"), KindNone, KindNone)
	if tmpl == nil || string(tmpl.Bytes) != string([]byte{0x00}) {
		t.Errorf("NOP = %+v, want 00", tmpl)
	}
}

func TestMatchIndexedAddressing(t *testing.T) {
	tmpl := Match(Lookup("LD"), KindA, KindIndIX)
	if tmpl == nil || string(tmpl.Bytes) != string([]byte{0xDD, 0x7E, 0x00}) {
		t.Errorf("LD A,(IX+d) = %+v, want DD 7E 00", tmpl)
	}
	if tmpl.Op2Off != 2 {
		t.Errorf("LD A,(IX+d) Op2Off = %d, want 2 (displacement byte)", tmpl.Op2Off)
	}

	tmpl = Match(Lookup("LD"), KindIndIY, KindC)
	if tmpl == nil || string(tmpl.Bytes) != string([]byte{0xFD, 0x71, 0x00}) {
		t.Errorf("LD (IY+d),C = %+v, want FD 71 00", tmpl)
	}

	tmpl = Match(Lookup("ADD"), KindA, KindIndIX)
	if tmpl == nil || string(tmpl.Bytes) != string([]byte{0xDD, 0x86, 0x00}) {
		t.Errorf("ADD A,(IX+d) = %+v, want DD 86 00", tmpl)
	}

	tmpl = Match(Lookup("INC"), KindIndIY, KindNone)
	if tmpl == nil || string(tmpl.Bytes) != string([]byte{0xFD, 0x34, 0x00}) {
		t.Errorf("INC (IY+d) = %+v, want FD 34 00", tmpl)
	}

	tmpl = Match(Lookup("BIT"), KindBit, KindIndIX)
	if tmpl == nil || string(tmpl.Bytes) != string([]byte{0xDD, 0xCB, 0x00, 0x46}) {
		t.Errorf("BIT n,(IX+d) = %+v, want DD CB 00 46", tmpl)
	}
	if tmpl.Op1Off != 3 || tmpl.Op2Off != 2 {
		t.Errorf("BIT n,(IX+d) offsets = (%d,%d), want (3,2)", tmpl.Op1Off, tmpl.Op2Off)
	}
}

func TestMatchReturnsNilForUnsatisfiableOperands(t *testing.T) {
	if tmpl := Match(Lookup("EXX"), KindA, KindNone); tmpl != nil {
		t.Fatalf("Match(EXX, A, none) = %+v, want nil (EXX takes no operands)", tmpl)
	}
}
