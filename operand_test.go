// operand_test.go - operand and effective-address rendering tests.
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package main

import "testing"

func TestEffectiveAddress_String(t *testing.T) {
	cases := []struct {
		ea   EffectiveAddress
		want string
	}{
		{EffectiveAddress{Kind: EABxSi, Disp: 0}, "[bx+si]"},
		{EffectiveAddress{Kind: EABxSi, Disp: 4}, "[bx+si+4]"},
		{EffectiveAddress{Kind: EABp, Disp: -1}, "[bp-1]"},
		{EffectiveAddress{Kind: EADispOnly, Disp: 0x1234}, "[1234]"},
	}
	for _, c := range cases {
		if got := c.ea.String(); got != c.want {
			t.Errorf("EffectiveAddress(%+v).String() = %q, want %q", c.ea, got, c.want)
		}
	}
}

func TestRegister_String(t *testing.T) {
	if reg16(RegAX).String() != "ax" {
		t.Errorf("reg16(RegAX).String() = %q, want ax", reg16(RegAX).String())
	}
	if reg8(RegAH).String() != "ah" {
		t.Errorf("reg8(RegAH).String() = %q, want ah", reg8(RegAH).String())
	}
}

func TestRegFromEncoding_WidthSelectsSlot(t *testing.T) {
	wide := regFromEncoding(0, 1)
	narrow := regFromEncoding(0, 0)
	if !wide.Wide || narrow.Wide {
		t.Fatalf("regFromEncoding width selection: wide=%+v narrow=%+v", wide, narrow)
	}
}

func TestOperand_IsMemory(t *testing.T) {
	memOp := operandEA(EffectiveAddress{Kind: EABx})
	regOp := operandReg(reg16(RegBX))
	if !memOp.IsMemory() {
		t.Error("EA operand should report IsMemory() == true")
	}
	if regOp.IsMemory() {
		t.Error("register operand should report IsMemory() == false")
	}
}
