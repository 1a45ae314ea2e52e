// executor_test.go - ALU, control-flow, and string-op execution tests.
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package main

import "testing"

func runToHalt(cpu *CPU, bridge *SyscallBridge, maxSteps int) ExecOutcome {
	for i := 0; i < maxSteps; i++ {
		asm := cpu.Decode()
		if asm == nil || asm.Instr.Opcode == OpUndefined {
			return ExecOutcome{}
		}
		outcome := cpu.Execute(asm, bridge)
		if outcome.Halt || cpu.Halted {
			return outcome
		}
	}
	return ExecOutcome{}
}

// TestExecute_MovAxThenRet covers seed scenario A.
func TestExecute_MovAxThenRet(t *testing.T) {
	cpu := newDecoderCPU([]byte{0xB8, 0x34, 0x12, 0xC3})
	cpu.TextSize = 4
	cpu.SetSP(0x10)
	cpu.WriteWord(0x10, 0xDEAD)

	runToHalt(cpu, nil, 10)

	if cpu.AX() != 0x1234 {
		t.Fatalf("AX: got 0x%04x, want 0x1234", cpu.AX())
	}
	if cpu.IP != 0xDEAD {
		t.Fatalf("IP after ret: got 0x%04x, want 0xDEAD", cpu.IP)
	}
	if cpu.SP() != 0x12 {
		t.Fatalf("SP after ret: got 0x%04x, want 0x0012", cpu.SP())
	}
}

// TestExecute_DivByRegister covers seed scenario B.
func TestExecute_DivByRegister(t *testing.T) {
	cpu := newDecoderCPU([]byte{0xB0, 0x05, 0xB3, 0x03, 0xF6, 0xF3})
	runToHalt(cpu, nil, 10)

	if byte(cpu.AX()) != 0x01 {
		t.Fatalf("AL (quotient): got 0x%02x, want 0x01", byte(cpu.AX()))
	}
	if byte(cpu.AX()>>8) != 0x02 {
		t.Fatalf("AH (remainder): got 0x%02x, want 0x02", byte(cpu.AX()>>8))
	}
}

// TestExecute_IncDecSequence covers seed scenario C: xor ax,ax; inc ax;
// inc ax; dec ax.
func TestExecute_IncDecSequence(t *testing.T) {
	cpu := newDecoderCPU([]byte{0x31, 0xC0, 0x40, 0x40, 0x48})

	want := []uint16{0, 1, 2, 1}
	for i, w := range want {
		asm := cpu.Decode()
		cpu.Execute(asm, nil)
		if cpu.AX() != w {
			t.Fatalf("step %d: AX got 0x%04x, want 0x%04x", i, cpu.AX(), w)
		}
		if cpu.SF() {
			t.Fatalf("step %d: SF unexpectedly set", i)
		}
	}
	if cpu.ZF() {
		t.Fatal("ZF should not be set: AX never reaches zero again in this sequence")
	}
}

// TestExecute_ShortConditionalTaken covers seed scenario E.
func TestExecute_ShortConditionalTaken(t *testing.T) {
	cpu := newDecoderCPU([]byte{0x31, 0xC0, 0x74, 0x02, 0x40, 0x40})
	runToHalt(cpu, nil, 10)

	if cpu.AX() != 0 {
		t.Fatalf("AX: got 0x%04x, want 0x0000 (je should skip both incs)", cpu.AX())
	}
}

// TestExecute_RepMovsb covers seed scenario F.
func TestExecute_RepMovsb(t *testing.T) {
	cpu := NewCPU()
	cpu.TextSize = 0x100
	cpu.SetSI(0x10)
	cpu.SetDI(0x20)
	cpu.SetCX(4)
	for i, ch := range []byte("abcd") {
		cpu.WriteByte(0x10+uint16(i), ch)
	}

	cpu.execRepMovs(false)

	if cpu.CX() != 0 {
		t.Fatalf("CX after rep movsb: got %d, want 0", cpu.CX())
	}
	if cpu.SI() != 0x14 || cpu.DI() != 0x24 {
		t.Fatalf("SI/DI after rep movsb: got SI=0x%04x DI=0x%04x, want 0x14/0x24", cpu.SI(), cpu.DI())
	}
	for i, want := range []byte("abcd") {
		got := cpu.ReadByte(0x20 + uint16(i))
		if got != want {
			t.Fatalf("dest byte %d: got %q, want %q", i, got, want)
		}
	}
}

// TestExecute_CmpLeavesOperandsUnchanged covers invariant 6: CMP sets flags
// like SUB but never writes back.
func TestExecute_CmpLeavesOperandsUnchanged(t *testing.T) {
	cpu := NewCPU()
	cpu.SetAX(5)
	cpu.SetCX(5)

	instr := Instruction{
		Opcode:   OpCmpRegEither,
		Operand1: ptrOp(operandReg(reg16(RegAX))),
		Operand2: ptrOp(operandReg(reg16(RegCX))),
	}
	cpu.execALU(instr)

	if cpu.AX() != 5 || cpu.CX() != 5 {
		t.Fatalf("CMP modified operands: AX=0x%04x CX=0x%04x", cpu.AX(), cpu.CX())
	}
	if !cpu.ZF() {
		t.Fatal("CMP 5,5 should set ZF")
	}
}

// TestExecute_ByteWriteDoesNotDisturbHighByte covers invariant 7.
func TestExecute_ByteWriteDoesNotDisturbHighByte(t *testing.T) {
	cpu := NewCPU()
	cpu.SetAX(0x99FF)

	instr := Instruction{
		Opcode:   OpMovImmediate,
		Operand1: ptrOp(operandReg(reg8(RegAL))),
		Operand2: ptrOp(operandImm(imm8(0x11, 2))),
	}
	cpu.writeValue(instr.Operand1, false, 0x11)

	if cpu.AX() != 0x9911 {
		t.Fatalf("writing AL disturbed AH: AX got 0x%04x, want 0x9911", cpu.AX())
	}
}

// TestExecute_AluIsCalculatedSetsZfSf covers invariant 5 across the ADD
// family.
func TestExecute_AluIsCalculatedSetsZfSf(t *testing.T) {
	cpu := NewCPU()
	cpu.SetAX(0x8000)
	cpu.SetCX(0x8000)

	instr := Instruction{
		Opcode:   OpAddRegEither,
		Operand1: ptrOp(operandReg(reg16(RegAX))),
		Operand2: ptrOp(operandReg(reg16(RegCX))),
	}
	cpu.execALU(instr)

	if cpu.AX() != 0 {
		t.Fatalf("AX: got 0x%04x, want 0x0000", cpu.AX())
	}
	if !cpu.ZF() {
		t.Fatal("expected ZF set when result==0")
	}
	if cpu.SF() {
		t.Fatal("expected SF clear when bit 15 is 0")
	}
	if !cpu.CF() {
		t.Fatal("expected CF set: 0x8000+0x8000 overflows 16 bits")
	}
}

func TestExecute_SarCountZeroIsNoOp(t *testing.T) {
	cpu := NewCPU()
	cpu.SetAX(0x80)
	cpu.SetCF(true)

	instr := Instruction{
		Opcode:   OpSar,
		Operand1: ptrOp(operandReg(reg16(RegAX))),
		Operand2: ptrOp(operandImm(imm8(0, 1))),
	}
	cpu.execShift(instr)

	if cpu.AX() != 0x80 {
		t.Fatalf("SAR count=0 should be a no-op, AX got 0x%04x", cpu.AX())
	}
	if !cpu.CF() {
		t.Fatal("SAR count=0 must leave CF untouched (preserved-verbatim quirk)")
	}
}

func TestExecute_DivByZeroSetsZfNoTrap(t *testing.T) {
	cpu := NewCPU()
	cpu.SetAX(10)
	cpu.SetCX(0)

	instr := Instruction{
		Opcode:   OpDiv,
		Operand1: ptrOp(operandReg(reg16(RegCX))),
	}
	cpu.Execute(&Assembly{Address: 0, Size: 0, Instr: instr}, nil)

	if !cpu.ZF() {
		t.Fatal("division by zero should set ZF rather than trap")
	}
	if cpu.AX() != 10 {
		t.Fatalf("AX should be left unchanged on div-by-zero, got 0x%04x", cpu.AX())
	}
}
