// printer_test.go - disassembly and trace line formatting tests.
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package main

import (
	"strings"
	"testing"
)

func TestFormatDisasmLine_MovImmediate(t *testing.T) {
	cpu := newDecoderCPU([]byte{0xB8, 0x34, 0x12})
	asm := cpu.Decode()

	line := FormatDisasmLine(cpu, asm)
	if !strings.HasPrefix(line, "0000: b83412") {
		t.Fatalf("disasm line prefix: got %q", line)
	}
	if !strings.Contains(line, "mov ax,") {
		t.Fatalf("disasm line missing mnemonic/operand: got %q", line)
	}
}

func TestFormatDisasmLine_ShortJumpMnemonic(t *testing.T) {
	if mnemonicText(OpJmpDirectWithinSegmentShort) != "jmp short" {
		t.Fatalf("short jmp mnemonic: got %q, want %q", mnemonicText(OpJmpDirectWithinSegmentShort), "jmp short")
	}
	if mnemonicText(OpJe) != "je" {
		t.Fatalf("je mnemonic: got %q, want je (conditional jumps keep their own mnemonic)", mnemonicText(OpJe))
	}
}

func TestFlagsString_Ordering(t *testing.T) {
	cpu := NewCPU()
	cpu.SetOF(true)
	cpu.SetCF(true)
	got := flagsString(cpu)
	if got != "O--C" {
		t.Fatalf("flagsString: got %q, want %q", got, "O--C")
	}
}
