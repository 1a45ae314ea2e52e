// decoder_test.go - decoder dispatch and byte-consumption tests.
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package main

import "testing"

func newDecoderCPU(text []byte) *CPU {
	cpu := NewCPU()
	cpu.TextSize = uint16(len(text))
	copy(cpu.Mem, text)
	return cpu
}

// TestDecode_MovAxImmThenRet decodes scenario A's text: mov ax,0x1234; ret.
func TestDecode_MovAxImmThenRet(t *testing.T) {
	cpu := newDecoderCPU([]byte{0xB8, 0x34, 0x12, 0xC3})

	asm := cpu.Decode()
	if asm == nil || asm.Instr.Opcode != OpMovImmediate {
		t.Fatalf("expected OpMovImmediate, got %+v", asm)
	}
	if asm.Size != 3 {
		t.Fatalf("mov ax,imm16 size: got %d, want 3", asm.Size)
	}
	if asm.Address != 0 || cpu.IP != 3 {
		t.Fatalf("invariant 2 violated: address=%d size=%d ip=%d", asm.Address, asm.Size, cpu.IP)
	}

	asm2 := cpu.Decode()
	if asm2 == nil || asm2.Instr.Opcode != OpRetWithinSegment {
		t.Fatalf("expected OpRetWithinSegment, got %+v", asm2)
	}
	if asm2.Size != 1 || asm2.Address != 3 {
		t.Fatalf("ret size/address: got size=%d address=%d", asm2.Size, asm2.Address)
	}

	if cpu.Decode() != nil {
		t.Fatal("expected nil at end of text")
	}
}

// TestDecode_RawCodeMatchesMemory checks invariant 1: the packed raw bytes
// equal the actual memory window the instruction consumed.
func TestDecode_RawCodeMatchesMemory(t *testing.T) {
	cpu := newDecoderCPU([]byte{0xB0, 0x05, 0xB3, 0x03, 0xF6, 0xF3})

	for {
		asm := cpu.Decode()
		if asm == nil {
			break
		}
		for i := uint16(0); i < uint16(asm.Size); i++ {
			want := cpu.ReadText(asm.Address + i)
			got := byte(asm.Code >> (8 * uint(asm.Size-1-uint8(i))))
			if got != want {
				t.Fatalf("raw_code mismatch at offset %d: got 0x%02x, want 0x%02x", i, got, want)
			}
		}
	}
}

// TestDecode_DivByRegister decodes scenario B's text: mov al,5; mov bl,3;
// div bl.
func TestDecode_DivByRegister(t *testing.T) {
	cpu := newDecoderCPU([]byte{0xB0, 0x05, 0xB3, 0x03, 0xF6, 0xF3})

	first := cpu.Decode()
	if first.Instr.Opcode != OpMovImmediate || first.Size != 2 {
		t.Fatalf("mov al,5: got %+v", first)
	}
	second := cpu.Decode()
	if second.Instr.Opcode != OpMovImmediate || second.Size != 2 {
		t.Fatalf("mov bl,3: got %+v", second)
	}
	third := cpu.Decode()
	if third.Instr.Opcode != OpDiv || third.Size != 2 {
		t.Fatalf("div bl: got %+v", third)
	}
}

// TestDecode_UndefinedAdvancesOneByte ensures an unrecognized leading byte
// never stalls the decoder.
func TestDecode_UndefinedAdvancesOneByte(t *testing.T) {
	cpu := newDecoderCPU([]byte{0x0F, 0x0F})
	asm := cpu.Decode()
	if asm.Instr.Opcode != OpUndefined || asm.Size != 1 {
		t.Fatalf("expected 1-byte Undefined, got %+v", asm)
	}
}

// TestDecode_ShortConditionalJump decodes scenario E's text: xor ax,ax;
// je +2; inc ax; inc ax.
func TestDecode_ShortConditionalJump(t *testing.T) {
	cpu := newDecoderCPU([]byte{0x31, 0xC0, 0x74, 0x02, 0x40, 0x40})

	xorInstr := cpu.Decode()
	if xorInstr.Instr.Opcode != OpXorRegEither {
		t.Fatalf("expected xor, got %+v", xorInstr)
	}
	jeInstr := cpu.Decode()
	if jeInstr.Instr.Opcode != OpJe || jeInstr.Instr.Operand1.Imm.Value != 2 {
		t.Fatalf("expected je +2, got %+v", jeInstr)
	}
}
