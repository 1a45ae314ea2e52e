// loader_test.go - a.out header parsing and stack-frame construction tests.
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package main

import (
	"encoding/binary"
	"testing"
)

func buildTestImage(text, data []byte, entry uint32) []byte {
	header := make([]byte, headerSize)
	putLE32 := func(off int, v uint32) {
		binary.LittleEndian.PutUint32(header[off:off+4], v)
	}
	header[0], header[1] = 0x01, 0x03 // magic
	putLE32(8, uint32(len(text)))
	putLE32(12, uint32(len(data)))
	putLE32(16, 0)
	putLE32(20, entry)
	putLE32(24, uint32(len(text)+len(data)))
	putLE32(28, 0)

	img := append(header, text...)
	img = append(img, data...)
	return img
}

func TestParseHeader(t *testing.T) {
	img := buildTestImage([]byte{0xC3}, []byte{0xAA, 0xBB}, 0x0010)
	h, err := ParseHeader(img)
	if err != nil {
		t.Fatalf("ParseHeader: %v", err)
	}
	if h.TextSize != 1 || h.DataSize != 2 || h.EntryPoint != 0x10 {
		t.Fatalf("header fields: %+v", h)
	}
}

func TestParseHeader_Truncated(t *testing.T) {
	if _, err := ParseHeader([]byte{0x01, 0x02}); err == nil {
		t.Fatal("expected error for truncated header")
	}
}

func TestLoad_CopiesSegmentsAndSetsEntry(t *testing.T) {
	text := []byte{0xB8, 0x34, 0x12, 0xC3}
	data := []byte{0xDE, 0xAD}
	img := buildTestImage(text, data, 0)

	cpu := NewCPU()
	entry, err := Load(cpu, img, []string{"/bin/prog"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if entry != 0 {
		t.Fatalf("entry: got %d, want 0", entry)
	}
	if cpu.TextSize != uint16(len(text)) {
		t.Fatalf("TextSize: got %d, want %d", cpu.TextSize, len(text))
	}
	for i, b := range text {
		if cpu.ReadText(uint16(i)) != b {
			t.Fatalf("text byte %d: got 0x%02x, want 0x%02x", i, cpu.ReadText(uint16(i)), b)
		}
	}
	if cpu.ReadByte(0) != 0xDE || cpu.ReadByte(1) != 0xAD {
		t.Fatal("data segment not copied correctly")
	}
}

func TestBuildStackFrame_ArgcAndBasename(t *testing.T) {
	cpu := NewCPU()
	cpu.TextSize = 0x100

	sp := buildStackFrame(cpu, []string{"/usr/bin/prog", "hello"})

	argc := cpu.ReadWord(sp)
	if argc != 2 {
		t.Fatalf("argc: got %d, want 2", argc)
	}

	argv0Ptr := cpu.ReadWord(sp + 2)
	var got []byte
	for i := uint16(0); ; i++ {
		ch := cpu.ReadByte(argv0Ptr + i)
		if ch == 0 {
			break
		}
		got = append(got, ch)
	}
	if string(got) != "prog" {
		t.Fatalf("argv[0]: got %q, want basename %q", got, "prog")
	}

	if sp%2 != 0 {
		t.Fatalf("stack pointer not word-aligned: 0x%04x", sp)
	}
}
