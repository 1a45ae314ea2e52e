// loader.go - a.out header parsing and initial stack-frame construction.
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package main

import (
	"encoding/binary"
	"path/filepath"

	"github.com/pkg/errors"
)

const headerSize = 32

// Header is the 32-byte MINIX a.out header. ParseHeader decodes every
// multi-byte field as little-endian, which is the same as reading it
// big-endian and then reversing its bytes.
type Header struct {
	Magic      uint16
	Flags      byte
	CPUID      byte
	HeaderLen  byte
	Version    uint16
	TextSize   uint32
	DataSize   uint32
	BssSize    uint32
	EntryPoint uint32
	Total      uint32
	Syms       uint32
}

// ParseHeader reads the fixed 32-byte a.out header from the start of a
// binary image, decoding each multi-byte field as little-endian.
func ParseHeader(data []byte) (Header, error) {
	if len(data) < headerSize {
		return Header{}, errors.Errorf("a.out header truncated: got %d bytes, need %d", len(data), headerSize)
	}
	h := Header{
		Magic:      binary.LittleEndian.Uint16(data[0:2]),
		Flags:      data[2],
		CPUID:      data[3],
		HeaderLen:  data[4],
		Version:    binary.LittleEndian.Uint16(data[6:8]),
		TextSize:   binary.LittleEndian.Uint32(data[8:12]),
		DataSize:   binary.LittleEndian.Uint32(data[12:16]),
		BssSize:    binary.LittleEndian.Uint32(data[16:20]),
		EntryPoint: binary.LittleEndian.Uint32(data[20:24]),
		Total:      binary.LittleEndian.Uint32(data[24:28]),
		Syms:       binary.LittleEndian.Uint32(data[28:32]),
	}
	return h, nil
}

// Load parses the a.out image, copies its text and data segments into the
// CPU's linear memory, and constructs the initial stack frame for args.
// Returns the CPU's starting IP (the header's entry point).
func Load(cpu *CPU, image []byte, args []string) (uint16, error) {
	h, err := ParseHeader(image)
	if err != nil {
		return 0, err
	}

	body := image[headerSize:]
	if uint32(len(body)) < h.TextSize+h.DataSize {
		return 0, errors.Errorf("a.out body truncated: got %d bytes, need %d", len(body), h.TextSize+h.DataSize)
	}

	copy(cpu.Mem[0:h.TextSize], body[0:h.TextSize])
	copy(cpu.Mem[h.TextSize:h.TextSize+h.DataSize], body[h.TextSize:h.TextSize+h.DataSize])
	cpu.TextSize = uint16(h.TextSize)

	sp := buildStackFrame(cpu, args)
	cpu.SetSP(sp)
	cpu.SetBP(sp)

	return uint16(h.EntryPoint), nil
}

// buildStackFrame lays out argv/envp below SP=0xFFFE: argument and
// environment strings highest, then (word-aligned) a one-entry
// NUL-terminated envp pointer array, below it the NUL-terminated argv
// pointer array, and finally argc at the lowest address -- the address the
// initial SP names. The
// first argv entry is rewritten to its basename, matching MINIX crt0.
func buildStackFrame(cpu *CPU, args []string) uint16 {
	sp := uint16(0xFFFE)

	rewritten := make([]string, len(args))
	copy(rewritten, args)
	if len(rewritten) > 0 {
		rewritten[0] = filepath.Base(rewritten[0])
	}

	writeString := func(s string) uint16 {
		b := append([]byte(s), 0)
		sp -= uint16(len(b))
		start := sp
		for i, ch := range b {
			cpu.WriteByte(start+uint16(i), ch)
		}
		return start
	}

	envAddr := writeString("PATH=/usr:/usr/bin")

	argAddrs := make([]uint16, len(rewritten))
	for i := len(rewritten) - 1; i >= 0; i-- {
		argAddrs[i] = writeString(rewritten[i])
	}

	if sp%2 != 0 {
		sp--
	}

	sp -= 2
	cpu.WriteWord(sp, 0)
	sp -= 2
	cpu.WriteWord(sp, envAddr)

	sp -= 2
	cpu.WriteWord(sp, 0)
	for i := len(argAddrs) - 1; i >= 0; i-- {
		sp -= 2
		cpu.WriteWord(sp, argAddrs[i])
	}

	sp -= 2
	cpu.WriteWord(sp, uint16(len(rewritten)))

	return sp
}
