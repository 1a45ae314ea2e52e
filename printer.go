// printer.go - disassembly-line and trace-line formatting.
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package main

import (
	"fmt"
	"strings"
)

const (
	disasmByteColumns = 13
	traceByteColumns  = 14
)

func rawBytesHex(cpu *CPU, asm *Assembly) string {
	var sb strings.Builder
	for i := uint16(0); i < uint16(asm.Size); i++ {
		fmt.Fprintf(&sb, "%02x", cpu.ReadText(asm.Address+i))
	}
	return sb.String()
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// mnemonicText renders an opcode's disassembly-facing mnemonic, applying
// the "jmp short" and byte-qualification rules.
func mnemonicText(op Opcode) string {
	if op == OpJmpDirectWithinSegmentShort {
		return "jmp short"
	}
	m := op.String()
	if op.byteForm() {
		m += " byte"
	}
	return m
}

func instructionText(instr Instruction) string {
	m := mnemonicText(instr.Opcode)
	switch {
	case instr.Operand1 != nil && instr.Operand2 != nil:
		return fmt.Sprintf("%s %s, %s", m, instr.Operand1.String(), instr.Operand2.String())
	case instr.Operand1 != nil:
		return fmt.Sprintf("%s %s", m, instr.Operand1.String())
	default:
		return m
	}
}

// FormatDisasmLine renders one `-d` mode output line: `AAAA: BB..BB  mnemonic op1[, op2]`.
func FormatDisasmLine(cpu *CPU, asm *Assembly) string {
	bytesCol := padRight(rawBytesHex(cpu, asm), disasmByteColumns)
	return fmt.Sprintf("%04x: %s %s", asm.Address, bytesCol, instructionText(asm.Instr))
}

func flagsString(c *CPU) string {
	b := []byte{'-', '-', '-', '-'}
	if c.OF() {
		b[0] = 'O'
	}
	if c.SF() {
		b[1] = 'S'
	}
	if c.ZF() {
		b[2] = 'Z'
	}
	if c.CF() {
		b[3] = 'C'
	}
	return string(b)
}

// memAnnotation appends the `;[addr]value` suffix when one of an
// instruction's operands resolved to memory, reflecting the value that was
// there at trace time.
func memAnnotation(cpu *CPU, instr Instruction) string {
	var memOp *Operand
	if instr.Operand1 != nil && instr.Operand1.IsMemory() {
		memOp = instr.Operand1
	} else if instr.Operand2 != nil && instr.Operand2.IsMemory() {
		memOp = instr.Operand2
	}
	if memOp == nil {
		return ""
	}
	wide := cpu.operandWidth(instr)
	addr := cpu.eaAddress(memOp.EA)
	if wide {
		return fmt.Sprintf(" ;[%04x]%04x", addr, cpu.ReadWord(addr))
	}
	return fmt.Sprintf(" ;[%04x]%02x", addr, cpu.ReadByte(addr))
}

// FormatTraceLine renders one interpret-mode trace line: register file,
// flags, address, raw bytes, and the decoded instruction text.
func FormatTraceLine(cpu *CPU, asm *Assembly) string {
	regs := fmt.Sprintf("%04x %04x %04x %04x %04x %04x %04x %04x",
		cpu.AX(), cpu.BX(), cpu.CX(), cpu.DX(), cpu.SP(), cpu.BP(), cpu.SI(), cpu.DI())
	bytesCol := padRight(rawBytesHex(cpu, asm), traceByteColumns)
	return fmt.Sprintf("%s %s  %04x: %s %s%s",
		regs, flagsString(cpu), asm.Address, bytesCol, instructionText(asm.Instr), memAnnotation(cpu, asm.Instr))
}
