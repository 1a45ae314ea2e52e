// opcode.go - the decoded opcode enum and its derived flag-update predicates.
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package main

// Opcode is a tagged variant over every instruction family the decoder
// recognizes. A single switch per consumer (executor, printer) subsumes the
// virtual-dispatch tables the reference implementation uses interfaces for.
type Opcode uint16

const (
	OpUndefined Opcode = iota

	OpMovImmediate
	OpMovImmediateRegisterMemory
	OpMovImmediateRegisterMemoryByte
	OpMovRmToFromReg
	OpMovMemoryToAccumulator

	OpPushReg
	OpPopReg
	OpPushRegMem
	OpPopRegMem
	OpPushES
	OpPushCS
	OpPushSS
	OpPushDS
	OpPopES
	OpPopDS
	OpPopSS

	OpXchgRegisterWithAccumulator
	OpXchgRegisterMemoryWithRegister

	OpIncRegister
	OpDecRegister
	OpIncRegisterMemory
	OpDecRegisterMemory

	OpAddRegEither
	OpAddImmediateRegisterMemory
	OpAddImmediateToAccumulator
	OpAddImmediateFromAccumulator

	OpAdcRegEither
	OpAdcImmediateRegisterMemory
	OpAdcImmediateFromAccumulator

	OpSubRegEither
	OpSubImmediateRegisterMemory
	OpSubImmediateFromAccumulator

	OpSsbRegEither // SBB
	OpSsbImmediateRegisterMemory
	OpSsbImmediateFromAccumulator

	OpAndRegEither
	OpAndImmediateRegisterMemory
	OpAndImmediateFromAccumulator

	OpOrRegEither
	OpOrImmediateRegisterMemory
	OpOrImmediateFromAccumulator

	OpXorRegEither

	OpCmpRegEither
	OpCmpImmediateByte
	OpCmpImmediateWord
	OpCmpImmediateFromAccumulator

	OpTestRegisterMemoryAndRegister
	OpTestImmediate
	OpTestImmediateByte
	OpTestImmediateDataAndAccumulator

	OpShl
	OpShr
	OpSar
	OpRol
	OpRor
	OpRcl
	OpRcr

	OpNeg
	OpNot
	OpMul
	OpImul
	OpDiv
	OpIdiv

	OpLea

	OpJmpDirectWithinSegment
	OpJmpDirectWithinSegmentShort
	OpJmpIndirectWithinSegment

	OpCallWithinDirect
	OpRetWithinSegment
	OpRetWithinSegAddingImmedToSp

	OpJe
	OpJne
	OpJl
	OpJnl
	OpJle
	OpJnle
	OpJb
	OpJnb
	OpJbe
	OpJnbe
	OpJp
	OpJnp
	OpJo
	OpJno
	OpJs
	OpJns

	OpLoop
	OpLoopz
	OpLoopnz
	OpJcxz

	OpClc
	OpCmc
	OpCld
	OpStd
	OpCli
	OpSti
	OpHlt
	OpCbw
	OpCwd

	OpInFixedPort
	OpInVariablePort
	OpOutFixedPort
	OpOutVariablePort

	OpIntTypeSpecified

	OpCompsByte // CMPSB
	OpRepMovsb
	OpRepMovsw
	OpRepStosb
	OpRepScasb
)

// mnemonics gives the lowercase base mnemonic used by the disassembler; byte
// qualification ("mov byte", "cmp byte", "test byte") and "jmp short" are
// applied by the printer's mnemonicText, keyed on the opcode variant
// (byteForm, OpJmpDirectWithinSegmentShort), not baked in here.
var mnemonics = map[Opcode]string{
	OpUndefined: "??",

	OpMovImmediate:                   "mov",
	OpMovImmediateRegisterMemory:     "mov",
	OpMovImmediateRegisterMemoryByte: "mov",
	OpMovRmToFromReg:                 "mov",
	OpMovMemoryToAccumulator:         "mov",

	OpPushReg:    "push",
	OpPopReg:     "pop",
	OpPushRegMem: "push",
	OpPopRegMem:  "pop",
	OpPushES:     "push",
	OpPushCS:     "push",
	OpPushSS:     "push",
	OpPushDS:     "push",
	OpPopES:      "pop",
	OpPopDS:      "pop",
	OpPopSS:      "pop",

	OpXchgRegisterWithAccumulator:    "xchg",
	OpXchgRegisterMemoryWithRegister: "xchg",

	OpIncRegister:       "inc",
	OpDecRegister:       "dec",
	OpIncRegisterMemory: "inc",
	OpDecRegisterMemory: "dec",

	OpAddRegEither:                 "add",
	OpAddImmediateRegisterMemory:   "add",
	OpAddImmediateToAccumulator:    "add",
	OpAddImmediateFromAccumulator:  "add",

	OpAdcRegEither:                "adc",
	OpAdcImmediateRegisterMemory:  "adc",
	OpAdcImmediateFromAccumulator: "adc",

	OpSubRegEither:                "sub",
	OpSubImmediateRegisterMemory:  "sub",
	OpSubImmediateFromAccumulator: "sub",

	OpSsbRegEither:                "sbb",
	OpSsbImmediateRegisterMemory:  "sbb",
	OpSsbImmediateFromAccumulator: "sbb",

	OpAndRegEither:                "and",
	OpAndImmediateRegisterMemory:  "and",
	OpAndImmediateFromAccumulator: "and",

	OpOrRegEither:                "or",
	OpOrImmediateRegisterMemory:  "or",
	OpOrImmediateFromAccumulator: "or",

	OpXorRegEither: "xor",

	OpCmpRegEither:                "cmp",
	OpCmpImmediateByte:            "cmp",
	OpCmpImmediateWord:            "cmp",
	OpCmpImmediateFromAccumulator: "cmp",

	OpTestRegisterMemoryAndRegister:   "test",
	OpTestImmediate:                   "test",
	OpTestImmediateByte:               "test",
	OpTestImmediateDataAndAccumulator: "test",

	OpShl: "shl",
	OpShr: "shr",
	OpSar: "sar",
	OpRol: "rol",
	OpRor: "ror",
	OpRcl: "rcl",
	OpRcr: "rcr",

	OpNeg:  "neg",
	OpNot:  "not",
	OpMul:  "mul",
	OpImul: "imul",
	OpDiv:  "div",
	OpIdiv: "idiv",

	OpLea: "lea",

	OpJmpDirectWithinSegment:      "jmp",
	OpJmpDirectWithinSegmentShort: "jmp",
	OpJmpIndirectWithinSegment:    "jmp",

	OpCallWithinDirect:            "call",
	OpRetWithinSegment:            "ret",
	OpRetWithinSegAddingImmedToSp: "ret",

	OpJe: "je", OpJne: "jne",
	OpJl: "jl", OpJnl: "jnl",
	OpJle: "jle", OpJnle: "jnle",
	OpJb: "jb", OpJnb: "jnb",
	OpJbe: "jbe", OpJnbe: "jnbe",
	OpJp: "jp", OpJnp: "jnp",
	OpJo: "jo", OpJno: "jno",
	OpJs: "js", OpJns: "jns",

	OpLoop: "loop", OpLoopz: "loopz", OpLoopnz: "loopnz", OpJcxz: "jcxz",

	OpClc: "clc", OpCmc: "cmc", OpCld: "cld", OpStd: "std",
	OpCli: "cli", OpSti: "sti", OpHlt: "hlt",
	OpCbw: "cbw", OpCwd: "cwd",

	OpInFixedPort: "in", OpInVariablePort: "in",
	OpOutFixedPort: "out", OpOutVariablePort: "out",

	OpIntTypeSpecified: "int",

	OpCompsByte: "cmpsb",
	OpRepMovsb:  "rep movsb",
	OpRepMovsw:  "rep movsw",
	OpRepStosb:  "rep stosb",
	OpRepScasb:  "rep scasb",
}

func (op Opcode) String() string {
	if m, ok := mnemonics[op]; ok {
		return m
	}
	return "??"
}

// isCalculated reports whether the opcode is classed as ZF/SF-producing.
// Execute does not consult it: flags are set per opcode family through the
// flags.go helpers, and MUL/IMUL/DIV/IDIV and the rotates (ROL/ROR/RCL/RCR)
// do not set ZF or SF from their result.
func (op Opcode) isCalculated() bool {
	switch op {
	case OpAddRegEither, OpAddImmediateRegisterMemory, OpAddImmediateToAccumulator, OpAddImmediateFromAccumulator,
		OpAdcRegEither, OpAdcImmediateRegisterMemory, OpAdcImmediateFromAccumulator,
		OpSubRegEither, OpSubImmediateRegisterMemory, OpSubImmediateFromAccumulator,
		OpSsbRegEither, OpSsbImmediateRegisterMemory, OpSsbImmediateFromAccumulator,
		OpAndRegEither, OpAndImmediateRegisterMemory, OpAndImmediateFromAccumulator,
		OpOrRegEither, OpOrImmediateRegisterMemory, OpOrImmediateFromAccumulator,
		OpXorRegEither,
		OpCmpRegEither, OpCmpImmediateByte, OpCmpImmediateWord, OpCmpImmediateFromAccumulator,
		OpTestRegisterMemoryAndRegister, OpTestImmediate, OpTestImmediateByte, OpTestImmediateDataAndAccumulator,
		OpShl, OpShr, OpSar, OpRol, OpRor, OpRcl, OpRcr,
		OpNeg, OpIncRegister, OpDecRegister, OpIncRegisterMemory, OpDecRegisterMemory,
		OpMul, OpImul, OpDiv, OpIdiv:
		return true
	default:
		return false
	}
}

// couldBeCarried reports whether the opcode is classed as CF-producing.
// Execute does not consult it: the flags.go helpers set CF per opcode
// family, and they also clear CF for AND/OR/XOR/TEST, which this set
// leaves out.
func (op Opcode) couldBeCarried() bool {
	switch op {
	case OpAddRegEither, OpAddImmediateRegisterMemory, OpAddImmediateToAccumulator, OpAddImmediateFromAccumulator,
		OpAdcRegEither, OpAdcImmediateRegisterMemory, OpAdcImmediateFromAccumulator,
		OpSubRegEither, OpSubImmediateRegisterMemory, OpSubImmediateFromAccumulator,
		OpSsbRegEither, OpSsbImmediateRegisterMemory, OpSsbImmediateFromAccumulator,
		OpCmpRegEither, OpCmpImmediateByte, OpCmpImmediateWord, OpCmpImmediateFromAccumulator,
		OpShl, OpShr, OpSar, OpRol, OpRor, OpRcl, OpRcr,
		OpNeg, OpMul, OpImul:
		return true
	default:
		return false
	}
}

// couldBeOverflow reports whether the opcode is classed as OF-producing.
// Execute does not consult it: the flags.go helpers set OF per opcode
// family, and they also set OF for a one-bit SHR and clear it for
// AND/OR/XOR/TEST, which this set leaves out.
func (op Opcode) couldBeOverflow() bool {
	switch op {
	case OpAddRegEither, OpAddImmediateRegisterMemory, OpAddImmediateToAccumulator, OpAddImmediateFromAccumulator,
		OpAdcRegEither, OpAdcImmediateRegisterMemory, OpAdcImmediateFromAccumulator,
		OpSubRegEither, OpSubImmediateRegisterMemory, OpSubImmediateFromAccumulator,
		OpSsbRegEither, OpSsbImmediateRegisterMemory, OpSsbImmediateFromAccumulator,
		OpCmpRegEither, OpCmpImmediateByte, OpCmpImmediateWord, OpCmpImmediateFromAccumulator,
		OpShl, OpSar,
		OpNeg, OpIncRegister, OpDecRegister, OpIncRegisterMemory, OpDecRegisterMemory,
		OpMul, OpImul:
		return true
	default:
		return false
	}
}

// isAssignEffect reports whether the executor writes the computed result
// back to the destination operand. CMP and TEST compute but never store.
func (op Opcode) isAssignEffect() bool {
	switch op {
	case OpCmpRegEither, OpCmpImmediateByte, OpCmpImmediateWord, OpCmpImmediateFromAccumulator,
		OpTestRegisterMemoryAndRegister, OpTestImmediate, OpTestImmediateByte, OpTestImmediateDataAndAccumulator:
		return false
	default:
		return true
	}
}

// byteForm reports whether this opcode variant operates on byte-sized data,
// driving the disassembler's "mov byte"/"cmp byte"/"test byte" qualification.
func (op Opcode) byteForm() bool {
	switch op {
	case OpMovImmediateRegisterMemoryByte, OpCmpImmediateByte, OpTestImmediateByte:
		return true
	default:
		return false
	}
}

// Instruction is the decoded opcode plus up to two operand slots.
type Instruction struct {
	Opcode   Opcode
	Operand1 *Operand
	Operand2 *Operand
}

// Assembly is one fully-decoded instruction: position, raw bytes, and the
// structured Instruction.
type Assembly struct {
	Address uint16
	Size    uint8
	Code    uint64 // consumed bytes packed left-to-right
	Instr   Instruction
}
