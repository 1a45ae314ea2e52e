// executor.go - advances CPU state per decoded instruction: operand fetch,
// computation, flag update, write-back, and control-flow side effects.
//
// Structured after the reference opGrp*/opAlu* handler idiom in
// cpu_x86_grp.go: fetch operands, compute with a plain switch, update flags
// through the flags.go helpers, write back, advance cycles.
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package main

// ExecOutcome reports whether the instruction just executed requests a halt
// (an EXIT syscall), replacing exception-style control flow with an
// explicit result the run loop consumes.
type ExecOutcome struct {
	Halt bool
	Code int32
}

func contOutcome() ExecOutcome { return ExecOutcome{} }

// eaAddress resolves an EffectiveAddress to a 16-bit data-segment-relative
// address by summing its named base/index registers and displacement.
func (c *CPU) eaAddress(ea EffectiveAddress) uint16 {
	var base uint16
	switch ea.Kind {
	case EABxSi:
		base = c.BX() + c.SI()
	case EABxDi:
		base = c.BX() + c.DI()
	case EABpSi:
		base = c.BP() + c.SI()
	case EABpDi:
		base = c.BP() + c.DI()
	case EASi:
		base = c.SI()
	case EADi:
		base = c.DI()
	case EABp:
		base = c.BP()
	case EABx:
		base = c.BX()
	case EADispOnly:
		base = 0
	}
	return base + uint16(ea.Disp)
}

// operandWidth decides whether an instruction's memory-facing operands read
// or write a byte or a word: byte-qualified opcodes and any 8-bit register
// operand force byte width, otherwise word.
func (c *CPU) operandWidth(instr Instruction) bool {
	if instr.Opcode.byteForm() {
		return false
	}
	if instr.Operand1 != nil && instr.Operand1.Kind == OperandRegister {
		return instr.Operand1.Reg.Wide
	}
	if instr.Operand2 != nil && instr.Operand2.Kind == OperandRegister {
		return instr.Operand2.Reg.Wide
	}
	return true
}

func (c *CPU) fetchValue(op *Operand, wide bool) uint16 {
	if op == nil {
		return 0
	}
	switch op.Kind {
	case OperandRegister:
		return c.getRegister(op.Reg)
	case OperandImmediate:
		return op.Imm.AsU16()
	case OperandEA:
		addr := c.eaAddress(op.EA)
		if wide {
			return c.ReadWord(addr)
		}
		return uint16(c.ReadByte(addr))
	}
	return 0
}

func (c *CPU) writeValue(op *Operand, wide bool, v uint16) {
	if op == nil {
		return
	}
	switch op.Kind {
	case OperandRegister:
		c.setRegister(op.Reg, v)
	case OperandEA:
		addr := c.eaAddress(op.EA)
		if wide {
			c.WriteWord(addr, v)
		} else {
			c.WriteByte(addr, byte(v))
		}
	}
}

// Execute performs one decoded instruction against CPU state. bridge
// services INT 0x20 MINIX syscalls; it may be nil in decode-only contexts.
func (c *CPU) Execute(asm *Assembly, bridge *SyscallBridge) ExecOutcome {
	instr := asm.Instr
	c.Cycles++
	nextIP := asm.Address + uint16(asm.Size)
	c.IP = nextIP

	switch instr.Opcode {
	case OpUndefined:
		return contOutcome()

	case OpMovImmediate, OpMovImmediateRegisterMemory, OpMovImmediateRegisterMemoryByte,
		OpMovRmToFromReg, OpMovMemoryToAccumulator:
		wide := c.operandWidth(instr)
		v := c.fetchValue(instr.Operand2, wide)
		c.writeValue(instr.Operand1, wide, v)
		return contOutcome()

	case OpXchgRegisterWithAccumulator, OpXchgRegisterMemoryWithRegister:
		wide := c.operandWidth(instr)
		a := c.fetchValue(instr.Operand1, wide)
		b := c.fetchValue(instr.Operand2, wide)
		c.writeValue(instr.Operand1, wide, b)
		c.writeValue(instr.Operand2, wide, a)
		return contOutcome()

	case OpLea:
		addr := c.eaAddress(instr.Operand2.EA)
		c.writeValue(instr.Operand1, true, addr)
		return contOutcome()

	case OpPushReg, OpPushRegMem, OpPushES, OpPushCS, OpPushSS, OpPushDS:
		c.Push(c.fetchValue(instr.Operand1, true))
		return contOutcome()

	case OpPopReg, OpPopRegMem, OpPopES, OpPopDS, OpPopSS:
		c.writeValue(instr.Operand1, true, c.Pop())
		return contOutcome()

	case OpIncRegister, OpIncRegisterMemory:
		wide := c.operandWidth(instr)
		dst := c.fetchValue(instr.Operand1, wide)
		result := dst + 1
		c.writeValue(instr.Operand1, wide, result)
		if wide {
			c.setFlagsInc16(dst, uint32(result))
		} else {
			c.setFlagsInc8(byte(dst), uint16(result))
		}
		return contOutcome()

	case OpDecRegister, OpDecRegisterMemory:
		wide := c.operandWidth(instr)
		dst := c.fetchValue(instr.Operand1, wide)
		result := dst - 1
		c.writeValue(instr.Operand1, wide, result)
		if wide {
			c.setFlagsDec16(dst, uint32(result))
		} else {
			c.setFlagsDec8(byte(dst), uint16(result))
		}
		return contOutcome()

	case OpAddRegEither, OpAddImmediateRegisterMemory, OpAddImmediateToAccumulator, OpAddImmediateFromAccumulator,
		OpAdcRegEither, OpAdcImmediateRegisterMemory, OpAdcImmediateFromAccumulator,
		OpSubRegEither, OpSubImmediateRegisterMemory, OpSubImmediateFromAccumulator,
		OpSsbRegEither, OpSsbImmediateRegisterMemory, OpSsbImmediateFromAccumulator,
		OpAndRegEither, OpAndImmediateRegisterMemory, OpAndImmediateFromAccumulator,
		OpOrRegEither, OpOrImmediateRegisterMemory, OpOrImmediateFromAccumulator,
		OpXorRegEither,
		OpCmpRegEither, OpCmpImmediateByte, OpCmpImmediateWord, OpCmpImmediateFromAccumulator,
		OpTestRegisterMemoryAndRegister, OpTestImmediate, OpTestImmediateByte, OpTestImmediateDataAndAccumulator:
		c.execALU(instr)
		return contOutcome()

	case OpShl, OpShr, OpSar, OpRol, OpRor, OpRcl, OpRcr:
		c.execShift(instr)
		return contOutcome()

	case OpNeg:
		wide := c.operandWidth(instr)
		src := c.fetchValue(instr.Operand1, wide)
		if wide {
			result := uint32(-int32(src)) & 0xFFFF
			c.writeValue(instr.Operand1, true, uint16(result))
			c.setFlagsNeg16(src, result)
		} else {
			result := uint16(-int16(int8(src))) & 0xFF
			c.writeValue(instr.Operand1, false, result)
			c.setFlagsNeg8(byte(src), result)
		}
		return contOutcome()

	case OpNot:
		wide := c.operandWidth(instr)
		src := c.fetchValue(instr.Operand1, wide)
		c.writeValue(instr.Operand1, wide, ^src)
		return contOutcome()

	case OpMul:
		wide := c.operandWidth(instr)
		src := c.fetchValue(instr.Operand1, wide)
		if wide {
			result := uint32(c.AX()) * uint32(src)
			c.SetAX(uint16(result))
			c.SetDX(uint16(result >> 16))
			c.setFlagsMul16(result)
		} else {
			result := uint16(byte(c.AX())) * uint16(byte(src))
			c.SetAX(result)
			c.setFlagsMul8(result)
		}
		return contOutcome()

	case OpImul:
		wide := c.operandWidth(instr)
		src := c.fetchValue(instr.Operand1, wide)
		if wide {
			result := uint32(int32(int16(c.AX())) * int32(int16(src)))
			c.SetAX(uint16(result))
			c.SetDX(uint16(result >> 16))
			c.setFlagsMul16(result)
		} else {
			result := uint16(int16(int8(byte(c.AX()))) * int16(int8(byte(src))))
			c.SetAX(result)
			c.setFlagsMul8(result)
		}
		return contOutcome()

	case OpDiv:
		wide := c.operandWidth(instr)
		divisor := c.fetchValue(instr.Operand1, wide)
		if divisor == 0 {
			c.SetZF(true)
			return contOutcome()
		}
		if wide {
			dividend := uint32(c.DX())<<16 | uint32(c.AX())
			c.SetAX(uint16(dividend / uint32(divisor)))
			c.SetDX(uint16(dividend % uint32(divisor)))
		} else {
			dividend := c.AX()
			c.SetAX(uint16(byte(dividend/divisor)) | uint16(byte(dividend%divisor))<<8)
		}
		return contOutcome()

	case OpIdiv:
		wide := c.operandWidth(instr)
		divisor := c.fetchValue(instr.Operand1, wide)
		if divisor == 0 {
			c.SetZF(true)
			return contOutcome()
		}
		if wide {
			dividend := int32(uint32(c.DX())<<16 | uint32(c.AX()))
			d := int32(int16(divisor))
			c.SetAX(uint16(dividend / d))
			c.SetDX(uint16(dividend % d))
		} else {
			dividend := int16(c.AX())
			d := int16(int8(byte(divisor)))
			c.SetAX(uint16(byte(dividend/d)) | uint16(byte(dividend%d))<<8)
		}
		return contOutcome()

	case OpJmpDirectWithinSegment:
		c.IP = uint16(int32(nextIP) + int32(instr.Operand1.Imm.Value))
		return contOutcome()

	case OpJmpDirectWithinSegmentShort:
		c.IP = uint16(int32(nextIP) + int32(int8(instr.Operand1.Imm.Value)))
		return contOutcome()

	case OpJmpIndirectWithinSegment:
		c.IP = c.fetchValue(instr.Operand1, true)
		return contOutcome()

	case OpCallWithinDirect:
		c.Push(nextIP)
		if instr.Operand1.Kind == OperandImmediate {
			c.IP = uint16(int32(nextIP) + int32(instr.Operand1.Imm.Value))
		} else {
			c.IP = c.fetchValue(instr.Operand1, true)
		}
		return contOutcome()

	case OpRetWithinSegment:
		c.IP = c.Pop()
		return contOutcome()

	case OpRetWithinSegAddingImmedToSp:
		c.IP = c.Pop()
		c.SetSP(c.SP() + instr.Operand1.Imm.AsU16())
		return contOutcome()

	case OpJe, OpJne, OpJl, OpJnl, OpJle, OpJnle, OpJb, OpJnb, OpJbe, OpJnbe,
		OpJp, OpJnp, OpJo, OpJno, OpJs, OpJns:
		if c.jccTaken(instr.Opcode) {
			c.IP = uint16(int32(nextIP) + int32(int8(instr.Operand1.Imm.Value)))
		}
		return contOutcome()

	case OpLoop, OpLoopz, OpLoopnz, OpJcxz:
		c.execLoop(instr, nextIP)
		return contOutcome()

	case OpClc:
		c.SetCF(false)
	case OpCmc:
		c.SetCF(!c.CF())
	case OpCld:
		c.SetDF(false)
	case OpStd:
		c.SetDF(true)
	case OpCli:
		c.SetIF(false)
	case OpSti:
		c.SetIF(true)
	case OpHlt:
		c.Halted = true
	case OpCbw:
		if c.AX()&0x80 != 0 {
			c.SetAX(c.AX() | 0xFF00)
		} else {
			c.SetAX(c.AX() &^ 0xFF00)
		}
	case OpCwd:
		if c.AX()&0x8000 != 0 {
			c.SetDX(0xFFFF)
		} else {
			c.SetDX(0)
		}

	case OpInFixedPort, OpInVariablePort, OpOutFixedPort, OpOutVariablePort:
		// Host port I/O is not modeled; these execute as no-ops beyond
		// cycle accounting, matching the non-goal on device emulation.

	case OpIntTypeSpecified:
		if instr.Operand1.Imm.AsU16() == 0x20 && bridge != nil {
			halt, code := bridge.Dispatch()
			if halt {
				return ExecOutcome{Halt: true, Code: code}
			}
		}

	case OpCompsByte:
		c.execCmpsb()
	case OpRepMovsb:
		c.execRepMovs(false)
	case OpRepMovsw:
		c.execRepMovs(true)
	case OpRepStosb:
		c.execRepStosb()
	case OpRepScasb:
		c.execRepScasb()
	}

	return contOutcome()
}

func (c *CPU) jccTaken(op Opcode) bool {
	switch op {
	case OpJe:
		return c.ZF()
	case OpJne:
		return !c.ZF()
	case OpJl:
		return c.SF()
	case OpJnl:
		return !c.SF()
	case OpJle:
		return c.ZF() || c.SF() != c.OF()
	case OpJnle:
		return !c.ZF() && c.SF() == c.OF()
	case OpJb:
		return c.CF()
	case OpJnb:
		return !c.CF()
	case OpJbe:
		return c.CF() || c.ZF()
	case OpJnbe:
		return !c.CF() && !c.ZF()
	case OpJp:
		return c.PF()
	case OpJnp:
		return !c.PF()
	case OpJo:
		return c.OF()
	case OpJno:
		return !c.OF()
	case OpJs:
		return c.SF()
	case OpJns:
		return !c.SF()
	}
	return false
}

func (c *CPU) execLoop(instr Instruction, nextIP uint16) {
	var taken bool
	switch instr.Opcode {
	case OpJcxz:
		taken = c.CX() == 0
	default:
		c.SetCX(c.CX() - 1)
		switch instr.Opcode {
		case OpLoop:
			taken = c.CX() != 0
		case OpLoopz:
			taken = c.CX() != 0 && c.ZF()
		case OpLoopnz:
			taken = c.CX() != 0 && !c.ZF()
		}
	}
	if taken {
		c.IP = uint16(int32(nextIP) + int32(int8(instr.Operand1.Imm.Value)))
	}
}

// execALU computes and writes back (when isAssignEffect) the ADD/ADC/SUB/
// SBB/AND/OR/XOR/CMP/TEST family, updating flags accordingly.
func (c *CPU) execALU(instr Instruction) {
	wide := c.operandWidth(instr)
	dst := c.fetchValue(instr.Operand1, wide)
	src := c.fetchValue(instr.Operand2, wide)

	var result uint16
	var isSub bool
	logic := false

	switch instr.Opcode {
	case OpAddRegEither, OpAddImmediateRegisterMemory, OpAddImmediateToAccumulator, OpAddImmediateFromAccumulator:
		result = dst + src
	case OpAdcRegEither, OpAdcImmediateRegisterMemory, OpAdcImmediateFromAccumulator:
		carry := uint16(0)
		if c.CF() {
			carry = 1
		}
		result = dst + src + carry
	case OpSubRegEither, OpSubImmediateRegisterMemory, OpSubImmediateFromAccumulator:
		result = dst - src
		isSub = true
	case OpSsbRegEither, OpSsbImmediateRegisterMemory, OpSsbImmediateFromAccumulator:
		carry := uint16(0)
		if c.CF() {
			carry = 1
		}
		result = dst - src - carry
		isSub = true
	case OpAndRegEither, OpAndImmediateRegisterMemory, OpAndImmediateFromAccumulator,
		OpTestRegisterMemoryAndRegister, OpTestImmediate, OpTestImmediateByte, OpTestImmediateDataAndAccumulator:
		result = dst & src
		logic = true
	case OpOrRegEither, OpOrImmediateRegisterMemory, OpOrImmediateFromAccumulator:
		result = dst | src
		logic = true
	case OpXorRegEither:
		result = dst ^ src
		logic = true
	case OpCmpRegEither, OpCmpImmediateByte, OpCmpImmediateWord, OpCmpImmediateFromAccumulator:
		result = dst - src
		isSub = true
	}

	if wide {
		wide32 := uint32(dst)
		switch {
		case instr.Opcode == OpAdcRegEither || instr.Opcode == OpAdcImmediateRegisterMemory || instr.Opcode == OpAdcImmediateFromAccumulator:
			carry := uint32(0)
			if c.CF() {
				carry = 1
			}
			wide32 = uint32(dst) + uint32(src) + carry
		case instr.Opcode == OpSsbRegEither || instr.Opcode == OpSsbImmediateRegisterMemory || instr.Opcode == OpSsbImmediateFromAccumulator:
			carry := uint32(0)
			if c.CF() {
				carry = 1
			}
			wide32 = uint32(dst) - uint32(src) - carry
		case isSub:
			wide32 = uint32(dst) - uint32(src)
		case logic:
			wide32 = uint32(result)
		default:
			wide32 = uint32(dst) + uint32(src)
		}
		if logic {
			c.setFlagsLogic16(uint16(wide32))
		} else {
			c.setFlagsArith16(wide32, dst, src, isSub)
		}
	} else {
		if logic {
			c.setFlagsLogic8(byte(result))
		} else {
			var wide16 uint16
			switch {
			case instr.Opcode == OpAdcRegEither || instr.Opcode == OpAdcImmediateRegisterMemory || instr.Opcode == OpAdcImmediateFromAccumulator:
				carry := uint16(0)
				if c.CF() {
					carry = 1
				}
				wide16 = uint16(byte(dst)) + uint16(byte(src)) + carry
			case instr.Opcode == OpSsbRegEither || instr.Opcode == OpSsbImmediateRegisterMemory || instr.Opcode == OpSsbImmediateFromAccumulator:
				carry := uint16(0)
				if c.CF() {
					carry = 1
				}
				wide16 = uint16(byte(dst)) - uint16(byte(src)) - carry
			case isSub:
				wide16 = uint16(byte(dst)) - uint16(byte(src))
			default:
				wide16 = uint16(byte(dst)) + uint16(byte(src))
			}
			c.setFlagsArith8(wide16, byte(dst), byte(src), isSub)
		}
	}

	if instr.Opcode.isAssignEffect() {
		c.writeValue(instr.Operand1, wide, result)
	}
}

// execShift implements the SHL/SHR/SAR/ROL/ROR/RCL/RCR group. SAR with
// count=0 is preserved verbatim as a no-op per the documented quirk.
func (c *CPU) execShift(instr Instruction) {
	wide := c.operandWidth(instr)
	dst := c.fetchValue(instr.Operand1, wide)
	count := byte(c.fetchValue(instr.Operand2, true)) & 0x1F

	if count == 0 {
		return
	}

	width := 8
	if wide {
		width = 16
	}
	signBit := uint16(1) << (width - 1)

	var result uint16
	var carryOut bool

	switch instr.Opcode {
	case OpShl:
		v := dst
		for i := byte(0); i < count; i++ {
			carryOut = v&signBit != 0
			v <<= 1
		}
		result = v
	case OpShr:
		v := dst
		for i := byte(0); i < count; i++ {
			carryOut = v&1 != 0
			v >>= 1
		}
		result = v
	case OpSar:
		v := dst
		neg := v&signBit != 0
		for i := byte(0); i < count; i++ {
			carryOut = v&1 != 0
			v >>= 1
			if neg {
				v |= signBit
			}
		}
		result = v
	case OpRol:
		v := dst
		for i := byte(0); i < count; i++ {
			carryOut = v&signBit != 0
			v <<= 1
			if carryOut {
				v |= 1
			}
		}
		result = v
	case OpRor:
		v := dst
		for i := byte(0); i < count; i++ {
			carryOut = v&1 != 0
			v >>= 1
			if carryOut {
				v |= signBit
			}
		}
		result = v
	case OpRcl:
		v := dst
		cf := c.CF()
		for i := byte(0); i < count; i++ {
			newCF := v&signBit != 0
			v <<= 1
			if cf {
				v |= 1
			}
			cf = newCF
		}
		result = v
		carryOut = cf
	case OpRcr:
		v := dst
		cf := c.CF()
		for i := byte(0); i < count; i++ {
			newCF := v&1 != 0
			v >>= 1
			if cf {
				v |= signBit
			}
			cf = newCF
		}
		result = v
		carryOut = cf
	}

	if wide {
		result &= 0xFFFF
	} else {
		result &= 0xFF
	}
	c.writeValue(instr.Operand1, wide, result)

	overflowBit := (result&signBit != 0) != (dst&signBit != 0)
	switch instr.Opcode {
	case OpShl, OpShr, OpSar:
		if wide {
			c.setFlagsShift16(result, count, carryOut, overflowBit)
		} else {
			c.setFlagsShift8(byte(result), count, carryOut, overflowBit)
		}
		if instr.Opcode == OpShl && count > 1 {
			c.SetOF((result&signBit != 0) != carryOut)
		}
	default:
		c.SetCF(carryOut)
	}
}

func (c *CPU) execCmpsb() {
	a := c.ReadByte(c.SI())
	b := c.ReadByte(c.DI())
	result := uint16(a) - uint16(b)
	c.setFlagsArith8(result, a, b, true)
	if c.DF() {
		c.SetSI(c.SI() - 1)
		c.SetDI(c.DI() - 1)
	} else {
		c.SetSI(c.SI() + 1)
		c.SetDI(c.DI() + 1)
	}
}

func (c *CPU) execRepMovs(wide bool) {
	for c.CX() != 0 {
		if wide {
			c.WriteWord(c.DI(), c.ReadWord(c.SI()))
		} else {
			c.WriteByte(c.DI(), c.ReadByte(c.SI()))
		}
		step := uint16(1)
		if wide {
			step = 2
		}
		if c.DF() {
			c.SetSI(c.SI() - step)
			c.SetDI(c.DI() - step)
		} else {
			c.SetSI(c.SI() + step)
			c.SetDI(c.DI() + step)
		}
		c.SetCX(c.CX() - 1)
	}
}

func (c *CPU) execRepStosb() {
	for c.CX() != 0 {
		c.WriteByte(c.DI(), byte(c.AX()))
		if c.DF() {
			c.SetDI(c.DI() - 1)
		} else {
			c.SetDI(c.DI() + 1)
		}
		c.SetCX(c.CX() - 1)
	}
}

func (c *CPU) execRepScasb() {
	for c.CX() != 0 {
		al := byte(c.AX())
		mem := c.ReadByte(c.DI())
		result := uint16(al) - uint16(mem)
		c.setFlagsArith8(result, al, mem, true)
		if c.DF() {
			c.SetDI(c.DI() - 1)
		} else {
			c.SetDI(c.DI() + 1)
		}
		c.SetCX(c.CX() - 1)
		if al != mem {
			break
		}
	}
}
