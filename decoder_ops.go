// decoder_ops.go - per-family decode helpers invoked from Decode's dispatch
// tiers in decoder.go. Each helper fetches its own opcode byte (the tier
// dispatch in Decode only peeks at cur/next, it never advances IP) and
// returns a fully-formed Assembly.
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package main

func ptrOp(o Operand) *Operand { return &o }

func (c *CPU) fetch8() byte {
	b := c.ReadText(c.IP)
	c.IP++
	return b
}

// fetch16 reads a little-endian pair of bytes: the first byte fetched is
// the low half, matching ReadWord's convention elsewhere in this package.
func (c *CPU) fetch16() uint16 {
	lo := uint16(c.fetch8())
	hi := uint16(c.fetch8())
	return hi<<8 | lo
}

func (c *CPU) finishAssembly(start uint16, instr Instruction) *Assembly {
	size := c.IP - start
	var code uint64
	for i := uint16(0); i < size && i < 8; i++ {
		code = code<<8 | uint64(c.ReadText(start+i))
	}
	return &Assembly{Address: start, Size: uint8(size), Code: code, Instr: instr}
}

// decodeRM builds the r/m-side operand for a mod/rm pair already split out of
// a fetched ModRM byte. mod==3 selects a register; mod==0 with rm==6 selects
// the disp-only addressing form with a following 16-bit displacement; mod 1
// and 2 select a base/index form with an 8- or 16-bit displacement.
func (c *CPU) decodeRM(mod, rm, w uint8) Operand {
	if mod == 3 {
		return operandReg(regFromEncoding(rm, w))
	}
	if mod == 0 && rm == 6 {
		disp := int16(c.fetch16())
		return operandEA(EffectiveAddress{Kind: EADispOnly, Disp: disp})
	}
	var disp int16
	switch mod {
	case 1:
		disp = int16(int8(c.fetch8()))
	case 2:
		disp = int16(c.fetch16())
	}
	return operandEA(newEA(rm, disp))
}

// decodeImmediateRegister handles MOV reg, imm (the 4-bit-prefix tier):
// 1011 w reg, followed by an 8- or 16-bit immediate per w.
func (c *CPU) decodeImmediateRegister() *Assembly {
	start := c.IP
	op := c.fetch8()
	w := (op >> 3) & 1
	reg := regFromEncoding(op&7, w)
	var imm Immediate
	if w == 1 {
		imm = imm16(int16(c.fetch16()), 4)
	} else {
		imm = imm8(int8(c.fetch8()), 2)
	}
	instr := Instruction{Opcode: OpMovImmediate, Operand1: ptrOp(operandReg(reg)), Operand2: ptrOp(operandImm(imm))}
	return c.finishAssembly(start, instr)
}

// decodeRegSeries handles the 5-bit-prefix single-register forms: PUSH/POP
// reg, INC/DEC reg, and XCHG reg,AX. All operate on the full 16-bit register.
func (c *CPU) decodeRegSeries(op Opcode) *Assembly {
	start := c.IP
	b := c.fetch8()
	reg := reg16(Reg16(b & 7))
	instr := Instruction{Opcode: op, Operand1: ptrOp(operandReg(reg))}
	if op == OpXchgRegisterWithAccumulator {
		instr.Operand2 = ptrOp(operandReg(reg16(RegAX)))
	}
	return c.finishAssembly(start, instr)
}

// decodeRegEither handles the reg-either ALU family and plain MOV
// reg<->r/m: opcode byte carries a d bit (destination select) and a w bit,
// followed by a ModRM byte.
func (c *CPU) decodeRegEither(op Opcode) *Assembly {
	start := c.IP
	b := c.fetch8()
	d := (b >> 1) & 1
	w := b & 1
	modByte := c.fetch8()
	mod := (modByte >> 6) & 3
	regField := (modByte >> 3) & 7
	rmField := modByte & 7

	regOp := operandReg(regFromEncoding(regField, w))
	rmOp := c.decodeRM(mod, rmField, w)

	instr := Instruction{Opcode: op}
	if d == 1 {
		instr.Operand1, instr.Operand2 = ptrOp(regOp), ptrOp(rmOp)
	} else {
		instr.Operand1, instr.Operand2 = ptrOp(rmOp), ptrOp(regOp)
	}
	return c.finishAssembly(start, instr)
}

// decodeImmediateRegisterMemory handles the ALU-immediate-with-r/m family,
// MOV imm->r/m, and TEST imm&r/m. The 6-bit ALU variants carry an s
// (sign-extend) bit at position 1 of the opcode byte; MOV and TEST do not.
func (c *CPU) decodeImmediateRegisterMemory(op Opcode) *Assembly {
	start := c.IP
	opByte := c.fetch8()
	modByte := c.fetch8()
	mod := (modByte >> 6) & 3
	rmField := modByte & 7
	w := opByte & 1
	rmOp := c.decodeRM(mod, rmField, w)

	actualOp := op
	var imm Immediate
	switch op {
	case OpMovImmediateRegisterMemory, OpMovImmediateRegisterMemoryByte,
		OpTestImmediate, OpTestImmediateByte:
		if op == OpTestImmediate && w == 0 {
			actualOp = OpTestImmediateByte
		}
		if w == 1 {
			imm = imm16(int16(c.fetch16()), 4)
		} else {
			imm = imm8(int8(c.fetch8()), 2)
		}
	default:
		s := (opByte >> 1) & 1
		if w == 1 && s == 0 {
			imm = imm16(int16(c.fetch16()), 4)
		} else {
			imm = imm8(int8(c.fetch8()), 2)
			if w == 1 {
				imm = imm16(int16(int8(imm.Value)), 4)
			}
		}
	}
	instr := Instruction{Opcode: actualOp, Operand1: ptrOp(rmOp), Operand2: ptrOp(operandImm(imm))}
	return c.finishAssembly(start, instr)
}

// decodeRegisterMemory handles single-operand and r/m,reg forms that don't
// carry an immediate: shift/rotate group (operand2 is CL or the literal 1),
// XCHG/TEST r/m,reg, the unary ALU group (NEG/NOT/MUL/IMUL/DIV/IDIV),
// INC/DEC r/m, PUSH/POP r/m, and indirect CALL/JMP.
func (c *CPU) decodeRegisterMemory(op Opcode) *Assembly {
	start := c.IP
	opByte := c.fetch8()
	modByte := c.fetch8()
	mod := (modByte >> 6) & 3
	regField := (modByte >> 3) & 7
	rmField := modByte & 7
	w := opByte & 1
	rmOp := c.decodeRM(mod, rmField, w)

	instr := Instruction{Opcode: op}
	switch op {
	case OpShl, OpShr, OpSar, OpRol, OpRor, OpRcl, OpRcr:
		instr.Operand1 = ptrOp(rmOp)
		if (opByte>>1)&1 == 1 {
			instr.Operand2 = ptrOp(operandReg(reg8(RegCL)))
		} else {
			instr.Operand2 = ptrOp(operandImm(imm8(1, 1)))
		}
	case OpXchgRegisterMemoryWithRegister, OpTestRegisterMemoryAndRegister:
		instr.Operand1 = ptrOp(rmOp)
		instr.Operand2 = ptrOp(operandReg(regFromEncoding(regField, w)))
	default:
		instr.Operand1 = ptrOp(rmOp)
	}
	return c.finishAssembly(start, instr)
}

// decodeMemoryToRegister handles MOV AX/AL, [addr16]: opcode byte carries w,
// followed by a flat 16-bit address (always word-sized regardless of w).
func (c *CPU) decodeMemoryToRegister(op Opcode) *Assembly {
	start := c.IP
	opByte := c.fetch8()
	w := opByte & 1
	addr := int16(c.fetch16())
	reg := regFromEncoding(0, w)
	ea := EffectiveAddress{Kind: EADispOnly, Disp: addr}
	instr := Instruction{Opcode: op, Operand1: ptrOp(operandReg(reg)), Operand2: ptrOp(operandEA(ea))}
	return c.finishAssembly(start, instr)
}

// decodeImmediateAccumulator handles the ALU-imm-with-AX/AL short forms:
// opcode byte carries w, followed by an 8- or 16-bit immediate.
func (c *CPU) decodeImmediateAccumulator(op Opcode) *Assembly {
	start := c.IP
	opByte := c.fetch8()
	w := opByte & 1
	reg := regFromEncoding(0, w)
	var imm Immediate
	if w == 1 {
		imm = imm16(int16(c.fetch16()), 4)
	} else {
		imm = imm8(int8(c.fetch8()), 2)
	}
	instr := Instruction{Opcode: op, Operand1: ptrOp(operandReg(reg)), Operand2: ptrOp(operandImm(imm))}
	return c.finishAssembly(start, instr)
}

// decodeFixedPort handles IN/OUT, both fixed-port (an immediate byte port
// follows the opcode) and variable-port (the port is implicitly DX) forms.
func (c *CPU) decodeFixedPort(op Opcode) *Assembly {
	start := c.IP
	opByte := c.fetch8()
	w := opByte & 1
	acc := operandReg(regFromEncoding(0, w))

	var portOp Operand
	switch op {
	case OpInFixedPort, OpOutFixedPort:
		portOp = operandImm(imm8(int8(c.fetch8()), 2))
	default:
		portOp = operandReg(reg16(RegDX))
	}

	instr := Instruction{Opcode: op}
	switch op {
	case OpInFixedPort, OpInVariablePort:
		instr.Operand1, instr.Operand2 = ptrOp(acc), ptrOp(portOp)
	default:
		instr.Operand1, instr.Operand2 = ptrOp(portOp), ptrOp(acc)
	}
	return c.finishAssembly(start, instr)
}

// decodeStringManipulation handles bare CMPSB and the REP-prefixed
// MOVSW/MOVSB/STOSB/SCASB family, peeking the byte after the 0xF3 prefix to
// select which repeated operation is encoded.
func (c *CPU) decodeStringManipulation() *Assembly {
	start := c.IP
	b := c.fetch8()
	if b == 0xA6 {
		return c.finishAssembly(start, Instruction{Opcode: OpCompsByte})
	}

	next := c.fetch8()
	var op Opcode
	switch next {
	case 0xA5:
		op = OpRepMovsw
	case 0xA4:
		op = OpRepMovsb
	case 0xAA:
		op = OpRepStosb
	case 0xAE:
		op = OpRepScasb
	default:
		op = OpUndefined
	}
	return c.finishAssembly(start, Instruction{Opcode: op})
}

// decodeIntSpecified handles INT imm8.
func (c *CPU) decodeIntSpecified() *Assembly {
	start := c.IP
	c.fetch8()
	t := c.fetch8()
	instr := Instruction{Opcode: OpIntTypeSpecified, Operand1: ptrOp(operandImm(imm8(int8(t), 2)))}
	return c.finishAssembly(start, instr)
}

// decodeLoad handles LEA reg, r/m. Its mod==0 branch always produces a
// disp-only EA(0) regardless of the r/m field -- a literal carry-over of the
// reference decoder's own LEA special case, not a generalization of
// decodeRM's mod==0/rm==6 rule.
func (c *CPU) decodeLoad(op Opcode) *Assembly {
	start := c.IP
	c.fetch8()
	modByte := c.fetch8()
	mod := (modByte >> 6) & 3
	regField := (modByte >> 3) & 7
	rmField := modByte & 7

	var rmOp Operand
	if mod == 0 {
		rmOp = operandEA(EffectiveAddress{Kind: EADispOnly, Disp: 0})
	} else {
		rmOp = c.decodeRM(mod, rmField, 1)
	}
	instr := Instruction{Opcode: op, Operand1: ptrOp(operandReg(reg16(Reg16(regField)))), Operand2: ptrOp(rmOp)}
	return c.finishAssembly(start, instr)
}

// decodeDirectSeg handles JMP/CALL direct-within-segment with a full 16-bit
// target.
func (c *CPU) decodeDirectSeg(op Opcode) *Assembly {
	start := c.IP
	c.fetch8()
	target := c.fetch16()
	instr := Instruction{Opcode: op, Operand1: ptrOp(operandImm(imm16(int16(target), 4)))}
	return c.finishAssembly(start, instr)
}

// decodeDirectSegShort and decodeJmpDisp both handle the short 8-bit signed
// displacement forms -- Jcc and LOOP/LOOPZ/LOOPNZ/JCXZ alike share the same
// one-byte-displacement encoding, just different opcode bytes.
func (c *CPU) decodeDirectSegShort(op Opcode) *Assembly {
	start := c.IP
	c.fetch8()
	disp := int8(c.fetch8())
	instr := Instruction{Opcode: op, Operand1: ptrOp(operandImm(imm8(disp, 1)))}
	return c.finishAssembly(start, instr)
}

func (c *CPU) decodeJmpDisp(op Opcode) *Assembly {
	return c.decodeDirectSegShort(op)
}

// decodeProcControl handles the zero-operand single-byte forms: flag
// set/clear, CBW/CWD, HLT, and bare RET.
func (c *CPU) decodeProcControl(op Opcode) *Assembly {
	start := c.IP
	c.fetch8()
	return c.finishAssembly(start, Instruction{Opcode: op})
}

// decodeImmedToSp handles RET imm16, the stack-adjusting return form.
func (c *CPU) decodeImmedToSp(op Opcode) *Assembly {
	start := c.IP
	c.fetch8()
	v := c.fetch16()
	instr := Instruction{Opcode: op, Operand1: ptrOp(operandImm(imm16(int16(v), 4)))}
	return c.finishAssembly(start, instr)
}

// decodeUndefined consumes exactly one byte so the caller always makes
// forward progress even on an unrecognized opcode.
func (c *CPU) decodeUndefined() *Assembly {
	start := c.IP
	c.fetch8()
	return c.finishAssembly(start, Instruction{Opcode: OpUndefined})
}
