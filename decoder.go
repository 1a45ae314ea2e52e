// decoder.go - byte-stream to structured Assembly decoding.
//
// Dispatch mirrors the reference decoder's longest-matching-bit-prefix
// strategy: classify the current byte (and a one-byte lookahead) against
// five widening bit-masks in turn, falling through to Undefined when none
// match. The bit-pattern constants below are transcribed from the MINIX
// 8086 opcode map (constant.rs in the retrieved reference sources) to keep
// the dispatch byte-for-byte faithful to the real instruction encoding.
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package main

// Opcode-bit-pattern constants, one group per dispatch tier. Names follow
// the field they discriminate, not a mnemonic, since several numerically
// identical constants are compared at different bit widths against
// different shifts of the same byte.
const (
	movImmediate isByte = 0b1011 // upper 4 bits

	pushReg                      isByte = 0b01010 // upper 5 bits
	popReg                       isByte = 0b01011
	xchgRegWithAccumulator       isByte = 0b10010
	decRegister                  isByte = 0b01001
	incRegister                  isByte = 0b01000

	addRegEither isByte = 0b000000 // upper 6 bits
	subRegEither isByte = 0b001010
	andRegEither isByte = 0b001000
	cmpRegEither isByte = 0b001110
	orRegEither  isByte = 0b000010
	adcRegEither isByte = 0b000100
	ssbRegEither isByte = 0b000110
	xorRegEither isByte = 0b001100
	movRmToFromReg isByte = 0b100010

	immediateWithRegMem6 isByte = 0b100000
	logic6               isByte = 0b110100

	addImm3 isByte = 0b000 // next-byte middle-3-bit sub-discriminators
	subImm3 isByte = 0b101
	andImm3 isByte = 0b100
	adcImm3 isByte = 0b010
	orImm3  isByte = 0b001
	cmpImm3 isByte = 0b111
	ssbImm3 isByte = 0b011

	shlImm3 isByte = 0b100
	shrImm3 isByte = 0b101
	sarImm3 isByte = 0b111
	rolImm3 isByte = 0b000
	rorImm3 isByte = 0b001
	rclImm3 isByte = 0b010
	rcrImm3 isByte = 0b011

	movImmediateRegMem7 isByte = 0b1100011 // upper 7 bits
	movImmediateRegMem3 isByte = 0b000
	movMemToAccumulator isByte = 0b1010000
	xchgRegMemWithReg   isByte = 0b1000011
	addImmWithAcc       isByte = 0b0100000
	addImmToAcc         isByte = 0b0000010
	subImmWithAcc       isByte = 0b0010110
	adcImmWithAcc       isByte = 0b0001010
	andImmWithAcc       isByte = 0b0010010
	testImmDataAndAcc   isByte = 0b1010100
	testRegMemAndReg    isByte = 0b1000010
	ssbImmWithAcc       isByte = 0b0001110
	cmpImmWithAcc       isByte = 0b0011110
	orImmWithAcc        isByte = 0b0000110
	immediateData7      isByte = 0b1111011
	testImmRM3          isByte = 0b000
	mulDiv7             isByte = 0b1111011
	neg3                isByte = 0b011
	not3                isByte = 0b010
	mul3                isByte = 0b100
	imul3               isByte = 0b101
	div3                isByte = 0b110
	idiv3               isByte = 0b111
	incDec7             isByte = 0b1111111
	incRegMem3          isByte = 0b000
	decRegMem3          isByte = 0b001
	inFixedPort7        isByte = 0b1110010
	inVariablePort7     isByte = 0b1110110
	outFixedPort7       isByte = 0b1110011
	outVariablePort7    isByte = 0b1110111
	repPrefix7          isByte = 0b1111001
	compsByte7          isByte = 0b1010011

	intTypeSpecified       isByte = 0b11001101 // full 8 bits
	leaOpcode              isByte = 0b10001101
	jmpDirectWithinSeg     isByte = 0b11101001
	jmpDirectWithinSegShort isByte = 0b11101011
	callIndirectInterseg8  isByte = 0b11111111
	callIndirectInterseg3  isByte = 0b011
	callIndirectWithinSeg8 isByte = 0b11111111
	callIndirectWithinSeg3 isByte = 0b010
	jmpIndirectWithinSeg3  isByte = 0b100
	retWithinSeg           isByte = 0b11000011
	jeOpcode               isByte = 0b01110100
	jlOpcode               isByte = 0b01111100
	jleOpcode              isByte = 0b01111110
	jbOpcode               isByte = 0b01110010
	jbeOpcode              isByte = 0b01110110
	jpOpcode               isByte = 0b01111010
	joOpcode               isByte = 0b01110000
	jsOpcode               isByte = 0b01111000
	jneOpcode              isByte = 0b01110101
	jnlOpcode              isByte = 0b01111101
	jnleOpcode             isByte = 0b01111111
	jnbOpcode              isByte = 0b01110011
	jnbeOpcode             isByte = 0b01110111
	jnpOpcode              isByte = 0b01111011
	jnoOpcode              isByte = 0b01110001
	jnsOpcode              isByte = 0b01111001
	loopOpcode             isByte = 0b11100010
	loopzOpcode            isByte = 0b11100001
	loopnzOpcode           isByte = 0b11100000
	jcxzOpcode             isByte = 0b11100011
	pushRM                 isByte = 0b11111111
	popRM                  isByte = 0b10001111
	callDirectWithinSeg    isByte = 0b11101000
	clcOpcode              isByte = 0b11111000
	cmcOpcode              isByte = 0b11110101
	cldOpcode              isByte = 0b11111100
	stdOpcode              isByte = 0b11111101
	cliOpcode              isByte = 0b11111010
	stiOpcode              isByte = 0b11111011
	hltOpcode              isByte = 0b11110100
	cbwOpcode              isByte = 0b10011000
	cwdOpcode              isByte = 0b10011001
	retImm16               isByte = 0b11000010
)

// isByte is an alias documenting that these constants are compared against
// shifted/masked fragments of a single instruction byte.
type isByte = int

// Decode reads one instruction at the current IP and advances IP by the
// number of bytes consumed. It returns nil once IP reaches the end of text.
func (c *CPU) Decode() *Assembly {
	if int(c.IP) >= int(c.TextSize) {
		return nil
	}

	cur := int(c.ReadText(c.IP))
	next := int(c.ReadText(c.IP + 1))

	upper4 := (cur >> 4) & 0xf
	upper5 := (cur >> 3) & 0x1f
	upper6 := (cur >> 2) & 0x3f
	upper7 := (cur >> 1) & 0x7f
	next3 := (next >> 3) & 0b111

	if upper4 == movImmediate {
		return c.decodeImmediateRegister()
	}

	switch upper5 {
	case pushReg:
		return c.decodeRegSeries(OpPushReg)
	case popReg:
		return c.decodeRegSeries(OpPopReg)
	case xchgRegWithAccumulator:
		return c.decodeRegSeries(OpXchgRegisterWithAccumulator)
	case decRegister:
		return c.decodeRegSeries(OpDecRegister)
	case incRegister:
		return c.decodeRegSeries(OpIncRegister)
	}

	switch upper6 {
	case addRegEither:
		return c.decodeRegEither(OpAddRegEither)
	case subRegEither:
		return c.decodeRegEither(OpSubRegEither)
	case andRegEither:
		return c.decodeRegEither(OpAndRegEither)
	case cmpRegEither:
		return c.decodeRegEither(OpCmpRegEither)
	case orRegEither:
		return c.decodeRegEither(OpOrRegEither)
	case adcRegEither:
		return c.decodeRegEither(OpAdcRegEither)
	case ssbRegEither:
		return c.decodeRegEither(OpSsbRegEither)
	case xorRegEither:
		return c.decodeRegEither(OpXorRegEither)
	case movRmToFromReg:
		return c.decodeRegEither(OpMovRmToFromReg)
	case immediateWithRegMem6:
		switch next3 {
		case addImm3:
			return c.decodeImmediateRegisterMemory(OpAddImmediateRegisterMemory)
		case subImm3:
			return c.decodeImmediateRegisterMemory(OpSubImmediateRegisterMemory)
		case andImm3:
			return c.decodeImmediateRegisterMemory(OpAndImmediateRegisterMemory)
		case adcImm3:
			return c.decodeImmediateRegisterMemory(OpAdcImmediateRegisterMemory)
		case orImm3:
			return c.decodeImmediateRegisterMemory(OpOrImmediateRegisterMemory)
		case cmpImm3:
			if cur&1 == 1 {
				return c.decodeImmediateRegisterMemory(OpCmpImmediateWord)
			}
			return c.decodeImmediateRegisterMemory(OpCmpImmediateByte)
		case ssbImm3:
			return c.decodeImmediateRegisterMemory(OpSsbImmediateRegisterMemory)
		}
	case logic6:
		switch next3 {
		case shlImm3:
			return c.decodeRegisterMemory(OpShl)
		case shrImm3:
			return c.decodeRegisterMemory(OpShr)
		case sarImm3:
			return c.decodeRegisterMemory(OpSar)
		case rolImm3:
			return c.decodeRegisterMemory(OpRol)
		case rorImm3:
			return c.decodeRegisterMemory(OpRor)
		case rclImm3:
			return c.decodeRegisterMemory(OpRcl)
		case rcrImm3:
			return c.decodeRegisterMemory(OpRcr)
		}
	}

	switch {
	case upper7 == movImmediateRegMem7 && next3 == movImmediateRegMem3:
		if cur&1 == 0 {
			return c.decodeImmediateRegisterMemory(OpMovImmediateRegisterMemoryByte)
		}
		return c.decodeImmediateRegisterMemory(OpMovImmediateRegisterMemory)
	case upper7 == movMemToAccumulator:
		return c.decodeMemoryToRegister(OpMovMemoryToAccumulator)
	case upper7 == xchgRegMemWithReg:
		return c.decodeRegisterMemory(OpXchgRegisterMemoryWithRegister)
	case upper7 == addImmWithAcc:
		return c.decodeImmediateAccumulator(OpAddImmediateFromAccumulator)
	case upper7 == addImmToAcc:
		return c.decodeImmediateAccumulator(OpAddImmediateToAccumulator)
	case upper7 == subImmWithAcc:
		return c.decodeImmediateAccumulator(OpSubImmediateFromAccumulator)
	case upper7 == adcImmWithAcc:
		return c.decodeImmediateAccumulator(OpAdcImmediateFromAccumulator)
	case upper7 == andImmWithAcc:
		return c.decodeImmediateAccumulator(OpAndImmediateFromAccumulator)
	case upper7 == testImmDataAndAcc:
		return c.decodeImmediateAccumulator(OpTestImmediateDataAndAccumulator)
	case upper7 == testRegMemAndReg:
		return c.decodeRegisterMemory(OpTestRegisterMemoryAndRegister)
	case upper7 == ssbImmWithAcc:
		return c.decodeImmediateAccumulator(OpSsbImmediateFromAccumulator)
	case upper7 == cmpImmWithAcc:
		return c.decodeImmediateAccumulator(OpCmpImmediateFromAccumulator)
	case upper7 == orImmWithAcc:
		return c.decodeImmediateAccumulator(OpOrImmediateFromAccumulator)
	case upper7 == immediateData7 && next3 == testImmRM3:
		return c.decodeImmediateRegisterMemory(OpTestImmediate)
	case upper7 == mulDiv7 && next3 == neg3:
		return c.decodeRegisterMemory(OpNeg)
	case upper7 == mulDiv7 && next3 == not3:
		return c.decodeRegisterMemory(OpNot)
	case upper7 == mulDiv7 && next3 == mul3:
		return c.decodeRegisterMemory(OpMul)
	case upper7 == mulDiv7 && next3 == imul3:
		return c.decodeRegisterMemory(OpImul)
	case upper7 == mulDiv7 && next3 == div3:
		return c.decodeRegisterMemory(OpDiv)
	case upper7 == mulDiv7 && next3 == idiv3:
		return c.decodeRegisterMemory(OpIdiv)
	case upper7 == incDec7 && next3 == incRegMem3:
		return c.decodeRegisterMemory(OpIncRegisterMemory)
	case upper7 == incDec7 && next3 == decRegMem3:
		return c.decodeRegisterMemory(OpDecRegisterMemory)
	case upper7 == inFixedPort7:
		return c.decodeFixedPort(OpInFixedPort)
	case upper7 == inVariablePort7:
		return c.decodeFixedPort(OpInVariablePort)
	case upper7 == outFixedPort7:
		return c.decodeFixedPort(OpOutFixedPort)
	case upper7 == outVariablePort7:
		return c.decodeFixedPort(OpOutVariablePort)
	case upper7 == repPrefix7:
		return c.decodeStringManipulation()
	case upper7 == compsByte7:
		return c.decodeStringManipulation()
	}

	switch {
	case cur == intTypeSpecified:
		return c.decodeIntSpecified()
	case cur == leaOpcode:
		return c.decodeLoad(OpLea)
	case cur == jmpDirectWithinSeg:
		return c.decodeDirectSeg(OpJmpDirectWithinSegment)
	case cur == jmpDirectWithinSegShort:
		return c.decodeDirectSegShort(OpJmpDirectWithinSegmentShort)
	case cur == callIndirectInterseg8 && next3 == callIndirectInterseg3:
		return c.decodeRegisterMemory(OpCallWithinDirect)
	case cur == callIndirectWithinSeg8 && next3 == callIndirectWithinSeg3:
		return c.decodeRegisterMemory(OpCallWithinDirect)
	case cur == callIndirectWithinSeg8 && next3 == jmpIndirectWithinSeg3:
		return c.decodeRegisterMemory(OpJmpIndirectWithinSegment)
	case cur == retWithinSeg:
		return c.decodeProcControl(OpRetWithinSegment)
	case cur == jeOpcode:
		return c.decodeDirectSegShort(OpJe)
	case cur == jlOpcode:
		return c.decodeDirectSegShort(OpJl)
	case cur == jleOpcode:
		return c.decodeDirectSegShort(OpJle)
	case cur == jbOpcode:
		return c.decodeDirectSegShort(OpJb)
	case cur == jbeOpcode:
		return c.decodeDirectSegShort(OpJbe)
	case cur == jpOpcode:
		return c.decodeDirectSegShort(OpJp)
	case cur == joOpcode:
		return c.decodeDirectSegShort(OpJo)
	case cur == jsOpcode:
		return c.decodeDirectSegShort(OpJs)
	case cur == jneOpcode:
		return c.decodeJmpDisp(OpJne)
	case cur == jnlOpcode:
		return c.decodeJmpDisp(OpJnl)
	case cur == jnleOpcode:
		return c.decodeJmpDisp(OpJnle)
	case cur == jnbOpcode:
		return c.decodeJmpDisp(OpJnb)
	case cur == jnbeOpcode:
		return c.decodeJmpDisp(OpJnbe)
	case cur == jnpOpcode:
		return c.decodeJmpDisp(OpJnp)
	case cur == jnoOpcode:
		return c.decodeJmpDisp(OpJno)
	case cur == jnsOpcode:
		return c.decodeJmpDisp(OpJns)
	case cur == loopOpcode:
		return c.decodeJmpDisp(OpLoop)
	case cur == loopzOpcode:
		return c.decodeJmpDisp(OpLoopz)
	case cur == loopnzOpcode:
		return c.decodeJmpDisp(OpLoopnz)
	case cur == jcxzOpcode:
		return c.decodeJmpDisp(OpJcxz)
	case cur == pushRM:
		return c.decodeRegisterMemory(OpPushRegMem)
	case cur == popRM:
		return c.decodeRegisterMemory(OpPopRegMem)
	case cur == callDirectWithinSeg:
		return c.decodeDirectSeg(OpCallWithinDirect)
	case cur == clcOpcode:
		return c.decodeProcControl(OpClc)
	case cur == cmcOpcode:
		return c.decodeProcControl(OpCmc)
	case cur == cldOpcode:
		return c.decodeProcControl(OpCld)
	case cur == stdOpcode:
		return c.decodeProcControl(OpStd)
	case cur == cliOpcode:
		return c.decodeProcControl(OpCli)
	case cur == stiOpcode:
		return c.decodeProcControl(OpSti)
	case cur == hltOpcode:
		return c.decodeProcControl(OpHlt)
	case cur == cbwOpcode:
		return c.decodeProcControl(OpCbw)
	case cur == cwdOpcode:
		return c.decodeProcControl(OpCwd)
	case cur == retImm16:
		return c.decodeImmedToSp(OpRetWithinSegAddingImmedToSp)
	}

	return c.decodeUndefined()
}
