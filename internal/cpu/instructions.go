package cpu

import "math/bits"

// Data processing opcode numbers
const (
	opADD = 0x4
	opTST = 0x8
	opCMP = 0xA
	opMOV = 0xD
)

// Shift type numbers in operand 2
const (
	shiftLSL = 0
	shiftLSR = 1
	shiftASR = 2
	shiftROR = 3
)

// armUnknown is the handler for every dispatch key outside the decodable
// instruction space
func armUnknown(c *CPU, instr uint32) error {
	return &DecodeUnknownError{PC: c.executingPC(), Instr: instr}
}

// armDataProcessing executes the ADD/TST/CMP/MOV family with the full
// operand-2 barrel shifter. Writing R15 reloads the pipeline.
func armDataProcessing(c *CPU, instr uint32) error {
	op := instr >> 21 & 0xF
	setFlags := instr&(1<<20) != 0
	rn := instr >> 16 & 0xF
	rd := instr >> 12 & 0xF

	carryIn := c.regs.flag(flagC)
	shifterCarry := carryIn
	var op2 uint32

	if instr&(1<<25) != 0 {
		// 8-bit immediate rotated right by twice the rotate field. A
		// nonzero rotation produces a shifter carry-out.
		value := instr & 0xFF
		rotate := (instr >> 8 & 0xF) * 2
		if rotate != 0 {
			shifterCarry = value>>(rotate-1)&1 != 0
			op2 = bits.RotateLeft32(value, -int(rotate))
		} else {
			op2 = value
		}
	} else {
		op2, shifterCarry = c.shifterOperand(instr, carryIn)
	}

	op1 := c.reg(rn)

	switch op {
	case opADD:
		result := op1 + op2
		c.setReg(rd, result)
		if setFlags && rd != 15 {
			c.setNZ(result)
			c.regs.setFlag(flagC, result < op1)
			c.regs.setFlag(flagV, (op1^result)&(op2^result)&0x80000000 != 0)
		}

	case opTST:
		result := op1 & op2
		c.setNZ(result)
		c.regs.setFlag(flagC, shifterCarry)
		c.regs.setFlag(flagV, (op1^op2)&(op1^result)&0x80000000 != 0)

	case opCMP:
		result := op1 - op2
		c.setNZ(result)
		c.regs.setFlag(flagC, op1 >= op2)
		c.regs.setFlag(flagV, (op1^op2)&(op1^result)&0x80000000 != 0)

	case opMOV:
		c.setReg(rd, op2)
		if setFlags && rd != 15 {
			c.setNZ(op2)
			c.regs.setFlag(flagC, shifterCarry)
		}

	default:
		return &UnimplementedOpcodeError{
			Reason: "data processing opcode",
			PC:     c.executingPC(),
			Instr:  instr,
		}
	}

	if rd == 15 && (op == opADD || op == opMOV) {
		c.reloadPipeline()
	}
	return nil
}

// shifterOperand computes a register-form operand 2, returning the shifted
// value and the barrel shifter carry-out. Bit 4 selects between an
// immediate shift amount and the low byte of Rs.
func (c *CPU) shifterOperand(instr uint32, carryIn bool) (uint32, bool) {
	value := c.reg(instr & 0xF)
	shiftType := instr >> 5 & 0x3

	if instr&(1<<4) != 0 {
		amount := c.reg(instr>>8&0xF) & 0xFF
		return shiftByRegister(shiftType, value, amount, carryIn)
	}
	return shiftByImmediate(shiftType, value, instr>>7&0x1F, carryIn)
}

// shiftByImmediate applies a 5-bit immediate shift with the ARM encodings
// for amount zero: LSR #0 and ASR #0 mean a shift of 32, ROR #0 is RRX.
func shiftByImmediate(shiftType, value, amount uint32, carryIn bool) (uint32, bool) {
	switch shiftType {
	case shiftLSL:
		if amount == 0 {
			return value, carryIn
		}
		return value << amount, value>>(32-amount)&1 != 0

	case shiftLSR:
		if amount == 0 {
			return 0, value&0x80000000 != 0
		}
		return value >> amount, value>>(amount-1)&1 != 0

	case shiftASR:
		if amount == 0 {
			amount = 32
		}
		return shiftASR32(value, amount)

	default: // ROR
		if amount == 0 {
			// RRX: rotate right by one through the carry flag
			result := value >> 1
			if carryIn {
				result |= 0x80000000
			}
			return result, value&1 != 0
		}
		return bits.RotateLeft32(value, -int(amount)), value>>(amount-1)&1 != 0
	}
}

// shiftByRegister applies a shift whose amount comes from the low byte of
// a register. Amount zero leaves the value and carry untouched; for LSL, LSR
// and ASR amounts of 32 and beyond saturate per the ARM barrel shifter
// rules, while ROR takes the amount modulo 32.
func shiftByRegister(shiftType, value, amount uint32, carryIn bool) (uint32, bool) {
	if amount == 0 {
		return value, carryIn
	}

	switch shiftType {
	case shiftLSL:
		switch {
		case amount < 32:
			return value << amount, value>>(32-amount)&1 != 0
		case amount == 32:
			return 0, value&1 != 0
		default:
			return 0, false
		}

	case shiftLSR:
		switch {
		case amount < 32:
			return value >> amount, value>>(amount-1)&1 != 0
		case amount == 32:
			return 0, value&0x80000000 != 0
		default:
			return 0, false
		}

	case shiftASR:
		if amount > 32 {
			amount = 32
		}
		return shiftASR32(value, amount)

	default: // ROR
		amount &= 31
		if amount == 0 {
			return value, value&0x80000000 != 0
		}
		return bits.RotateLeft32(value, -int(amount)), value>>(amount-1)&1 != 0
	}
}

// shiftASR32 arithmetic-shifts right by 1..32, where 32 fills the result
// with the sign bit
func shiftASR32(value, amount uint32) (uint32, bool) {
	if amount >= 32 {
		if value&0x80000000 != 0 {
			return 0xFFFFFFFF, true
		}
		return 0, false
	}
	return uint32(int32(value) >> amount), value>>(amount-1)&1 != 0
}

// armStatusTransfer executes MRS and MSR against the PSR storage. With
// mode switching unimplemented, User and System mode map SPSR accesses to
// the CPSR.
func armStatusTransfer(c *CPU, instr uint32) error {
	useSPSR := instr&(1<<22) != 0

	if instr&(1<<21) == 0 { // MRS
		rd := instr >> 12 & 0xF
		if useSPSR {
			c.setReg(rd, *c.spsr())
		} else {
			c.setReg(rd, c.regs.cpsr)
		}
		return nil
	}

	// MSR
	var value uint32
	if instr&(1<<25) != 0 {
		imm := instr & 0xFF
		rotate := (instr >> 8 & 0xF) * 2
		value = bits.RotateLeft32(imm, -int(rotate))
	} else {
		value = c.reg(instr & 0xF)
	}

	var mask uint32
	for field := uint32(0); field < 4; field++ {
		if instr&(1<<(16+field)) != 0 {
			mask |= 0xFF << (field * 8)
		}
	}

	target := &c.regs.cpsr
	if useSPSR {
		target = c.spsr()
	}
	*target = *target&^mask | value&mask
	return nil
}

// armMultiply executes MUL and MLA
func armMultiply(c *CPU, instr uint32) error {
	rd := instr >> 16 & 0xF
	rn := instr >> 12 & 0xF
	rs := instr >> 8 & 0xF
	rm := instr & 0xF

	result := c.reg(rm) * c.reg(rs)
	if instr&(1<<21) != 0 { // MLA
		result += c.reg(rn)
	}
	c.setReg(rd, result)

	if instr&(1<<20) != 0 {
		c.setNZ(result)
	}
	return nil
}

// armMultiplyLong executes UMULL/UMLAL/SMULL/SMLAL
func armMultiplyLong(c *CPU, instr uint32) error {
	rdHi := instr >> 16 & 0xF
	rdLo := instr >> 12 & 0xF
	rs := instr >> 8 & 0xF
	rm := instr & 0xF

	var result uint64
	if instr&(1<<22) != 0 { // signed
		result = uint64(int64(int32(c.reg(rm))) * int64(int32(c.reg(rs))))
	} else {
		result = uint64(c.reg(rm)) * uint64(c.reg(rs))
	}
	if instr&(1<<21) != 0 { // accumulate
		result += uint64(c.reg(rdHi))<<32 | uint64(c.reg(rdLo))
	}

	c.setReg(rdLo, uint32(result))
	c.setReg(rdHi, uint32(result>>32))

	if instr&(1<<20) != 0 {
		c.regs.setFlag(flagN, result&(1<<63) != 0)
		c.regs.setFlag(flagZ, result == 0)
	}
	return nil
}

// armSingleDataSwap executes SWP and SWPB: an atomic read of [Rn] into Rd
// with Rm written back to the same address
func armSingleDataSwap(c *CPU, instr uint32) error {
	rn := instr >> 16 & 0xF
	rd := instr >> 12 & 0xF
	rm := instr & 0xF

	address := c.reg(rn)
	if instr&(1<<22) != 0 { // byte
		old := uint32(c.bus.ReadByte(address))
		c.bus.WriteByte(address, uint8(c.reg(rm)))
		c.setReg(rd, old)
	} else {
		old := c.bus.ReadWord(address)
		c.bus.WriteWord(address, c.reg(rm))
		c.setReg(rd, old)
	}
	return nil
}

// armSingleDataTransfer executes LDR/LDRB/STR/STRB. Post-indexed forms
// always write the signed offset back to the base; pre-indexed forms only
// with the W bit. A load into the base register wins over the writeback.
func armSingleDataTransfer(c *CPU, instr uint32) error {
	pre := instr&(1<<24) != 0
	up := instr&(1<<23) != 0
	byteAccess := instr&(1<<22) != 0
	writeback := instr&(1<<21) != 0
	load := instr&(1<<20) != 0

	rn := instr >> 16 & 0xF
	rd := instr >> 12 & 0xF

	var offset uint32
	if instr&(1<<25) != 0 {
		// Register offset with an immediate-form shift
		offset, _ = shiftByImmediate(instr>>5&0x3, c.reg(instr&0xF), instr>>7&0x1F, c.regs.flag(flagC))
	} else {
		offset = instr & 0xFFF
	}

	base := c.reg(rn)
	address := base
	if pre {
		address = indexedAddress(base, offset, up)
	}

	if load {
		var value uint32
		if byteAccess {
			value = uint32(c.bus.ReadByte(address))
		} else {
			value = c.bus.ReadWord(address)
		}
		c.writeBackBase(pre, up, writeback, rn, base, offset)
		c.setReg(rd, value)
		if rd == 15 {
			c.reloadPipeline()
		}
	} else {
		value := c.reg(rd)
		if byteAccess {
			c.bus.WriteByte(address, uint8(value))
		} else {
			c.bus.WriteWord(address, value)
		}
		c.writeBackBase(pre, up, writeback, rn, base, offset)
	}
	return nil
}

// armHalfwordTransfer executes the halfword/signed transfer family. Only
// the unsigned halfword form (SH = 01) is modelled; the signed loads
// remain unimplemented.
func armHalfwordTransfer(c *CPU, instr uint32) error {
	pre := instr&(1<<24) != 0
	up := instr&(1<<23) != 0
	writeback := instr&(1<<21) != 0
	load := instr&(1<<20) != 0

	rn := instr >> 16 & 0xF
	rd := instr >> 12 & 0xF

	var offset uint32
	if instr&(1<<22) != 0 {
		// Split 8-bit immediate: bits 11..8 and 3..0
		offset = instr>>4&0xF0 | instr&0xF
	} else {
		offset = c.reg(instr & 0xF)
	}

	base := c.reg(rn)
	address := base
	if pre {
		address = indexedAddress(base, offset, up)
	}

	if instr>>5&0x3 != 0x1 {
		return &UnimplementedOpcodeError{
			Reason: "signed transfer variant",
			PC:     c.executingPC(),
			Instr:  instr,
		}
	}

	if load {
		value := c.bus.ReadHalf(address)
		c.writeBackBase(pre, up, writeback, rn, base, offset)
		c.setReg(rd, value)
		if rd == 15 {
			c.reloadPipeline()
		}
	} else {
		c.bus.WriteHalf(address, c.reg(rd))
		c.writeBackBase(pre, up, writeback, rn, base, offset)
	}
	return nil
}

// indexedAddress applies a signed offset to a base address
func indexedAddress(base, offset uint32, up bool) uint32 {
	if up {
		return base + offset
	}
	return base - offset
}

// writeBackBase commits the indexed address to the base register:
// unconditionally for post-indexed forms, only with the W bit for
// pre-indexed forms.
func (c *CPU) writeBackBase(pre, up, writeback bool, rn, base, offset uint32) {
	if pre && !writeback {
		return
	}
	c.setReg(rn, indexedAddress(base, offset, up))
}

// armBlockTransfer executes LDM/STM over the full 16-bit register list.
// Descending blocks flip the pre bit and pre-drop the base so transfers
// still walk memory upward. Loading R15 reloads the pipeline after the
// block completes.
func armBlockTransfer(c *CPU, instr uint32) error {
	pre := instr&(1<<24) != 0
	up := instr&(1<<23) != 0
	writeback := instr&(1<<21) != 0
	load := instr&(1<<20) != 0

	rn := instr >> 16 & 0xF
	list := uint16(instr & 0xFFFF)

	offset := uint32(bits.OnesCount16(list)) * 4
	base := c.reg(rn)
	address := base
	finalBase := base + offset
	if !up {
		pre = !pre
		address = base - offset
		finalBase = base - offset
	}

	loadedPC := false
	for r := uint32(0); r < 16; r++ {
		if list&(1<<r) == 0 {
			continue
		}
		if pre {
			address += 4
		}
		if load {
			value := c.bus.ReadWord(address)
			c.setReg(r, value)
			if r == 15 {
				loadedPC = true
			}
		} else {
			c.bus.WriteWord(address, c.reg(r))
		}
		if !pre {
			address += 4
		}
	}

	if writeback {
		c.setReg(rn, finalBase)
	}
	if loadedPC {
		c.reloadPipeline()
	}
	return nil
}

// armBranchLink executes B and BL. The 24-bit offset is sign-extended and
// shifted left twice; the link register receives the address of the
// instruction after the branch.
func armBranchLink(c *CPU, instr uint32) error {
	offset := int32(instr<<8) >> 6

	if instr&(1<<24) != 0 {
		c.setReg(14, c.regs.pc-4)
	}

	c.regs.pc += uint32(offset)
	c.reloadPipeline()
	return nil
}

// armBranchExchange executes BX to an ARM-state target. A Thumb target
// (bit 0 set) is outside this core's scope.
func armBranchExchange(c *CPU, instr uint32) error {
	target := c.reg(instr & 0xF)
	if target&1 != 0 {
		return &UnimplementedOpcodeError{
			Reason: "branch into Thumb state",
			PC:     c.executingPC(),
			Instr:  instr,
		}
	}

	c.regs.pc = target &^ 3
	c.reloadPipeline()
	return nil
}
