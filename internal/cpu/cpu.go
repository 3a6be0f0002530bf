// Package cpu implements the ARM7TDMI processor core of the GBA.
//
// Only the ARM instruction state is modelled. The processor keeps the
// two-slot prefetch pipeline of the real part: while an instruction
// executes, R15 points two instructions (8 bytes) ahead of it.
package cpu

// ROMBase is the execution entry point: the first word of cartridge ROM
const ROMBase = 0x08000000

// CPSR flag bits
const (
	flagN = 1 << 31
	flagZ = 1 << 30
	flagC = 1 << 29
	flagV = 1 << 28
)

// Processor mode numbers held in CPSR bits 4..0. Mode switching on
// exception entry is not implemented; the banked storage exists so the
// register file is complete.
const (
	modeUser   = 0x10
	modeFIQ    = 0x11
	modeIRQ    = 0x12
	modeSVC    = 0x13
	modeABT    = 0x17
	modeUND    = 0x1B
	modeSystem = 0x1F

	modeMask = 0x1F
)

// Condition codes this core evaluates
const (
	condEQ = 0x0
	condNE = 0x1
	condLT = 0xB
	condAL = 0xE
	condNV = 0xF
)

// Bus is the memory interface the CPU executes against
type Bus interface {
	ReadByte(address uint32) uint8
	ReadHalf(address uint32) uint32
	ReadWord(address uint32) uint32
	WriteByte(address uint32, value uint8)
	WriteHalf(address uint32, value uint32)
	WriteWord(address uint32, value uint32)
}

// registers is the ARM7TDMI register file: R0-R12, banked R13/R14 per
// processor mode, the program counter, CPSR, and the saved PSRs.
type registers struct {
	r [13]uint32

	r13    uint32
	r13FIQ uint32
	r13SVC uint32
	r13ABT uint32
	r13UND uint32
	r13IRQ uint32

	r14    uint32
	r14FIQ uint32
	r14SVC uint32
	r14ABT uint32
	r14UND uint32
	r14IRQ uint32

	pc uint32

	cpsr uint32

	spsrFIQ uint32
	spsrSVC uint32
	spsrABT uint32
	spsrIRQ uint32
	spsrUND uint32
}

func (r *registers) flag(bit uint32) bool {
	return r.cpsr&bit != 0
}

func (r *registers) setFlag(bit uint32, set bool) {
	if set {
		r.cpsr |= bit
	} else {
		r.cpsr &^= bit
	}
}

// CPU is the ARM7TDMI interpreter
type CPU struct {
	regs  registers
	pipe  [2]uint32
	bus   Bus
	table *[4096]armInstruction
}

// New creates a CPU attached to the given bus and resets it to the
// power-on state
func New(bus Bus) *CPU {
	c := &CPU{
		bus:   bus,
		table: newDispatchTable(),
	}
	c.Reset()
	return c
}

// Reset restores the power-on state: all registers zero, CPSR zero, PC at
// the start of cartridge ROM with the pipeline preloaded so the prefetch
// invariants hold before the first step.
func (c *CPU) Reset() {
	c.regs = registers{}
	c.regs.pc = ROMBase
	c.reloadPipeline()
	c.regs.pc += 4
}

// Step executes one instruction per cycle for the given number of cycles.
// Execution stops at the first undecodable or unimplemented instruction.
func (c *CPU) Step(cycles int) error {
	for i := 0; i < cycles; i++ {
		instr := c.pipe[0]
		c.pipe[0] = c.pipe[1]
		c.pipe[1] = c.bus.ReadWord(c.regs.pc)

		passed, known := c.condPassed(instr >> 28)
		if !known {
			return &UnimplementedConditionError{Cond: instr >> 28, PC: c.executingPC(), Instr: instr}
		}
		if passed {
			if err := c.table[armHash(instr)].handler(c, instr); err != nil {
				return err
			}
		}
		c.regs.pc += 4
	}
	return nil
}

// reloadPipeline refills both prefetch slots after a control transfer. The
// step loop adds the final 4 to the PC, leaving it 8 bytes past the branch
// target when the target executes.
func (c *CPU) reloadPipeline() {
	c.pipe[0] = c.bus.ReadWord(c.regs.pc)
	c.pipe[1] = c.bus.ReadWord(c.regs.pc + 4)
	c.regs.pc += 4
}

// executingPC returns the address of the instruction currently executing,
// undoing the prefetch offset
func (c *CPU) executingPC() uint32 {
	return c.regs.pc - 8
}

// condPassed evaluates a condition field against the CPSR flags. The
// second result is false for condition codes this core does not model.
func (c *CPU) condPassed(cond uint32) (bool, bool) {
	switch cond {
	case condEQ:
		return c.regs.flag(flagZ), true
	case condNE:
		return !c.regs.flag(flagZ), true
	case condLT:
		return c.regs.flag(flagN) != c.regs.flag(flagV), true
	case condAL:
		return true, true
	case condNV:
		return false, true
	}
	return false, false
}

// reg reads a register in the active bank
func (c *CPU) reg(n uint32) uint32 {
	switch {
	case n < 13:
		return c.regs.r[n]
	case n == 13:
		return c.regs.r13
	case n == 14:
		return c.regs.r14
	default:
		return c.regs.pc
	}
}

// setReg writes a register in the active bank
func (c *CPU) setReg(n uint32, value uint32) {
	switch {
	case n < 13:
		c.regs.r[n] = value
	case n == 13:
		c.regs.r13 = value
	case n == 14:
		c.regs.r14 = value
	default:
		c.regs.pc = value
	}
}

// spsr returns the saved PSR of the current mode. User and System mode
// have no SPSR; accesses fall back to the CPSR.
func (c *CPU) spsr() *uint32 {
	switch c.regs.cpsr & modeMask {
	case modeFIQ:
		return &c.regs.spsrFIQ
	case modeIRQ:
		return &c.regs.spsrIRQ
	case modeSVC:
		return &c.regs.spsrSVC
	case modeABT:
		return &c.regs.spsrABT
	case modeUND:
		return &c.regs.spsrUND
	default:
		return &c.regs.cpsr
	}
}

// setNZ sets the Negative and Zero flags from a result
func (c *CPU) setNZ(result uint32) {
	c.regs.setFlag(flagN, result&0x80000000 != 0)
	c.regs.setFlag(flagZ, result == 0)
}

// Reg returns the value of register n, for the embedding system and tests
func (c *CPU) Reg(n int) uint32 {
	return c.reg(uint32(n))
}

// SetReg sets register n, for the embedding system and tests
func (c *CPU) SetReg(n int, value uint32) {
	c.setReg(uint32(n), value)
}

// PC returns the program counter. While an instruction executes it reads
// 8 bytes past that instruction's address.
func (c *CPU) PC() uint32 {
	return c.regs.pc
}

// CPSR returns the current program status register
func (c *CPU) CPSR() uint32 {
	return c.regs.cpsr
}

// SetCPSR replaces the current program status register
func (c *CPU) SetCPSR(value uint32) {
	c.regs.cpsr = value
}
