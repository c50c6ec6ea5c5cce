package emu

import (
	"errors"
	"fmt"
)

var (
	// ErrIllegalOpcode is wrapped by OpcodeError for encodings that do not
	// exist on the SM83 (0xD3, 0xDB, 0xDD, 0xE3, 0xE4, 0xEB-0xED, 0xF4, 0xFC, 0xFD).
	ErrIllegalOpcode = errors.New("illegal opcode")

	// ErrUnimplementedOpcode is wrapped by OpcodeError when the dispatch
	// table has no handler for an opcode.
	ErrUnimplementedOpcode = errors.New("unimplemented opcode")
)

// OpcodeError reports the instruction that faulted the CPU.
type OpcodeError struct {
	PC       uint16
	Opcode   uint8
	Prefixed bool // Opcode follows the 0xCB prefix
	Err      error
}

func (e *OpcodeError) Error() string {
	if e.Prefixed {
		return fmt.Sprintf("%v CB %02X at $%04X", e.Err, e.Opcode, e.PC)
	}
	return fmt.Sprintf("%v %02X at $%04X", e.Err, e.Opcode, e.PC)
}

func (e *OpcodeError) Unwrap() error {
	return e.Err
}

// TraceFunc observes each instruction before it executes. regs holds the
// register state with PC pointing at the opcode.
type TraceFunc func(pc uint16, opcode uint8, regs Registers)

// CPU is the SM83 instruction engine. All memory traffic goes through the
// bus, which advances the rest of the system one M-cycle per access.
type CPU struct {
	reg Registers
	bus Bus

	ime      bool
	imeDelay int // EI countdown; IME is set when it reaches zero
	halted   bool
	haltBug  bool

	// Current instruction, for fault reporting
	opPC   uint16
	opcode uint8

	cycles int // M-cycles spent in the current Step
	err    error
	trace  TraceFunc
}

// NewCPU creates a CPU attached to bus with zeroed registers.
func NewCPU(bus Bus) *CPU {
	return &CPU{bus: bus}
}

// Registers returns a copy of the register file.
func (c *CPU) Registers() Registers {
	return c.reg
}

// SetRegisters replaces the register file. The low nibble of F is cleared.
func (c *CPU) SetRegisters(r Registers) {
	r.F &= 0xF0
	c.reg = r
}

// IME reports the interrupt master enable.
func (c *CPU) IME() bool {
	return c.ime
}

// Halted reports whether the CPU is waiting in HALT.
func (c *CPU) Halted() bool {
	return c.halted
}

// Err returns the fault that stopped the CPU, if any.
func (c *CPU) Err() error {
	return c.err
}

// SetTraceHook installs fn to observe each instruction. nil disables tracing.
func (c *CPU) SetTraceHook(fn TraceFunc) {
	c.trace = fn
}

// Bus access helpers. Every call costs one M-cycle.

func (c *CPU) read(addr uint16) uint8 {
	c.cycles++
	return c.bus.Read(addr)
}

func (c *CPU) write(addr uint16, v uint8) {
	c.cycles++
	c.bus.Write(addr, v)
}

func (c *CPU) tick() {
	c.cycles++
	c.bus.Tick()
}

func (c *CPU) fetch() uint8 {
	v := c.read(c.reg.PC)
	c.reg.PC++
	return v
}

func (c *CPU) fetch16() uint16 {
	lo := c.fetch()
	hi := c.fetch()
	return uint16(hi)<<8 | uint16(lo)
}

// push16 spends an internal cycle, then writes the high byte first.
func (c *CPU) push16(v uint16) {
	c.tick()
	c.reg.SP--
	c.write(c.reg.SP, uint8(v>>8))
	c.reg.SP--
	c.write(c.reg.SP, uint8(v))
}

func (c *CPU) pop16() uint16 {
	lo := c.read(c.reg.SP)
	c.reg.SP++
	hi := c.read(c.reg.SP)
	c.reg.SP++
	return uint16(hi)<<8 | uint16(lo)
}

// Step executes one instruction, dispatches one interrupt, or idles one
// M-cycle in HALT. It returns the M-cycles consumed. Once an opcode
// faults, every later call returns the same error without running.
func (c *CPU) Step() (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	c.cycles = 0
	ic := c.bus.Interrupts()

	if c.halted {
		if !ic.Runnable() {
			c.tick()
			return c.cycles, nil
		}
		c.halted = false
	}

	if c.ime && ic.Runnable() {
		c.dispatchInterrupt(ic)
		return c.cycles, nil
	}

	c.opPC = c.reg.PC
	if c.trace != nil {
		regs := c.reg
		c.trace(c.opPC, c.peekOpcode(), regs)
	}

	c.opcode = c.fetch()
	if c.haltBug {
		// The byte after HALT is read twice.
		c.haltBug = false
		c.reg.PC--
	}

	op := baseOps[c.opcode]
	if op == nil {
		c.fault(ErrUnimplementedOpcode, false)
		return c.cycles, c.err
	}
	op(c)
	if c.err != nil {
		return c.cycles, c.err
	}

	if c.imeDelay > 0 {
		c.imeDelay--
		if c.imeDelay == 0 {
			c.ime = true
		}
	}
	return c.cycles, nil
}

// peekOpcode returns the byte at PC for tracing when the bus supports
// uncounted reads, and 0 otherwise.
func (c *CPU) peekOpcode() uint8 {
	if p, ok := c.bus.(interface{ Peek(uint16) uint8 }); ok {
		return p.Peek(c.reg.PC)
	}
	return 0
}

// dispatchInterrupt pushes PC and jumps to the vector of the highest
// priority pending interrupt. The vector is chosen after the push, so a
// push that clears IE leaves nothing to service and PC ends up at 0.
func (c *CPU) dispatchInterrupt(ic *InterruptController) {
	c.ime = false
	c.imeDelay = 0
	c.tick()
	c.tick()
	ret := c.reg.PC
	if c.haltBug {
		// EI; HALT with an interrupt pending returns to the HALT.
		c.haltBug = false
		ret--
	}
	c.push16(ret)
	vector, ok := ic.Service()
	if !ok {
		vector = 0x0000
	}
	c.reg.PC = vector
}

func (c *CPU) fault(err error, prefixed bool) {
	c.err = &OpcodeError{PC: c.opPC, Opcode: c.opcode, Prefixed: prefixed, Err: err}
}

// halt enters the halted state. With IME clear and an interrupt already
// pending the CPU does not halt and instead repeats the next opcode byte.
func (c *CPU) halt() {
	if !c.ime && c.bus.Interrupts().Runnable() {
		c.haltBug = true
		return
	}
	c.halted = true
}
