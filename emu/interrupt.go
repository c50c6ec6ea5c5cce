package emu

import "math/bits"

// Interrupt identifies an interrupt source by its bit position in IF/IE.
// Lower bits have higher priority.
type Interrupt uint8

const (
	IntVBlank Interrupt = iota
	IntSTAT
	IntTimer
	IntSerial
	IntJoypad
)

const interruptMask = 0x1F

func (i Interrupt) String() string {
	switch i {
	case IntVBlank:
		return "VBlank"
	case IntSTAT:
		return "STAT"
	case IntTimer:
		return "Timer"
	case IntSerial:
		return "Serial"
	case IntJoypad:
		return "Joypad"
	default:
		return "Unknown"
	}
}

// Vector returns the handler address for the interrupt.
func (i Interrupt) Vector() uint16 {
	return 0x40 + uint16(i)*8
}

// InterruptController holds the IF (0xFF0F) and IE (0xFFFF) registers.
type InterruptController struct {
	flag   uint8 // IF, pending requests
	enable uint8 // IE
}

// NewInterruptController returns a controller with nothing pending or enabled.
func NewInterruptController() *InterruptController {
	return &InterruptController{}
}

// Request sets the pending bit for the source.
func (ic *InterruptController) Request(i Interrupt) {
	ic.flag |= 1 << i
}

// Runnable reports whether any enabled interrupt is pending.
// It ignores IME; HALT wakes on this regardless of the master enable.
func (ic *InterruptController) Runnable() bool {
	return ic.flag&ic.enable&interruptMask != 0
}

// Highest returns the highest-priority pending and enabled interrupt
// without acknowledging it.
func (ic *InterruptController) Highest() (Interrupt, bool) {
	active := ic.flag & ic.enable & interruptMask
	if active == 0 {
		return 0, false
	}
	return Interrupt(bits.TrailingZeros8(active)), true
}

// Service acknowledges the highest-priority pending and enabled interrupt,
// clearing only its IF bit, and returns its vector. ok is false when nothing
// is left to service.
func (ic *InterruptController) Service() (vector uint16, ok bool) {
	i, ok := ic.Highest()
	if !ok {
		return 0, false
	}
	ic.flag &^= 1 << i
	return i.Vector(), true
}

// ReadIF returns IF. The unused upper bits read as 1.
func (ic *InterruptController) ReadIF() uint8 {
	return ic.flag | 0xE0
}

// WriteIF replaces the pending bits.
func (ic *InterruptController) WriteIF(v uint8) {
	ic.flag = v & interruptMask
}

// ReadIE returns IE.
func (ic *InterruptController) ReadIE() uint8 {
	return ic.enable
}

// WriteIE sets the enabled sources.
func (ic *InterruptController) WriteIE(v uint8) {
	ic.enable = v & interruptMask
}
