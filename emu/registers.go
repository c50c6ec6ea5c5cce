package emu

import "fmt"

// Flag bits in the F register. The low nibble of F is always zero.
const (
	FlagZ uint8 = 0x80 // Zero
	FlagN uint8 = 0x40 // Subtract
	FlagH uint8 = 0x20 // Half carry
	FlagC uint8 = 0x10 // Carry
)

// Registers holds the SM83 register file.
type Registers struct {
	A, F uint8
	B, C uint8
	D, E uint8
	H, L uint8
	SP   uint16
	PC   uint16
}

// Flag reports whether the given flag bit is set.
func (r *Registers) Flag(f uint8) bool {
	return r.F&f != 0
}

// SetFlag sets or clears a flag bit.
func (r *Registers) SetFlag(f uint8, on bool) {
	if on {
		r.F |= f
	} else {
		r.F &^= f
	}
}

// setFlags replaces all four flags at once.
func (r *Registers) setFlags(z, n, h, c bool) {
	var f uint8
	if z {
		f |= FlagZ
	}
	if n {
		f |= FlagN
	}
	if h {
		f |= FlagH
	}
	if c {
		f |= FlagC
	}
	r.F = f
}

func (r *Registers) AF() uint16 { return uint16(r.A)<<8 | uint16(r.F) }
func (r *Registers) BC() uint16 { return uint16(r.B)<<8 | uint16(r.C) }
func (r *Registers) DE() uint16 { return uint16(r.D)<<8 | uint16(r.E) }
func (r *Registers) HL() uint16 { return uint16(r.H)<<8 | uint16(r.L) }

// SetAF writes AF. The low nibble of F is masked off.
func (r *Registers) SetAF(v uint16) {
	r.A = uint8(v >> 8)
	r.F = uint8(v) & 0xF0
}

func (r *Registers) SetBC(v uint16) { r.B, r.C = uint8(v>>8), uint8(v) }
func (r *Registers) SetDE(v uint16) { r.D, r.E = uint8(v>>8), uint8(v) }
func (r *Registers) SetHL(v uint16) { r.H, r.L = uint8(v>>8), uint8(v) }

// flagString renders the flags as "znhc" with set flags upper-cased.
func (r *Registers) flagString() string {
	b := []byte("znhc")
	for i, f := range []uint8{FlagZ, FlagN, FlagH, FlagC} {
		if r.F&f != 0 {
			b[i] -= 'a' - 'A'
		}
	}
	return string(b)
}

func (r Registers) String() string {
	return fmt.Sprintf("A:%02X F:%s BC:%04X DE:%04X HL:%04X SP:%04X PC:%04X",
		r.A, r.flagString(), r.BC(), r.DE(), r.HL(), r.SP, r.PC)
}

// postBootRegisters returns the register state the DMG boot ROM leaves
// behind when it hands control to the cartridge at 0x0100.
func postBootRegisters() Registers {
	return Registers{
		A: 0x01, F: 0xB0,
		B: 0x00, C: 0x13,
		D: 0x00, E: 0xD8,
		H: 0x01, L: 0x4D,
		SP: 0xFFFE,
		PC: 0x0100,
	}
}
