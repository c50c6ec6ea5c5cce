package emu

// I/O register addresses outside the timer and LCD blocks
const (
	regP1 = 0xFF00
	regSB = 0xFF01
	regSC = 0xFF02
	regIF = 0xFF0F
	regIE = 0xFFFF
)

// Joypad implements the P1 register. Button state is active low and
// selected by writing 0 to bit 4 (directions) or bit 5 (actions).
type Joypad struct {
	dpad    uint8 // bit 0 Right, 1 Left, 2 Up, 3 Down
	buttons uint8 // bit 0 A, 1 B, 2 Select, 3 Start
	sel     uint8 // bits 4-5 as last written
}

func NewJoypad() *Joypad {
	return &Joypad{
		dpad:    0x0F, // All released (active low)
		buttons: 0x0F,
		sel:     0x30,
	}
}

// Read returns P1 with the selected button groups merged into bits 3-0.
func (j *Joypad) Read() uint8 {
	nibble := uint8(0x0F)
	if j.sel&0x10 == 0 {
		nibble &= j.dpad
	}
	if j.sel&0x20 == 0 {
		nibble &= j.buttons
	}
	return 0xC0 | j.sel | nibble
}

// lines returns the P1 input lines, bits 3-0, active low.
func (j *Joypad) lines() uint8 {
	return j.Read() & 0x0F
}

// Write updates the group select bits; the rest of P1 is read-only.
// It returns true if selecting a group with a held button pulled an
// input line low.
func (j *Joypad) Write(v uint8) bool {
	before := j.lines()
	j.sel = v & 0x30
	return before&^j.lines() != 0
}

// Set updates the held buttons. It returns true if an input line of a
// selected group went from high to low, which requests the joypad
// interrupt.
func (j *Joypad) Set(up, down, left, right, a, b, sel, start bool) bool {
	var dpad, buttons uint8 = 0x0F, 0x0F
	if right {
		dpad &^= 0x01
	}
	if left {
		dpad &^= 0x02
	}
	if up {
		dpad &^= 0x04
	}
	if down {
		dpad &^= 0x08
	}
	if a {
		buttons &^= 0x01
	}
	if b {
		buttons &^= 0x02
	}
	if sel {
		buttons &^= 0x04
	}
	if start {
		buttons &^= 0x08
	}

	before := j.lines()
	j.dpad = dpad
	j.buttons = buttons
	return before&^j.lines() != 0
}

// serialTransferCycles is the length of an internally clocked 8-bit
// transfer at 8192 Hz.
const serialTransferCycles = 1024

// Serial implements SB/SC with no link partner attached. Transferred
// bytes are captured so test programs can report over the link port.
type Serial struct {
	sb        uint8
	sc        uint8
	remaining int
	output    []byte
}

func NewSerial() *Serial {
	return &Serial{}
}

func (s *Serial) Read(addr uint16) uint8 {
	if addr == regSB {
		return s.sb
	}
	return s.sc | 0x7E
}

func (s *Serial) Write(addr uint16, v uint8) {
	if addr == regSB {
		s.sb = v
		return
	}
	s.sc = v & 0x81
	// Only internally clocked transfers progress without a partner.
	if s.sc == 0x81 {
		s.output = append(s.output, s.sb)
		s.remaining = serialTransferCycles
	}
}

// Tick advances a transfer by one M-cycle and returns true when it
// completes. With nothing connected the received byte is 0xFF.
func (s *Serial) Tick() bool {
	if s.remaining == 0 {
		return false
	}
	s.remaining--
	if s.remaining > 0 {
		return false
	}
	s.sb = 0xFF
	s.sc &^= 0x80
	return true
}

// Output returns every byte sent over the link port so far.
func (s *Serial) Output() []byte {
	return s.output
}

// Sound is the register bank of the audio unit (0xFF10-0xFF3F, including
// wave RAM). Registers store what is written; no audio is synthesized.
type Sound struct {
	regs [0x30]uint8
}

func NewSound() *Sound {
	return &Sound{}
}

// soundMapped reports whether addr is a sound register or wave RAM.
func soundMapped(addr uint16) bool {
	return (addr >= 0xFF10 && addr <= 0xFF26) || (addr >= 0xFF30 && addr <= 0xFF3F)
}

func (s *Sound) Read(addr uint16) uint8 {
	return s.regs[addr-0xFF10]
}

func (s *Sound) Write(addr uint16, v uint8) {
	s.regs[addr-0xFF10] = v
}
