package emu

// Memory holds the console's internal RAM: 8KB work RAM and the
// 127 bytes of high RAM.
//
// Memory map:
//
//	$C000-$DFFF: WRAM
//	$E000-$FDFF: echo of $C000-$DDFF
//	$FF80-$FFFE: HRAM
type Memory struct {
	wram [0x2000]uint8
	hram [0x7F]uint8
}

func NewMemory() *Memory {
	return &Memory{}
}

// Get reads a byte of WRAM (including the echo area) or HRAM.
func (m *Memory) Get(addr uint16) uint8 {
	switch {
	case addr >= 0xC000 && addr < 0xFE00:
		return m.wram[addr&0x1FFF]
	case addr >= 0xFF80 && addr < 0xFFFF:
		return m.hram[addr-0xFF80]
	}
	return 0xFF
}

// Set writes a byte of WRAM (including the echo area) or HRAM.
func (m *Memory) Set(addr uint16, val uint8) {
	switch {
	case addr >= 0xC000 && addr < 0xFE00:
		m.wram[addr&0x1FFF] = val
	case addr >= 0xFF80 && addr < 0xFFFF:
		m.hram[addr-0xFF80] = val
	}
}

// WRAM returns a pointer to work RAM for external access.
func (m *Memory) WRAM() *[0x2000]uint8 {
	return &m.wram
}
