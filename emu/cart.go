package emu

import (
	"log/slog"
	"strings"
)

// romSize is the size of the flat, unbanked cartridge ROM window.
const romSize = 0x8000

// Largest external RAM reachable without a banking controller.
const maxCartRAM = 0x2000

// Header holds the fields of the cartridge header at 0x0134-0x014F.
type Header struct {
	Title          string
	CartridgeType  uint8
	ROMSizeCode    uint8
	RAMSizeCode    uint8
	HeaderChecksum uint8
}

// ramSizes maps the header RAM size code to bytes.
var ramSizes = map[uint8]int{
	0x00: 0,
	0x01: 0,
	0x02: 8 * 1024,
	0x03: 32 * 1024,
	0x04: 128 * 1024,
	0x05: 64 * 1024,
}

// ParseHeader reads the cartridge header from a full ROM image.
func ParseHeader(rom []byte) Header {
	var h Header
	if len(rom) < 0x150 {
		return h
	}
	h.Title = strings.TrimRight(string(rom[0x134:0x144]), "\x00 ")
	h.CartridgeType = rom[0x147]
	h.ROMSizeCode = rom[0x148]
	h.RAMSizeCode = rom[0x149]
	h.HeaderChecksum = rom[0x14D]
	return h
}

// ROMSize returns the ROM size declared by the header in bytes.
func (h Header) ROMSize() int {
	if h.ROMSizeCode > 8 {
		return 0
	}
	return romSize << h.ROMSizeCode
}

// RAMSize returns the external RAM size declared by the header in bytes.
func (h Header) RAMSize() int {
	return ramSizes[h.RAMSizeCode]
}

// HasBattery reports whether the cartridge type includes a battery.
func (h Header) HasBattery() bool {
	switch h.CartridgeType {
	case 0x03, 0x06, 0x09, 0x0D, 0x0F, 0x10, 0x13, 0x1B, 0x1E, 0x22, 0xFF:
		return true
	}
	return false
}

// ComputeHeaderChecksum calculates the header checksum over 0x0134-0x014C.
func ComputeHeaderChecksum(rom []byte) uint8 {
	var x uint8
	if len(rom) < 0x14D {
		return 0
	}
	for _, b := range rom[0x134:0x14D] {
		x = x - b - 1
	}
	return x
}

// Cartridge is a flat 32KB ROM with optional external RAM at
// 0xA000-0xBFFF. There is no bank switching.
type Cartridge struct {
	rom    [romSize]uint8
	ram    []uint8
	header Header
}

// NewCartridge copies rom into the ROM window. Short images are
// zero-padded and longer ones truncated.
func NewCartridge(rom []byte, logger *slog.Logger) *Cartridge {
	c := &Cartridge{header: ParseHeader(rom)}
	copy(c.rom[:], rom)

	switch {
	case len(rom) < romSize:
		logger.Warn("ROM image shorter than 32KB, zero-padding", "size", len(rom))
	case len(rom) > romSize:
		logger.Warn("ROM image larger than 32KB, truncating; banked cartridges are unsupported",
			"size", len(rom), "type", c.header.CartridgeType)
	}

	if len(rom) >= 0x150 && ComputeHeaderChecksum(rom) != c.header.HeaderChecksum {
		logger.Warn("header checksum mismatch", "title", c.header.Title)
	}

	ramSize := min(c.header.RAMSize(), maxCartRAM)
	if ramSize > 0 {
		c.ram = make([]uint8, ramSize)
	}
	return c
}

// Header returns the parsed cartridge header.
func (c *Cartridge) Header() Header {
	return c.header
}

// ReadROM returns the byte at addr (0x0000-0x7FFF).
func (c *Cartridge) ReadROM(addr uint16) uint8 {
	return c.rom[addr&0x7FFF]
}

// HasRAM reports whether external RAM is present.
func (c *Cartridge) HasRAM() bool {
	return len(c.ram) > 0
}

// ReadRAM returns the external RAM byte at addr (0xA000-0xBFFF) and
// whether it is backed by RAM.
func (c *Cartridge) ReadRAM(addr uint16) (uint8, bool) {
	off := int(addr - 0xA000)
	if off >= len(c.ram) {
		return 0xFF, false
	}
	return c.ram[off], true
}

// WriteRAM stores to external RAM. It reports false if nothing backs addr.
func (c *Cartridge) WriteRAM(addr uint16, v uint8) bool {
	off := int(addr - 0xA000)
	if off >= len(c.ram) {
		return false
	}
	c.ram[off] = v
	return true
}

// RAM returns the external RAM slice.
func (c *Cartridge) RAM() []uint8 {
	return c.ram
}
