package emu

import "testing"

// TestCartridge_PadAndTruncate tests images shorter and longer than 32KB
func TestCartridge_PadAndTruncate(t *testing.T) {
	c := NewCartridge([]byte{0x11, 0x22}, discardLogger)
	if got := c.ReadROM(0x0001); got != 0x22 {
		t.Errorf("short ROM byte 1: expected 0x22, got 0x%02X", got)
	}
	if got := c.ReadROM(0x7FFF); got != 0x00 {
		t.Errorf("padding: expected 0x00, got 0x%02X", got)
	}

	big := make([]byte, 2*romSize)
	big[0x7FFF] = 0xAA
	big[0x8000] = 0xBB
	c = NewCartridge(big, discardLogger)
	if got := c.ReadROM(0x7FFF); got != 0xAA {
		t.Errorf("last byte: expected 0xAA, got 0x%02X", got)
	}
	if got := c.ReadROM(0x0000); got != 0x00 {
		t.Errorf("truncated image wrapped: got 0x%02X at 0x0000", got)
	}
}

// TestCartridge_Header tests header parsing and size decoding
func TestCartridge_Header(t *testing.T) {
	rom := createTestROM(nil)
	rom[0x0147] = 0x13
	rom[0x0148] = 0x02
	rom[0x0149] = 0x03
	h := ParseHeader(rom)

	if h.Title != "TESTROM" {
		t.Errorf("Title: expected TESTROM, got %q", h.Title)
	}
	if h.ROMSize() != 128*1024 {
		t.Errorf("ROMSize: expected 131072, got %d", h.ROMSize())
	}
	if h.RAMSize() != 32*1024 {
		t.Errorf("RAMSize: expected 32768, got %d", h.RAMSize())
	}
	if !h.HasBattery() {
		t.Error("type 0x13 should have a battery")
	}

	if ParseHeader([]byte{1, 2, 3}) != (Header{}) {
		t.Error("short image produced a non-empty header")
	}
}

// TestCartridge_HeaderChecksum tests the checksum against a known header
func TestCartridge_HeaderChecksum(t *testing.T) {
	rom := make([]byte, 0x150)
	// All-zero header: 25 bytes each subtract 1
	if got := ComputeHeaderChecksum(rom); got != 0xE7 {
		t.Errorf("zero header: expected 0xE7, got 0x%02X", got)
	}
	rom = createTestROM(nil)
	if got := ComputeHeaderChecksum(rom); got != rom[0x014D] {
		t.Errorf("test ROM: expected 0x%02X, got 0x%02X", rom[0x014D], got)
	}
}

// TestCartridge_RAM tests external RAM sizing and the 8KB cap
func TestCartridge_RAM(t *testing.T) {
	testCases := []struct {
		code uint8
		size int
	}{
		{0x00, 0},
		{0x01, 0},
		{0x02, 0x2000},
		{0x03, 0x2000},
		{0x04, 0x2000},
	}

	for _, tc := range testCases {
		rom := createTestROM(nil)
		rom[0x0149] = tc.code
		c := NewCartridge(rom, discardLogger)
		if got := len(c.RAM()); got != tc.size {
			t.Errorf("code 0x%02X: expected %d bytes, got %d", tc.code, tc.size, got)
		}
		if c.HasRAM() != (tc.size > 0) {
			t.Errorf("code 0x%02X: HasRAM mismatch", tc.code)
		}
	}

	c := NewCartridge(createTestROM(nil), discardLogger)
	if _, ok := c.ReadRAM(0xA000); ok {
		t.Error("ReadRAM without RAM reported ok")
	}
	if c.WriteRAM(0xA000, 1) {
		t.Error("WriteRAM without RAM reported ok")
	}
}
