package emu

import "log/slog"

const (
	ScreenWidth  = 160
	ScreenHeight = 144
)

// PPU register addresses
const (
	regLCDC = 0xFF40
	regSTAT = 0xFF41
	regSCY  = 0xFF42
	regSCX  = 0xFF43
	regLY   = 0xFF44
	regLYC  = 0xFF45
	regDMA  = 0xFF46
	regBGP  = 0xFF47
	regOBP0 = 0xFF48
	regOBP1 = 0xFF49
	regWY   = 0xFF4A
	regWX   = 0xFF4B
)

// LCDC bits
const (
	lcdcBGEnable     = 0x01
	lcdcOBJEnable    = 0x02
	lcdcOBJSize      = 0x04
	lcdcBGMap        = 0x08
	lcdcTileData     = 0x10
	lcdcWindowEnable = 0x20
	lcdcWindowMap    = 0x40
	lcdcEnable       = 0x80
)

// STAT interrupt source enables
const (
	statHBlankInt = 0x08
	statVBlankInt = 0x10
	statOAMInt    = 0x20
	statLYCInt    = 0x40
)

// Mode is the pixel pipeline state, as reported in STAT bits 1-0.
type Mode uint8

const (
	ModeHBlank   Mode = 0
	ModeVBlank   Mode = 1
	ModeOAMScan  Mode = 2
	ModeTransfer Mode = 3
)

func (m Mode) String() string {
	switch m {
	case ModeHBlank:
		return "HBlank"
	case ModeVBlank:
		return "VBlank"
	case ModeOAMScan:
		return "OAMScan"
	case ModeTransfer:
		return "Transfer"
	default:
		return "Unknown"
	}
}

// Scanline timing in dots. The pixel transfer length is fixed.
const (
	dotsPerMCycle = 4
	oamScanDots   = 80
	transferEnd   = oamScanDots + 172
	dotsPerLine   = 456
	vblankStart   = ScreenHeight
	linesPerFrame = 154
	maxSprites    = 10
)

// CyclesPerFrame is the number of M-cycles in one full frame.
const CyclesPerFrame = dotsPerLine * linesPerFrame / dotsPerMCycle

type tile [8][8]uint8

type sprite struct {
	y, x  int
	tile  uint8
	attr  uint8
	index int
}

// PPU is the DMG pixel processing unit. It owns VRAM, OAM and the LCD
// registers and is stepped once per M-cycle by the bus.
type PPU struct {
	vram  [0x2000]uint8
	oam   [0xA0]uint8
	tiles [384]tile // decoded on every VRAM write to tile data

	lcdc uint8
	stat uint8 // only the interrupt enable bits 3-6
	scy  uint8
	scx  uint8
	ly   uint8
	lyc  uint8
	bgp  uint8
	obp0 uint8
	obp1 uint8
	wy   uint8
	wx   uint8

	mode Mode
	dot  int

	// Window state: the WY latch holds once LY has matched WY this frame,
	// and windowLine counts only the lines the window was actually drawn on.
	windowTriggered bool
	windowLine      int

	sprites     [maxSprites]sprite
	spriteCount int

	bgIndex [ScreenWidth]uint8 // raw BG/window color index of the current line
	back    [ScreenWidth * ScreenHeight]uint32
	front   [ScreenWidth * ScreenHeight]uint32
	palette *[4]uint32

	statLine bool

	// One-shot signals consumed by the bus.
	vblankIRQ  bool
	statIRQ    bool
	frameReady bool

	logger *slog.Logger
}

// NewPPU returns a PPU with the LCD off and the green palette selected.
func NewPPU() *PPU {
	p := &PPU{
		palette: &PaletteGreen,
		logger:  slog.Default(),
	}
	p.clearScreen()
	return p
}

// SetLogger replaces the logger used for rejected register writes.
func (p *PPU) SetLogger(l *slog.Logger) {
	p.logger = l
}

// SetPalette selects the shade colors used for output.
func (p *PPU) SetPalette(pal *[4]uint32) {
	p.palette = pal
}

func (p *PPU) enabled() bool {
	return p.lcdc&lcdcEnable != 0
}

// LCDEnabled reports whether LCDC bit 7 is set.
func (p *PPU) LCDEnabled() bool {
	return p.enabled()
}

// Mode returns the current mode. A disabled LCD reports HBlank.
func (p *PPU) Mode() Mode {
	if !p.enabled() {
		return ModeHBlank
	}
	return p.mode
}

// LY returns the current scanline.
func (p *PPU) LY() uint8 {
	return p.ly
}

// Dot returns the dot position within the current scanline.
func (p *PPU) Dot() int {
	return p.dot
}

// VRAMLocked reports whether the CPU is blocked from VRAM.
func (p *PPU) VRAMLocked() bool {
	return p.enabled() && p.mode == ModeTransfer
}

// OAMLocked reports whether the CPU is blocked from OAM.
func (p *PPU) OAMLocked() bool {
	return p.enabled() && (p.mode == ModeOAMScan || p.mode == ModeTransfer)
}

// Step advances the PPU by one M-cycle (4 dots).
func (p *PPU) Step() {
	if !p.enabled() {
		return
	}

	p.dot += dotsPerMCycle

	switch p.mode {
	case ModeOAMScan:
		if p.dot >= oamScanDots {
			p.scanOAM()
			p.mode = ModeTransfer
		}
	case ModeTransfer:
		if p.dot >= transferEnd {
			p.renderLine()
			p.mode = ModeHBlank
		}
	case ModeHBlank:
		if p.dot >= dotsPerLine {
			p.dot -= dotsPerLine
			p.ly++
			if p.ly == vblankStart {
				p.mode = ModeVBlank
				p.vblankIRQ = true
				p.frameReady = true
				p.front = p.back
			} else {
				p.mode = ModeOAMScan
			}
		}
	case ModeVBlank:
		if p.dot >= dotsPerLine {
			p.dot -= dotsPerLine
			p.ly++
			if p.ly == linesPerFrame {
				p.ly = 0
				p.windowTriggered = false
				p.windowLine = 0
				p.mode = ModeOAMScan
			}
		}
	}

	p.updateStatLine()
}

// updateStatLine raises the STAT interrupt on a rising edge of the
// OR of all enabled STAT sources.
func (p *PPU) updateStatLine() {
	line := false
	switch p.mode {
	case ModeHBlank:
		line = p.stat&statHBlankInt != 0
	case ModeVBlank:
		line = p.stat&statVBlankInt != 0
	case ModeOAMScan:
		line = p.stat&statOAMInt != 0
	}
	if p.stat&statLYCInt != 0 && p.ly == p.lyc {
		line = true
	}
	if line && !p.statLine {
		p.statIRQ = true
	}
	p.statLine = line
}

// TakeVBlankIRQ returns and clears the VBlank interrupt signal.
func (p *PPU) TakeVBlankIRQ() bool {
	v := p.vblankIRQ
	p.vblankIRQ = false
	return v
}

// TakeSTATIRQ returns and clears the STAT interrupt signal.
func (p *PPU) TakeSTATIRQ() bool {
	v := p.statIRQ
	p.statIRQ = false
	return v
}

// TakeFrameReady returns and clears the frame complete signal.
func (p *PPU) TakeFrameReady() bool {
	v := p.frameReady
	p.frameReady = false
	return v
}

// ReadRegister returns the LCD register at addr.
func (p *PPU) ReadRegister(addr uint16) uint8 {
	switch addr {
	case regLCDC:
		return p.lcdc
	case regSTAT:
		v := 0x80 | p.stat | uint8(p.Mode())
		if p.enabled() && p.ly == p.lyc {
			v |= 0x04
		}
		return v
	case regSCY:
		return p.scy
	case regSCX:
		return p.scx
	case regLY:
		return p.ly
	case regLYC:
		return p.lyc
	case regBGP:
		return p.bgp
	case regOBP0:
		return p.obp0
	case regOBP1:
		return p.obp1
	case regWY:
		return p.wy
	case regWX:
		return p.wx
	}
	return 0xFF
}

// WriteRegister stores to the LCD register at addr.
func (p *PPU) WriteRegister(addr uint16, v uint8) {
	switch addr {
	case regLCDC:
		p.writeLCDC(v)
	case regSTAT:
		// Mode and coincidence bits are read-only.
		p.stat = v & 0x78
		if p.enabled() {
			p.updateStatLine()
		}
	case regSCY:
		p.scy = v
	case regSCX:
		p.scx = v
	case regLY:
		// read-only
	case regLYC:
		p.lyc = v
		if p.enabled() {
			p.updateStatLine()
		}
	case regBGP:
		p.bgp = v
	case regOBP0:
		p.obp0 = v
	case regOBP1:
		p.obp1 = v
	case regWY:
		p.wy = v
	case regWX:
		p.wx = v
	}
}

func (p *PPU) writeLCDC(v uint8) {
	wasOn := p.enabled()
	turningOff := wasOn && v&lcdcEnable == 0

	if turningOff && p.mode != ModeVBlank {
		p.logger.Warn("LCD disable outside vblank ignored",
			"ly", p.ly, "mode", p.mode.String())
		v |= lcdcEnable
		turningOff = false
	}

	p.lcdc = v

	switch {
	case turningOff:
		p.ly = 0
		p.dot = 0
		p.mode = ModeHBlank
		p.statLine = false
		p.clearScreen()
	case !wasOn && p.enabled():
		p.ly = 0
		p.dot = 0
		p.mode = ModeOAMScan
		p.windowTriggered = false
		p.windowLine = 0
		p.updateStatLine()
	}
}

// ReadVRAM returns the VRAM byte at addr (0x8000-0x9FFF), or 0xFF while
// locked.
func (p *PPU) ReadVRAM(addr uint16) uint8 {
	if p.VRAMLocked() {
		return 0xFF
	}
	return p.vram[addr&0x1FFF]
}

// WriteVRAM stores to VRAM unless locked.
func (p *PPU) WriteVRAM(addr uint16, v uint8) {
	if p.VRAMLocked() {
		return
	}
	p.storeVRAM(addr&0x1FFF, v)
}

func (p *PPU) storeVRAM(off uint16, v uint8) {
	p.vram[off] = v
	if off < 0x1800 {
		p.decodeTileRow(off)
	}
}

// ReadOAM returns the OAM byte at addr (0xFE00-0xFE9F), or 0xFF while
// locked.
func (p *PPU) ReadOAM(addr uint16) uint8 {
	if p.OAMLocked() {
		return 0xFF
	}
	return p.oam[addr-0xFE00]
}

// WriteOAM stores to OAM unless locked.
func (p *PPU) WriteOAM(addr uint16, v uint8) {
	if p.OAMLocked() {
		return
	}
	p.oam[addr-0xFE00] = v
}

// dmaWrite stores an OAM byte on behalf of the DMA unit, which is not
// subject to the mode locks.
func (p *PPU) dmaWrite(index int, v uint8) {
	p.oam[index] = v
}

// Buffer returns the last completed frame as 0xAARRGGBB pixels.
func (p *PPU) Buffer() []uint32 {
	return p.front[:]
}
