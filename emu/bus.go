package emu

import "log/slog"

// Bus is the CPU's view of the system. Every Read and Write costs one
// M-cycle; Tick spends an M-cycle without an access.
type Bus interface {
	Read(addr uint16) uint8
	Write(addr uint16, v uint8)
	Tick()
	Interrupts() *InterruptController
}

const oamSize = 0xA0

// DMGBus routes CPU accesses to their owning components and advances the
// timer, PPU, serial port and OAM DMA by one M-cycle per access.
type DMGBus struct {
	cart   *Cartridge
	mem    *Memory
	ppu    *PPU
	timer  *Timer
	ic     *InterruptController
	joypad *Joypad
	serial *Serial
	sound  *Sound

	cycles uint64

	// OAM DMA
	dmaReg    uint8
	dmaSource uint16
	dmaIndex  int
	dmaActive bool

	logger *slog.Logger
}

// NewDMGBus creates a bus that owns all of the given components.
func NewDMGBus(cart *Cartridge, ppu *PPU, timer *Timer, ic *InterruptController, logger *slog.Logger) *DMGBus {
	return &DMGBus{
		cart:   cart,
		mem:    NewMemory(),
		ppu:    ppu,
		timer:  timer,
		ic:     ic,
		joypad: NewJoypad(),
		serial: NewSerial(),
		sound:  NewSound(),
		dmaReg: 0xFF,
		logger: logger,
	}
}

// Read advances one M-cycle, then returns the byte at addr.
func (b *DMGBus) Read(addr uint16) uint8 {
	b.Tick()
	if b.dmaBlocks(addr) {
		return 0xFF
	}
	return b.Peek(addr)
}

// Write advances one M-cycle, then stores v at addr.
func (b *DMGBus) Write(addr uint16, v uint8) {
	b.Tick()
	if b.dmaBlocks(addr) {
		return
	}
	b.Poke(addr, v)
}

// dmaBlocks reports whether a CPU access to addr is shut out by a running
// OAM DMA transfer.
func (b *DMGBus) dmaBlocks(addr uint16) bool {
	return b.dmaActive && addr >= 0xFE00 && addr < 0xFEA0
}

// Tick advances every clocked component by one M-cycle.
func (b *DMGBus) Tick() {
	b.cycles++

	if b.timer.Tick() {
		b.ic.Request(IntTimer)
	}

	b.ppu.Step()
	if b.ppu.TakeVBlankIRQ() {
		b.ic.Request(IntVBlank)
	}
	if b.ppu.TakeSTATIRQ() {
		b.ic.Request(IntSTAT)
	}

	if b.serial.Tick() {
		b.ic.Request(IntSerial)
	}

	if b.dmaActive {
		src := b.dmaSource + uint16(b.dmaIndex)
		if src >= 0xE000 {
			// Sources past WRAM read the echo of it
			src -= 0x2000
		}
		b.ppu.dmaWrite(b.dmaIndex, b.Peek(src))
		b.dmaIndex++
		if b.dmaIndex == oamSize {
			b.dmaActive = false
		}
	}
}

// Peek returns the byte at addr without advancing the clock.
func (b *DMGBus) Peek(addr uint16) uint8 {
	switch {
	case addr < 0x8000:
		return b.cart.ReadROM(addr)
	case addr < 0xA000:
		return b.ppu.ReadVRAM(addr)
	case addr < 0xC000:
		if v, ok := b.cart.ReadRAM(addr); ok {
			return v
		}
	case addr < 0xFE00:
		return b.mem.Get(addr)
	case addr < 0xFEA0:
		return b.ppu.ReadOAM(addr)
	case addr < 0xFF00:
		// Unusable area
		return 0xFF
	case addr == regP1:
		return b.joypad.Read()
	case addr == regSB || addr == regSC:
		return b.serial.Read(addr)
	case addr >= regDIV && addr <= regTAC:
		return b.timer.Read(addr)
	case addr == regIF:
		return b.ic.ReadIF()
	case soundMapped(addr):
		return b.sound.Read(addr)
	case addr == regDMA:
		return b.dmaReg
	case addr >= regLCDC && addr <= regWX:
		return b.ppu.ReadRegister(addr)
	case addr >= 0xFF80 && addr < 0xFFFF:
		return b.mem.Get(addr)
	case addr == regIE:
		return b.ic.ReadIE()
	}

	b.logger.Debug("read from unmapped address", "addr", hex16(addr))
	return 0xFF
}

// Poke stores v at addr without advancing the clock.
func (b *DMGBus) Poke(addr uint16, v uint8) {
	switch {
	case addr < 0x8000:
		// ROM, no controller to receive the write
		return
	case addr < 0xA000:
		b.ppu.WriteVRAM(addr, v)
		return
	case addr < 0xC000:
		if b.cart.WriteRAM(addr, v) {
			return
		}
	case addr < 0xFE00:
		b.mem.Set(addr, v)
		return
	case addr < 0xFEA0:
		b.ppu.WriteOAM(addr, v)
		return
	case addr < 0xFF00:
		return
	case addr == regP1:
		if b.joypad.Write(v) {
			b.ic.Request(IntJoypad)
		}
		return
	case addr == regSB || addr == regSC:
		b.serial.Write(addr, v)
		return
	case addr >= regDIV && addr <= regTAC:
		b.timer.Write(addr, v)
		return
	case addr == regIF:
		b.ic.WriteIF(v)
		return
	case soundMapped(addr):
		b.sound.Write(addr, v)
		return
	case addr == regDMA:
		b.startDMA(v)
		return
	case addr >= regLCDC && addr <= regWX:
		b.ppu.WriteRegister(addr, v)
		return
	case addr >= 0xFF80 && addr < 0xFFFF:
		b.mem.Set(addr, v)
		return
	case addr == regIE:
		b.ic.WriteIE(v)
		return
	}

	b.logger.Debug("write to unmapped address", "addr", hex16(addr), "value", v)
}

// startDMA begins copying 160 bytes from v<<8 into OAM, one per M-cycle.
func (b *DMGBus) startDMA(v uint8) {
	b.dmaReg = v
	b.dmaSource = uint16(v) << 8
	b.dmaIndex = 0
	b.dmaActive = true
}

// DMAActive reports whether an OAM DMA transfer is in progress.
func (b *DMGBus) DMAActive() bool {
	return b.dmaActive
}

// TakeFrameReady returns and clears the frame complete signal.
func (b *DMGBus) TakeFrameReady() bool {
	return b.ppu.TakeFrameReady()
}

// Interrupts returns the interrupt controller owned by the bus.
func (b *DMGBus) Interrupts() *InterruptController {
	return b.ic
}

// Cycles returns the number of M-cycles elapsed since power on.
func (b *DMGBus) Cycles() uint64 {
	return b.cycles
}

func (b *DMGBus) PPU() *PPU       { return b.ppu }
func (b *DMGBus) Timer() *Timer   { return b.timer }
func (b *DMGBus) Joypad() *Joypad { return b.joypad }
func (b *DMGBus) Serial() *Serial { return b.serial }
func (b *DMGBus) Memory() *Memory { return b.mem }
