package emu

import (
	"errors"
	"log/slog"

	emucore "github.com/user-none/eblitui/api"
)

// Compile-time interface checks.
var _ emucore.Emulator = (*Emulator)(nil)
var _ emucore.BatterySaver = (*Emulator)(nil)
var _ emucore.MemoryInspector = (*Emulator)(nil)
var _ emucore.MemoryMapper = (*Emulator)(nil)

const (
	MaxScreenHeight = ScreenHeight
	sampleRate      = 48000
)

// OptionGrayPalette is the core option key selecting neutral gray shades
// over the green LCD tint.
const OptionGrayPalette = "gray_palette"

// ErrEmptyROM is returned when the ROM image has no data at all.
var ErrEmptyROM = errors.New("empty ROM image")

// Emulator contains the emulator core components.
type Emulator struct {
	cpu  *CPU
	bus  *DMGBus
	ppu  *PPU
	cart *Cartridge

	region Region
	timing Timing
	logger *slog.Logger

	// M-cycles the last instruction of a frame ran past the frame budget
	overrun int

	faultLogged bool

	framebuffer []byte  // RGBA copy of the last completed frame
	audioBuffer []int16 // Silent stereo PCM, one frame's worth
}

// NewEmulator creates and initializes the emulator components in the
// state the boot ROM leaves behind.
func NewEmulator(rom []byte, region Region) (Emulator, error) {
	if len(rom) == 0 {
		return Emulator{}, ErrEmptyROM
	}

	logger := slog.Default()
	cart := NewCartridge(rom, logger)
	ppu := NewPPU()
	bus := NewDMGBus(cart, ppu, NewTimer(), NewInterruptController(), logger)
	cpu := NewCPU(bus)

	timing := GetTimingForRegion(region)
	samplesPerFrame := sampleRate / timing.FPS

	e := Emulator{
		cpu:         cpu,
		bus:         bus,
		ppu:         ppu,
		cart:        cart,
		region:      region,
		timing:      timing,
		logger:      logger,
		framebuffer: make([]byte, ScreenWidth*ScreenHeight*4),
		audioBuffer: make([]int16, samplesPerFrame*2),
	}
	e.powerOn()
	e.updateFramebuffer()

	h := cart.Header()
	logger.Info("cartridge loaded",
		"title", h.Title,
		"type", h.CartridgeType,
		"ram", len(cart.RAM()),
		"battery", h.HasBattery())

	return e, nil
}

// powerOn applies the post-boot register and I/O state.
func (e *Emulator) powerOn() {
	e.cpu.SetRegisters(postBootRegisters())
	e.bus.Poke(regIF, 0xE1)
	e.bus.Poke(regBGP, 0xFC)
	e.bus.Poke(regOBP0, 0xFF)
	e.bus.Poke(regOBP1, 0xFF)
	e.bus.Poke(regLCDC, 0x91)
}

// SetLogger replaces the logger used by the core and its components.
func (e *Emulator) SetLogger(l *slog.Logger) {
	e.logger = l
	e.bus.logger = l
	e.ppu.SetLogger(l)
}

// SetTraceHook installs a per-instruction trace callback.
func (e *Emulator) SetTraceHook(fn TraceFunc) {
	e.cpu.SetTraceHook(fn)
}

// RunFrame executes one frame (17556 M-cycles) of emulation. Once the
// CPU faults the machine stays stopped and RunFrame does nothing.
func (e *Emulator) RunFrame() {
	if e.cpu.Err() != nil {
		return
	}

	budget := e.timing.CyclesPerFrame - e.overrun
	spent := 0
	for spent < budget {
		n, err := e.cpu.Step()
		spent += n
		if err != nil {
			if !e.faultLogged {
				e.logger.Error("CPU stopped", "err", err, "cycles", e.bus.Cycles())
				e.faultLogged = true
			}
			break
		}
	}
	e.overrun = max(spent-budget, 0)

	// A disabled LCD shows the blank buffer the PPU cleared on turn-off.
	if e.bus.TakeFrameReady() || !e.ppu.LCDEnabled() {
		e.updateFramebuffer()
	}
}

// Step executes a single CPU step and returns the M-cycles it took.
func (e *Emulator) Step() (int, error) {
	return e.cpu.Step()
}

// Err returns the fault that stopped the CPU, if any.
func (e *Emulator) Err() error {
	return e.cpu.Err()
}

// updateFramebuffer converts the PPU's last frame to RGBA bytes.
func (e *Emulator) updateFramebuffer() {
	for i, px := range e.ppu.Buffer() {
		o := i * 4
		e.framebuffer[o] = uint8(px >> 16)
		e.framebuffer[o+1] = uint8(px >> 8)
		e.framebuffer[o+2] = uint8(px)
		e.framebuffer[o+3] = uint8(px >> 24)
	}
}

// SetInput unpacks a button bitmask. Bits 0-3 are the d-pad, then
// A (4), B (5), Select (6) and Start (7). Only player 0 exists.
func (e *Emulator) SetInput(player int, buttons uint32) {
	if player != 0 {
		return
	}
	pressed := e.bus.Joypad().Set(
		buttons&(1<<emucore.ButtonUp) != 0,
		buttons&(1<<emucore.ButtonDown) != 0,
		buttons&(1<<emucore.ButtonLeft) != 0,
		buttons&(1<<emucore.ButtonRight) != 0,
		buttons&(1<<4) != 0,
		buttons&(1<<5) != 0,
		buttons&(1<<6) != 0,
		buttons&(1<<7) != 0,
	)
	if pressed {
		e.bus.Interrupts().Request(IntJoypad)
	}
}

// GetFramebuffer returns raw RGBA pixel data for the last completed frame.
func (e *Emulator) GetFramebuffer() []byte {
	return e.framebuffer
}

// GetFramebufferStride returns the stride (bytes per row) of the framebuffer.
func (e *Emulator) GetFramebufferStride() int {
	return ScreenWidth * 4
}

// GetActiveHeight returns the display height, which never changes.
func (e *Emulator) GetActiveHeight() int {
	return ScreenHeight
}

// GetRegion returns the emulator's region setting
func (e *Emulator) GetRegion() Region {
	return e.region
}

// GetTiming returns FPS and scanline count.
func (e *Emulator) GetTiming() emucore.Timing {
	return emucore.Timing{
		FPS:       e.timing.FPS,
		Scanlines: e.timing.Scanlines,
	}
}

// SetRegion records the region. Timing is the same for all regions.
func (e *Emulator) SetRegion(region Region) {
	e.region = region
	e.timing = GetTimingForRegion(region)
}

// SetOption applies a core option change identified by key.
func (e *Emulator) SetOption(key string, value string) {
	switch key {
	case OptionGrayPalette:
		if value == "true" {
			e.ppu.SetPalette(&PaletteGray)
		} else {
			e.ppu.SetPalette(&PaletteGreen)
		}
	}
}

// Close releases any resources held by the emulator.
func (e *Emulator) Close() {}

// GetAudioSamples returns one frame of silent 16-bit stereo PCM. The
// sound registers are stored but not synthesized.
func (e *Emulator) GetAudioSamples() []int16 {
	return e.audioBuffer
}

// SerialOutput returns the bytes the program has sent over the link port.
func (e *Emulator) SerialOutput() []byte {
	return e.bus.Serial().Output()
}

// TileSheet renders the tile cache for debugging.
func (e *Emulator) TileSheet() []uint32 {
	return e.ppu.TileSheet()
}

// Header returns the parsed cartridge header.
func (e *Emulator) Header() Header {
	return e.cart.Header()
}

// HasSRAM reports whether the cartridge has battery-backed external RAM.
func (e *Emulator) HasSRAM() bool {
	return e.cart.Header().HasBattery() && e.cart.HasRAM()
}

// GetSRAM returns a copy of the current external RAM contents.
func (e *Emulator) GetSRAM() []byte {
	sram := make([]byte, len(e.cart.RAM()))
	copy(sram, e.cart.RAM())
	return sram
}

// SetSRAM loads external RAM contents into the emulator.
func (e *Emulator) SetSRAM(data []byte) {
	copy(e.cart.RAM(), data)
}

// =============================================================================
// MemoryInspector interface
// =============================================================================

// ReadMemory reads from the CPU address space into buf without advancing
// the clock and returns the number of bytes read. Locked VRAM/OAM read
// as 0xFF just as they do for the CPU.
func (e *Emulator) ReadMemory(addr uint32, buf []byte) uint32 {
	var count uint32
	for i := range buf {
		cur := addr + uint32(i)
		if cur > 0xFFFF {
			return count
		}
		buf[i] = e.bus.Peek(uint16(cur))
		count++
	}
	return count
}

// =============================================================================
// MemoryMapper interface
// =============================================================================

// MemoryMap returns a list of available memory regions with sizes.
func (e *Emulator) MemoryMap() []emucore.MemoryRegion {
	regions := []emucore.MemoryRegion{
		{Type: emucore.MemorySystemRAM, Size: 0x2000},
	}
	if e.cart.HasRAM() {
		regions = append(regions, emucore.MemoryRegion{Type: emucore.MemorySaveRAM, Size: len(e.cart.RAM())})
	}
	return regions
}

// ReadRegion returns a copy of the specified memory region.
func (e *Emulator) ReadRegion(regionType int) []byte {
	switch regionType {
	case emucore.MemorySystemRAM:
		wram := e.bus.Memory().WRAM()
		out := make([]byte, len(wram))
		copy(out, wram[:])
		return out
	case emucore.MemorySaveRAM:
		return e.GetSRAM()
	default:
		return nil
	}
}

// WriteRegion writes data to the specified memory region.
func (e *Emulator) WriteRegion(regionType int, data []byte) {
	switch regionType {
	case emucore.MemorySystemRAM:
		copy(e.bus.Memory().WRAM()[:], data)
	case emucore.MemorySaveRAM:
		e.SetSRAM(data)
	}
}
