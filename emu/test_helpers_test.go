package emu

import (
	"io"
	"log/slog"
)

// discardLogger keeps component warnings out of test output.
var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// createTestROM creates a 32KB ROM with program placed at the 0x0100
// entry point and a valid header. The rest of the image is NOP (0x00).
func createTestROM(program []byte) []byte {
	rom := make([]byte, romSize)
	copy(rom[0x0100:], program)
	copy(rom[0x0134:], "TESTROM")
	rom[0x014D] = ComputeHeaderChecksum(rom)
	return rom
}

// testBus is a flat 64KB memory that counts ticks. It has no devices,
// which keeps CPU tests independent of the timer and PPU.
type testBus struct {
	mem    [0x10000]uint8
	ic     *InterruptController
	ticks  int
	reads  []uint16
	writes []uint16
}

func newTestBus() *testBus {
	return &testBus{ic: NewInterruptController()}
}

func (b *testBus) Read(addr uint16) uint8 {
	b.ticks++
	b.reads = append(b.reads, addr)
	if addr == regIE {
		return b.ic.ReadIE()
	}
	return b.mem[addr]
}

func (b *testBus) Write(addr uint16, v uint8) {
	b.ticks++
	b.writes = append(b.writes, addr)
	if addr == regIE {
		b.ic.WriteIE(v)
		return
	}
	b.mem[addr] = v
}

func (b *testBus) Tick() {
	b.ticks++
}

func (b *testBus) Interrupts() *InterruptController {
	return b.ic
}

func (b *testBus) Peek(addr uint16) uint8 {
	return b.mem[addr]
}

// newTestCPU returns a CPU on a flat bus with program loaded at 0x0100
// and PC/SP set as after boot.
func newTestCPU(program ...byte) (*CPU, *testBus) {
	bus := newTestBus()
	copy(bus.mem[0x0100:], program)
	cpu := NewCPU(bus)
	cpu.SetRegisters(Registers{PC: 0x0100, SP: 0xFFFE})
	return cpu, bus
}

// newTestSystem builds the full bus around a cartridge running program.
func newTestSystem(program ...byte) (*CPU, *DMGBus) {
	cart := NewCartridge(createTestROM(program), discardLogger)
	ppu := NewPPU()
	ppu.SetLogger(discardLogger)
	bus := NewDMGBus(cart, ppu, NewTimer(), NewInterruptController(), discardLogger)
	cpu := NewCPU(bus)
	cpu.SetRegisters(postBootRegisters())
	return cpu, bus
}

// stepN runs n CPU steps and fails on any error.
func stepN(t interface{ Fatalf(string, ...any) }, cpu *CPU, n int) int {
	total := 0
	for i := 0; i < n; i++ {
		c, err := cpu.Step()
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		total += c
	}
	return total
}

// newTestEmulator creates an emulator for program with logging discarded.
func newTestEmulator(program ...byte) *Emulator {
	e, err := NewEmulator(createTestROM(program), RegionNTSC)
	if err != nil {
		panic(err)
	}
	e.SetLogger(discardLogger)
	return &e
}
