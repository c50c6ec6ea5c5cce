// Package emuios provides a gomobile-compatible interface to the emulator.
package emuios

import (
	"fmt"
	"hash/crc32"
	"path/filepath"

	"github.com/spf13/afero"
	emucore "github.com/user-none/eblitui/api"
	"github.com/user-none/edmg/emu"
	"github.com/user-none/edmg/romloader"
)

// ExtractResult contains the result of ROM extraction
type ExtractResult struct {
	Crc32    string // Hex string, e.g., "AABBCCDD"
	Filename string // Original filename from archive, e.g., "Tetris (World).gb"
}

// fs is the filesystem ROM paths are resolved against.
var fs afero.Fs = afero.NewOsFs()

// currentEmu holds the emulator state (unexported)
var currentEmu *emulatorState

type emulatorState struct {
	emulator  emu.Emulator
	audioData []byte
	sramData  []byte
}

func loadROM(path string) ([]byte, string, error) {
	return romloader.New(fs).Load(path)
}

// InitFromPath creates an emulator from a ROM file path.
// Automatically extracts from archives and compressed files if needed.
// Returns true on success, false on error.
func InitFromPath(path string) bool {
	rom, _, err := loadROM(path)
	if err != nil {
		return false
	}

	e, err := emu.NewEmulator(rom, emu.DefaultRegion())
	if err != nil {
		return false
	}
	currentEmu = &emulatorState{emulator: e}
	return true
}

// Close releases the emulator.
func Close() {
	currentEmu = nil
}

// RunFrame executes one frame of emulation.
func RunFrame() {
	if currentEmu == nil {
		return
	}
	currentEmu.emulator.RunFrame()

	// Convert audio samples to bytes
	samples := currentEmu.emulator.GetAudioSamples()
	if len(currentEmu.audioData) != len(samples)*2 {
		currentEmu.audioData = make([]byte, len(samples)*2)
	}
	for i, s := range samples {
		currentEmu.audioData[i*2] = byte(s)
		currentEmu.audioData[i*2+1] = byte(s >> 8)
	}
}

// LastError returns the CPU fault that stopped emulation, or "".
func LastError() string {
	if currentEmu == nil {
		return ""
	}
	if err := currentEmu.emulator.Err(); err != nil {
		return err.Error()
	}
	return ""
}

// FrameWidth returns the display width (always 160).
func FrameWidth() int {
	return emu.ScreenWidth
}

// FrameHeight returns the display height (always 144).
func FrameHeight() int {
	return emu.ScreenHeight
}

// GetFrameData returns the RGBA frame buffer of the last completed frame.
func GetFrameData() []byte {
	if currentEmu == nil {
		return nil
	}
	return currentEmu.emulator.GetFramebuffer()
}

// GetAudioData returns the entire audio buffer.
func GetAudioData() []byte {
	if currentEmu == nil {
		return nil
	}
	return currentEmu.audioData
}

// SetInput sets the controller state.
func SetInput(up, down, left, right, a, b, sel, start bool) {
	if currentEmu == nil {
		return
	}
	buttons := []struct {
		pressed bool
		bit     int
	}{
		{up, int(emucore.ButtonUp)},
		{down, int(emucore.ButtonDown)},
		{left, int(emucore.ButtonLeft)},
		{right, int(emucore.ButtonRight)},
		{a, 4},
		{b, 5},
		{sel, 6},
		{start, 7},
	}
	var mask uint32
	for _, btn := range buttons {
		if btn.pressed {
			mask |= 1 << btn.bit
		}
	}
	currentEmu.emulator.SetInput(0, mask)
}

// SerialOutput returns the text the program has sent over the link port.
func SerialOutput() string {
	if currentEmu == nil {
		return ""
	}
	return string(currentEmu.emulator.SerialOutput())
}

// HasSRAM reports whether the cartridge has battery-backed RAM.
func HasSRAM() bool {
	return currentEmu != nil && currentEmu.emulator.HasSRAM()
}

// PrepareSRAM copies SRAM to internal buffer.
func PrepareSRAM() {
	if currentEmu == nil {
		return
	}
	currentEmu.sramData = currentEmu.emulator.GetSRAM()
}

// SRAMLen returns the length of the prepared SRAM copy.
func SRAMLen() int {
	if currentEmu == nil {
		return 0
	}
	return len(currentEmu.sramData)
}

// SRAMByte returns a single byte from SRAM at index i.
func SRAMByte(i int) int {
	if currentEmu == nil || i < 0 || i >= len(currentEmu.sramData) {
		return 0
	}
	return int(currentEmu.sramData[i])
}

// LoadSRAM loads cartridge RAM. Data of the wrong size is ignored.
func LoadSRAM(data []byte) {
	if currentEmu == nil || len(data) != len(currentEmu.emulator.GetSRAM()) {
		return
	}
	currentEmu.emulator.SetSRAM(data)
}

// GetFPS returns the target frame rate.
func GetFPS() int {
	return emu.DMGTiming.FPS
}

// GetCRC32FromPath calculates the CRC32 checksum of a ROM file.
// Automatically extracts from archives if needed.
// Returns -1 on error.
func GetCRC32FromPath(path string) int64 {
	rom, _, err := loadROM(path)
	if err != nil {
		return -1
	}

	return int64(crc32.ChecksumIEEE(rom))
}

// ExtractAndStoreROM extracts a ROM from an archive (or copies a raw ROM),
// calculates its CRC32, and stores it as {destDir}/{CRC32}.gb.
// If a file with the same CRC32 already exists, it skips writing.
// Returns the CRC32 and original filename on success, or an error.
func ExtractAndStoreROM(srcPath, destDir string) (*ExtractResult, error) {
	rom, filename, err := loadROM(srcPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load ROM: %w", err)
	}

	crcHex := fmt.Sprintf("%08X", crc32.ChecksumIEEE(rom))
	destPath := filepath.Join(destDir, crcHex+".gb")

	// Skip write if file already exists (same CRC = same content)
	if exists, _ := afero.Exists(fs, destPath); exists {
		return &ExtractResult{Crc32: crcHex, Filename: filename}, nil
	}

	if err := afero.WriteFile(fs, destPath, rom, 0644); err != nil {
		return nil, fmt.Errorf("failed to write ROM: %w", err)
	}

	return &ExtractResult{Crc32: crcHex, Filename: filename}, nil
}
