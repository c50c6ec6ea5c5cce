package emu

import emucore "github.com/user-none/eblitui/api"

// Region is an alias for emucore.Region so internal code compiles unchanged.
type Region = emucore.Region

const (
	RegionNTSC = emucore.RegionNTSC
	RegionPAL  = emucore.RegionPAL
)

// Timing holds the frame timing constants of the console.
type Timing struct {
	CPUClockHz     int // M-cycle rate of the SM83 (4.194304 MHz / 4)
	Scanlines      int // Total scanlines per frame, including vblank
	FPS            int // Frames per second, rounded from 59.73
	CyclesPerFrame int // M-cycles per frame
}

// DMGTiming is the only timing the handheld has. Every unit sold ran
// from the same 4.194304 MHz crystal regardless of market.
var DMGTiming = Timing{
	CPUClockHz:     1048576,
	Scanlines:      linesPerFrame,
	FPS:            60,
	CyclesPerFrame: CyclesPerFrame,
}

// GetTimingForRegion returns the timing constants for r.
func GetTimingForRegion(r Region) Timing {
	return DMGTiming
}

// DefaultRegion returns the region reported for all cartridges.
func DefaultRegion() Region {
	return RegionNTSC
}

// DetectRegionFromROM reports the region for a ROM. The header
// destination code only separates Japan from overseas, both of which use
// the same timing, so the result is always NTSC. The bool is true when
// the header checksum is valid.
func DetectRegionFromROM(rom []byte) (Region, bool) {
	if len(rom) < 0x150 {
		return RegionNTSC, false
	}
	return RegionNTSC, ComputeHeaderChecksum(rom) == rom[0x14D]
}

// Destination describes the market byte at 0x014A.
type Destination int

const (
	DestinationJapan Destination = iota
	DestinationOverseas
)

func (d Destination) String() string {
	switch d {
	case DestinationJapan:
		return "Japan"
	case DestinationOverseas:
		return "Overseas"
	default:
		return "Unknown"
	}
}

// DetectDestinationFromROM reads the header destination code. Missing
// headers are reported as Japan, the code's zero value.
func DetectDestinationFromROM(rom []byte) Destination {
	if len(rom) < 0x150 || rom[0x14A] == 0 {
		return DestinationJapan
	}
	return DestinationOverseas
}
