package emu

import "testing"

func TestDetectRegionFromROM(t *testing.T) {
	rom := createTestROM(nil)
	region, valid := DetectRegionFromROM(rom)
	if region != RegionNTSC || !valid {
		t.Errorf("valid ROM: expected NTSC/true, got %v/%v", region, valid)
	}

	rom[0x014D]++
	if _, valid := DetectRegionFromROM(rom); valid {
		t.Error("bad checksum reported valid")
	}

	if region, valid := DetectRegionFromROM(nil); region != RegionNTSC || valid {
		t.Errorf("empty ROM: expected NTSC/false, got %v/%v", region, valid)
	}
}

func TestDetectDestinationFromROM(t *testing.T) {
	rom := createTestROM(nil)
	if got := DetectDestinationFromROM(rom); got != DestinationJapan {
		t.Errorf("code 0: expected Japan, got %v", got)
	}
	rom[0x014A] = 0x01
	if got := DetectDestinationFromROM(rom); got != DestinationOverseas {
		t.Errorf("code 1: expected Overseas, got %v", got)
	}
}

func TestGetTimingForRegion(t *testing.T) {
	for _, r := range []Region{RegionNTSC, RegionPAL} {
		timing := GetTimingForRegion(r)
		if timing.CyclesPerFrame != 17556 || timing.Scanlines != 154 {
			t.Errorf("%v: unexpected timing %+v", r, timing)
		}
	}
}
