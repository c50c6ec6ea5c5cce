package emu

import "testing"

// TestInterrupt_Vectors tests vector addresses for every source
func TestInterrupt_Vectors(t *testing.T) {
	want := map[Interrupt]uint16{
		IntVBlank: 0x40,
		IntSTAT:   0x48,
		IntTimer:  0x50,
		IntSerial: 0x58,
		IntJoypad: 0x60,
	}
	for i, v := range want {
		if got := i.Vector(); got != v {
			t.Errorf("%v vector: expected 0x%02X, got 0x%02X", i, v, got)
		}
	}
}

// TestInterrupt_PriorityAndService tests that Service returns the lowest
// pending bit and clears only that bit
func TestInterrupt_PriorityAndService(t *testing.T) {
	ic := NewInterruptController()
	ic.WriteIE(0x1F)
	ic.Request(IntJoypad)
	ic.Request(IntVBlank)

	if i, ok := ic.Highest(); !ok || i != IntVBlank {
		t.Errorf("Highest: expected VBlank, got %v (%v)", i, ok)
	}
	// Highest is a peek.
	if ic.ReadIF()&0x1F != 0x11 {
		t.Errorf("IF changed by Highest: 0x%02X", ic.ReadIF())
	}

	vec, ok := ic.Service()
	if !ok || vec != 0x40 {
		t.Errorf("Service: expected 0x40, got 0x%02X (%v)", vec, ok)
	}
	if got := ic.ReadIF() & 0x1F; got != 0x10 {
		t.Errorf("IF after service: expected 0x10, got 0x%02X", got)
	}

	vec, ok = ic.Service()
	if !ok || vec != 0x60 {
		t.Errorf("Second service: expected 0x60, got 0x%02X (%v)", vec, ok)
	}
	if _, ok := ic.Service(); ok {
		t.Error("Service with nothing pending returned ok")
	}
}

// TestInterrupt_RunnableRequiresEnable tests the IF & IE gate
func TestInterrupt_RunnableRequiresEnable(t *testing.T) {
	ic := NewInterruptController()
	ic.Request(IntSerial)
	if ic.Runnable() {
		t.Error("Runnable with IE clear")
	}
	ic.WriteIE(1 << IntSerial)
	if !ic.Runnable() {
		t.Error("not Runnable with matching IE")
	}
}

// TestInterrupt_RegisterMasks tests that IF/IE hold five bits and IF reads
// the unused bits as 1
func TestInterrupt_RegisterMasks(t *testing.T) {
	ic := NewInterruptController()
	ic.WriteIF(0xFF)
	ic.WriteIE(0xFF)
	if got := ic.ReadIF(); got != 0xFF {
		t.Errorf("IF: expected 0xFF, got 0x%02X", got)
	}
	if got := ic.ReadIE(); got != 0x1F {
		t.Errorf("IE: expected 0x1F, got 0x%02X", got)
	}
	ic.WriteIF(0x00)
	if got := ic.ReadIF(); got != 0xE0 {
		t.Errorf("IF cleared: expected 0xE0, got 0x%02X", got)
	}
}
