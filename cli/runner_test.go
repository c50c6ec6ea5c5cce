//go:build !libretro

package cli

import (
	"testing"

	emucore "github.com/user-none/eblitui/api"
)

func TestButtonMask(t *testing.T) {
	testCases := []struct {
		name  string
		mask  uint32
		wants uint32
	}{
		{"none", buttonMask(false, false, false, false, false, false, false, false), 0},
		{"up", buttonMask(true, false, false, false, false, false, false, false), 1 << emucore.ButtonUp},
		{"right+A", buttonMask(false, false, false, true, true, false, false, false), 1<<emucore.ButtonRight | 1<<4},
		{"B", buttonMask(false, false, false, false, false, true, false, false), 1 << 5},
		{"select+start", buttonMask(false, false, false, false, false, false, true, true), 1<<6 | 1<<7},
	}

	for _, tc := range testCases {
		if tc.mask != tc.wants {
			t.Errorf("%s: expected 0x%02X, got 0x%02X", tc.name, tc.wants, tc.mask)
		}
	}
}
