package main

import (
	libretro "github.com/user-none/eblitui/libretro"
	"github.com/user-none/edmg/adapter"
)

func init() {
	libretro.RegisterFactory(&adapter.Factory{}, []libretro.RetropadMapping{
		{RetroID: libretro.JoypadA, BitID: 4},
		{RetroID: libretro.JoypadB, BitID: 5},
		{RetroID: 2, BitID: 6}, // RETRO_DEVICE_ID_JOYPAD_SELECT
		{RetroID: libretro.JoypadStart, BitID: 7},
	})
}

func main() {}
