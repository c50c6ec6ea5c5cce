//go:build !libretro && !ios

// Package ebiten provides an Ebiten-specific wrapper for the emulator.
package ebiten

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/user-none/edmg/emu"
)

// Emulator wraps emu.Emulator with Ebiten-specific functionality
type Emulator struct {
	*emu.Emulator

	offscreen *ebiten.Image           // Offscreen buffer for native resolution rendering
	tiles     *ebiten.Image           // Tile sheet debug view
	tilePix   []byte                  // RGBA staging buffer for the tile sheet
	drawOpts  ebiten.DrawImageOptions // Pre-allocated draw options to avoid per-frame allocation
}

// NewEmulator creates a new emulator instance with Ebiten rendering.
func NewEmulator(rom []byte, region emu.Region) (*Emulator, error) {
	base, err := emu.NewEmulator(rom, region)
	if err != nil {
		return nil, err
	}
	return &Emulator{Emulator: &base}, nil
}

// DrawToScreen renders the emulator framebuffer to the given screen,
// scaled to fit and centered. With showTiles the tile sheet is drawn
// instead.
func (e *Emulator) DrawToScreen(screen *ebiten.Image, showTiles bool) {
	var src *ebiten.Image
	if showTiles {
		src = e.TileSheetImage()
	} else {
		src = e.GetFramebufferImage()
	}
	if src == nil {
		return
	}

	// Calculate scaling to fit window while preserving aspect ratio
	screenW, screenH := screen.Bounds().Dx(), screen.Bounds().Dy()
	nativeW := float64(src.Bounds().Dx())
	nativeH := float64(src.Bounds().Dy())
	scale := min(float64(screenW)/nativeW, float64(screenH)/nativeH)

	offsetX := (float64(screenW) - nativeW*scale) / 2
	offsetY := (float64(screenH) - nativeH*scale) / 2

	e.drawOpts = ebiten.DrawImageOptions{}
	e.drawOpts.GeoM.Scale(scale, scale)
	e.drawOpts.GeoM.Translate(offsetX, offsetY)
	e.drawOpts.Filter = ebiten.FilterNearest
	screen.DrawImage(src, &e.drawOpts)
}

func (e *Emulator) Layout(outsideWidth, outsideHeight int) (int, int) {
	// Return window size so we control scaling in Draw()
	return outsideWidth, outsideHeight
}

// GetFramebufferImage returns the last completed frame as an ebiten.Image
// at native resolution.
func (e *Emulator) GetFramebufferImage() *ebiten.Image {
	if e.offscreen == nil {
		e.offscreen = ebiten.NewImage(emu.ScreenWidth, emu.ScreenHeight)
	}

	fb := e.GetFramebuffer()
	requiredLen := e.GetFramebufferStride() * e.GetActiveHeight()
	if len(fb) < requiredLen {
		return nil
	}
	e.offscreen.WritePixels(fb[:requiredLen])
	return e.offscreen
}

// TileSheetImage returns all 384 cached tiles as a 16x24 tile grid.
func (e *Emulator) TileSheetImage() *ebiten.Image {
	if e.tiles == nil {
		e.tiles = ebiten.NewImage(emu.TileSheetWidth, emu.TileSheetHeight)
		e.tilePix = make([]byte, emu.TileSheetWidth*emu.TileSheetHeight*4)
	}

	for i, px := range e.TileSheet() {
		o := i * 4
		e.tilePix[o] = uint8(px >> 16)
		e.tilePix[o+1] = uint8(px >> 8)
		e.tilePix[o+2] = uint8(px)
		e.tilePix[o+3] = uint8(px >> 24)
	}
	e.tiles.WritePixels(e.tilePix)
	return e.tiles
}
