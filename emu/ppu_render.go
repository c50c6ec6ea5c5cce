package emu

import "slices"

// DMG shade palettes, lightest first, as 0xAARRGGBB.
var (
	PaletteGreen = [4]uint32{0xFF9BBC0F, 0xFF8BAC0F, 0xFF306230, 0xFF0F380F}
	PaletteGray  = [4]uint32{0xFFFFFFFF, 0xFFD2D2D2, 0xFF828282, 0xFF0A0A0A}
)

// Tile sheet dimensions for the debug view (16x24 tiles).
const (
	TileSheetWidth  = 16 * 8
	TileSheetHeight = 24 * 8
)

// decodeTileRow refreshes the cached row containing VRAM offset off.
func (p *PPU) decodeTileRow(off uint16) {
	base := off &^ 1
	lo := p.vram[base]
	hi := p.vram[base+1]
	t := &p.tiles[off/16]
	row := (off % 16) / 2
	for x := 0; x < 8; x++ {
		bit := 7 - x
		t[row][x] = (lo>>bit)&1 | ((hi>>bit)&1)<<1
	}
}

// bgTile maps a tile map entry to a cache index using the LCDC addressing
// mode: unsigned from 0x8000, or signed around 0x9000.
func (p *PPU) bgTile(idx uint8) int {
	if p.lcdc&lcdcTileData != 0 {
		return int(idx)
	}
	return 256 + int(int8(idx))
}

func shade(pal uint8, ci uint8) uint8 {
	return (pal >> (ci * 2)) & 0x03
}

func (p *PPU) clearScreen() {
	for i := range p.back {
		p.back[i] = p.palette[0]
	}
	p.front = p.back
}

// scanOAM selects up to ten sprites overlapping the current line and
// orders them by X, keeping OAM order for ties.
func (p *PPU) scanOAM() {
	if p.ly == p.wy {
		p.windowTriggered = true
	}

	height := 8
	if p.lcdc&lcdcOBJSize != 0 {
		height = 16
	}

	n := 0
	ly := int(p.ly)
	for i := 0; i < 40 && n < maxSprites; i++ {
		y := int(p.oam[i*4]) - 16
		if ly < y || ly >= y+height {
			continue
		}
		p.sprites[n] = sprite{
			y:     y,
			x:     int(p.oam[i*4+1]) - 8,
			tile:  p.oam[i*4+2],
			attr:  p.oam[i*4+3],
			index: i,
		}
		n++
	}
	p.spriteCount = n

	slices.SortStableFunc(p.sprites[:n], func(a, b sprite) int {
		return a.x - b.x
	})
}

// renderLine composites background, window and sprites for LY into the
// back buffer.
func (p *PPU) renderLine() {
	line := p.back[int(p.ly)*ScreenWidth : int(p.ly+1)*ScreenWidth]

	if p.lcdc&lcdcBGEnable == 0 {
		for x := range line {
			line[x] = p.palette[0]
			p.bgIndex[x] = 0
		}
	} else {
		p.renderBackground(line)
		p.renderWindow(line)
	}

	if p.lcdc&lcdcOBJEnable != 0 {
		p.renderSprites(line)
	}
}

func (p *PPU) renderBackground(line []uint32) {
	mapBase := 0x1800
	if p.lcdc&lcdcBGMap != 0 {
		mapBase = 0x1C00
	}
	y := int(p.scy+p.ly) & 0xFF
	rowBase := mapBase + (y/8)*32
	for x := 0; x < ScreenWidth; x++ {
		px := (int(p.scx) + x) & 0xFF
		t := p.bgTile(p.vram[rowBase+px/8])
		ci := p.tiles[t][y%8][px%8]
		p.bgIndex[x] = ci
		line[x] = p.palette[shade(p.bgp, ci)]
	}
}

func (p *PPU) renderWindow(line []uint32) {
	if p.lcdc&lcdcWindowEnable == 0 || !p.windowTriggered || p.wx > 166 {
		return
	}
	mapBase := 0x1C00
	if p.lcdc&lcdcWindowMap == 0 {
		mapBase = 0x1800
	}
	start := int(p.wx) - 7
	y := p.windowLine
	rowBase := mapBase + (y/8)*32
	drawn := false
	for x := max(start, 0); x < ScreenWidth; x++ {
		wx := x - start
		t := p.bgTile(p.vram[rowBase+wx/8])
		ci := p.tiles[t][y%8][wx%8]
		p.bgIndex[x] = ci
		line[x] = p.palette[shade(p.bgp, ci)]
		drawn = true
	}
	if drawn {
		p.windowLine++
	}
}

func (p *PPU) renderSprites(line []uint32) {
	height := 8
	if p.lcdc&lcdcOBJSize != 0 {
		height = 16
	}

	var claimed [ScreenWidth]bool
	for i := 0; i < p.spriteCount; i++ {
		s := &p.sprites[i]
		row := int(p.ly) - s.y
		if s.attr&0x40 != 0 {
			row = height - 1 - row
		}
		t := int(s.tile)
		if height == 16 {
			t &^= 1
		}
		t += row / 8
		row %= 8

		pal := p.obp0
		if s.attr&0x10 != 0 {
			pal = p.obp1
		}

		for col := 0; col < 8; col++ {
			x := s.x + col
			if x < 0 || x >= ScreenWidth || claimed[x] {
				continue
			}
			src := col
			if s.attr&0x20 != 0 {
				src = 7 - col
			}
			ci := p.tiles[t][row][src]
			if ci == 0 {
				continue
			}
			// The first opaque sprite pixel owns the column even when
			// it ends up hidden behind the background.
			claimed[x] = true
			if s.attr&0x80 != 0 && p.bgIndex[x] != 0 {
				continue
			}
			line[x] = p.palette[shade(pal, ci)]
		}
	}
}

// TileSheet renders all 384 cached tiles as a 16x24 tile grid using the
// raw color indices.
func (p *PPU) TileSheet() []uint32 {
	out := make([]uint32, TileSheetWidth*TileSheetHeight)
	for i := range p.tiles {
		tx := (i % 16) * 8
		ty := (i / 16) * 8
		for y := 0; y < 8; y++ {
			for x := 0; x < 8; x++ {
				out[(ty+y)*TileSheetWidth+tx+x] = p.palette[p.tiles[i][y][x]]
			}
		}
	}
	return out
}
