package gallery

// Size is a viewport size in pixels.
type Size struct {
	Width  float64
	Height float64
}

// Grid tracks the gallery's cursor and scroll position and computes
// which tiles are visible for a given viewport.
//
// The visible range drives both thumbnail scheduling and thumbnail
// eviction; drawing is the renderer's concern.
type Grid struct {
	// cursor is the current position. Valid index into the image list.
	cursor int
	// anchor is an index in the top row of the visible grid. It tracks
	// the scroll of the gallery across cursor moves.
	anchor int

	// tileWidth is the target tile width in pixels. Reduced to fit the
	// viewport. Always > 0.
	tileWidth float64
	// heightWidthRatio is the target ratio of tile height to width.
	// 1 aims for square tiles. Always > 0.
	heightWidthRatio float64
}

const defaultTileWidth = 200

// NewGrid creates a grid with the cursor at the start.
func NewGrid() *Grid {
	return &Grid{
		tileWidth:        defaultTileWidth,
		heightWidthRatio: 1,
	}
}

// Cursor returns the current gallery position.
func (g *Grid) Cursor() int {
	return g.cursor
}

// SetCursor moves the cursor, scrolling the grid as needed to keep it
// visible within the given viewport.
func (g *Grid) SetCursor(index int, view Size) {
	g.updateAnchor(index, view)
	g.cursor = index
}

// updateAnchor adjusts the scroll anchor so that index is visible.
func (g *Grid) updateAnchor(index int, view Size) {
	t, ok := g.tiling(view)
	if !ok {
		// No tiling fits, so pin the anchor on the new index.
		g.anchor = index
		return
	}

	first, tiles := g.visibleRange(t)
	last := first + tiles - 1

	indexRow := index / t.tilesInRow

	switch {
	case index < first:
		// Above the visible range: scroll up so the cursor's row
		// becomes the top row.
		g.anchor = indexRow * t.tilesInRow
	case index > last:
		// Below the visible range: scroll down so the cursor's row
		// becomes the bottom row.
		g.anchor = (indexRow - t.tilesInCol + 1) * t.tilesInRow
	default:
		// Already visible; keep the current scroll.
	}
}

// SetTileWidth sets the target tile width. Must be > 0.
func (g *Grid) SetTileWidth(width float64) {
	if width <= 0 {
		panic("gallery: tile width must be positive")
	}
	g.tileWidth = width
}

// SetHeightWidthRatio sets the tile height to width ratio. Must be > 0.
func (g *Grid) SetHeightWidthRatio(ratio float64) {
	if ratio <= 0 {
		panic("gallery: height/width ratio must be positive")
	}
	g.heightWidthRatio = ratio
}

// TilesInRow returns the number of tiles in a row of the grid, or 0
// when the viewport cannot fit a tile.
func (g *Grid) TilesInRow(view Size) int {
	t, ok := g.tiling(view)
	if !ok {
		return 0
	}
	return t.tilesInRow
}

// VisibleRange returns the index of the first visible tile and the
// number of visible tiles. ok is false when the viewport cannot fit a
// tile, in which case nothing is visible.
func (g *Grid) VisibleRange(view Size) (first, tiles int, ok bool) {
	t, tok := g.tiling(view)
	if !tok {
		return 0, 0, false
	}
	first, tiles = g.visibleRange(t)
	return first, tiles, true
}

// tiling describes how tiles fit into a viewport.
type tiling struct {
	// tilesInRow and tilesInCol are both > 0.
	tilesInRow int
	tilesInCol int
}

// tiling computes the tile layout for the viewport. ok is false when
// no tile fits.
func (g *Grid) tiling(view Size) (tiling, bool) {
	tilesInRow := int(view.Width/g.tileWidth + 0.5)
	if tilesInRow == 0 {
		return tiling{}, false
	}

	tileWidth := view.Width / float64(tilesInRow)

	tilesInCol := int(view.Height/(tileWidth*g.heightWidthRatio) + 0.5)
	if tilesInCol == 0 {
		return tiling{}, false
	}

	return tiling{tilesInRow: tilesInRow, tilesInCol: tilesInCol}, true
}

// visibleRange returns the first visible index and the visible tile
// count for a computed tiling. The first index is the start of the
// anchor's row.
func (g *Grid) visibleRange(t tiling) (first, tiles int) {
	first = g.anchor - g.anchor%t.tilesInRow
	tiles = t.tilesInRow * t.tilesInCol
	return first, tiles
}
