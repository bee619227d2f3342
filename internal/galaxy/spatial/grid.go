// Package spatial provides cache-efficient spatial data structures for
// broad-phase overlap detection and neighbor queries.
//
// All structures use preallocated slices with integer indices (not pointers)
// to minimize GC pressure and maximize cache locality.
package spatial

import (
	"math"
)

// Grid provides O(1) average spatial queries via fixed-size cells.
// Uses preallocated slices with entity indices (not pointers) for GC efficiency.
//
// Optimal cell size equals the largest pair separation the collision resolver
// checks for (max radius sum + min distance). Two entities can only overlap if
// their cells are within a Chebyshev distance of 1, so candidate pairs are
// limited to the 3x3 neighborhood of each cell.
//
// Memory layout: cells are stored in row-major order (cells[row*cols+col]).
// The grid is rebuilt fully on each layout pass; Clear keeps cell capacity.
type Grid struct {
	cellSize    float64
	invCellSize float64 // 1/cellSize for faster division
	cols, rows  int
	cells       [][]uint32 // cells[row*cols+col] = list of entity indices
	scratch     []uint32   // reusable buffer for query results
	count       int        // entities currently inserted
}

// NewGrid creates a grid for the given canvas bounds.
// maxEntities is used to preallocate cell capacity.
func NewGrid(width, height, cellSize float64, maxEntities int) *Grid {
	cols := int(math.Ceil(width / cellSize))
	rows := int(math.Ceil(height / cellSize))

	// Ensure at least 1x1 grid
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}

	cells := make([][]uint32, cols*rows)
	avgPerCell := maxEntities / len(cells)
	if avgPerCell < 4 {
		avgPerCell = 4
	}
	for i := range cells {
		cells[i] = make([]uint32, 0, avgPerCell)
	}

	return &Grid{
		cellSize:    cellSize,
		invCellSize: 1.0 / cellSize,
		cols:        cols,
		rows:        rows,
		cells:       cells,
		scratch:     make([]uint32, 0, 64),
	}
}

// Clear resets all cells without deallocating underlying memory.
// This is O(n) where n = number of cells, not number of entities.
func (g *Grid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0] // Keep capacity, reset length
	}
	g.count = 0
}

// Len returns the number of entities currently in the grid.
func (g *Grid) Len() int {
	return g.count
}

// Insert adds an entity at position (x, y).
// The entityID should be the index into your entity slice.
// O(1) time complexity.
func (g *Grid) Insert(entityID uint32, x, y float64) {
	idx := g.cellIndex(x, y)
	g.cells[idx] = append(g.cells[idx], entityID)
	g.count++
}

// cellIndex computes the cell index for a position, with bounds checking.
// Out-of-bounds positions clamp to the border cells so the resolver still
// sees entities that momentarily drift outside the canvas.
func (g *Grid) cellIndex(x, y float64) int {
	col := int(math.Floor(x * g.invCellSize))
	row := int(math.Floor(y * g.invCellSize))

	if col < 0 {
		col = 0
	}
	if col >= g.cols {
		col = g.cols - 1
	}
	if row < 0 {
		row = 0
	}
	if row >= g.rows {
		row = g.rows - 1
	}

	return row*g.cols + col
}

// CellKey returns the (col, row) cell coordinates for a position.
// Two positions are collision candidates only when both coordinate deltas
// are <= 1 (Chebyshev adjacency).
func (g *Grid) CellKey(x, y float64) (col, row int) {
	return int(math.Floor(x * g.invCellSize)), int(math.Floor(y * g.invCellSize))
}

// Adjacent reports whether two cell keys are in each other's 3x3 neighborhood.
func Adjacent(colA, rowA, colB, rowB int) bool {
	dc := colA - colB
	if dc < 0 {
		dc = -dc
	}
	dr := rowA - rowB
	if dr < 0 {
		dr = -dr
	}
	return dc <= 1 && dr <= 1
}

// ForEachCandidatePair invokes fn once for every entity pair that shares a
// cell or sits in adjacent cells. Each unordered pair is visited exactly once:
// within-cell pairs iterate i<j, and cross-cell pairs only look at the E, SW,
// S and SE neighbors (the forward half of the 3x3 neighborhood).
func (g *Grid) ForEachCandidatePair(fn func(a, b uint32)) {
	for row := 0; row < g.rows; row++ {
		for col := 0; col < g.cols; col++ {
			cell := g.cells[row*g.cols+col]
			if len(cell) == 0 {
				continue
			}

			// Pairs within the same cell
			for i := 0; i < len(cell); i++ {
				for j := i + 1; j < len(cell); j++ {
					fn(cell[i], cell[j])
				}
			}

			// Pairs with forward neighbors (each adjacent cell pair once)
			for _, d := range forwardNeighbors {
				nc, nr := col+d[0], row+d[1]
				if nc < 0 || nc >= g.cols || nr >= g.rows {
					continue
				}
				other := g.cells[nr*g.cols+nc]
				for _, a := range cell {
					for _, b := range other {
						fn(a, b)
					}
				}
			}
		}
	}
}

// forwardNeighbors is the half-neighborhood used to visit each adjacent cell
// pair exactly once: east, southwest, south, southeast.
var forwardNeighbors = [4][2]int{{1, 0}, {-1, 1}, {0, 1}, {1, 1}}

// QueryRadius returns all entity IDs potentially within radius of (cx, cy).
// Uses an internal scratch buffer to avoid allocation.
//
// IMPORTANT: The returned slice is reused on subsequent calls.
// Copy the results if you need to persist them.
//
// The returned candidates may include entities outside the radius;
// the caller must perform a precise distance check (narrow phase).
func (g *Grid) QueryRadius(cx, cy, radius float64) []uint32 {
	g.scratch = g.scratch[:0]

	minCol := int(math.Floor((cx - radius) * g.invCellSize))
	maxCol := int(math.Floor((cx + radius) * g.invCellSize))
	minRow := int(math.Floor((cy - radius) * g.invCellSize))
	maxRow := int(math.Floor((cy + radius) * g.invCellSize))

	if minCol < 0 {
		minCol = 0
	}
	if maxCol >= g.cols {
		maxCol = g.cols - 1
	}
	if minRow < 0 {
		minRow = 0
	}
	if maxRow >= g.rows {
		maxRow = g.rows - 1
	}

	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			idx := row*g.cols + col
			g.scratch = append(g.scratch, g.cells[idx]...)
		}
	}

	return g.scratch
}

// Stats returns grid statistics for debugging/profiling.
func (g *Grid) Stats() GridStats {
	var totalEntities, maxInCell, nonEmpty int
	for _, cell := range g.cells {
		count := len(cell)
		totalEntities += count
		if count > maxInCell {
			maxInCell = count
		}
		if count > 0 {
			nonEmpty++
		}
	}

	avgPerCell := 0.0
	if nonEmpty > 0 {
		avgPerCell = float64(totalEntities) / float64(nonEmpty)
	}

	return GridStats{
		TotalCells:     len(g.cells),
		NonEmptyCells:  nonEmpty,
		TotalEntities:  totalEntities,
		MaxInCell:      maxInCell,
		AvgPerNonEmpty: avgPerCell,
	}
}

// GridStats contains grid statistics for debugging.
type GridStats struct {
	TotalCells     int
	NonEmptyCells  int
	TotalEntities  int
	MaxInCell      int
	AvgPerNonEmpty float64
}

// Dimensions returns the grid dimensions.
func (g *Grid) Dimensions() (cols, rows int, cellSize float64) {
	return g.cols, g.rows, g.cellSize
}
