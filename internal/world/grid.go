package world

import "math"

// DefaultCellSize is the edge of one grid region in world units.
const DefaultCellSize = 8.0

// cellKey addresses one region of the flat XY grid.
type cellKey struct {
	rx, ry int32
}

// CoordToRegionIndex converts a world coordinate to a region index.
// Negative coordinates floor toward -inf so cells never overlap at the origin.
func CoordToRegionIndex(x, y, cellSize float64) (rx, ry int32) {
	rx = int32(math.Floor(x / cellSize))
	ry = int32(math.Floor(y / cellSize))
	return rx, ry
}

// RegionIndexToCoord returns the world coordinate of the region center.
func RegionIndexToCoord(rx, ry int32, cellSize float64) (x, y float64) {
	x = (float64(rx) + 0.5) * cellSize
	y = (float64(ry) + 0.5) * cellSize
	return x, y
}

// regionRange returns the inclusive index window covering a square of half-size radius.
func regionRange(cx, cy, radius, cellSize float64) (minRX, minRY, maxRX, maxRY int32) {
	minRX, minRY = CoordToRegionIndex(cx-radius, cy-radius, cellSize)
	maxRX, maxRY = CoordToRegionIndex(cx+radius, cy+radius, cellSize)
	return minRX, minRY, maxRX, maxRY
}
