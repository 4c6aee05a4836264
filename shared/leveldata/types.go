// Package leveldata provides TMX arena parsing shared between client and server.
// It has no dependencies on donburi or resolv, pure data only.
//
// Tiled pixel coordinates map onto the world's XZ plane: one tile is one world
// unit and the map is centered on the origin.
package leveldata

// ArenaData holds everything parsed from a TMX arena file, in world units.
type ArenaData struct {
	Walls       []Rect
	SpawnPoints []SpawnPoint
	Platform    PlatformPath
	// Width and Depth are the arena extents along X and Z.
	Width, Depth float64
}

// Rect is an axis aligned wall footprint on the XZ plane. X and Z are the
// minimum corner.
type Rect struct {
	X, Z, W, D float64
	Name       string
}

// SpawnPoint represents a player spawn location.
type SpawnPoint struct {
	X, Z  float64
	Index int
}

// PlatformPath is the ordered list of nodes a moving platform visits.
type PlatformPath struct {
	Nodes []PathNode
	// Speed is in world units per second.
	Speed float64
	// Pause is how long the platform rests at each node, in seconds.
	Pause float64
}

type PathNode struct {
	X, Z  float64
	Order int
}
