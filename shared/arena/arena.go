// Package arena builds the resolv collision space for an arena so player
// movement can slide along walls the same way on the client and the server.
package arena

import (
	"math"

	"github.com/automoto/anticipation-mp/shared/leveldata"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/solarlune/resolv"
)

const (
	tagSolid = "solid"
	tagProbe = "probe"

	// unitScale is resolv units per world unit, matching the TMX tile size.
	// resolv treats sizes as whole pixels when picking cells.
	unitScale = 32
	cellSize  = 32

	// BodySize is the edge length of a player's square footprint.
	BodySize = 0.8
)

// Arena is a collision space on the world's XZ plane. resolv works in
// non-negative pixel coordinates, so the world is shifted by half the arena
// size and scaled by unitScale.
//
// An Arena is not safe for concurrent use: every query moves the same probe.
type Arena struct {
	Space *resolv.Space
	Data  *leveldata.ArenaData

	probe            *resolv.Object
	originX, originZ float64
}

func New(data *leveldata.ArenaData) *Arena {
	w := int(math.Ceil(data.Width * unitScale))
	d := int(math.Ceil(data.Depth * unitScale))
	space := resolv.NewSpace(w, d, cellSize, cellSize)

	a := &Arena{
		Space:   space,
		Data:    data,
		originX: data.Width / 2,
		originZ: data.Depth / 2,
	}

	for _, r := range data.Walls {
		x, z := a.toSpace(r.X, r.Z)
		obj := resolv.NewObject(x, z, r.W*unitScale, r.D*unitScale, tagSolid)
		obj.SetShape(resolv.NewRectangle(0, 0, r.W*unitScale, r.D*unitScale))
		space.Add(obj)
	}

	const body = BodySize * unitScale
	a.probe = resolv.NewObject(0, 0, body, body, tagProbe)
	a.probe.SetShape(resolv.NewRectangle(0, 0, body, body))
	space.Add(a.probe)
	return a
}

// Slide moves a body centered at from by delta and returns where it ends up.
// X is resolved before Z so a diagonal move slides along a wall. Y passes
// through untouched.
func (a *Arena) Slide(from, delta mgl64.Vec3) mgl64.Vec3 {
	a.placeProbe(from)

	dx := delta.X() * unitScale
	if dx != 0 {
		if check := a.probe.Check(dx, 0, tagSolid); check != nil {
			for _, solid := range check.ObjectsByTags(tagSolid) {
				if ahead(a.probe.X, a.probe.W, solid.X, solid.W, dx) && overlaps(a.probe.Y, a.probe.H, solid.Y, solid.H) {
					dx = limit(dx, check.ContactWithObject(solid).X())
				}
			}
		}
		a.probe.X += dx
		a.probe.Update()
	}

	dz := delta.Z() * unitScale
	if dz != 0 {
		if check := a.probe.Check(0, dz, tagSolid); check != nil {
			for _, solid := range check.ObjectsByTags(tagSolid) {
				if ahead(a.probe.Y, a.probe.H, solid.Y, solid.H, dz) && overlaps(a.probe.X, a.probe.W, solid.X, solid.W) {
					dz = limit(dz, check.ContactWithObject(solid).Y())
				}
			}
		}
	}

	return mgl64.Vec3{from.X() + dx/unitScale, from.Y() + delta.Y(), from.Z() + dz/unitScale}
}

// ahead reports whether a solid spanning [solidPos, solidPos+solidSize) lies in
// the direction of move from a body spanning [pos, pos+size).
func ahead(pos, size, solidPos, solidSize, move float64) bool {
	if move > 0 {
		return solidPos+solidSize > pos+size
	}
	return solidPos < pos
}

func overlaps(pos, size, otherPos, otherSize float64) bool {
	return otherPos < pos+size && otherPos+otherSize > pos
}

// limit shortens move to the contact distance when the contact is nearer.
// Cells are coarser than walls, so a reported contact can lie beyond move.
func limit(move, contact float64) float64 {
	if move > 0 {
		return math.Min(move, contact)
	}
	return math.Max(move, contact)
}

// Blocked reports whether a body centered at position overlaps a wall.
func (a *Arena) Blocked(position mgl64.Vec3) bool {
	a.placeProbe(position)
	check := a.probe.Check(0, 0, tagSolid)
	if check == nil {
		return false
	}
	for _, solid := range check.ObjectsByTags(tagSolid) {
		if overlaps(a.probe.X, a.probe.W, solid.X, solid.W) && overlaps(a.probe.Y, a.probe.H, solid.Y, solid.H) {
			return true
		}
	}
	return false
}

// Spawn returns the spawn point for a player slot, cycling through the
// arena's spawn points. Without any it returns the origin.
func (a *Arena) Spawn(slot int) mgl64.Vec3 {
	spawns := a.Data.SpawnPoints
	if len(spawns) == 0 {
		return mgl64.Vec3{}
	}
	if slot < 0 {
		slot = -slot
	}
	sp := spawns[slot%len(spawns)]
	return mgl64.Vec3{sp.X, 0, sp.Z}
}

func (a *Arena) placeProbe(center mgl64.Vec3) {
	a.probe.X, a.probe.Y = a.toSpace(center.X()-BodySize/2, center.Z()-BodySize/2)
	a.probe.Update()
}

func (a *Arena) toSpace(x, z float64) (float64, float64) {
	return (x + a.originX) * unitScale, (z + a.originZ) * unitScale
}
