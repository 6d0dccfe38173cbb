package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Ground is the static box every vehicle drives on.
type Ground struct {
	Center      mgl64.Vec3
	HalfExtents mgl64.Vec3
}

// RayHit describes where a ray met the ground.
type RayHit struct {
	Point    mgl64.Vec3
	Normal   mgl64.Vec3
	Distance float64
}

// NewGround places a box so its top face sits offset metres below y=0.
func NewGround(halfExtents mgl64.Vec3, offset float64) *Ground {
	return &Ground{
		Center:      mgl64.Vec3{0, -offset - halfExtents.Y(), 0},
		HalfExtents: halfExtents,
	}
}

// Top is the height of the driving surface.
func (g *Ground) Top() float64 {
	return g.Center.Y() + g.HalfExtents.Y()
}

// Covers reports whether a point lies above or below the ground's footprint.
func (g *Ground) Covers(point mgl64.Vec3) bool {
	return math.Abs(point.X()-g.Center.X()) <= g.HalfExtents.X() &&
		math.Abs(point.Z()-g.Center.Z()) <= g.HalfExtents.Z()
}

// Raycast intersects a ray with the top face. dir must be normalised.
func (g *Ground) Raycast(origin, dir mgl64.Vec3, maxDistance float64) (RayHit, bool) {
	if dir.Y() > -1e-6 {
		return RayHit{}, false
	}

	distance := (g.Top() - origin.Y()) / dir.Y()
	if distance < 0 || distance > maxDistance {
		return RayHit{}, false
	}

	point := origin.Add(dir.Mul(distance))
	if !g.Covers(point) {
		return RayHit{}, false
	}

	return RayHit{Point: point, Normal: mgl64.Vec3{0, 1, 0}, Distance: distance}, true
}
