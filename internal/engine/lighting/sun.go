// Package lighting provides the directional light the bead is shaded with.
package lighting

import (
	gomath "math"

	"github.com/Faultbox/icebead/pkg/math"
)

// Default sun angles in degrees: upper right, toward the camera.
const (
	DefaultSunLongitude = 33.7
	DefaultSunLatitude  = 48.0
)

// SunDirection converts longitude/latitude angles in degrees to a unit
// vector pointing toward the sun.
// Longitude is rotation around Y measured from +Z toward +X, latitude is
// elevation from the XZ plane.
func SunDirection(longitude, latitude float32) math.Vec3 {
	lonRad := float64(longitude) * gomath.Pi / 180.0
	latRad := float64(latitude) * gomath.Pi / 180.0

	return math.Vec3{
		X: float32(gomath.Cos(latRad) * gomath.Sin(lonRad)),
		Y: float32(gomath.Sin(latRad)),
		Z: float32(gomath.Cos(latRad) * gomath.Cos(lonRad)),
	}
}

// DefaultSun returns the direction for the default angles.
func DefaultSun() math.Vec3 {
	return SunDirection(DefaultSunLongitude, DefaultSunLatitude)
}
