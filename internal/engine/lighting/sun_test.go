package lighting

import (
	gomath "math"
	"testing"

	"github.com/Faultbox/icebead/pkg/math"
)

func near(a, b math.Vec3, eps float64) bool {
	return gomath.Abs(float64(a.X-b.X)) < eps &&
		gomath.Abs(float64(a.Y-b.Y)) < eps &&
		gomath.Abs(float64(a.Z-b.Z)) < eps
}

func TestSunDirection(t *testing.T) {
	tests := []struct {
		name     string
		lon, lat float32
		want     math.Vec3
	}{
		{"front horizon", 0, 0, math.Vec3{Z: 1}},
		{"right horizon", 90, 0, math.Vec3{X: 1}},
		{"behind", 180, 0, math.Vec3{Z: -1}},
		{"zenith", 0, 90, math.Vec3{Y: 1}},
		{"zenith ignores longitude", 270, 90, math.Vec3{Y: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SunDirection(tt.lon, tt.lat)
			if !near(got, tt.want, 1e-6) {
				t.Errorf("SunDirection(%v, %v) = %+v, want %+v", tt.lon, tt.lat, got, tt.want)
			}
			if l := got.Length(); gomath.Abs(float64(l-1)) > 1e-5 {
				t.Errorf("length = %v, want 1", l)
			}
		})
	}
}

func TestDefaultSun(t *testing.T) {
	// Upper right, facing the camera on +Z.
	want := math.Vec3{X: 0.4, Y: 0.8, Z: 0.6}.Normalize()
	if got := DefaultSun(); !near(got, want, 2e-3) {
		t.Errorf("DefaultSun() = %+v, want about %+v", got, want)
	}
}
