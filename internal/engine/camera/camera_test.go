package camera

import (
	gomath "math"
	"testing"

	"github.com/Faultbox/icebead/pkg/math"
)

func TestNewDefaults(t *testing.T) {
	c := New(800, 600)

	if c.Eye != (math.Vec3{Z: 3}) {
		t.Errorf("expected eye (0,0,3), got %+v", c.Eye)
	}
	if c.FovY != float32(gomath.Pi/3) {
		t.Errorf("expected fov pi/3, got %f", c.FovY)
	}
	if c.Near != 0.1 || c.Far != 6 {
		t.Errorf("expected clip 0.1..6, got %f..%f", c.Near, c.Far)
	}
	if gomath.Abs(float64(c.Aspect)-800.0/600.0) > 1e-6 {
		t.Errorf("expected aspect 4/3, got %f", c.Aspect)
	}
}

func TestSetViewport(t *testing.T) {
	tests := []struct {
		name   string
		w, h   int
		aspect float32
	}{
		{"wide", 1600, 900, 1600.0 / 900.0},
		{"square", 512, 512, 1},
		{"zero height", 300, 0, 300},
		{"zero both", 0, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(1, 1)
			c.SetViewport(tt.w, tt.h)
			if gomath.Abs(float64(c.Aspect-tt.aspect)) > 1e-5 {
				t.Errorf("expected aspect %f, got %f", tt.aspect, c.Aspect)
			}
		})
	}
}

func TestOriginProjectsToScreenCenter(t *testing.T) {
	c := New(800, 600)

	view := c.ViewMatrix().TransformPoint(math.Vec3{})
	if gomath.Abs(float64(view.Z+3)) > 1e-5 {
		t.Errorf("expected origin 3 units in front, got view z %f", view.Z)
	}

	ndc := c.ViewProjection().TransformPoint(math.Vec3{})
	if gomath.Abs(float64(ndc.X)) > 1e-5 || gomath.Abs(float64(ndc.Y)) > 1e-5 {
		t.Errorf("expected origin at screen center, got %+v", ndc)
	}
	if ndc.Z <= -1 || ndc.Z >= 1 {
		t.Errorf("expected origin inside the depth range, got z %f", ndc.Z)
	}
}
