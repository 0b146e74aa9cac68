package mathx

import (
	"math"
	"testing"
)

func TestCross(t *testing.T) {
	tests := []struct {
		name string
		a, b Vector
		want float64
	}{
		{"unit axes", Vector{1, 0}, Vector{0, 1}, 1},
		{"reversed axes", Vector{0, 1}, Vector{1, 0}, -1},
		{"parallel vectors", Vector{2, 4}, Vector{1, 2}, 0},
		{"zero vector", Vector{0, 0}, Vector{5, 5}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Cross(tt.a, tt.b); got != tt.want {
				t.Errorf("Cross(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestCrossVS(t *testing.T) {
	v := Vector{3, 4}
	got := CrossVS(v, 2)
	want := Vector{-8, 6}
	if got != want {
		t.Errorf("CrossVS(%v, 2) = %v, want %v", v, got, want)
	}
}

func TestRightHandOrthogonal(t *testing.T) {
	v := Vector{1, 0}
	got := RightHandOrthogonal(v)
	want := Vector{0, -1}
	if got != want {
		t.Errorf("RightHandOrthogonal(%v) = %v, want %v", v, got, want)
	}
}

func TestRotate(t *testing.T) {
	v := Vector{1, 0}
	got := Rotate(v, math.Pi/2)
	if math.Abs(got[0]) > 1e-9 || math.Abs(got[1]-1) > 1e-9 {
		t.Errorf("Rotate(%v, pi/2) = %v, want ~(0,1)", v, got)
	}
}

func TestWrapAngle(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{math.Pi, math.Pi},
		{math.Pi + 0.1, -math.Pi + 0.1},
		{-math.Pi - 0.1, math.Pi - 0.1},
		{3 * math.Pi, math.Pi},
	}
	for _, tt := range tests {
		got := WrapAngle(tt.in)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("WrapAngle(%v) = %v, want %v", tt.in, got, tt.want)
		}
		if got <= -math.Pi || got > math.Pi {
			t.Errorf("WrapAngle(%v) = %v out of (-pi, pi]", tt.in, got)
		}
	}
}
