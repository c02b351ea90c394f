package geometry

import (
	"math"
	"testing"

	"github.com/df07/weekend-pathtracer/pkg/core"
	"github.com/df07/weekend-pathtracer/pkg/material"
)

func TestSphere_Hit_Miss(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, nil)

	tests := []struct {
		name string
		ray  core.Ray
	}{
		{"parallel offset beyond radius", core.NewRay(core.NewVec3(2, 0, 5), core.NewVec3(0, 0, -1))},
		{"perpendicular direction", core.NewRay(core.NewVec3(2, 0, 0), core.NewVec3(0, 1, 0))},
		{"pointing away", core.NewRay(core.NewVec3(0, 0, 3), core.NewVec3(0, 0, 1))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, isHit := sphere.Hit(tt.ray, 0.001, math.Inf(1))
			if isHit {
				t.Errorf("Expected miss, but got hit at t=%f", hit.T)
			}
			if hit != nil {
				t.Errorf("Expected nil record on miss, got %+v", hit)
			}
		})
	}
}

func TestSphere_Hit_TowardCenter(t *testing.T) {
	tests := []struct {
		name     string
		center   core.Vec3
		radius   float64
		origin   core.Vec3
		expected float64
	}{
		{"unit sphere from z=2", core.NewVec3(0, 0, 0), 1.0, core.NewVec3(0, 0, 2), 1.0},
		{"offset sphere", core.NewVec3(3, -1, 2), 0.5, core.NewVec3(3, -1, 10), 7.5},
		{"large sphere diagonal", core.NewVec3(0, 0, 0), 2.0, core.NewVec3(6, 6, 6), 6*math.Sqrt(3) - 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sphere := NewSphere(tt.center, tt.radius, nil)
			// Unit direction so t equals distance
			direction := tt.center.Subtract(tt.origin).Normalize()
			ray := core.NewRay(tt.origin, direction)

			hit, isHit := sphere.Hit(ray, 0.001, math.Inf(1))
			if !isHit {
				t.Fatal("Expected hit, but got miss")
			}
			if math.Abs(hit.T-tt.expected) > 1e-9 {
				t.Errorf("Expected t=%f (distance - radius), got %f", tt.expected, hit.T)
			}
			if !hit.FrontFace {
				t.Error("Expected front face hit from outside")
			}
		})
	}
}

func TestSphere_Hit_FrontAndBackFace(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, nil)

	tests := []struct {
		name           string
		rayOrigin      core.Vec3
		rayDirection   core.Vec3
		expectedT      float64
		expectedFront  bool
		expectedNormal core.Vec3
	}{
		{
			name:           "front face hit",
			rayOrigin:      core.NewVec3(0, 0, 2),
			rayDirection:   core.NewVec3(0, 0, -1),
			expectedT:      1.0,
			expectedFront:  true,
			expectedNormal: core.NewVec3(0, 0, 1),
		},
		{
			name:           "back face hit from inside returns far root",
			rayOrigin:      core.NewVec3(0, 0, 0),
			rayDirection:   core.NewVec3(0, 0, 1),
			expectedT:      1.0,
			expectedFront:  false,
			expectedNormal: core.NewVec3(0, 0, -1),
		},
		{
			name:           "origin inside off-center",
			rayOrigin:      core.NewVec3(0, 0, 0.5),
			rayDirection:   core.NewVec3(0, 0, -1),
			expectedT:      1.5,
			expectedFront:  false,
			expectedNormal: core.NewVec3(0, 0, 1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ray := core.NewRay(tt.rayOrigin, tt.rayDirection)
			hit, isHit := sphere.Hit(ray, 0.001, 1000.0)

			if !isHit {
				t.Fatal("Expected hit, but got miss")
			}

			if math.Abs(hit.T-tt.expectedT) > 1e-9 {
				t.Errorf("Expected t=%f, got t=%f", tt.expectedT, hit.T)
			}

			if hit.FrontFace != tt.expectedFront {
				t.Errorf("Expected front face %t, got %t", tt.expectedFront, hit.FrontFace)
			}

			if hit.Normal.Subtract(tt.expectedNormal).Length() > 1e-9 {
				t.Errorf("Expected normal %v, got %v", tt.expectedNormal, hit.Normal)
			}
		})
	}
}

func TestSphere_Hit_Bounds(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, nil)
	ray := core.NewRay(core.NewVec3(0, 0, 2), core.NewVec3(0, 0, -1))

	// Test tMax bound
	hit, isHit := sphere.Hit(ray, 0.001, 0.5)
	if isHit {
		t.Errorf("Expected miss due to tMax bound, but got hit at t=%f", hit.T)
	}

	// Test tMin bound
	hit, isHit = sphere.Hit(ray, 3.5, 1000.0)
	if isHit {
		t.Errorf("Expected miss due to tMin bound, but got hit at t=%f", hit.T)
	}

	// tMin past the near root selects the far root
	hit, isHit = sphere.Hit(ray, 1.5, 1000.0)
	if !isHit || math.Abs(hit.T-3.0) > 1e-9 {
		t.Errorf("Expected far root t=3, got %v (hit=%t)", hit, isHit)
	}
}

func TestSphere_Hit_CarriesMaterial(t *testing.T) {
	mat := material.NewLambertian(core.NewVec3(0.1, 0.2, 0.3))
	sphere := NewSphere(core.NewVec3(0, 0, -1), 0.5, mat)

	hit, isHit := sphere.Hit(core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1)), 0.001, math.Inf(1))
	if !isHit {
		t.Fatal("Expected hit")
	}
	if hit.Material != mat {
		t.Errorf("Expected hit to reference the sphere's material")
	}
}

func TestSphere_NegativeRadiusFlipsNormal(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), -1.0, nil)
	ray := core.NewRay(core.NewVec3(0, 0, 2), core.NewVec3(0, 0, -1))

	hit, isHit := sphere.Hit(ray, 0.001, 1000.0)
	if !isHit {
		t.Fatal("Expected hit")
	}
	// Outward normal points inward, so the ray arrives at the back face
	if hit.FrontFace {
		t.Error("Expected back face for negative-radius sphere")
	}
	if hit.Normal.Subtract(core.NewVec3(0, 0, 1)).Length() > 1e-9 {
		t.Errorf("Expected normal to still face the ray, got %v", hit.Normal)
	}
}

func TestSphere_NormalOrientation(t *testing.T) {
	sampler := core.NewSeededSampler(99)
	spheres := []*Sphere{
		NewSphere(core.NewVec3(0, 0, 0), 1.0, nil),
		NewSphere(core.NewVec3(1, -2, 3), 0.3, nil),
		NewSphere(core.NewVec3(-1, 0, 0), -0.7, nil),
	}

	hits := 0
	for i := 0; i < 5000; i++ {
		origin := core.RandomVec3InRange(sampler, -3, 3)
		direction := core.RandomInUnitSphere(sampler)
		if direction.NearZero() {
			continue
		}
		ray := core.NewRay(origin, direction)

		for _, sphere := range spheres {
			hit, isHit := sphere.Hit(ray, 0.001, math.Inf(1))
			if !isHit {
				continue
			}
			hits++

			if math.Abs(hit.Normal.Length()-1) > 1e-9 {
				t.Fatalf("Normal should be unit length, got %f", hit.Normal.Length())
			}
			d := ray.Direction.Dot(hit.Normal)
			if d >= 0 {
				t.Fatalf("Normal %v must oppose ray direction %v (front=%t)", hit.Normal, ray.Direction, hit.FrontFace)
			}

			// FrontFace is the sign of the ray against the geometric outward normal
			outward := hit.Point.Subtract(sphere.Center).Divide(sphere.Radius)
			if hit.FrontFace != (ray.Direction.Dot(outward) < 0) {
				t.Fatalf("FrontFace=%t disagrees with outward normal %v", hit.FrontFace, outward)
			}
		}
	}

	if hits == 0 {
		t.Fatal("Expected random rays to hit at least one sphere")
	}
}
