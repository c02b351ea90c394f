package scene

import (
	"errors"
	"math"
	"testing"

	"github.com/df07/weekend-pathtracer/pkg/core"
	"github.com/df07/weekend-pathtracer/pkg/geometry"
	"github.com/df07/weekend-pathtracer/pkg/integrator"
	"github.com/df07/weekend-pathtracer/pkg/renderer"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestNames(t *testing.T) {
	expected := []string{"materials", "random-spheres", "single-sphere"}
	if diff := cmp.Diff(expected, Names()); diff != "" {
		t.Errorf("Names mismatch (-want +got):\n%s", diff)
	}

	infos := List()
	if len(infos) != len(expected) {
		t.Fatalf("Expected %d scene infos, got %d", len(expected), len(infos))
	}
	for i, info := range infos {
		if info.ID != expected[i] || info.DisplayName == "" {
			t.Errorf("Unexpected scene info %+v", info)
		}
	}
}

func TestNew(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			s, err := New(name, 1)
			if err != nil {
				t.Fatalf("New(%q) failed: %v", name, err)
			}
			if s.GetCamera() == nil {
				t.Error("Scene has no camera")
			}
			if s.World.Len() == 0 {
				t.Error("Scene has no shapes")
			}
			if err := s.GetSamplingConfig().Validate(); err != nil {
				t.Errorf("Scene sampling config invalid: %v", err)
			}
		})
	}
}

func TestNew_UnknownScene(t *testing.T) {
	_, err := New("cornell", 1)
	if !errors.Is(err, ErrUnknownScene) {
		t.Errorf("Expected ErrUnknownScene, got %v", err)
	}
}

func TestNew_InvalidCameraOverride(t *testing.T) {
	_, err := New("single-sphere", 1, renderer.CameraConfig{VFov: 200})
	if !errors.Is(err, renderer.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}

func TestNew_CameraOverride(t *testing.T) {
	s, err := New("materials", 1, renderer.CameraConfig{VFov: 25, Aperture: 0.2})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if s.CameraConfig.VFov != 25 || s.CameraConfig.Aperture != 0.2 {
		t.Errorf("Overrides not applied: %+v", s.CameraConfig)
	}
	if s.CameraConfig.Center != core.NewVec3(-2, 2, 1) {
		t.Errorf("Non-overridden fields should keep defaults, got center %v", s.CameraConfig.Center)
	}
}

func sphereCenters(s *Scene) []core.Vec3 {
	var centers []core.Vec3
	for _, shape := range s.World.Shapes {
		centers = append(centers, shape.(*geometry.Sphere).Center)
	}
	return centers
}

func TestRandomSpheresScene_DeterministicPerSeed(t *testing.T) {
	a, err := NewRandomSpheresScene(7)
	if err != nil {
		t.Fatalf("NewRandomSpheresScene failed: %v", err)
	}
	b, _ := NewRandomSpheresScene(7)
	c, _ := NewRandomSpheresScene(8)

	if diff := cmp.Diff(sphereCenters(a), sphereCenters(b)); diff != "" {
		t.Errorf("Same seed produced different layouts (-a +b):\n%s", diff)
	}
	if cmp.Equal(sphereCenters(a), sphereCenters(c)) {
		t.Error("Different seeds produced identical layouts")
	}
}

func TestRandomSpheresScene_Layout(t *testing.T) {
	s, err := NewRandomSpheresScene(42)
	if err != nil {
		t.Fatalf("NewRandomSpheresScene failed: %v", err)
	}

	n := s.World.Len()
	// ground + up to 22x22 small spheres + three feature spheres
	if n < 4+400 || n > 4+22*22 {
		t.Fatalf("Unexpected sphere count %d", n)
	}

	ground := s.World.Shapes[0].(*geometry.Sphere)
	if ground.Radius != 1000 || ground.Center != core.NewVec3(0, -1000, 0) {
		t.Errorf("Unexpected ground sphere %+v", ground)
	}

	keepOut := core.NewVec3(4, 0.2, 0)
	for _, shape := range s.World.Shapes[1 : n-3] {
		sphere := shape.(*geometry.Sphere)
		if sphere.Radius != 0.2 || sphere.Center.Y != 0.2 {
			t.Errorf("Unexpected small sphere %+v", sphere)
		}
		if sphere.Center.Subtract(keepOut).Length() <= 0.9 {
			t.Errorf("Small sphere at %v overlaps the metal feature sphere", sphere.Center)
		}
	}

	for _, shape := range s.World.Shapes[n-3:] {
		if r := shape.(*geometry.Sphere).Radius; r != 1 {
			t.Errorf("Feature sphere radius %f, want 1", r)
		}
	}
}

func TestSingleSphereScene_EndToEnd(t *testing.T) {
	s, err := NewSingleSphereScene()
	if err != nil {
		t.Fatalf("NewSingleSphereScene failed: %v", err)
	}
	camera := s.GetCamera()
	world := s.GetWorld()

	center := camera.GetRay(0.5, 0.5, core.NewSeededSampler(1))
	hit, isHit := world.Hit(center, 0.001, math.Inf(1))
	if !isHit {
		t.Fatal("Center ray should hit the sphere")
	}
	if math.Abs(hit.T-0.5) > 1e-9 {
		t.Errorf("Expected t=0.5, got %f", hit.T)
	}
	if diff := cmp.Diff(core.NewVec3(0, 0, 1), hit.Normal, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("Normal mismatch (-want +got):\n%s", diff)
	}

	// Corner rays escape and see the sky gradient for their own direction
	pt := integrator.NewPathTracingIntegrator()
	sky := integrator.DefaultBackground()
	for _, c := range []struct{ s, t float64 }{{0, 0}, {1, 0}, {0, 1}, {1, 1}} {
		ray := camera.GetRay(c.s, c.t, core.NewSeededSampler(1))
		if _, isHit := world.Hit(ray, 0.001, math.Inf(1)); isHit {
			t.Errorf("Corner ray (%v, %v) should miss", c.s, c.t)
		}
		got := pt.RayColor(ray, world, core.NewSeededSampler(1), 50)
		if diff := cmp.Diff(sky.Color(ray), got); diff != "" {
			t.Errorf("Corner (%v, %v) color mismatch (-want +got):\n%s", c.s, c.t, diff)
		}
	}
}
