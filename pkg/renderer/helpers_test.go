package renderer

import (
	"fmt"
	"strings"
	"sync"

	"github.com/df07/weekend-pathtracer/pkg/core"
	"github.com/df07/weekend-pathtracer/pkg/geometry"
	"github.com/df07/weekend-pathtracer/pkg/material"
)

// testScene implements Scene for testing
type testScene struct {
	camera *Camera
	world  geometry.Shape
	config SamplingConfig
}

func (s *testScene) GetCamera() *Camera                { return s.camera }
func (s *testScene) GetWorld() geometry.Shape          { return s.world }
func (s *testScene) GetSamplingConfig() SamplingConfig { return s.config }

// newDiffuseScene builds a small diffuse sphere resting on a ground sphere
func newDiffuseScene(width, height int) *testScene {
	cameraConfig := DefaultCameraConfig()
	cameraConfig.AspectRatio = float64(width) / float64(height)

	ground := material.NewLambertian(core.NewVec3(0.8, 0.8, 0.0))
	center := material.NewLambertian(core.NewVec3(0.7, 0.3, 0.3))

	return &testScene{
		camera: NewCamera(cameraConfig),
		world: geometry.NewHittableList(
			geometry.NewSphere(core.NewVec3(0, -100.5, -1), 100, ground),
			geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5, center),
		),
		config: SamplingConfig{Width: width, Height: height, SamplesPerPixel: 4, MaxDepth: 10},
	}
}

// panicSampler fails the test if any random number is drawn
type panicSampler struct{}

func (panicSampler) Get1D() float64 { panic("unexpected Get1D") }
func (panicSampler) Get2D() core.Vec2 {
	panic("unexpected Get2D")
}
func (panicSampler) Get3D() core.Vec3 { panic("unexpected Get3D") }

// panicShape fails every intersection query
type panicShape struct{}

func (panicShape) Hit(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
	panic("broken shape")
}

// recordingLogger keeps every formatted message and optionally signals
// when a message containing notifyOn is logged
type recordingLogger struct {
	mu       sync.Mutex
	messages []string
	notifyOn string
	notify   chan struct{}
}

func (l *recordingLogger) Printf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	l.mu.Lock()
	l.messages = append(l.messages, msg)
	l.mu.Unlock()

	if l.notify != nil && l.notifyOn != "" && strings.Contains(msg, l.notifyOn) {
		select {
		case l.notify <- struct{}{}:
		default:
		}
	}
}

func (l *recordingLogger) contains(substr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, msg := range l.messages {
		if strings.Contains(msg, substr) {
			return true
		}
	}
	return false
}
