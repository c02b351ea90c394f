// Package scene builds the worlds the renderer can draw and looks them up by name.
package scene

import (
	"errors"
	"fmt"
	"sort"

	"github.com/df07/weekend-pathtracer/pkg/geometry"
	"github.com/df07/weekend-pathtracer/pkg/renderer"
)

// ErrUnknownScene is returned by New for names that are not registered
var ErrUnknownScene = errors.New("unknown scene")

// Scene contains all the elements needed for rendering
type Scene struct {
	Camera         *renderer.Camera
	CameraConfig   renderer.CameraConfig
	World          *geometry.HittableList // Objects in the scene
	SamplingConfig renderer.SamplingConfig
}

// GetCamera returns the scene's camera
func (s *Scene) GetCamera() *renderer.Camera {
	return s.Camera
}

// GetWorld returns everything a ray can hit
func (s *Scene) GetWorld() geometry.Shape {
	return s.World
}

// GetSamplingConfig returns the scene's preferred sampling settings
func (s *Scene) GetSamplingConfig() renderer.SamplingConfig {
	return s.SamplingConfig
}

// newScene validates the merged camera configuration and assembles a scene
func newScene(defaultCameraConfig renderer.CameraConfig, cameraOverrides []renderer.CameraConfig, samplingConfig renderer.SamplingConfig, world *geometry.HittableList) (*Scene, error) {
	cameraConfig := defaultCameraConfig
	if len(cameraOverrides) > 0 {
		cameraConfig = renderer.MergeCameraConfig(defaultCameraConfig, cameraOverrides[0])
	}
	if err := cameraConfig.Validate(); err != nil {
		return nil, fmt.Errorf("camera: %w", err)
	}

	return &Scene{
		Camera:         renderer.NewCamera(cameraConfig),
		CameraConfig:   cameraConfig,
		World:          world,
		SamplingConfig: samplingConfig,
	}, nil
}

// SceneInfo describes a registered scene
type SceneInfo struct {
	ID          string `json:"id"`          // Name passed to New
	DisplayName string `json:"displayName"` // UI display name
	Description string `json:"description"` // Short description
}

type entry struct {
	info  SceneInfo
	build func(seed int64, cameraOverrides ...renderer.CameraConfig) (*Scene, error)
}

var registry = map[string]entry{
	"random-spheres": {
		info: SceneInfo{
			ID:          "random-spheres",
			DisplayName: "Random Spheres",
			Description: "Hundreds of small diffuse, metal and glass spheres around three large ones",
		},
		build: NewRandomSpheresScene,
	},
	"single-sphere": {
		info: SceneInfo{
			ID:          "single-sphere",
			DisplayName: "Single Sphere",
			Description: "One diffuse sphere under the sky gradient",
		},
		build: func(_ int64, cameraOverrides ...renderer.CameraConfig) (*Scene, error) {
			return NewSingleSphereScene(cameraOverrides...)
		},
	},
	"materials": {
		info: SceneInfo{
			ID:          "materials",
			DisplayName: "Materials",
			Description: "Glass bubble, diffuse and fuzzy metal spheres on a ground sphere",
		},
		build: func(_ int64, cameraOverrides ...renderer.CameraConfig) (*Scene, error) {
			return NewMaterialsScene(cameraOverrides...)
		},
	},
}

// Names returns the registered scene names in sorted order
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// List returns metadata for every registered scene, sorted by ID
func List() []SceneInfo {
	infos := make([]SceneInfo, 0, len(registry))
	for _, name := range Names() {
		infos = append(infos, registry[name].info)
	}
	return infos
}

// New builds the named scene. seed only affects scenes with randomized layouts.
func New(name string, seed int64, cameraOverrides ...renderer.CameraConfig) (*Scene, error) {
	e, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScene, name)
	}
	return e.build(seed, cameraOverrides...)
}
