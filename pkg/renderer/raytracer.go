package renderer

import (
	"fmt"
	"image"

	"github.com/df07/weekend-pathtracer/pkg/core"
	"github.com/df07/weekend-pathtracer/pkg/geometry"
	"github.com/df07/weekend-pathtracer/pkg/integrator"
	"github.com/df07/weekend-pathtracer/pkg/output"
)

// SamplingConfig contains rendering configuration
type SamplingConfig struct {
	Width           int // Image width
	Height          int // Image height
	SamplesPerPixel int // Number of rays per pixel
	MaxDepth        int // Maximum ray bounce depth
}

// DefaultSamplingConfig returns sensible default values
func DefaultSamplingConfig() SamplingConfig {
	return SamplingConfig{
		Width:           400,
		Height:          225,
		SamplesPerPixel: 100,
		MaxDepth:        50,
	}
}

// Validate checks that the configuration can drive a render
func (c SamplingConfig) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: image size must be positive, got %dx%d", ErrInvalidConfig, c.Width, c.Height)
	}
	if c.SamplesPerPixel <= 0 {
		return fmt.Errorf("%w: samples per pixel must be positive, got %d", ErrInvalidConfig, c.SamplesPerPixel)
	}
	if c.MaxDepth <= 0 {
		return fmt.Errorf("%w: max depth must be positive, got %d", ErrInvalidConfig, c.MaxDepth)
	}
	return nil
}

// Scene interface to avoid circular imports
type Scene interface {
	GetCamera() *Camera
	GetWorld() geometry.Shape
	GetSamplingConfig() SamplingConfig
}

// defaultIntegrator is stateless and shared by every RenderPixel call
var defaultIntegrator = integrator.NewPathTracingIntegrator()

// RenderPixel averages samplesPerPixel jittered samples for one pixel.
// pixel is in image coordinates (row 0 at the top) and dims is the image size.
// The sampler must not be shared with another goroutine.
func RenderPixel(camera *Camera, world geometry.Shape, pixel, dims image.Point, samplesPerPixel, maxDepth int, sampler core.Sampler) core.Vec3 {
	return renderPixelWith(defaultIntegrator, camera, world, pixel, dims, samplesPerPixel, maxDepth, sampler)
}

func renderPixelWith(integ integrator.Integrator, camera *Camera, world geometry.Shape, pixel, dims image.Point, samplesPerPixel, maxDepth int, sampler core.Sampler) core.Vec3 {
	if samplesPerPixel <= 0 {
		return core.Vec3{}
	}

	colorAccum := core.Vec3{}
	for sample := 0; sample < samplesPerPixel; sample++ {
		colorAccum = colorAccum.Add(samplePixel(integ, camera, world, pixel, dims, maxDepth, sampler))
	}
	return colorAccum.Multiply(1.0 / float64(samplesPerPixel))
}

// PixelToScreen maps a point inside a pixel to camera screen coordinates.
// jitter is the offset within the pixel in [0,1)^2. Image rows grow downward
// while the screen t axis grows upward.
func PixelToScreen(pixel, dims image.Point, jitter core.Vec2) (s, t float64) {
	row := dims.Y - 1 - pixel.Y
	s = (float64(pixel.X) + jitter.X) / float64(max(dims.X-1, 1))
	t = (float64(row) + jitter.Y) / float64(max(dims.Y-1, 1))
	return s, t
}

// samplePixel traces one jittered camera ray through the pixel footprint
func samplePixel(integ integrator.Integrator, camera *Camera, world geometry.Shape, pixel, dims image.Point, maxDepth int, sampler core.Sampler) core.Vec3 {
	s, t := PixelToScreen(pixel, dims, sampler.Get2D())
	ray := camera.GetRay(s, t, sampler)
	return integ.RayColor(ray, world, sampler, maxDepth)
}

// Raytracer renders whole images on a single goroutine
type Raytracer struct {
	scene      Scene
	width      int
	height     int
	config     SamplingConfig
	integrator integrator.Integrator
	sampler    core.Sampler
}

// NewRaytracer creates a new raytracer
func NewRaytracer(scene Scene, width, height int) *Raytracer {
	config := scene.GetSamplingConfig()
	config.Width = width
	config.Height = height
	return &Raytracer{
		scene:      scene,
		width:      width,
		height:     height,
		config:     config,
		integrator: defaultIntegrator,
		sampler:    core.NewSeededSampler(42), // Deterministic for testing
	}
}

// SetSamplingConfig updates the sampling configuration
func (rt *Raytracer) SetSamplingConfig(config SamplingConfig) {
	rt.config = config
}

// MergeSamplingConfig updates only the non-zero fields of the sampling configuration
func (rt *Raytracer) MergeSamplingConfig(config SamplingConfig) {
	if config.SamplesPerPixel > 0 {
		rt.config.SamplesPerPixel = config.SamplesPerPixel
	}
	if config.MaxDepth > 0 {
		rt.config.MaxDepth = config.MaxDepth
	}
}

// SetIntegrator replaces the light transport algorithm
func (rt *Raytracer) SetIntegrator(integ integrator.Integrator) {
	rt.integrator = integ
}

// SetSampler replaces the random source, e.g. to render with a different seed
func (rt *Raytracer) SetSampler(sampler core.Sampler) {
	rt.sampler = sampler
}

// RenderLinear renders every pixel and returns linear colors, top row first
func (rt *Raytracer) RenderLinear() [][]core.Vec3 {
	camera := rt.scene.GetCamera()
	world := rt.scene.GetWorld()
	dims := image.Pt(rt.width, rt.height)

	pixels := make([][]core.Vec3, rt.height)
	for y := 0; y < rt.height; y++ {
		pixels[y] = make([]core.Vec3, rt.width)
		for x := 0; x < rt.width; x++ {
			pixels[y][x] = renderPixelWith(rt.integrator, camera, world, image.Pt(x, y), dims,
				rt.config.SamplesPerPixel, rt.config.MaxDepth, rt.sampler)
		}
	}
	return pixels
}

// RenderPass renders a single pass with multi-sampling and returns an image
func (rt *Raytracer) RenderPass() (*image.RGBA, RenderStats) {
	img := output.ToRGBA(rt.RenderLinear())

	totalPixels := rt.width * rt.height
	stats := RenderStats{
		TotalPixels:    totalPixels,
		TotalSamples:   totalPixels * rt.config.SamplesPerPixel,
		AverageSamples: float64(rt.config.SamplesPerPixel),
		MaxSamples:     rt.config.SamplesPerPixel,
		MinSamples:     rt.config.SamplesPerPixel,
		MaxSamplesUsed: rt.config.SamplesPerPixel,
	}
	return img, stats
}
