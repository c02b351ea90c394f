package integrator

import (
	"github.com/df07/weekend-pathtracer/pkg/core"
	"github.com/df07/weekend-pathtracer/pkg/geometry"
)

// Integrator defines the interface for light transport algorithms
type Integrator interface {
	// RayColor returns the radiance carried back along ray after at most depth bounces
	RayColor(ray core.Ray, world geometry.Shape, sampler core.Sampler, depth int) core.Vec3
}

// GradientBackground is a vertical sky gradient seen by rays that escape the scene
type GradientBackground struct {
	Bottom core.Vec3 // Color for rays pointing straight down
	Top    core.Vec3 // Color for rays pointing straight up
}

// DefaultBackground returns the white-to-sky-blue gradient
func DefaultBackground() GradientBackground {
	return GradientBackground{
		Bottom: core.NewVec3(1.0, 1.0, 1.0),
		Top:    core.NewVec3(0.5, 0.7, 1.0),
	}
}

// Color returns the background color for an escaping ray
func (g GradientBackground) Color(ray core.Ray) core.Vec3 {
	unitDirection := ray.Direction.Normalize()

	// Map the y-component from [-1,1] to [0,1]
	t := 0.5 * (unitDirection.Y + 1.0)
	return g.Bottom.Lerp(g.Top, t)
}
