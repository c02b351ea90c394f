package integrator

import (
	"math"

	"github.com/df07/weekend-pathtracer/pkg/core"
	"github.com/df07/weekend-pathtracer/pkg/geometry"
)

// DefaultTMin keeps scattered rays from re-hitting the surface they left
const DefaultTMin = 0.001

// PathTracingIntegrator implements unidirectional path tracing
type PathTracingIntegrator struct {
	Background GradientBackground
	TMin       float64
}

// NewPathTracingIntegrator creates a path tracer with the default sky and epsilon
func NewPathTracingIntegrator() *PathTracingIntegrator {
	return &PathTracingIntegrator{
		Background: DefaultBackground(),
		TMin:       DefaultTMin,
	}
}

// RayColor computes the color for a single ray.
// The bounce loop keeps a running throughput instead of recursing, so the
// stack stays flat no matter how large depth is.
func (pt *PathTracingIntegrator) RayColor(ray core.Ray, world geometry.Shape, sampler core.Sampler, depth int) core.Vec3 {
	throughput := core.NewVec3(1, 1, 1)
	current := ray

	for remaining := depth; remaining > 0; remaining-- {
		hit, isHit := world.Hit(current, pt.TMin, math.Inf(1))
		if !isHit {
			return throughput.MultiplyVec(pt.Background.Color(current))
		}

		scatter, didScatter := hit.Material.Scatter(current, *hit, sampler)
		if !didScatter {
			// Material absorbed the ray
			return core.Vec3{}
		}

		throughput = throughput.MultiplyVec(scatter.Attenuation)
		current = scatter.Scattered
	}

	// Bounce budget exhausted, no more light is gathered
	return core.Vec3{}
}

// RayColorRecursive is the direct recursive form of RayColor.
// It draws from the sampler in the same order and agrees with RayColor up to
// floating point rounding of the attenuation product.
func (pt *PathTracingIntegrator) RayColorRecursive(ray core.Ray, world geometry.Shape, sampler core.Sampler, depth int) core.Vec3 {
	if depth <= 0 {
		return core.Vec3{}
	}

	hit, isHit := world.Hit(ray, pt.TMin, math.Inf(1))
	if !isHit {
		return pt.Background.Color(ray)
	}

	scatter, didScatter := hit.Material.Scatter(ray, *hit, sampler)
	if !didScatter {
		return core.Vec3{}
	}

	return scatter.Attenuation.MultiplyVec(pt.RayColorRecursive(scatter.Scattered, world, sampler, depth-1))
}
