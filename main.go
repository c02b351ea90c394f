package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/df07/weekend-pathtracer/pkg/core"
	"github.com/df07/weekend-pathtracer/pkg/output"
	"github.com/df07/weekend-pathtracer/pkg/renderer"
	"github.com/df07/weekend-pathtracer/pkg/scene"
)

// options holds the parsed command line
type options struct {
	SceneName  string
	Width      int
	Samples    int
	MaxDepth   int
	NumWorkers int
	MaxPasses  int
	Seed       int64
	Format     string
	Out        string
	Help       bool
}

func parseFlags(args []string, errOut io.Writer) (options, *flag.FlagSet, error) {
	var opts options
	fs := flag.NewFlagSet("pathtracer", flag.ContinueOnError)
	fs.SetOutput(errOut)

	fs.StringVar(&opts.SceneName, "scene", "random-spheres", "Scene name: "+strings.Join(scene.Names(), ", "))
	fs.IntVar(&opts.Width, "width", 0, "Image width in pixels (0 = scene default)")
	fs.IntVar(&opts.Samples, "samples", 0, "Samples per pixel (0 = scene default)")
	fs.IntVar(&opts.MaxDepth, "depth", 0, "Maximum bounces per path (0 = scene default)")
	fs.IntVar(&opts.NumWorkers, "workers", 0, "Number of parallel workers (0 = CPU count)")
	fs.IntVar(&opts.MaxPasses, "passes", 7, "Number of progressive passes")
	fs.Int64Var(&opts.Seed, "seed", 42, "Random seed for scene layout and sampling")
	fs.StringVar(&opts.Format, "format", "png", "Output format: png or ppm")
	fs.StringVar(&opts.Out, "out", "", "Output file (default output/<scene>/render_<timestamp>.<format>)")
	fs.BoolVar(&opts.Help, "help", false, "Show help information")

	if err := fs.Parse(args); err != nil {
		return opts, fs, err
	}
	if opts.Format != "png" && opts.Format != "ppm" {
		return opts, fs, fmt.Errorf("unsupported format %q, use png or ppm", opts.Format)
	}
	return opts, fs, nil
}

// createScene builds the named scene and applies command line overrides to its sampling config
func createScene(opts options) (*scene.Scene, error) {
	selectedScene, err := scene.New(opts.SceneName, opts.Seed)
	if err != nil {
		return nil, err
	}

	config := selectedScene.SamplingConfig
	if opts.Width > 0 {
		config.Width = opts.Width
		config.Height = max(1, int(float64(opts.Width)/selectedScene.CameraConfig.AspectRatio))
	}
	if opts.Samples > 0 {
		config.SamplesPerPixel = opts.Samples
	}
	if opts.MaxDepth > 0 {
		config.MaxDepth = opts.MaxDepth
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	selectedScene.SamplingConfig = config

	return selectedScene, nil
}

// outputPath returns where the final image goes
func outputPath(opts options, now time.Time) string {
	if opts.Out != "" {
		return opts.Out
	}
	timestamp := now.Format("20060102_150405")
	return filepath.Join("output", opts.SceneName, fmt.Sprintf("render_%s.%s", timestamp, opts.Format))
}

// render runs every progressive pass and returns the final image
func render(ctx context.Context, selectedScene *scene.Scene, opts options, logger core.Logger) (*renderer.PassResult, error) {
	sampling := selectedScene.SamplingConfig

	config := renderer.DefaultProgressiveConfig()
	config.MaxSamplesPerPixel = sampling.SamplesPerPixel
	config.MaxPasses = max(1, min(opts.MaxPasses, sampling.SamplesPerPixel))
	config.NumWorkers = opts.NumWorkers
	config.Seed = opts.Seed

	raytracer, err := renderer.NewProgressiveRaytracer(selectedScene, sampling.Width, sampling.Height, config, logger)
	if err != nil {
		return nil, err
	}

	passChan, _, errChan := raytracer.RenderProgressive(ctx, renderer.RenderOptions{})

	var last *renderer.PassResult
	for result := range passChan {
		result := result
		last = &result
	}
	if err := <-errChan; err != nil {
		return nil, err
	}
	if last == nil {
		return nil, errors.New("render produced no passes")
	}
	return last, nil
}

func main() {
	opts, fs, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Printf("Error: %v\n", err)
		os.Exit(2)
	}

	if opts.Help {
		fmt.Println("Weekend Path Tracer")
		fmt.Println("Usage: pathtracer [options]")
		fmt.Println()
		fmt.Println("Options:")
		fs.PrintDefaults()
		fmt.Println()
		fmt.Println("Available scenes:")
		for _, info := range scene.List() {
			fmt.Printf("  %s - %s\n", info.ID, info.Description)
		}
		fmt.Println()
		fmt.Println("Output will be saved to output/<scene>/render_<timestamp>.<format>")
		return
	}

	fmt.Println("Starting Weekend Path Tracer...")

	selectedScene, err := createScene(opts)
	if err != nil {
		fmt.Printf("Error creating scene: %v\n", err)
		os.Exit(1)
	}
	sampling := selectedScene.SamplingConfig
	fmt.Printf("Using %s scene (%dx%d, %d samples, depth %d)...\n",
		opts.SceneName, sampling.Width, sampling.Height, sampling.SamplesPerPixel, sampling.MaxDepth)

	startTime := time.Now()
	result, err := render(context.Background(), selectedScene, opts, renderer.NewDefaultLogger())
	if err != nil {
		fmt.Printf("Error rendering: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Render completed in %v\n", time.Since(startTime))
	fmt.Printf("Samples per pixel: %.1f (range %d - %d)\n",
		result.Stats.AverageSamples, result.Stats.MinSamples, result.Stats.MaxSamplesUsed)

	filename := outputPath(opts, time.Now())
	if err := output.Save(filename, result.Image); err != nil {
		fmt.Printf("Error saving image: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Render saved as %s\n", filename)
}
