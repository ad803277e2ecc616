package engine

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mvolkov/demofocus/internal/config"
	"github.com/mvolkov/demofocus/internal/director"
	"github.com/mvolkov/demofocus/internal/events"
	"github.com/mvolkov/demofocus/internal/renderer"
	"github.com/mvolkov/demofocus/internal/source"
	"github.com/mvolkov/demofocus/internal/system"
	"github.com/mvolkov/demofocus/internal/telemetry"
	"github.com/mvolkov/demofocus/internal/video"
)

// Exporter drives a full export: event log -> camera path -> rendered video.
// Source and Sink may be pre-set (tests do this); when nil they are opened
// from the config paths.
type Exporter struct {
	Config *config.Config
	Log    *slog.Logger

	Source source.FrameSource
	Sink   video.FrameSink

	Telemetry *telemetry.Session
}

type frameJob struct {
	index int
	img   *image.RGBA
}

type frameResult struct {
	index  int
	img    *image.RGBA
	params renderer.FrameParams
}

func (e *Exporter) Run(ctx context.Context) error {
	startTime := time.Now()

	if err := e.Config.Validate(); err != nil {
		return err
	}

	log, err := events.ReadLog(e.Config.EventsPath)
	if err != nil {
		return fmt.Errorf("read event log: %w", err)
	}

	duration, err := system.VideoDuration(e.Config.InputVideo)
	if err != nil {
		e.Log.Warn("ffprobe duration unavailable, using event log span",
			"input", e.Config.InputVideo, "err", err)
		duration = log.Duration()
	}

	d := director.NewDirector()
	d.TargetZoom = e.Config.TargetZoom
	d.TransitionDuration = e.Config.TransitionDuration
	d.DwellTimeout = e.Config.DwellTimeout
	d.ClusterWindow = e.Config.ClickClusterWindow

	path, err := d.BuildPath(log, duration)
	if err != nil {
		return fmt.Errorf("plan camera path: %w", err)
	}

	e.Log.Info("camera path planned",
		"events", len(log.Events),
		"keyframes", len(path.Keyframes()),
		"duration", path.Duration())

	if e.Config.PathExport != "" {
		if err := director.WritePath(path, e.Config.TransitionDuration, e.Config.PathExport); err != nil {
			return fmt.Errorf("export camera path: %w", err)
		}
		fmt.Printf("[*] Camera path saved: %s\n", e.Config.PathExport)
	}

	fmt.Println("--- [EXPORT] ---")
	fmt.Printf("[*] Input: %s | Events: %d | Keyframes: %d\n",
		e.Config.InputVideo, len(log.Events), len(path.Keyframes()))
	fmt.Printf("[*] Output: %dx%d @ %d FPS | Mode: %s\n",
		e.Config.Width, e.Config.Height, e.Config.FPS, e.Config.Mode)
	fmt.Println("----------------")

	switch e.Config.Mode {
	case config.ModeFilter:
		err = e.runFilter(ctx, path)
	default:
		err = e.runDirect(ctx, path)
	}
	if err != nil {
		return err
	}

	if e.Telemetry != nil {
		e.Telemetry.Report(e.Log)
		if e.Config.TelemetryPath != "" {
			if err := e.Telemetry.Save(e.Config.TelemetryPath); err != nil {
				e.Log.Warn("telemetry not saved", "err", err)
			}
		}
	}

	if e.Config.ShowStats {
		total := time.Since(startTime)
		fmt.Printf("--- [PERFORMANCE REPORT] ---\n"+
			"Total Time: %.2fs\n"+
			"Duration: %.2fs\n"+
			"Speed: %.2fx realtime\n"+
			"----------------------------\n",
			total.Seconds(), duration, duration/total.Seconds())
	}

	return nil
}

// runFilter renders through ffmpeg's zoompan filter. One process, no
// per-frame compositing; motion blur is not available in this mode.
func (e *Exporter) runFilter(ctx context.Context, path *director.CameraPath) error {
	encoder := e.Config.VideoEncoder
	if encoder == "" {
		encoder = system.BestH264Encoder()
		fmt.Printf("[*] Encoder: %s (auto)\n", encoder)
	}

	chain := renderer.BuildFilterChain(path, e.Config.FPS, e.Config.Width, e.Config.Height)
	return video.EncodeWithFilter(ctx, e.Config.InputVideo, e.Config.OutputVideo,
		chain, encoder, e.Config.Quality, e.Config.FPS)
}

// runDirect composites every frame in-process: one sequential reader, a pool
// of compositor workers, and an ordered writer feeding the sink.
func (e *Exporter) runDirect(ctx context.Context, path *director.CameraPath) error {
	src := e.Source
	if src == nil {
		opened, err := source.NewVideoSource(e.Config.InputVideo)
		if err != nil {
			return err
		}
		defer opened.Close()
		src = opened
	}

	sink := e.Sink
	if sink == nil {
		opened, err := video.NewVidioSink(e.Config.OutputVideo,
			e.Config.Width, e.Config.Height, float64(e.Config.FPS), e.Config.VideoEncoder)
		if err != nil {
			return err
		}
		sink = opened
	}
	defer sink.Close()

	fps := float64(e.Config.FPS)
	frameDuration := 1.0 / fps
	totalFrames := int(math.Round(path.Duration() * fps))
	if sc := src.FrameCount(); sc > 0 && sc < totalFrames {
		totalFrames = sc
	}
	if totalFrames == 0 {
		return fmt.Errorf("nothing to render: empty input")
	}

	workers := e.Config.Workers
	if workers <= 0 {
		workers = system.DefaultWorkers(e.Config.Width, e.Config.Height)
	}
	if workers > totalFrames {
		workers = totalFrames
	}

	quality := renderer.BlurQuality(e.Config.BlurQuality)
	pool := system.NewFramePool(e.Config.Width, e.Config.Height)

	jobs := make(chan frameJob, workers)
	results := make(chan frameResult, workers*2)

	g, ctx := errgroup.WithContext(ctx)

	// Reader: frames must be decoded in order, so this stage is sequential.
	g.Go(func() error {
		defer close(jobs)
		for i := 0; i < totalFrames; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			img, err := src.ReadFrame()
			if err != nil {
				return err
			}
			select {
			case jobs <- frameJob{index: i, img: img}:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	// Compositor workers. Each holds its own Compositor so the coordinate
	// maps and blur accumulator are never shared.
	var wg errgroup.Group
	for w := 0; w < workers; w++ {
		wg.Go(func() error {
			comp, err := renderer.NewCompositor(e.Config.Width, e.Config.Height)
			if err != nil {
				return err
			}
			for job := range jobs {
				if err := ctx.Err(); err != nil {
					return err
				}
				t := float64(job.index) * frameDuration
				params, err := renderer.ResolveFrame(path, t, frameDuration,
					quality, e.Config.Width, e.Config.Height)
				if err != nil {
					return err
				}
				out := pool.Get()
				if err := comp.Render(job.img, params, out); err != nil {
					pool.Put(out)
					return err
				}
				select {
				case results <- frameResult{index: job.index, img: out, params: params}:
				case <-ctx.Done():
					pool.Put(out)
					return ctx.Err()
				}
			}
			return nil
		})
	}
	g.Go(func() error {
		defer close(results)
		return wg.Wait()
	})

	// Ordered writer: workers finish out of order, the sink needs frames
	// in order.
	g.Go(func() error {
		buf := newReorderBuffer()
		written := 0
		lastReport := time.Now()
		for res := range results {
			err := buf.Add(res.index, res, func(r frameResult) error {
				if err := sink.WriteFrame(r.img); err != nil {
					return &renderer.ResourceError{Op: "write frame", Err: err}
				}
				if e.Telemetry != nil {
					e.Telemetry.Record(telemetry.Frame{
						Index: r.index,
						Time:  float64(r.index) * frameDuration,
						Zoom:  r.params.Zoom,
						CX:    r.params.CX,
						CY:    r.params.CY,
					})
				}
				pool.Put(r.img)
				written++
				if time.Since(lastReport) > 2*time.Second {
					fmt.Printf("[>] Frame %d/%d\n", written, totalFrames)
					lastReport = time.Now()
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		if buf.Pending() > 0 {
			return fmt.Errorf("render incomplete: %d frames never arrived", buf.Pending())
		}
		fmt.Printf("[>] Frame %d/%d\n", written, totalFrames)
		return nil
	})

	return g.Wait()
}
