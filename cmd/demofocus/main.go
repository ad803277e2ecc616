package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/mvolkov/demofocus/internal/config"
	"github.com/mvolkov/demofocus/internal/engine"
	"github.com/mvolkov/demofocus/internal/events"
	"github.com/mvolkov/demofocus/internal/system"
	"github.com/mvolkov/demofocus/internal/telemetry"
	"github.com/mvolkov/demofocus/internal/tracking"
)

func main() {
	recordPtr := flag.Bool("record", false, "Record pointer events instead of rendering")
	configPtr := flag.String("config", "", "Path to a YAML config (flags override it)")
	inputPtr := flag.String("input", "", "Input screen recording (mp4)")
	eventsPtr := flag.String("events", "", "Pointer event log (json)")
	outputPtr := flag.String("output", "", "Output video (if empty, generated next to input)")
	zoomPtr := flag.Float64("zoom", 0, "Target zoom factor (>= 1.0)")
	transitionPtr := flag.Float64("transition", 0, "Zoom transition duration in seconds")
	dwellPtr := flag.Float64("dwell", 0, "Seconds of inactivity before the camera resets")
	clusterPtr := flag.Float64("cluster", 0, "Click cluster window in seconds")
	blurPtr := flag.String("blur", "", "Motion blur quality: off, low, medium, high")
	widthPtr := flag.Int("width", 0, "Output width")
	heightPtr := flag.Int("height", 0, "Output height")
	fpsPtr := flag.Int("fps", 0, "Output FPS")
	modePtr := flag.String("mode", "", "Render mode: direct (compositor) or filter (ffmpeg zoompan)")
	workersPtr := flag.Int("workers", 0, "Compositing workers (0 - auto)")
	qualityPtr := flag.Int("quality", 0, "Encoder quality (0 - auto)")
	pathExportPtr := flag.String("export-path", "", "Write the planned camera path as YAML")
	telemetryPtr := flag.String("telemetry", "", "Write per-frame camera telemetry as JSON")
	statsPtr := flag.Bool("stats", false, "Print a performance report")
	verbosePtr := flag.Bool("v", false, "Debug logging")

	flag.Parse()

	level := slog.LevelInfo
	if *verbosePtr {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *recordPtr {
		runRecord(ctx, logger, *eventsPtr, *fpsPtr)
		return
	}

	cfg := config.Default()
	if *configPtr != "" {
		loaded, err := config.Load(*configPtr)
		if err != nil {
			log.Fatalf("[-] Config error: %v", err)
		}
		cfg = loaded
	}

	if *inputPtr != "" {
		cfg.InputVideo = *inputPtr
	}
	if *eventsPtr != "" {
		cfg.EventsPath = *eventsPtr
	}
	if *outputPtr != "" {
		cfg.OutputVideo = *outputPtr
	}
	if *zoomPtr > 0 {
		cfg.TargetZoom = *zoomPtr
	}
	if *transitionPtr > 0 {
		cfg.TransitionDuration = *transitionPtr
	}
	if *dwellPtr > 0 {
		cfg.DwellTimeout = *dwellPtr
	}
	if *clusterPtr > 0 {
		cfg.ClickClusterWindow = *clusterPtr
	}
	if *blurPtr != "" {
		cfg.BlurQuality = *blurPtr
	}
	if *widthPtr > 0 {
		cfg.Width = *widthPtr
	}
	if *heightPtr > 0 {
		cfg.Height = *heightPtr
	}
	if *fpsPtr > 0 {
		cfg.FPS = *fpsPtr
	}
	if *modePtr != "" {
		cfg.Mode = *modePtr
	}
	if *workersPtr > 0 {
		cfg.Workers = *workersPtr
	}
	if *qualityPtr > 0 {
		cfg.Quality = *qualityPtr
	}
	if *pathExportPtr != "" {
		cfg.PathExport = *pathExportPtr
	}
	if *telemetryPtr != "" {
		cfg.TelemetryPath = *telemetryPtr
	}
	if *statsPtr {
		cfg.ShowStats = true
	}

	if cfg.InputVideo == "" {
		log.Fatalf("[-] No input video. Use -input recording.mp4")
	}
	if cfg.EventsPath == "" {
		// Recordings ship with a sibling event log by convention.
		guess := strings.TrimSuffix(cfg.InputVideo, filepath.Ext(cfg.InputVideo)) + ".events.json"
		if _, err := os.Stat(guess); err != nil {
			log.Fatalf("[-] No event log. Use -events events.json")
		}
		cfg.EventsPath = guess
		fmt.Printf("[*] Event log: %s\n", cfg.EventsPath)
	}
	if cfg.OutputVideo == "" {
		base := strings.TrimSuffix(filepath.Base(cfg.InputVideo), filepath.Ext(cfg.InputVideo))
		timestamp := time.Now().Format("2006-01-02_15-04-05")
		cfg.OutputVideo = fmt.Sprintf("%s_focused_%s.mp4", base, timestamp)
	}

	if cfg.VideoEncoder == "" {
		cfg.VideoEncoder = system.BestH264Encoder()
		if cfg.VideoEncoder != "libx264" {
			fmt.Printf("[*] Hardware encoder: %s\n", cfg.VideoEncoder)
		}
	}
	if cfg.Quality == 0 {
		switch cfg.VideoEncoder {
		case "h264_videotoolbox":
			cfg.Quality = 75
		case "h264_nvenc":
			cfg.Quality = 28
		default:
			cfg.Quality = 23
		}
	}

	exp := &engine.Exporter{Config: cfg, Log: logger}
	if cfg.TelemetryPath != "" || cfg.ShowStats {
		exp.Telemetry = telemetry.NewSession(cfg.InputVideo, cfg.OutputVideo, cfg.FPS)
	}

	if err := exp.Run(ctx); err != nil {
		log.Fatalf("[-] Export failed: %v", err)
	}

	fmt.Printf("[+++] Done: %s\n", cfg.OutputVideo)
}

// runRecord captures pointer events until interrupted and writes the log.
func runRecord(ctx context.Context, logger *slog.Logger, outPath string, sampleHz int) {
	if outPath == "" {
		timestamp := time.Now().Format("2006-01-02_15-04-05")
		outPath = fmt.Sprintf("events_%s.json", timestamp)
	}

	rec := tracking.NewRecorder(logger)
	if sampleHz > 0 {
		rec.SampleHz = sampleHz
	}

	fmt.Println("[*] Recording pointer events. Ctrl+C to stop.")
	evlog, err := rec.Record(ctx)
	if err != nil {
		log.Fatalf("[-] Recording failed: %v", err)
	}
	if err := events.WriteLog(evlog, outPath); err != nil {
		log.Fatalf("[-] Event log not saved: %v", err)
	}
	fmt.Printf("[+++] Event log saved: %s (%d events)\n", outPath, len(evlog.Events))
}
