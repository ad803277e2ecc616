package engine

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/mvolkov/demofocus/internal/config"
	"github.com/mvolkov/demofocus/internal/events"
	"github.com/mvolkov/demofocus/internal/source"
	"github.com/mvolkov/demofocus/internal/telemetry"
)

// captureSink collects written frames instead of encoding them
type captureSink struct {
	frames [][]byte
	closed bool
}

func (s *captureSink) WriteFrame(img *image.RGBA) error {
	buf := make([]byte, len(img.Pix))
	copy(buf, img.Pix)
	s.frames = append(s.frames, buf)
	return nil
}

func (s *captureSink) Close() error {
	s.closed = true
	return nil
}

// writeTestInputs produces a frame directory and an event log covering 2s
func writeTestInputs(t *testing.T, dir string, frames, w, h int) string {
	t.Helper()

	frameDir := filepath.Join(dir, "frames")
	if err := os.Mkdir(frameDir, 0755); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < frames; i++ {
		img := image.NewRGBA(image.Rect(0, 0, w, h))
		for p := 0; p < len(img.Pix); p += 4 {
			img.Pix[p] = uint8(i * 12)
			img.Pix[p+1] = uint8(p % 256)
			img.Pix[p+3] = 255
		}
		f, err := os.Create(filepath.Join(frameDir, fmt.Sprintf("frame_%03d.png", i)))
		if err != nil {
			t.Fatal(err)
		}
		if err := png.Encode(f, img); err != nil {
			t.Fatal(err)
		}
		f.Close()
	}

	eventsPath := filepath.Join(dir, "events.json")
	log := &events.Log{
		Metadata: events.Metadata{Width: w, Height: h},
		Events: []events.PointerEvent{
			{Timestamp: 0.5, Kind: events.KindClick, X: 0.3, Y: 0.4},
			{Timestamp: 2.0, Kind: events.KindMove, X: 0.5, Y: 0.5},
		},
	}
	if err := events.WriteLog(log, eventsPath); err != nil {
		t.Fatal(err)
	}
	return eventsPath
}

func testExporter(t *testing.T, dir string, sink *captureSink) *Exporter {
	t.Helper()
	const w, h, fps, frames = 32, 24, 10, 20

	eventsPath := writeTestInputs(t, dir, frames, w, h)
	src, err := source.NewImageSequenceSource(filepath.Join(dir, "frames"), fps)
	if err != nil {
		t.Fatalf("NewImageSequenceSource: %v", err)
	}

	cfg := config.Default()
	cfg.InputVideo = filepath.Join(dir, "missing.mp4") // duration falls back to the log
	cfg.EventsPath = eventsPath
	cfg.OutputVideo = filepath.Join(dir, "out.mp4")
	cfg.Width = w
	cfg.Height = h
	cfg.FPS = fps
	cfg.Workers = 2
	cfg.BlurQuality = "low"

	return &Exporter{
		Config: cfg,
		Log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		Source: src,
		Sink:   sink,
	}
}

func TestDirectExport(t *testing.T) {
	sink := &captureSink{}
	exp := testExporter(t, t.TempDir(), sink)

	if err := exp.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// 2s of events at 10 fps = 20 output frames.
	if len(sink.frames) != 20 {
		t.Fatalf("expected 20 frames, got %d", len(sink.frames))
	}
	if !sink.closed {
		t.Error("sink should be closed after the run")
	}
	for i, frame := range sink.frames {
		if len(frame) != 32*24*4 {
			t.Fatalf("frame %d has %d bytes", i, len(frame))
		}
	}
}

func TestDirectExportDeterministic(t *testing.T) {
	a := &captureSink{}
	if err := testExporter(t, t.TempDir(), a).Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}

	b := &captureSink{}
	if err := testExporter(t, t.TempDir(), b).Run(context.Background()); err != nil {
		t.Fatalf("second run: %v", err)
	}

	if len(a.frames) != len(b.frames) {
		t.Fatalf("frame counts differ: %d vs %d", len(a.frames), len(b.frames))
	}
	for i := range a.frames {
		if !bytes.Equal(a.frames[i], b.frames[i]) {
			t.Fatalf("frame %d differs between runs", i)
		}
	}
}

func TestDirectExportWithTelemetry(t *testing.T) {
	dir := t.TempDir()
	sink := &captureSink{}
	exp := testExporter(t, dir, sink)
	exp.Config.TelemetryPath = filepath.Join(dir, "telemetry.json")
	exp.Telemetry = telemetry.NewSession(exp.Config.InputVideo, exp.Config.OutputVideo, exp.Config.FPS)

	if err := exp.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(exp.Telemetry.Frames) != len(sink.frames) {
		t.Fatalf("telemetry has %d frames, sink %d", len(exp.Telemetry.Frames), len(sink.frames))
	}
	// The ordered writer records in frame order.
	for i, f := range exp.Telemetry.Frames {
		if f.Index != i {
			t.Fatalf("telemetry out of order at %d: %+v", i, f)
		}
	}
	if _, err := os.Stat(exp.Config.TelemetryPath); err != nil {
		t.Errorf("telemetry file not written: %v", err)
	}
}

func TestExportCancellation(t *testing.T) {
	sink := &captureSink{}
	exp := testExporter(t, t.TempDir(), sink)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := exp.Run(ctx); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestExportRejectsInvalidConfig(t *testing.T) {
	sink := &captureSink{}
	exp := testExporter(t, t.TempDir(), sink)
	exp.Config.TargetZoom = 0.2

	if err := exp.Run(context.Background()); err == nil {
		t.Error("expected config validation error")
	}
	if len(sink.frames) != 0 {
		t.Error("no frames should be written on invalid config")
	}
}
