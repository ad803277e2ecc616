package renderer

import (
	"errors"
	"math"
	"testing"

	"github.com/mvolkov/demofocus/internal/director"
	"github.com/mvolkov/demofocus/internal/events"
)

func buildTestPath(t *testing.T) *director.CameraPath {
	t.Helper()
	log := &events.Log{Events: []events.PointerEvent{
		{Timestamp: 1.0, Kind: events.KindClick, X: 0.3, Y: 0.3},
	}}
	path, err := director.NewDirector().BuildPath(log, 10.0)
	if err != nil {
		t.Fatalf("BuildPath: %v", err)
	}
	return path
}

func TestBlurQualitySamples(t *testing.T) {
	tests := []struct {
		quality BlurQuality
		want    int
	}{
		{BlurOff, 1},
		{BlurLow, 4},
		{BlurMedium, 8},
		{BlurHigh, 16},
		{BlurQuality("bogus"), 1},
		{BlurQuality(""), 1},
	}
	for _, tt := range tests {
		if got := tt.quality.Samples(); got != tt.want {
			t.Errorf("Samples(%q) = %d, want %d", tt.quality, got, tt.want)
		}
	}
}

func TestResolveFrame(t *testing.T) {
	path := buildTestPath(t)
	const frameDur = 1.0 / 30.0

	params, err := ResolveFrame(path, 1.4, frameDur, BlurMedium, 1920, 1080)
	if err != nil {
		t.Fatalf("ResolveFrame: %v", err)
	}

	cur := path.StateAt(1.4)
	prev := path.StateAt(1.4 - frameDur)
	if params.Zoom != cur.Zoom || params.CX != cur.CX || params.CY != cur.CY {
		t.Errorf("current state mismatch: %+v vs %+v", params, cur)
	}
	if params.PrevZoom != prev.Zoom || params.PrevCX != prev.CX || params.PrevCY != prev.CY {
		t.Errorf("previous state mismatch: %+v vs %+v", params, prev)
	}
	if params.BlurSamples != 8 {
		t.Errorf("expected 8 blur samples, got %d", params.BlurSamples)
	}
	if params.Width != 1920 || params.Height != 1080 {
		t.Errorf("unexpected output geometry: %dx%d", params.Width, params.Height)
	}
	if math.Abs(params.Aspect-16.0/9.0) > 1e-12 {
		t.Errorf("unexpected aspect %f", params.Aspect)
	}
}

func TestResolveFrameFirstFrame(t *testing.T) {
	// t=0 resolves; the previous state clamps to the path start instead of
	// reading before the recording.
	path := buildTestPath(t)
	params, err := ResolveFrame(path, 0, 1.0/30.0, BlurHigh, 1280, 720)
	if err != nil {
		t.Fatalf("ResolveFrame at 0: %v", err)
	}
	start := path.StateAt(0)
	if params.PrevZoom != start.Zoom || params.PrevCX != start.CX {
		t.Errorf("previous state at t=0 should clamp to path start, got %+v", params)
	}
}

func TestResolveFrameOutOfRange(t *testing.T) {
	path := buildTestPath(t)
	for _, tt := range []float64{-0.5, 10.5, 1e6} {
		_, err := ResolveFrame(path, tt, 1.0/30.0, BlurOff, 1920, 1080)
		if err == nil {
			t.Errorf("expected out-of-range error at %f", tt)
			continue
		}
		var oerr *OutOfRangeError
		if !errors.As(err, &oerr) {
			t.Errorf("expected *OutOfRangeError, got %T", err)
		}
	}

	// Accumulated i/fps frame times drift by ULPs; the boundary tolerates that.
	if _, err := ResolveFrame(path, 10.0+1e-12, 1.0/30.0, BlurOff, 1920, 1080); err != nil {
		t.Errorf("epsilon past the end should resolve, got %v", err)
	}
}
