// Package tracking captures live pointer interactions into an event log.
// The log produced here is the same format the exporter consumes, so a
// recorded session can be replayed straight into a render.
package tracking

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/go-vgo/robotgo"
	hook "github.com/robotn/gohook"

	"github.com/mvolkov/demofocus/internal/events"
)

// Recorder samples the pointer position at SampleHz and registers click
// events through the OS hook. Coordinates are normalized against the
// primary screen so the log is resolution independent.
type Recorder struct {
	SampleHz int
	Log      *slog.Logger
}

func NewRecorder(log *slog.Logger) *Recorder {
	return &Recorder{SampleHz: 30, Log: log}
}

// Record captures pointer activity until ctx is cancelled and returns the
// collected log. Blocks for the whole recording.
func (r *Recorder) Record(ctx context.Context) (*events.Log, error) {
	screenW, screenH := robotgo.GetScreenSize()
	if screenW <= 0 || screenH <= 0 {
		screenW, screenH = 1920, 1080
	}

	start := time.Now()
	var mu sync.Mutex
	var collected []events.PointerEvent

	add := func(kind events.Kind, px, py int) {
		ev := events.PointerEvent{
			Timestamp: time.Since(start).Seconds(),
			Kind:      kind,
			X:         clamp01(float64(px) / float64(screenW)),
			Y:         clamp01(float64(py) / float64(screenH)),
		}
		mu.Lock()
		collected = append(collected, ev)
		mu.Unlock()
	}

	hook.Register(hook.MouseDown, []string{}, func(e hook.Event) {
		if e.Button == hook.MouseMap["left"] || e.Button == 1 {
			add(events.KindClick, int(e.X), int(e.Y))
			r.Log.Info("click", "x", e.X, "y", e.Y)
		}
	})
	hook.Register(hook.MouseUp, []string{}, func(e hook.Event) {
		if e.Button == hook.MouseMap["left"] || e.Button == 1 {
			add(events.KindUp, int(e.X), int(e.Y))
		}
	})

	// Position sampler. One sample per frame is enough; the planner only
	// cares about clicks and coarse movement.
	interval := time.Second / time.Duration(r.SampleHz)
	samplerDone := make(chan struct{})
	go func() {
		defer close(samplerDone)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				x, y := robotgo.Location()
				add(events.KindMove, x, y)
			}
		}
	}()

	go func() {
		<-ctx.Done()
		hook.End()
	}()

	evChan := hook.Start()
	r.Log.Info("recording started", "screen_w", screenW, "screen_h", screenH,
		"sample_hz", r.SampleHz)
	<-hook.Process(evChan)
	<-samplerDone

	mu.Lock()
	defer mu.Unlock()
	normalize(collected)

	log := &events.Log{
		Metadata: events.Metadata{Width: screenW, Height: screenH, FPS: float64(r.SampleHz)},
		Events:   collected,
	}
	if err := log.Validate(); err != nil {
		return nil, err
	}
	r.Log.Info("recording finished", "events", len(collected),
		"duration", log.Duration())
	return log, nil
}

// normalize sorts by timestamp and nudges collisions apart; the hook
// callback and the sampler run concurrently, so ties happen.
func normalize(evs []events.PointerEvent) {
	sort.SliceStable(evs, func(i, j int) bool {
		return evs[i].Timestamp < evs[j].Timestamp
	})
	for i := 1; i < len(evs); i++ {
		if evs[i].Timestamp <= evs[i-1].Timestamp {
			evs[i].Timestamp = evs[i-1].Timestamp + 1e-6
		}
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
