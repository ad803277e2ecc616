// Package telemetry records per-frame camera state during a render and
// checks the recorded motion for health problems (velocity spikes, jitter).
package telemetry

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"sync"
)

// Frame is one rendered frame's camera state.
type Frame struct {
	Index int     `json:"index"`
	Time  float64 `json:"time"`
	Zoom  float64 `json:"zoom"`
	CX    float64 `json:"center_x"`
	CY    float64 `json:"center_y"`
}

// Session collects frames for one render run. Safe for concurrent Record
// calls from the compositing workers.
type Session struct {
	Input  string  `json:"input"`
	Output string  `json:"output"`
	FPS    int     `json:"fps"`
	Frames []Frame `json:"frames"`

	mu sync.Mutex
}

func NewSession(input, output string, fps int) *Session {
	return &Session{Input: input, Output: output, FPS: fps}
}

func (s *Session) Record(f Frame) {
	s.mu.Lock()
	s.Frames = append(s.Frames, f)
	s.mu.Unlock()
}

// Save writes the session as JSON. Frames are sorted by the caller's
// recording order; Record is called from the ordered writer so indices
// are already ascending.
func (s *Session) Save(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode telemetry: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write telemetry: %w", err)
	}
	return nil
}

// Health summarizes motion problems found in a session.
type Health struct {
	VelocitySpikes int
	JitterFlips    int
	MaxVelocity    float64
}

func (h Health) OK() bool {
	return h.VelocitySpikes == 0 && h.JitterFlips == 0
}

// maxFrameVelocity is the largest per-frame center displacement that still
// reads as smooth motion; anything above it counts as a spike.
const maxFrameVelocity = 0.015

// AnalyzeMotion scans frame-to-frame center deltas for velocity spikes and
// direction jitter (sign flips on consecutive deltas above noise level).
func AnalyzeMotion(frames []Frame) Health {
	var h Health
	var prevDX, prevDY float64
	const noise = 1e-4

	for i := 1; i < len(frames); i++ {
		dx := frames[i].CX - frames[i-1].CX
		dy := frames[i].CY - frames[i-1].CY
		v := math.Hypot(dx, dy)
		if v > h.MaxVelocity {
			h.MaxVelocity = v
		}
		if v > maxFrameVelocity {
			h.VelocitySpikes++
		}
		if i > 1 {
			if (dx > noise && prevDX < -noise) || (dx < -noise && prevDX > noise) {
				h.JitterFlips++
			} else if (dy > noise && prevDY < -noise) || (dy < -noise && prevDY > noise) {
				h.JitterFlips++
			}
		}
		prevDX, prevDY = dx, dy
	}
	return h
}

// Report logs the health summary for a finished session.
func (s *Session) Report(log *slog.Logger) {
	s.mu.Lock()
	frames := make([]Frame, len(s.Frames))
	copy(frames, s.Frames)
	s.mu.Unlock()

	h := AnalyzeMotion(frames)
	if h.OK() {
		log.Info("camera motion healthy",
			"frames", len(frames),
			"max_velocity", h.MaxVelocity)
		return
	}
	log.Warn("camera motion problems detected",
		"frames", len(frames),
		"velocity_spikes", h.VelocitySpikes,
		"jitter_flips", h.JitterFlips,
		"max_velocity", h.MaxVelocity)
}
