package director

import (
	"math"
	"sort"
)

// CameraState is the virtual camera at one instant: zoom level and the
// window center in normalized [0,1] source coordinates.
type CameraState struct {
	Zoom float64
	CX   float64
	CY   float64
}

// Identity is the full-frame camera (no zoom, centered)
var Identity = CameraState{Zoom: 1.0, CX: 0.5, CY: 0.5}

// Keyframe is a discrete camera target the path transitions towards
type Keyframe struct {
	Time float64 `yaml:"time"`
	Zoom float64 `yaml:"zoom"`
	CX   float64 `yaml:"cx"`
	CY   float64 `yaml:"cy"`
}

// Segment is one eased transition. From is the live evaluated camera state
// at Start, so consecutive segments chain without jumps even when a
// transition pre-empts an unfinished one.
type Segment struct {
	Start    float64
	Duration float64
	From     CameraState
	To       CameraState
}

// CameraPath is a continuous camera trajectory over a recording.
// It is immutable once built and safe to share across frame workers.
type CameraPath struct {
	keyframes []Keyframe
	segments  []Segment
	duration  float64
}

// Duration returns the time range the path is defined for
func (p *CameraPath) Duration() float64 {
	return p.duration
}

// Keyframes returns the emitted camera targets
func (p *CameraPath) Keyframes() []Keyframe {
	return p.keyframes
}

// Segments returns the eased transitions joining the keyframes
func (p *CameraPath) Segments() []Segment {
	return p.segments
}

// StateAt evaluates the camera at time t. Times outside [0, Duration] are
// clamped, so the path is total over the whole recording.
func (p *CameraPath) StateAt(t float64) CameraState {
	if t < 0 {
		t = 0
	}
	if t > p.duration {
		t = p.duration
	}

	// Last segment starting at or before t. Later segments were re-based
	// from the evaluated state at their start, so only this one matters.
	i := sort.Search(len(p.segments), func(i int) bool {
		return p.segments[i].Start > t
	}) - 1
	if i < 0 {
		return Identity
	}

	seg := p.segments[i]
	if seg.Duration <= 0 || t >= seg.Start+seg.Duration {
		return seg.To
	}
	u := easeInOutCubic((t - seg.Start) / seg.Duration)
	return CameraState{
		Zoom: lerp(seg.From.Zoom, seg.To.Zoom, u),
		CX:   lerp(seg.From.CX, seg.To.CX, u),
		CY:   lerp(seg.From.CY, seg.To.CY, u),
	}
}

// lerp performs linear interpolation between a and b
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// easeInOutCubic is a monotonic smoothstep-class curve with zero slope at
// both ends, which keeps transitions continuous at every boundary.
func easeInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - math.Pow(-2*t+2, 3)/2
}
