package director

import (
	"fmt"

	"github.com/mvolkov/demofocus/internal/events"
)

// Director turns an event log into a camera path
type Director struct {
	TargetZoom         float64 // zoom applied on interactions (>= 1.0)
	TransitionDuration float64 // seconds per eased transition
	DwellTimeout       float64 // idle seconds before resetting to full view
	ClusterWindow      float64 // clicks closer than this merge into one interaction
}

// NewDirector creates a Director with the stock cinematic tuning
func NewDirector() *Director {
	return &Director{
		TargetZoom:         2.0,
		TransitionDuration: 0.8,
		DwellTimeout:       2.0,
		ClusterWindow:      3.0,
	}
}

// interaction is one cluster of temporally close clicks
type interaction struct {
	time      float64 // centroid of the clustered timestamps
	lastClick float64 // timestamp of the final click in the cluster
	cx, cy    float64 // centroid position
}

// BuildPath plans the camera trajectory for a recording of the given
// duration. The log is validated first and never reordered; planning is a
// one-time blocking computation and the returned path is immutable.
func (d *Director) BuildPath(log *events.Log, duration float64) (*CameraPath, error) {
	if d.TargetZoom < 1.0 {
		return nil, fmt.Errorf("target zoom %.2f below 1.0", d.TargetZoom)
	}
	if d.TransitionDuration <= 0 {
		return nil, fmt.Errorf("transition duration %.2f must be positive", d.TransitionDuration)
	}
	if err := log.Validate(); err != nil {
		return nil, err
	}
	if duration <= 0 {
		duration = log.Duration()
	}

	interactions := d.cluster(log.Events)
	keyframes := d.emitKeyframes(interactions, duration)
	return FromKeyframes(keyframes, d.TransitionDuration, duration)
}

// cluster groups clicks whose distance to the cluster start fits in
// ClusterWindow. Rapid multi-clicks collapse to their centroid instead of
// yanking the camera around.
func (d *Director) cluster(evs []events.PointerEvent) []interaction {
	var out []interaction
	var cur []events.PointerEvent

	flush := func() {
		if len(cur) == 0 {
			return
		}
		it := interaction{lastClick: cur[len(cur)-1].Timestamp}
		for _, ev := range cur {
			it.time += ev.Timestamp
			it.cx += ev.X
			it.cy += ev.Y
		}
		n := float64(len(cur))
		it.time /= n
		it.cx /= n
		it.cy /= n
		out = append(out, it)
		cur = cur[:0]
	}

	for _, ev := range evs {
		if ev.Kind != events.KindClick && ev.Kind != events.KindDown {
			continue
		}
		if len(cur) > 0 && ev.Timestamp-cur[0].Timestamp > d.ClusterWindow {
			flush()
		}
		cur = append(cur, ev)
	}
	flush()
	return out
}

// emitKeyframes yields one zoom target per interaction plus reset frames
// after dwell timeouts. Keyframe times are strictly increasing.
func (d *Director) emitKeyframes(interactions []interaction, duration float64) []Keyframe {
	var keyframes []Keyframe
	for i, it := range interactions {
		cx, cy := clampCenter(it.cx, it.cy, d.TargetZoom)
		keyframes = append(keyframes, Keyframe{
			Time: it.time,
			Zoom: d.TargetZoom,
			CX:   cx,
			CY:   cy,
		})

		resetAt := it.lastClick + d.DwellTimeout
		quiet := i == len(interactions)-1 || interactions[i+1].time > resetAt
		if quiet && resetAt < duration {
			keyframes = append(keyframes, Keyframe{
				Time: resetAt,
				Zoom: 1.0,
				CX:   0.5,
				CY:   0.5,
			})
		}
	}
	return keyframes
}

// clampCenter keeps the zoomed window fully inside the frame. At zoom <= 1
// the window covers everything and the center collapses to the middle.
func clampCenter(cx, cy, zoom float64) (float64, float64) {
	half := 0.5 / zoom
	if half >= 0.5 {
		return 0.5, 0.5
	}
	return clamp(cx, half, 1-half), clamp(cy, half, 1-half)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
