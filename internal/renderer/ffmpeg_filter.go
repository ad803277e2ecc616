package renderer

import (
	"fmt"
	"strings"

	"github.com/mvolkov/demofocus/internal/director"
)

// Filter-graph fallback: the same zoom/pan semantics as the compositor,
// expressed as an ffmpeg zoompan filter for environments without direct
// pixel compositing. Transitions are linearized per segment and motion blur
// is omitted; both are explicit, allowed approximations. Settled zoom and
// center values match the compositor exactly.

// span is one linear piece of the filter approximation, in output frames
type span struct {
	f0, f1 int
	from   director.CameraState
	to     director.CameraState
}

// buildSpans linearizes the path segments. Each span starts from the
// filter's own running value, so a pre-empted transition stays continuous
// inside the approximation, mirroring how the path re-bases.
func buildSpans(path *director.CameraPath, fps int) []span {
	segs := path.Segments()
	live := director.Identity

	var spans []span
	for i, seg := range segs {
		start := seg.Start
		end := seg.Start + seg.Duration
		frac := 1.0
		if i+1 < len(segs) && segs[i+1].Start < end {
			end = segs[i+1].Start
			frac = (end - start) / seg.Duration
		}

		to := seg.To
		if frac < 1.0 {
			to = director.CameraState{
				Zoom: lerp(live.Zoom, seg.To.Zoom, frac),
				CX:   lerp(live.CX, seg.To.CX, frac),
				CY:   lerp(live.CY, seg.To.CY, frac),
			}
		}

		spans = append(spans, span{
			f0:   int(start * float64(fps)),
			f1:   int(end * float64(fps)),
			from: live,
			to:   to,
		})
		live = to
	}
	return spans
}

// GenerateZoomPanFilter creates the zoompan filter for a camera path.
// Returns an empty string when the path has no camera movement.
func GenerateZoomPanFilter(path *director.CameraPath, fps, width, height int) string {
	spans := buildSpans(path, fps)
	if len(spans) == 0 {
		return ""
	}

	zoomExpr := buildPiecewise(spans, func(s director.CameraState) float64 {
		return s.Zoom
	})
	xExpr := buildPiecewise(spans, func(s director.CameraState) float64 {
		return windowOffset(s.CX, s.Zoom)
	})
	yExpr := buildPiecewise(spans, func(s director.CameraState) float64 {
		return windowOffset(s.CY, s.Zoom)
	})

	return fmt.Sprintf("zoompan=z='%s':x='iw*(%s)':y='ih*(%s)':d=1:s=%dx%d:fps=%d",
		zoomExpr, xExpr, yExpr, width, height, fps)
}

// BuildFilterChain wraps the zoompan filter with a 2x supersample scale for
// sharper zoomed output and a final scale to the target resolution.
func BuildFilterChain(path *director.CameraPath, fps, width, height int) string {
	aspectFilter := fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2",
		width*2, height*2, width*2, height*2,
	)

	zoomFilter := GenerateZoomPanFilter(path, fps, width, height)
	if zoomFilter == "" {
		return fmt.Sprintf("%s,scale=%d:%d", aspectFilter, width, height)
	}
	return fmt.Sprintf("%s,%s,scale=%d:%d", aspectFilter, zoomFilter, width, height)
}

// windowOffset is the normalized top-left edge of the sampled window:
// the clamped center minus the half extent, the exact clamp the
// compositor applies.
func windowOffset(center, zoom float64) float64 {
	half := 1.0 / (2.0 * zoom)
	if half >= 0.5 {
		return 0.0
	}
	return clampF(center, half, 1-half) - half
}

// buildPiecewise emits a nested if(lte(on,...)) chain over the spans. The
// per-span ramp is clamped with clip(), so frames in a hold interval before
// a span starts evaluate to the span's starting value.
func buildPiecewise(spans []span, value func(director.CameraState) float64) string {
	var b strings.Builder
	for _, s := range spans {
		v0 := value(s.from)
		v1 := value(s.to)
		if s.f1 <= s.f0 || v0 == v1 {
			fmt.Fprintf(&b, "if(lte(on,%d),%.6f,", s.f1, v1)
			continue
		}
		fmt.Fprintf(&b, "if(lte(on,%d),%.6f+(%.6f)*clip((on-%d)/%d,0,1),",
			s.f1, v0, v1-v0, s.f0, s.f1-s.f0)
	}
	fmt.Fprintf(&b, "%.6f", value(spans[len(spans)-1].to))
	b.WriteString(strings.Repeat(")", len(spans)))
	return b.String()
}
