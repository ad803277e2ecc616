package renderer

import (
	"fmt"

	"github.com/mvolkov/demofocus/internal/director"
)

// BlurQuality selects how many camera samples are averaged per frame
type BlurQuality string

const (
	BlurOff    BlurQuality = "off"
	BlurLow    BlurQuality = "low"
	BlurMedium BlurQuality = "medium"
	BlurHigh   BlurQuality = "high"
)

// maxBlurSamples bounds the per-frame sampling cost
const maxBlurSamples = 32

// Samples maps a quality level to a sample count. Unknown values behave
// like off.
func (q BlurQuality) Samples() int {
	switch q {
	case BlurLow:
		return 4
	case BlurMedium:
		return 8
	case BlurHigh:
		return 16
	default:
		return 1
	}
}

// FrameParams is the per-frame parameter block handed to the compositing
// stage. It is plain data, owned by the caller of the frame, and carries
// everything the sampler needs: the camera now, the camera one frame
// interval earlier (the blur interpolation endpoint, not a second decoded
// frame), and the output geometry.
type FrameParams struct {
	Zoom   float64
	CX, CY float64

	PrevZoom    float64
	PrevCX      float64
	PrevCY      float64
	BlurSamples int

	Width  int
	Height int
	Aspect float64
}

// OutOfRangeError reports a frame time outside the recording
type OutOfRangeError struct {
	Time     float64
	Duration float64
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("frame time %.4fs outside recording duration %.4fs", e.Time, e.Duration)
}

// timeEpsilon absorbs float drift when frame times are accumulated as i/fps
const timeEpsilon = 1e-9

// ResolveFrame samples the camera path into the parameter block for the
// output frame at time t. frameDuration is one output-frame interval; the
// path state at t-frameDuration becomes the blur start point.
func ResolveFrame(path *director.CameraPath, t, frameDuration float64, quality BlurQuality, width, height int) (FrameParams, error) {
	if t < -timeEpsilon || t > path.Duration()+timeEpsilon {
		return FrameParams{}, &OutOfRangeError{Time: t, Duration: path.Duration()}
	}

	cur := path.StateAt(t)
	prev := path.StateAt(t - frameDuration)

	samples := quality.Samples()
	if samples > maxBlurSamples {
		samples = maxBlurSamples
	}
	if samples < 1 {
		samples = 1
	}

	return FrameParams{
		Zoom:        cur.Zoom,
		CX:          cur.CX,
		CY:          cur.CY,
		PrevZoom:    prev.Zoom,
		PrevCX:      prev.CX,
		PrevCY:      prev.CY,
		BlurSamples: samples,
		Width:       width,
		Height:      height,
		Aspect:      float64(width) / float64(height),
	}, nil
}
