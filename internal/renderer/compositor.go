package renderer

import (
	"fmt"
	"image"
	"math"

	xdraw "golang.org/x/image/draw"

	"github.com/mvolkov/demofocus/internal/director"
)

// ResourceError reports a compositing backend failure. The compositor never
// retries internally; retry policy belongs to the caller.
type ResourceError struct {
	Op  string
	Err error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("compositor %s: %v", e.Op, e.Err)
}

func (e *ResourceError) Unwrap() error { return e.Err }

// Compositor renders output frames by resampling a source frame through
// the camera window. A Compositor owns scratch buffers and is not safe for
// concurrent use; the engine gives each worker its own instance.
//
// Output is a pure function of (source frame, FrameParams): no randomness,
// no shared state, so repeated exports are pixel-identical.
type Compositor struct {
	width  int
	height int

	// per-sample separable coordinate maps
	ix0, ix1 []int
	iy0, iy1 []int
	fx, fy   []float64

	acc []float32
}

// NewCompositor allocates a compositor for the given output resolution
func NewCompositor(width, height int) (*Compositor, error) {
	if width <= 0 || height <= 0 {
		return nil, &ResourceError{Op: "init", Err: fmt.Errorf("invalid output resolution %dx%d", width, height)}
	}
	return &Compositor{
		width:  width,
		height: height,
		ix0:    make([]int, width),
		ix1:    make([]int, width),
		fx:     make([]float64, width),
		iy0:    make([]int, height),
		iy1:    make([]int, height),
		fy:     make([]float64, height),
		acc:    make([]float32, width*height*4),
	}, nil
}

// Render composites one output frame from src according to params. dst must
// be an RGBA image of the configured output resolution with no sub-rect.
func (c *Compositor) Render(src *image.RGBA, params FrameParams, dst *image.RGBA) error {
	if err := c.check(src, params, dst); err != nil {
		return err
	}

	cur := director.CameraState{Zoom: params.Zoom, CX: params.CX, CY: params.CY}
	prev := director.CameraState{Zoom: params.PrevZoom, CX: params.PrevCX, CY: params.PrevCY}

	// Single-sample fast path. Identical endpoints also take it: averaging
	// N identical samples is a no-op and must match the no-blur output.
	if params.BlurSamples <= 1 || prev == cur {
		if cur.Zoom <= 1.0 {
			c.passthrough(src, dst)
			return nil
		}
		c.renderState(src, dst, cur)
		return nil
	}

	c.renderBlur(src, dst, prev, cur, params.BlurSamples)
	return nil
}

func (c *Compositor) check(src *image.RGBA, params FrameParams, dst *image.RGBA) error {
	if src == nil || src.Bounds().Empty() {
		return &ResourceError{Op: "render", Err: fmt.Errorf("empty source frame")}
	}
	if params.Width != c.width || params.Height != c.height {
		return &ResourceError{Op: "render", Err: fmt.Errorf("params resolution %dx%d does not match compositor %dx%d",
			params.Width, params.Height, c.width, c.height)}
	}
	if dst == nil || dst.Bounds().Dx() != c.width || dst.Bounds().Dy() != c.height {
		return &ResourceError{Op: "render", Err: fmt.Errorf("bad destination buffer")}
	}
	return nil
}

// passthrough handles the degenerate zoom <= 1 window: the full frame,
// copied or rescaled to the output resolution.
func (c *Compositor) passthrough(src, dst *image.RGBA) {
	sb := src.Bounds()
	if sb.Dx() == c.width && sb.Dy() == c.height && src.Stride == dst.Stride {
		copy(dst.Pix, src.Pix)
		return
	}
	xdraw.BiLinear.Scale(dst, dst.Bounds(), src, sb, xdraw.Src, nil)
}

// computeMaps fills the separable source-coordinate tables for one camera
// state. The window center is clamped, not the sampled coordinate, which
// keeps the window inside [0,1]^2 without smearing pixels at the borders.
func (c *Compositor) computeMaps(srcW, srcH int, state director.CameraState) {
	invZoom := 1.0 / state.Zoom
	half := invZoom / 2
	ccx, ccy := clampCenter(state.CX, state.CY, half)

	for x := 0; x < c.width; x++ {
		q := (float64(x) + 0.5) / float64(c.width)
		u := ccx - half + q*invZoom
		px := u*float64(srcW) - 0.5
		c.ix0[x], c.ix1[x], c.fx[x] = splitCoord(px, srcW)
	}
	for y := 0; y < c.height; y++ {
		q := (float64(y) + 0.5) / float64(c.height)
		v := ccy - half + q*invZoom
		py := v*float64(srcH) - 0.5
		c.iy0[y], c.iy1[y], c.fy[y] = splitCoord(py, srcH)
	}
}

// splitCoord splits a source pixel coordinate into the two texel indices
// and the blend fraction, clamping to the edge rather than wrapping.
func splitCoord(p float64, size int) (i0, i1 int, f float64) {
	floor := math.Floor(p)
	f = p - floor
	i0 = int(floor)
	i1 = i0 + 1
	if i0 < 0 {
		i0 = 0
	}
	if i0 > size-1 {
		i0 = size - 1
	}
	if i1 < 0 {
		i1 = 0
	}
	if i1 > size-1 {
		i1 = size - 1
	}
	return i0, i1, f
}

// renderState writes one bilinear resample of src through the camera window
func (c *Compositor) renderState(src, dst *image.RGBA, state director.CameraState) {
	sb := src.Bounds()
	c.computeMaps(sb.Dx(), sb.Dy(), state)

	for y := 0; y < c.height; y++ {
		row0 := src.Pix[c.iy0[y]*src.Stride:]
		row1 := src.Pix[c.iy1[y]*src.Stride:]
		fy := c.fy[y]
		out := dst.Pix[y*dst.Stride : y*dst.Stride+c.width*4]

		for x := 0; x < c.width; x++ {
			o0 := c.ix0[x] * 4
			o1 := c.ix1[x] * 4
			fx := c.fx[x]
			for ch := 0; ch < 4; ch++ {
				top := lerp(float64(row0[o0+ch]), float64(row0[o1+ch]), fx)
				bot := lerp(float64(row1[o0+ch]), float64(row1[o1+ch]), fx)
				out[x*4+ch] = clamp8(lerp(top, bot, fy))
			}
		}
	}
}

// renderBlur averages BlurSamples resamples along the camera motion between
// the previous and current frame state, approximating intra-frame motion
// blur from the single decoded source frame.
func (c *Compositor) renderBlur(src, dst *image.RGBA, prev, cur director.CameraState, samples int) {
	sb := src.Bounds()
	for i := range c.acc {
		c.acc[i] = 0
	}

	for s := 0; s < samples; s++ {
		t := float64(s) / float64(samples-1)
		state := director.CameraState{
			Zoom: lerp(prev.Zoom, cur.Zoom, t),
			CX:   lerp(prev.CX, cur.CX, t),
			CY:   lerp(prev.CY, cur.CY, t),
		}
		c.computeMaps(sb.Dx(), sb.Dy(), state)

		for y := 0; y < c.height; y++ {
			row0 := src.Pix[c.iy0[y]*src.Stride:]
			row1 := src.Pix[c.iy1[y]*src.Stride:]
			fy := c.fy[y]
			accRow := c.acc[y*c.width*4 : (y+1)*c.width*4]

			for x := 0; x < c.width; x++ {
				o0 := c.ix0[x] * 4
				o1 := c.ix1[x] * 4
				fx := c.fx[x]
				for ch := 0; ch < 4; ch++ {
					top := lerp(float64(row0[o0+ch]), float64(row0[o1+ch]), fx)
					bot := lerp(float64(row1[o0+ch]), float64(row1[o1+ch]), fx)
					accRow[x*4+ch] += float32(lerp(top, bot, fy))
				}
			}
		}
	}

	n := float32(samples)
	for y := 0; y < c.height; y++ {
		out := dst.Pix[y*dst.Stride : y*dst.Stride+c.width*4]
		accRow := c.acc[y*c.width*4 : (y+1)*c.width*4]
		for i := 0; i < c.width*4; i++ {
			out[i] = clamp8(float64(accRow[i] / n))
		}
	}
}

// clampCenter clamps the window center so the sampled window stays inside
// the frame. A half extent >= 0.5 means the window already covers
// everything and the center collapses to the middle.
func clampCenter(cx, cy, half float64) (float64, float64) {
	if half >= 0.5 {
		return 0.5, 0.5
	}
	return clampF(cx, half, 1-half), clampF(cy, half, 1-half)
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clamp8(v float64) uint8 {
	r := math.Round(v)
	if r < 0 {
		return 0
	}
	if r > 255 {
		return 255
	}
	return uint8(r)
}
