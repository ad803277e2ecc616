package renderer

import (
	"image"
	"math"

	"github.com/mvolkov/demofocus/internal/director"
)

// This file is the non-accelerated rendition of the sampling and blur math.
// It computes every output pixel independently in float64, with no
// precomputed tables, and exists as the golden baseline the optimized
// compositor is regression-tested against.

// SampleWindow maps a normalized output coordinate q to the normalized
// source coordinate for a given camera state: the window center is clamped
// so the inverse-zoom window stays inside [0,1]^2, then q is scaled into it.
func SampleWindow(qx, qy float64, state director.CameraState) (float64, float64) {
	invZoom := 1.0 / state.Zoom
	half := invZoom / 2
	ccx, ccy := clampCenter(state.CX, state.CY, half)
	return ccx - half + qx*invZoom, ccy - half + qy*invZoom
}

// RenderReference composites one frame with the reference math. Semantics
// match Compositor.Render exactly; only the evaluation strategy differs.
func RenderReference(src *image.RGBA, params FrameParams, dst *image.RGBA) {
	cur := director.CameraState{Zoom: params.Zoom, CX: params.CX, CY: params.CY}
	prev := director.CameraState{Zoom: params.PrevZoom, CX: params.PrevCX, CY: params.PrevCY}

	w, h := params.Width, params.Height
	samples := params.BlurSamples
	if samples <= 1 || prev == cur {
		samples = 1
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			qx := (float64(x) + 0.5) / float64(w)
			qy := (float64(y) + 0.5) / float64(h)

			var sum [4]float64
			for s := 0; s < samples; s++ {
				state := cur
				if samples > 1 {
					t := float64(s) / float64(samples-1)
					state = director.CameraState{
						Zoom: lerp(prev.Zoom, cur.Zoom, t),
						CX:   lerp(prev.CX, cur.CX, t),
						CY:   lerp(prev.CY, cur.CY, t),
					}
				}
				u, v := SampleWindow(qx, qy, state)
				px := bilinear(src, u, v)
				for ch := 0; ch < 4; ch++ {
					sum[ch] += px[ch]
				}
			}

			off := y*dst.Stride + x*4
			for ch := 0; ch < 4; ch++ {
				dst.Pix[off+ch] = clamp8(sum[ch] / float64(samples))
			}
		}
	}
}

// bilinear samples src at a normalized coordinate with edge clamping
func bilinear(src *image.RGBA, u, v float64) [4]float64 {
	sw, sh := src.Bounds().Dx(), src.Bounds().Dy()
	px := u*float64(sw) - 0.5
	py := v*float64(sh) - 0.5

	x0 := int(math.Floor(px))
	y0 := int(math.Floor(py))
	fx := px - math.Floor(px)
	fy := py - math.Floor(py)

	fetch := func(x, y int) [4]float64 {
		if x < 0 {
			x = 0
		}
		if x > sw-1 {
			x = sw - 1
		}
		if y < 0 {
			y = 0
		}
		if y > sh-1 {
			y = sh - 1
		}
		off := y*src.Stride + x*4
		return [4]float64{
			float64(src.Pix[off]),
			float64(src.Pix[off+1]),
			float64(src.Pix[off+2]),
			float64(src.Pix[off+3]),
		}
	}

	p00 := fetch(x0, y0)
	p10 := fetch(x0+1, y0)
	p01 := fetch(x0, y0+1)
	p11 := fetch(x0+1, y0+1)

	var out [4]float64
	for ch := 0; ch < 4; ch++ {
		top := lerp(p00[ch], p10[ch], fx)
		bot := lerp(p01[ch], p11[ch], fx)
		out[ch] = lerp(top, bot, fy)
	}
	return out
}

// lerp performs linear interpolation between a and b
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
