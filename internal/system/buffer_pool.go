package system

import (
	"image"
	"sync"
)

// FramePool recycles RGBA frames of a fixed size to keep the compositing
// workers from churning the allocator on long renders.
type FramePool struct {
	pool sync.Pool
}

func NewFramePool(width, height int) *FramePool {
	return &FramePool{
		pool: sync.Pool{
			New: func() interface{} {
				return image.NewRGBA(image.Rect(0, 0, width, height))
			},
		},
	}
}

func (p *FramePool) Get() *image.RGBA {
	return p.pool.Get().(*image.RGBA)
}

func (p *FramePool) Put(img *image.RGBA) {
	if img == nil {
		return
	}
	p.pool.Put(img)
}
