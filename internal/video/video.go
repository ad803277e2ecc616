package video

import (
	"fmt"
	"image"

	vidio "github.com/AlexEidt/Vidio"
)

// FrameSink consumes composited frames in presentation order and hands
// them to an external encoder. Implementations are not safe for concurrent
// use; the engine serializes writes.
type FrameSink interface {
	WriteFrame(img *image.RGBA) error
	Close() error
}

// VidioSink encodes frame buffers through an ffmpeg pipe
type VidioSink struct {
	writer *vidio.VideoWriter
	path   string
	frames int
}

func NewVidioSink(path string, width, height int, fps float64, codec string) (*VidioSink, error) {
	options := vidio.Options{
		FPS:   fps,
		Codec: codec,
	}
	writer, err := vidio.NewVideoWriter(path, width, height, &options)
	if err != nil {
		return nil, fmt.Errorf("open encoder for %s: %w", path, err)
	}
	return &VidioSink{writer: writer, path: path}, nil
}

func (s *VidioSink) WriteFrame(img *image.RGBA) error {
	if err := s.writer.Write(img.Pix); err != nil {
		return fmt.Errorf("encode frame %d of %s: %w", s.frames, s.path, err)
	}
	s.frames++
	return nil
}

func (s *VidioSink) Close() error {
	s.writer.Close()
	return nil
}
