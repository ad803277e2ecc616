package source

import (
	"fmt"
	"image"
	"io"

	vidio "github.com/AlexEidt/Vidio"
)

// FrameSource supplies decoded source frames in presentation order.
// Decoding is delegated entirely to the implementation; the compositing
// core never touches codecs.
type FrameSource interface {
	Width() int
	Height() int
	FPS() float64
	FrameCount() int   // 0 when unknown up front
	Duration() float64 // seconds, 0 when unknown
	// ReadFrame returns the next frame as a caller-owned RGBA image,
	// io.EOF after the last frame, or a DecodeError on failure.
	ReadFrame() (*image.RGBA, error)
	Close() error
}

// DecodeError is a failure reported by the decoding collaborator. It is
// passed through unmodified and treated as fatal for the current export;
// the core never retries decoding.
type DecodeError struct {
	Path  string
	Frame int
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s frame %d: %v", e.Path, e.Frame, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// VideoSource decodes a video file frame by frame
type VideoSource struct {
	video *vidio.Video
	path  string
	frame int
}

func NewVideoSource(path string) (*VideoSource, error) {
	video, err := vidio.NewVideo(path)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	return &VideoSource{video: video, path: path}, nil
}

func (s *VideoSource) Width() int        { return s.video.Width() }
func (s *VideoSource) Height() int       { return s.video.Height() }
func (s *VideoSource) FPS() float64      { return s.video.FPS() }
func (s *VideoSource) FrameCount() int   { return s.video.Frames() }
func (s *VideoSource) Duration() float64 { return s.video.Duration() }

func (s *VideoSource) ReadFrame() (*image.RGBA, error) {
	if !s.video.Read() {
		if s.video.Frames() > 0 && s.frame < s.video.Frames() {
			return nil, &DecodeError{
				Path:  s.path,
				Frame: s.frame,
				Err:   fmt.Errorf("stream ended after %d of %d frames", s.frame, s.video.Frames()),
			}
		}
		return nil, io.EOF
	}

	// The decoder reuses its frame buffer, so each frame is copied out and
	// owned by the caller. Frames for different workers never alias.
	w, h := s.video.Width(), s.video.Height()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	copy(img.Pix, s.video.FrameBuffer())
	s.frame++
	return img, nil
}

func (s *VideoSource) Close() error {
	s.video.Close()
	return nil
}
