package source

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"sort"
)

// ImageSequenceSource serves a directory of numbered still frames as a
// video stream at a fixed frame rate. Mostly useful for golden-image
// testing and debugging without a video decoder.
type ImageSequenceSource struct {
	paths  []string
	fps    float64
	width  int
	height int
	frame  int
}

func NewImageSequenceSource(dir string, fps float64) (*ImageSequenceSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch filepath.Ext(entry.Name()) {
		case ".png", ".jpg", ".jpeg":
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no frames found in %s", dir)
	}
	sort.Strings(paths)

	f, err := os.Open(paths[0])
	if err != nil {
		return nil, err
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return nil, &DecodeError{Path: paths[0], Err: err}
	}

	return &ImageSequenceSource{
		paths:  paths,
		fps:    fps,
		width:  cfg.Width,
		height: cfg.Height,
	}, nil
}

func (s *ImageSequenceSource) Width() int      { return s.width }
func (s *ImageSequenceSource) Height() int     { return s.height }
func (s *ImageSequenceSource) FPS() float64    { return s.fps }
func (s *ImageSequenceSource) FrameCount() int { return len(s.paths) }

func (s *ImageSequenceSource) Duration() float64 {
	return float64(len(s.paths)) / s.fps
}

func (s *ImageSequenceSource) ReadFrame() (*image.RGBA, error) {
	if s.frame >= len(s.paths) {
		return nil, io.EOF
	}
	path := s.paths[s.frame]

	f, err := os.Open(path)
	if err != nil {
		return nil, &DecodeError{Path: path, Frame: s.frame, Err: err}
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, &DecodeError{Path: path, Frame: s.frame, Err: err}
	}

	rgba, ok := img.(*image.RGBA)
	if !ok {
		rgba = image.NewRGBA(img.Bounds())
		draw.Draw(rgba, img.Bounds(), img, img.Bounds().Min, draw.Src)
	}
	s.frame++
	return rgba, nil
}

func (s *ImageSequenceSource) Close() error { return nil }
