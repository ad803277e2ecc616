package director

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PathFile is the on-disk form of a planned camera path. Exporting the
// keyframes lets a path be inspected or hand-tweaked and re-imported
// without re-running the planner.
type PathFile struct {
	Version    string     `yaml:"version"`
	Duration   float64    `yaml:"duration"`
	Transition float64    `yaml:"transition"`
	Keyframes  []Keyframe `yaml:"keyframes"`
}

// WritePath writes a camera path to a YAML file
func WritePath(p *CameraPath, transition float64, path string) error {
	file := PathFile{
		Version:    "1.0",
		Duration:   p.Duration(),
		Transition: transition,
		Keyframes:  p.Keyframes(),
	}
	data, err := yaml.Marshal(&file)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadPath reads a YAML path file and rebuilds the trajectory
func ReadPath(path string) (*CameraPath, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file PathFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	return FromKeyframes(file.Keyframes, file.Transition, file.Duration)
}

// FromKeyframes rebuilds a camera path from stored keyframes. Each segment
// is re-based from the evaluated state at its start, the same chaining the
// planner uses, so a round-tripped path evaluates identically.
func FromKeyframes(keyframes []Keyframe, transition, duration float64) (*CameraPath, error) {
	if transition <= 0 {
		return nil, fmt.Errorf("transition %.3f must be positive", transition)
	}
	prev := -1.0
	for i, kf := range keyframes {
		if kf.Time <= prev {
			return nil, fmt.Errorf("keyframe %d: time %.3f not increasing", i, kf.Time)
		}
		if kf.Zoom < 1.0 {
			return nil, fmt.Errorf("keyframe %d: zoom %.3f below 1.0", i, kf.Zoom)
		}
		prev = kf.Time
	}

	path := &CameraPath{keyframes: keyframes, duration: duration}
	for _, kf := range keyframes {
		from := path.StateAt(kf.Time)
		path.segments = append(path.segments, Segment{
			Start:    kf.Time,
			Duration: transition,
			From:     from,
			To:       CameraState{Zoom: kf.Zoom, CX: kf.CX, CY: kf.CY},
		})
	}
	return path, nil
}
