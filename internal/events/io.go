package events

import (
	"encoding/json"
	"fmt"
	"os"
)

// WriteLog writes an event log as pretty-printed JSON
func WriteLog(l *Log, path string) error {
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadLog reads an event log from a JSON file. Files written before the
// metadata header existed contain a bare event array; those are accepted
// and get 1920x1080 metadata.
func ReadLog(path string) (*Log, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var l Log
	if err := json.Unmarshal(data, &l); err == nil && (l.Events != nil || l.Metadata.Width > 0) {
		return &l, nil
	}

	var evs []PointerEvent
	if err := json.Unmarshal(data, &evs); err != nil {
		return nil, fmt.Errorf("parse event log %s: %w", path, err)
	}
	return &Log{
		Metadata: Metadata{Width: 1920, Height: 1080},
		Events:   evs,
	}, nil
}
