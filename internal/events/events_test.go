package events

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		events  []PointerEvent
		wantErr bool
		index   int
		field   string
	}{
		{
			name: "valid sequence",
			events: []PointerEvent{
				{Timestamp: 0.0, Kind: KindMove, X: 0.1, Y: 0.1},
				{Timestamp: 1.0, Kind: KindClick, X: 0.5, Y: 0.5},
				{Timestamp: 2.5, Kind: KindUp, X: 0.5, Y: 0.5},
			},
		},
		{
			name:   "empty log",
			events: nil,
		},
		{
			name: "timestamps not increasing",
			events: []PointerEvent{
				{Timestamp: 1.0, Kind: KindClick, X: 0.5, Y: 0.5},
				{Timestamp: 1.0, Kind: KindClick, X: 0.6, Y: 0.5},
			},
			wantErr: true,
			index:   1,
			field:   "timestamp",
		},
		{
			name: "negative timestamp",
			events: []PointerEvent{
				{Timestamp: -0.5, Kind: KindClick, X: 0.5, Y: 0.5},
			},
			wantErr: true,
			index:   0,
			field:   "timestamp",
		},
		{
			name: "NaN timestamp",
			events: []PointerEvent{
				{Timestamp: math.NaN(), Kind: KindClick, X: 0.5, Y: 0.5},
			},
			wantErr: true,
			index:   0,
			field:   "timestamp",
		},
		{
			name: "coordinate above 1",
			events: []PointerEvent{
				{Timestamp: 1.0, Kind: KindClick, X: 1.2, Y: 0.5},
			},
			wantErr: true,
			index:   0,
			field:   "x",
		},
		{
			name: "negative coordinate",
			events: []PointerEvent{
				{Timestamp: 1.0, Kind: KindClick, X: 0.5, Y: -0.1},
			},
			wantErr: true,
			index:   0,
			field:   "y",
		},
		{
			name: "unknown kind",
			events: []PointerEvent{
				{Timestamp: 1.0, Kind: "hover", X: 0.5, Y: 0.5},
			},
			wantErr: true,
			index:   0,
			field:   "kind",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := &Log{Events: tt.events}
			err := log.Validate()
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %T", err)
			}
			if verr.Index != tt.index {
				t.Errorf("expected index %d, got %d", tt.index, verr.Index)
			}
			if verr.Field != tt.field {
				t.Errorf("expected field %q, got %q", tt.field, verr.Field)
			}
		})
	}
}

func TestDuration(t *testing.T) {
	empty := &Log{}
	if d := empty.Duration(); d != 0 {
		t.Errorf("empty log duration should be 0, got %f", d)
	}

	log := &Log{Events: []PointerEvent{
		{Timestamp: 1.0, Kind: KindClick, X: 0.5, Y: 0.5},
		{Timestamp: 7.25, Kind: KindMove, X: 0.5, Y: 0.5},
	}}
	if d := log.Duration(); d != 7.25 {
		t.Errorf("expected duration 7.25, got %f", d)
	}
}

func TestReadWriteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.json")

	orig := &Log{
		Metadata: Metadata{Width: 2560, Height: 1440, FPS: 60},
		Events: []PointerEvent{
			{Timestamp: 0.5, Kind: KindMove, X: 0.25, Y: 0.75},
			{Timestamp: 1.0, Kind: KindClick, X: 0.5, Y: 0.5},
		},
	}

	if err := WriteLog(orig, path); err != nil {
		t.Fatalf("WriteLog: %v", err)
	}

	got, err := ReadLog(path)
	if err != nil {
		t.Fatalf("ReadLog: %v", err)
	}

	if got.Metadata != orig.Metadata {
		t.Errorf("metadata mismatch: %+v vs %+v", got.Metadata, orig.Metadata)
	}
	if len(got.Events) != len(orig.Events) {
		t.Fatalf("expected %d events, got %d", len(orig.Events), len(got.Events))
	}
	for i := range got.Events {
		if got.Events[i] != orig.Events[i] {
			t.Errorf("event %d mismatch: %+v vs %+v", i, got.Events[i], orig.Events[i])
		}
	}
}

func TestReadLegacyFormat(t *testing.T) {
	// Old recordings are a bare event array without the metadata header.
	path := filepath.Join(t.TempDir(), "legacy.json")
	data := `[
  {"timestamp": 1.0, "kind": "click", "x": 0.5, "y": 0.5},
  {"timestamp": 2.0, "kind": "move", "x": 0.6, "y": 0.4}
]`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	log, err := ReadLog(path)
	if err != nil {
		t.Fatalf("ReadLog: %v", err)
	}
	if len(log.Events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(log.Events))
	}
	if log.Metadata.Width != 1920 || log.Metadata.Height != 1080 {
		t.Errorf("legacy logs should default to 1920x1080, got %dx%d",
			log.Metadata.Width, log.Metadata.Height)
	}
	if log.Events[0].Kind != KindClick || log.Events[0].Timestamp != 1.0 {
		t.Errorf("unexpected first event: %+v", log.Events[0])
	}
}

func TestReadLogGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadLog(path); err == nil {
		t.Error("expected error for malformed JSON")
	}
}
