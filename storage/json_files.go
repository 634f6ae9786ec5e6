package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"personal-data-assistant/models"
)

const (
	NotesFileName    = "notes_extracted.json"
	SummaryFileName  = "summary.json"
	ManifestFileName = "manifest.json"
)

// WriteJSON writes v pretty-printed to path, creating parent directories.
func WriteJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("json: create dir for %q: %w", path, err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("json: encode %q: %w", path, err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("json: write %q: %w", path, err)
	}
	return nil
}

// ReadJSON decodes the JSON file at path into v.
func ReadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("json: read %q: %w: %w", path, ErrSourceUnavailable, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("json: decode %q: %w", path, err)
	}
	return nil
}

// ReadNotes loads a notes_extracted.json.
func ReadNotes(path string) (models.NotesExtraction, error) {
	var n models.NotesExtraction
	if err := ReadJSON(path, &n); err != nil {
		return models.NotesExtraction{}, err
	}
	if n.ActionItems == nil {
		n.ActionItems = []string{}
	}
	if n.Topics == nil {
		n.Topics = map[string]int{}
	}
	return n, nil
}

// ReadReport loads a summary.json.
func ReadReport(path string) (*models.Report, error) {
	var r models.Report
	if err := ReadJSON(path, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// LoadProfile reads an optional profile JSON object. A missing path, missing
// file or malformed content all yield an empty profile.
func LoadProfile(path string) map[string]any {
	profile := map[string]any{}
	if path == "" {
		return profile
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return profile
	}
	if err := json.Unmarshal(data, &profile); err != nil {
		return map[string]any{}
	}
	return profile
}
