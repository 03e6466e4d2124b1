package scraper

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	imageMapFile   = "image_map.json"
	imageStateFile = "image_state.json"
)

// SaveImageMap persists the run's sku→image-URL map next to the downloads,
// so a later -skip-download run can reuse it.
func SaveImageMap(dir string, imageMap map[string]string) error {
	return writeJSON(filepath.Join(dir, imageMapFile), imageMap)
}

// LoadImageMap reads a previously persisted image map. A missing file is not
// an error: the sync simply proceeds without new images.
func LoadImageMap(dir string) (map[string]string, error) {
	imageMap := make(map[string]string)
	if err := readJSON(filepath.Join(dir, imageMapFile), &imageMap); err != nil {
		if os.IsNotExist(err) {
			return imageMap, nil
		}
		return nil, err
	}
	return imageMap, nil
}

// ImageState tracks, across runs, which SKUs already have a resolved image,
// so later runs skip re-deriving them.
type ImageState struct {
	path     string
	Resolved map[string]bool
}

// LoadImageState reads the cross-run state from dir, starting empty when the
// file does not exist yet.
func LoadImageState(dir string) (*ImageState, error) {
	state := &ImageState{
		path:     filepath.Join(dir, imageStateFile),
		Resolved: make(map[string]bool),
	}
	if err := readJSON(state.path, &state.Resolved); err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	return state, nil
}

func (s *ImageState) IsResolved(sku string) bool {
	return s.Resolved[sku]
}

func (s *ImageState) MarkResolved(sku string) {
	s.Resolved[sku] = true
}

// Save writes the state back to disk.
func (s *ImageState) Save() error {
	return writeJSON(s.path, s.Resolved)
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
