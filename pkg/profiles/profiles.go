package profiles

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Package profiles describes export-format profiles: which columns a
// bookmarking service's tabular export uses, which source label its pages
// are stamped with, and which text encodings to try when decoding.

// DefaultProfileID identifies the built-in Pocket export profile.
const DefaultProfileID = "pocket"

// Columns maps the logical record fields onto header names in the export file.
type Columns struct {
	Title     string `json:"title" yaml:"title"`
	URL       string `json:"url" yaml:"url"`
	Tags      string `json:"tags" yaml:"tags"`
	TimeAdded string `json:"time_added" yaml:"time_added"`
	Status    string `json:"status" yaml:"status"`
}

// Profile is one export-format entry declared in the profiles file.
type Profile struct {
	ID        string   `json:"id" yaml:"id"`
	Label     string   `json:"label" yaml:"label"`
	Columns   Columns  `json:"columns" yaml:"columns"`
	Encodings []string `json:"encodings" yaml:"encodings"`
}

// configFile represents the structure of the profiles configuration file.
type configFile struct {
	Profiles []Profile `json:"profiles" yaml:"profiles"`
}

// Registry materializes profile definitions loaded from config files.
type Registry struct {
	mu       sync.RWMutex
	profiles []Profile
	idx      map[string]Profile
}

// Default returns the built-in Pocket export profile.
func Default() Profile {
	return Profile{
		ID:    DefaultProfileID,
		Label: "Pocket",
		Columns: Columns{
			Title:     "title",
			URL:       "url",
			Tags:      "tags",
			TimeAdded: "time_added",
			Status:    "status",
		},
		// Fallback chain matters: files that fail strict UTF-8 get a second
		// and third chance with the encodings Pocket exports have shipped in.
		Encodings: []string{"utf-8", "windows-1252", "shift_jis"},
	}
}

// DefaultRegistry returns a registry containing only the built-in profile.
func DefaultRegistry() *Registry {
	def := Default()
	return &Registry{
		profiles: []Profile{def},
		idx:      map[string]Profile{def.ID: def},
	}
}

// LoadRegistry loads the profile registry from a YAML/JSON file.
// The built-in Pocket profile is always present unless the file overrides it.
func LoadRegistry(path string) (*Registry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("profiles file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open profiles file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read profiles file: %w", err)
	}

	fileReg, err := parseRegistry(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}

	reg := DefaultRegistry()
	for i := range fileReg.Profiles {
		p := sanitizeProfile(fileReg.Profiles[i])
		if err := validateProfile(p); err != nil {
			return nil, fmt.Errorf("profiles[%d]: %w", i, err)
		}
		reg.put(p)
	}

	return reg, nil
}

// parseRegistry attempts to decode the profiles file content.
func parseRegistry(data []byte, ext string) (configFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	decoders := []struct {
		name string
		ext  string
		fn   func([]byte, any) error
	}{
		{name: "yaml", ext: ".yaml", fn: yamlUnmarshal},
		{name: "yaml", ext: ".yml", fn: yamlUnmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var reg configFile
		if err := d.fn(data, &reg); err == nil {
			return reg, nil
		}
	}

	return configFile{}, errors.New("profiles file format not recognized (expected YAML or JSON)")
}

func yamlUnmarshal(data []byte, v any) error { return yaml.Unmarshal(data, v) }

// sanitizeProfile trims fields and fills gaps from the built-in defaults.
func sanitizeProfile(p Profile) Profile {
	def := Default()

	p.ID = strings.ToLower(strings.TrimSpace(p.ID))
	p.Label = strings.TrimSpace(p.Label)
	if p.Label == "" {
		p.Label = def.Label
	}

	p.Columns.Title = columnOrDefault(p.Columns.Title, def.Columns.Title)
	p.Columns.URL = columnOrDefault(p.Columns.URL, def.Columns.URL)
	p.Columns.Tags = columnOrDefault(p.Columns.Tags, def.Columns.Tags)
	p.Columns.TimeAdded = columnOrDefault(p.Columns.TimeAdded, def.Columns.TimeAdded)
	p.Columns.Status = columnOrDefault(p.Columns.Status, def.Columns.Status)

	encodings := make([]string, 0, len(p.Encodings))
	for _, enc := range p.Encodings {
		if e := strings.ToLower(strings.TrimSpace(enc)); e != "" {
			encodings = append(encodings, e)
		}
	}
	if len(encodings) == 0 {
		encodings = def.Encodings
	}
	p.Encodings = encodings

	return p
}

func columnOrDefault(col, fallback string) string {
	if trimmed := strings.TrimSpace(col); trimmed != "" {
		return trimmed
	}
	return fallback
}

// validateProfile checks that required fields are present.
func validateProfile(p Profile) error {
	if p.ID == "" {
		return errors.New("id is required")
	}
	if p.Label == "" {
		return fmt.Errorf("label is required for profile %q", p.ID)
	}
	return nil
}

func (r *Registry) put(p Profile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.idx[p.ID]; exists {
		for i := range r.profiles {
			if r.profiles[i].ID == p.ID {
				r.profiles[i] = p
				break
			}
		}
	} else {
		r.profiles = append(r.profiles, p)
	}
	r.idx[p.ID] = p
}

// ByID returns the profile for the given id.
func (r *Registry) ByID(id string) (Profile, bool) {
	if r == nil {
		return Profile{}, false
	}

	id = strings.ToLower(strings.TrimSpace(id))
	if id == "" {
		return Profile{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.idx[id]
	return p, ok
}

// All returns all configured profiles.
func (r *Registry) All() []Profile {
	if r == nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Profile, len(r.profiles))
	copy(out, r.profiles)
	return out
}
