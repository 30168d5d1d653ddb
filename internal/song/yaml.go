package song

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// YAMLSong represents the YAML structure for a song timing file.
type YAMLSong struct {
	Title         string        `yaml:"title"`
	BPM           float64       `yaml:"bpm"`
	Duration      float64       `yaml:"duration"`
	MeasureLength float64       `yaml:"measure_length,omitempty"`
	Beats         []float64     `yaml:"beats"`
	Sections      []YAMLSection `yaml:"sections,omitempty"`
}

// YAMLSection represents one intensity section.
type YAMLSection struct {
	Start     float64 `yaml:"start"`
	End       float64 `yaml:"end"`
	Intensity float64 `yaml:"intensity"`
}

// ParseYAML parses a YAML song file.
func ParseYAML(data []byte) (Features, error) {
	var ys YAMLSong
	if err := yaml.Unmarshal(data, &ys); err != nil {
		return Features{}, fmt.Errorf("yaml unmarshal: %w", err)
	}
	if !(ys.Duration > 0) {
		return Features{}, fmt.Errorf("song %q: duration must be positive", ys.Title)
	}

	f := Features{
		Title:         ys.Title,
		BeatTimes:     ys.Beats,
		Duration:      ys.Duration,
		BPM:           ys.BPM,
		MeasureLength: ys.MeasureLength,
	}
	for _, s := range ys.Sections {
		f.Sections = append(f.Sections, Section(s))
	}
	return f, nil
}

// LoadFile reads a YAML song file.
func LoadFile(path string) (Features, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Features{}, fmt.Errorf("read song %s: %w", path, err)
	}
	f, err := ParseYAML(data)
	if err != nil {
		return Features{}, fmt.Errorf("parse song %s: %w", path, err)
	}
	return f, nil
}

// MarshalYAML encodes features back into the file format.
func MarshalYAML(f Features) ([]byte, error) {
	ys := YAMLSong{
		Title:         f.Title,
		BPM:           f.BPM,
		Duration:      f.Duration,
		MeasureLength: f.MeasureLength,
		Beats:         f.BeatTimes,
	}
	for _, s := range f.Sections {
		ys.Sections = append(ys.Sections, YAMLSection(s))
	}
	return yaml.Marshal(ys)
}
