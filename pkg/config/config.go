// Package config loads pdftext settings from YAML and the environment.
//
// A settings file looks like:
//
//	worker_page_threshold: 10
//	block_threshold: 0.8
//	row_overlap: 0.5
//	model_path: ""
//	documentai:
//	  project_id: "your-gcp-project-id"
//	  location: "us"
//	  processor_id: "your-processor-id"
//
// Environment variables override the file:
//
//	PDFTEXT_WORKER_PAGE_THRESHOLD, PDFTEXT_BLOCK_THRESHOLD,
//	PDFTEXT_ROW_OVERLAP, PDFTEXT_MODEL_PATH
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/hector-sherpas/pdftext/pkg/layout"
	"github.com/hector-sherpas/pdftext/pkg/partition"
)

// DefaultBlockThreshold is the new-block probability above which the
// default model closes a block.
const DefaultBlockThreshold = 0.8

// Environment variable names
const (
	EnvWorkerPageThreshold = "PDFTEXT_WORKER_PAGE_THRESHOLD"
	EnvBlockThreshold      = "PDFTEXT_BLOCK_THRESHOLD"
	EnvRowOverlap          = "PDFTEXT_ROW_OVERLAP"
	EnvModelPath           = "PDFTEXT_MODEL_PATH"
)

// Settings holds the tunables shared by the pipeline
type Settings struct {
	WorkerPageThreshold int        `yaml:"worker_page_threshold"` // Minimum pages per worker
	BlockThreshold      float64    `yaml:"block_threshold"`       // Probability above which a new block starts
	RowOverlap          float64    `yaml:"row_overlap"`           // Row grouping tolerance for block sorting
	ModelPath           string     `yaml:"model_path"`            // Optional heuristic weights file
	DocumentAI          DocumentAI `yaml:"documentai"`            // Document AI backend
}

// DocumentAI identifies a Google Document AI processor
type DocumentAI struct {
	ProjectID   string `yaml:"project_id"`
	Location    string `yaml:"location"`
	ProcessorID string `yaml:"processor_id"`
}

// Default returns the built-in settings
func Default() Settings {
	return Settings{
		WorkerPageThreshold: partition.DefaultWorkerPageThreshold,
		BlockThreshold:      DefaultBlockThreshold,
		RowOverlap:          layout.DefaultRowOverlap,
		DocumentAI: DocumentAI{
			Location: "us",
		},
	}
}

// WithDefaults returns s with every zero field replaced by its Default
// value. Settings built field by field, rather than from Default, need it
// before use.
func (s Settings) WithDefaults() Settings {
	d := Default()
	if s.WorkerPageThreshold == 0 {
		s.WorkerPageThreshold = d.WorkerPageThreshold
	}
	if s.BlockThreshold == 0 {
		s.BlockThreshold = d.BlockThreshold
	}
	if s.RowOverlap == 0 {
		s.RowOverlap = d.RowOverlap
	}
	if s.DocumentAI.Location == "" {
		s.DocumentAI.Location = d.DocumentAI.Location
	}
	return s
}

// Load reads a YAML file on top of the defaults and applies environment
// overrides. An empty path skips the file.
func Load(path string) (Settings, error) {
	s := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return s, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &s); err != nil {
			return s, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := s.ApplyEnv(os.LookupEnv); err != nil {
		return s, err
	}
	return s, s.Validate()
}

// ApplyEnv overrides settings from environment variables found by lookup.
func (s *Settings) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvWorkerPageThreshold); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvWorkerPageThreshold, err)
		}
		s.WorkerPageThreshold = n
	}
	if v, ok := lookup(EnvBlockThreshold); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvBlockThreshold, err)
		}
		s.BlockThreshold = f
	}
	if v, ok := lookup(EnvRowOverlap); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRowOverlap, err)
		}
		s.RowOverlap = f
	}
	if v, ok := lookup(EnvModelPath); ok {
		s.ModelPath = v
	}
	return nil
}

// Validate checks value ranges
func (s Settings) Validate() error {
	var errs []error
	if s.WorkerPageThreshold < 1 {
		errs = append(errs, fmt.Errorf("worker_page_threshold must be at least 1, got %d", s.WorkerPageThreshold))
	}
	if s.BlockThreshold < 0 || s.BlockThreshold > 1 {
		errs = append(errs, fmt.Errorf("block_threshold must be within [0, 1], got %v", s.BlockThreshold))
	}
	if s.RowOverlap < 0 || s.RowOverlap > 1 {
		errs = append(errs, fmt.Errorf("row_overlap must be within [0, 1], got %v", s.RowOverlap))
	}
	return errors.Join(errs...)
}
