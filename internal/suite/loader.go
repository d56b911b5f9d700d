package suite

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/evalgate/evalgate/internal/eval"
)

//go:embed all:testdata
var embeddedSuites embed.FS

const (
	defaultThreshold = 0.5
	suiteExtension   = ".yaml"
)

// defaultParams is used when a metric declares no evaluation params.
var defaultParams = []eval.Param{eval.ParamInput, eval.ParamActualOutput}

// metricSpec mirrors eval.Metric for YAML decoding. Threshold is a pointer
// so an explicit 0.0 survives defaulting.
type metricSpec struct {
	Name      string       `yaml:"name"`
	Criteria  string       `yaml:"criteria"`
	Params    []eval.Param `yaml:"params"`
	Threshold *float64     `yaml:"threshold"`
}

// suiteSpec is the on-disk suite document.
type suiteSpec struct {
	Suite   `yaml:",inline"`
	Metrics []metricSpec `yaml:"metrics"`
}

// Load loads a suite by name, searching first in the external directory
// (if provided), then in the embedded suites.
func Load(name string, externalDir string) (*Suite, error) {
	filename := name
	if !strings.HasSuffix(filename, suiteExtension) {
		filename += suiteExtension
	}

	if externalDir != "" {
		data, err := os.ReadFile(filepath.Join(externalDir, filename))
		if err == nil {
			return parse(data, name)
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read suite %q: %w", name, err)
		}
	}

	data, err := fs.ReadFile(embeddedSuites, "testdata/"+filename)
	if err != nil {
		return nil, fmt.Errorf("suite %q not found: %w", name, err)
	}
	return parse(data, name)
}

// List returns the names of all available suites, external ones first
// shadowing embedded ones of the same name.
func List(externalDir string) ([]string, error) {
	seen := make(map[string]bool)

	if externalDir != "" {
		entries, err := os.ReadDir(externalDir)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read suites directory: %w", err)
		}
		for _, e := range entries {
			if !e.IsDir() && strings.HasSuffix(e.Name(), suiteExtension) {
				seen[strings.TrimSuffix(e.Name(), suiteExtension)] = true
			}
		}
	}

	entries, err := fs.ReadDir(embeddedSuites, "testdata")
	if err == nil {
		for _, e := range entries {
			if !e.IsDir() && strings.HasSuffix(e.Name(), suiteExtension) {
				seen[strings.TrimSuffix(e.Name(), suiteExtension)] = true
			}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func parse(data []byte, name string) (*Suite, error) {
	var spec suiteSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("failed to parse suite %q: %w", name, err)
	}

	s := spec.Suite
	s.Metrics = make([]eval.Metric, 0, len(spec.Metrics))
	for _, ms := range spec.Metrics {
		m := eval.Metric{
			Name:      ms.Name,
			Criteria:  ms.Criteria,
			Params:    ms.Params,
			Threshold: defaultThreshold,
		}
		if len(m.Params) == 0 {
			m.Params = defaultParams
		}
		if ms.Threshold != nil {
			m.Threshold = *ms.Threshold
		}
		s.Metrics = append(s.Metrics, m)
	}

	if s.Name == "" {
		s.Name = name
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}
