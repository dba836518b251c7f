// Package mlmodel adapts the pre-trained eligibility classifier behind the
// narrow predict/decode contract. The model itself lives in a scoring
// service; the manifest pins the artifact version, the trained feature order
// and the label encoding this process was built against.
package mlmodel

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Manifest struct {
	Model    string   `yaml:"model"`
	Version  string   `yaml:"version"`
	Features []string `yaml:"features"`
	Labels   []string `yaml:"labels"`
}

// LoadManifest reads the model manifest at startup. A broken or incomplete
// manifest fails process initialization, not individual predictions.
func LoadManifest(path string) (Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("read model manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return Manifest{}, fmt.Errorf("parse model manifest: %w", err)
	}

	if m.Model == "" {
		return Manifest{}, fmt.Errorf("model manifest %s: model name is required", path)
	}
	if len(m.Features) == 0 {
		return Manifest{}, fmt.Errorf("model manifest %s: feature schema is required", path)
	}
	if len(m.Labels) == 0 {
		return Manifest{}, fmt.Errorf("model manifest %s: label encoding is required", path)
	}
	return m, nil
}
