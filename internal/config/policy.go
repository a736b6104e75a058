package config

import (
	"fmt"
	"os"

	"github.com/linskybing/grant-review/internal/domain/call"
	"gopkg.in/yaml.v2"
)

// PhaseText overrides the display text of one lifecycle phase.
type PhaseText struct {
	Label       string `yaml:"label"`
	Description string `yaml:"description"`
}

// Policy is the optional workflow policy file. Only presentation and
// tunables are configurable; the phase order is fixed.
type Policy struct {
	Phases              map[string]PhaseText `yaml:"phases"`
	DispersionThreshold *float64             `yaml:"dispersion_threshold"`
	AreaPrefixLength    *int                 `yaml:"area_prefix_length"`
	ScoreScale          *float64             `yaml:"score_scale"`
}

// LoadPolicy reads a YAML policy file. An empty path yields an empty policy.
func LoadPolicy(path string) (Policy, error) {
	var p Policy
	if path == "" {
		return p, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read policy file: %w", err)
	}
	return ParsePolicy(raw)
}

func ParsePolicy(raw []byte) (Policy, error) {
	var p Policy
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return p, fmt.Errorf("parse policy file: %w", err)
	}
	if p.ScoreScale != nil && *p.ScoreScale <= 0 {
		return p, fmt.Errorf("score_scale must be positive")
	}
	if p.DispersionThreshold != nil && *p.DispersionThreshold < 0 {
		return p, fmt.Errorf("dispersion_threshold must not be negative")
	}
	return p, nil
}

// ApplyPhases returns a copy of phases with label and description
// overrides applied. Unknown statuses are an error.
func (p Policy) ApplyPhases(phases []call.Phase) ([]call.Phase, error) {
	out := make([]call.Phase, len(phases))
	copy(out, phases)
	index := make(map[call.Status]int, len(out))
	for i, ph := range out {
		index[ph.Status] = i
	}
	for status, text := range p.Phases {
		i, ok := index[call.Status(status)]
		if !ok {
			return nil, fmt.Errorf("policy names unknown phase %q", status)
		}
		if text.Label != "" {
			out[i].Label = text.Label
		}
		if text.Description != "" {
			out[i].Description = text.Description
		}
	}
	return out, nil
}

// ApplyTunables overlays policy tunables on the env-derived globals.
func (p Policy) ApplyTunables() {
	if p.DispersionThreshold != nil {
		DispersionThreshold = *p.DispersionThreshold
	}
	if p.AreaPrefixLength != nil {
		AreaPrefixLength = *p.AreaPrefixLength
	}
	if p.ScoreScale != nil {
		ScoreScale = *p.ScoreScale
	}
}
