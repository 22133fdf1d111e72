// SPDX-License-Identifier: MPL-2.0

// Package topology loads pyleus topology declarations from YAML.
//
// A topology lists worker components in order:
//
//	name: word_count
//	serializer: json
//	topology:
//	  - spout:
//	      name: line-spout
//	      module: word_count.line_spout
//	  - bolt:
//	      name: split-words
//	      module: word_count.split_words
//	      options:
//	        min_length: 2
//
// Option mappings keep their document key order all the way into the
// --options JSON.
package topology

import (
	"errors"
	"fmt"
	"os"

	"github.com/pyleus/pyleus-launch/internal/component"
	"github.com/pyleus/pyleus-launch/internal/compose"
	"github.com/pyleus/pyleus-launch/internal/issue"

	"gopkg.in/yaml.v3"
)

// ErrInvalidTopology is wrapped by every validation failure.
var ErrInvalidTopology = errors.New("invalid topology")

type (
	// Topology is a parsed topology declaration.
	Topology struct {
		Name string
		// Serializer and LoggingConfig override the runtime configuration
		// when set.
		Serializer    string
		LoggingConfig string
		Components    []Declaration
	}

	// Declaration is one component entry.
	Declaration struct {
		Kind    component.Kind
		Name    string
		Module  compose.ModuleName
		Options *compose.Options
	}

	rawTopology struct {
		Name          string                      `yaml:"name"`
		Serializer    string                      `yaml:"serializer"`
		LoggingConfig string                      `yaml:"logging_config"`
		Topology      []map[string]rawDeclaration `yaml:"topology"`
	}

	rawDeclaration struct {
		Name    string    `yaml:"name"`
		Module  string    `yaml:"module"`
		Options yaml.Node `yaml:"options"`
	}
)

// Load reads and parses the topology file at path.
func Load(path string) (*Topology, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("read topology").
			WithResource(path).
			WithSuggestion("Verify the file path is correct").
			Wrap(err).
			BuildError()
	}

	t, err := Parse(data)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("load topology").
			WithResource(path).
			WithSuggestion("Each entry needs exactly one spout or bolt key with name and module").
			WithSuggestion("Options must be a mapping").
			Wrap(err).
			BuildError()
	}
	return t, nil
}

// Parse decodes and validates a topology document.
func Parse(data []byte) (*Topology, error) {
	var raw rawTopology
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTopology, err)
	}

	if raw.Name == "" {
		return nil, fmt.Errorf("%w: missing name", ErrInvalidTopology)
	}
	if len(raw.Topology) == 0 {
		return nil, fmt.Errorf("%w: no components declared", ErrInvalidTopology)
	}

	t := &Topology{
		Name:          raw.Name,
		Serializer:    raw.Serializer,
		LoggingConfig: raw.LoggingConfig,
	}
	seen := make(map[string]int)

	for i, entry := range raw.Topology {
		if len(entry) != 1 {
			return nil, fmt.Errorf("%w: topology[%d]: expected one spout or bolt key, got %d keys", ErrInvalidTopology, i, len(entry))
		}
		for key, rd := range entry {
			d, err := declaration(component.Kind(key), rd)
			if err != nil {
				return nil, fmt.Errorf("%w: topology[%d]: %w", ErrInvalidTopology, i, err)
			}
			if first, dup := seen[d.Name]; dup {
				return nil, fmt.Errorf("%w: topology[%d]: duplicate component name %q (same as topology[%d])", ErrInvalidTopology, i, d.Name, first)
			}
			seen[d.Name] = i
			t.Components = append(t.Components, d)
		}
	}

	return t, nil
}

func declaration(kind component.Kind, rd rawDeclaration) (Declaration, error) {
	if valid, errs := kind.IsValid(); !valid {
		return Declaration{}, errs[0]
	}
	if rd.Name == "" {
		return Declaration{}, fmt.Errorf("%s without name", kind)
	}
	module := compose.ModuleName(rd.Module)
	if valid, errs := module.IsValid(); !valid {
		return Declaration{}, fmt.Errorf("%s %q: %w", kind, rd.Name, errs[0])
	}
	opts, err := optionsFromNode(&rd.Options)
	if err != nil {
		return Declaration{}, fmt.Errorf("%s %q: options: %w", kind, rd.Name, err)
	}
	return Declaration{Kind: kind, Name: rd.Name, Module: module, Options: opts}, nil
}

// RuntimeConfig returns the logging config path and serializer for this
// topology, preferring its own values over the given defaults.
func (t *Topology) RuntimeConfig(loggingConfig, serializer string) (string, string) {
	if t.LoggingConfig != "" {
		loggingConfig = t.LoggingConfig
	}
	if t.Serializer != "" {
		serializer = t.Serializer
	}
	return loggingConfig, serializer
}

// Build declares every component with f, in document order.
func (t *Topology) Build(f *component.Factory) ([]*component.Component, error) {
	out := make([]*component.Component, 0, len(t.Components))
	for _, d := range t.Components {
		c, err := f.New(d.Kind, d.Name, d.Module, d.Options)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
