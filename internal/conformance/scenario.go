// Package conformance runs the matcher conformance suite.
//
// Scenarios are YAML files that declare a recorded trace, a pattern tree,
// and the verification outcome the implementation must produce. They pin
// down the matching semantics — including the deliberately greedy parts —
// in a form that is independent of any one test function.
package conformance

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/roach88/calltrace"
)

// Scenario defines one conformance case.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario pins down.
	Description string `yaml:"description"`

	// Trace is the sequence of call ids to record, in order. May be empty.
	Trace []string `yaml:"trace"`

	// Pattern is the expectation tree to verify the trace against.
	Pattern *Node `yaml:"pattern"`

	// Expect is the required verification outcome.
	Expect Expect `yaml:"expect"`
}

// Expect describes the verification outcome a scenario requires.
type Expect struct {
	// OK is true when verification must succeed.
	OK bool `yaml:"ok"`

	// MismatchIndex is the required first-divergence position.
	// Only meaningful when OK is false.
	MismatchIndex int `yaml:"mismatch_index,omitempty"`

	// Expected is the required expected-id list (sorted, deduplicated).
	// Omit to skip the check; use an explicit empty list to require the
	// nothing-left-to-expect outcome.
	Expected []string `yaml:"expected,omitempty"`

	// Actual is the required actual id at the mismatch position, with
	// "(end)" for a trace that ran out. Omit to skip the check.
	Actual string `yaml:"actual,omitempty"`
}

// Node is the YAML form of a pattern tree. A scalar is an id; a mapping
// with exactly one of the keys "seq", "par", or "any" is the corresponding
// composite with a list of child nodes. An empty child list is the
// nothing-expected pattern.
type Node struct {
	kind     string
	id       string
	children []*Node
}

// UnmarshalYAML implements strict decoding of the pattern forms above.
func (n *Node) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		n.kind = "id"
		n.id = value.Value
		return nil
	case yaml.MappingNode:
		if len(value.Content) != 2 {
			return fmt.Errorf("line %d: pattern mapping must have exactly one key", value.Line)
		}
		key := value.Content[0].Value
		switch key {
		case "seq", "par", "any":
			n.kind = key
		default:
			return fmt.Errorf("line %d: unknown pattern kind %q (want seq, par, or any)", value.Line, key)
		}
		if err := value.Content[1].Decode(&n.children); err != nil {
			return fmt.Errorf("%s children: %w", key, err)
		}
		return nil
	default:
		return fmt.Errorf("line %d: pattern must be a string or a mapping", value.Line)
	}
}

// Build converts the YAML form into the library's pattern type.
func (n *Node) Build() *calltrace.Call {
	if n.kind == "id" {
		return calltrace.ID(n.id)
	}
	children := make([]any, len(n.children))
	for i, child := range n.children {
		children[i] = child.Build()
	}
	switch n.kind {
	case "seq":
		return calltrace.Seq(children...)
	case "par":
		return calltrace.Par(children...)
	case "any":
		return calltrace.Any(children...)
	}
	panic("conformance: unknown pattern kind " + n.kind)
}

// Load reads and parses a scenario YAML file. Unknown fields are rejected
// so that typos fail loudly instead of silently weakening a scenario.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}

	if err := validate(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", filepath.Base(path), err)
	}
	return &scenario, nil
}

// LoadDir loads every *.yaml scenario in dir, sorted by file name.
func LoadDir(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, path := range paths {
		scenario, err := Load(path)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, scenario)
	}
	return scenarios, nil
}

func validate(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Pattern == nil {
		return fmt.Errorf("pattern is required")
	}
	if s.Expect.OK && (s.Expect.MismatchIndex != 0 || s.Expect.Expected != nil || s.Expect.Actual != "") {
		return fmt.Errorf("expect: mismatch fields are only valid with ok: false")
	}
	return nil
}
