// Package fixtures loads YAML-described type-inference test scenarios
// (spec section 4.L), letting a table-driven test enumerate expected
// results without hand-writing a Go literal per case. It is test-only
// tooling, never imported by the checking packages themselves.
//
// The load-then-validate shape (no defaults are filled in), and the use of
// gopkg.in/yaml.v3 struct tags to do it, are grounded on the teacher's
// internal/ext/config.go (LoadConfig/ParseConfig/validate/setDefaults) and
// its paired config_test.go, which parses an inline YAML literal the same
// way TestParseValidSuite in fixtures_test.go does. A scenario here names a rendered type string
// rather than an AST directly: this module carries no parser (out of
// scope, section 1), so a scenario's expression is built by the Go test
// that looks it up by Name, and the YAML only carries the expected
// outcome and the diagnostic kind name to check it against.
package fixtures

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is one named type-inference expectation.
type Scenario struct {
	// Name identifies the scenario; the test that builds the corresponding
	// expression looks it up by this value.
	Name string `yaml:"name"`

	// Description is a human-readable summary; nothing in this package
	// reads it.
	Description string `yaml:"description,omitempty"`

	// ExpectedType is the rendered form (Type.String()) the scenario's
	// expression is expected to synthesize to. Empty when ExpectError is
	// true.
	ExpectedType string `yaml:"expected_type,omitempty"`

	// ExpectError marks a scenario that must fail type checking rather
	// than produce ExpectedType.
	ExpectError bool `yaml:"expect_error,omitempty"`

	// ErrorKind is the diagnostic.Kind name (e.g. "TypeMismatch") the
	// failure must carry. Required when ExpectError is true.
	ErrorKind string `yaml:"error_kind,omitempty"`
}

// Suite is the top-level document: a named group of scenarios.
type Suite struct {
	Name      string     `yaml:"suite"`
	Scenarios []Scenario `yaml:"scenarios"`
}

// Load reads and parses a scenario suite from path.
func Load(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fixture suite %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse parses suite content from bytes. path is used only in error
// messages, matching ParseConfig's (data, path) shape.
func Parse(data []byte, path string) (*Suite, error) {
	var s Suite
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing fixture suite %s: %w", path, err)
	}
	if err := s.validate(path); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Suite) validate(path string) error {
	if len(s.Scenarios) == 0 {
		return fmt.Errorf("%s: no scenarios defined", path)
	}
	seen := map[string]bool{}
	for i, sc := range s.Scenarios {
		if sc.Name == "" {
			return fmt.Errorf("%s: scenarios[%d]: name is required", path, i)
		}
		if seen[sc.Name] {
			return fmt.Errorf("%s: scenarios[%d]: duplicate scenario name %q", path, i, sc.Name)
		}
		seen[sc.Name] = true
		if sc.ExpectError && sc.ErrorKind == "" {
			return fmt.Errorf("%s: scenarios[%d] (%s): error_kind is required when expect_error is true", path, i, sc.Name)
		}
		if !sc.ExpectError && sc.ExpectedType == "" {
			return fmt.Errorf("%s: scenarios[%d] (%s): expected_type is required unless expect_error is true", path, i, sc.Name)
		}
	}
	return nil
}

// ByName returns the scenario named name, or false if no scenario has that
// name.
func (s *Suite) ByName(name string) (Scenario, bool) {
	for _, sc := range s.Scenarios {
		if sc.Name == name {
			return sc, true
		}
	}
	return Scenario{}, false
}
