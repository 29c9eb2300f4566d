package rules

import (
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads a YAML rule file and validates it. The file must be complete;
// there is no merging with the defaults, so a partial vocabulary fails
// validation instead of silently scoring against missing markers.
func Load(path string) (*RuleSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open rules: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Read decodes and validates a YAML rule set from a reader.
func Read(r io.Reader) (*RuleSet, error) {
	var rs RuleSet
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&rs); err != nil {
		return nil, fmt.Errorf("decode rules: %w", err)
	}
	if err := rs.Validate(); err != nil {
		return nil, err
	}
	return &rs, nil
}

// Validate checks structural completeness of the rule set.
func (rs *RuleSet) Validate() error {
	if err := validate.Struct(rs); err != nil {
		return fmt.Errorf("validate rules: %w", err)
	}
	for _, pair := range []struct {
		name string
		mp   MarkerPair
	}{
		{"trust_signals", rs.Trust},
		{"learning_signals", rs.Learning},
		{"coordination_signals", rs.Coordination},
		{"innovation_signals", rs.Innovation},
		{"agency_markers", rs.Agency},
		{"iteration_markers", rs.Iteration},
	} {
		if len(pair.mp.Positive) == 0 || len(pair.mp.Negative) == 0 {
			return fmt.Errorf("validate rules: %s requires both positive and negative markers", pair.name)
		}
	}
	return nil
}
