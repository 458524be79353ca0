package config

import (
	"fmt"
	"os"

	"github.com/livecalc/engine/internal/domain"
	"gopkg.in/yaml.v3"
)

// policyFile is the on-disk shape of a policies YAML file: a flat list
// under a single top-level key, matching how the teacher nests its
// employee roster under a named key rather than a bare top-level array.
type policyFile struct {
	Policies []domain.Policy `yaml:"policies"`
}

// LoadPolicies reads a policy roster from a YAML file and validates
// every entry, matching the teacher's per-employee validation loop.
func LoadPolicies(filename string) ([]domain.Policy, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read policies file %s: %w", filename, err)
	}

	var pf policyFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("config: failed to parse policies YAML: %w", err)
	}
	if len(pf.Policies) == 0 {
		return nil, fmt.Errorf("config: %s contains no policies", filename)
	}

	seen := make(map[uint64]bool, len(pf.Policies))
	for i, p := range pf.Policies {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("config: policies[%d]: %w", i, err)
		}
		if seen[p.PolicyID] {
			return nil, fmt.Errorf("config: policies[%d]: duplicate policy id %d", i, p.PolicyID)
		}
		seen[p.PolicyID] = true
	}
	return pf.Policies, nil
}
