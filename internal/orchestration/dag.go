package orchestration

import (
	"fmt"
	"os"
	"strings"
)

// EngineConfig is one node in a DAG config (spec §4.8: "id, type,
// config, inputs, outputs").
type EngineConfig struct {
	ID       string            `yaml:"id" json:"id"`
	Type     string            `yaml:"type" json:"type"`
	Config   map[string]string `yaml:"config" json:"config"`
	Inputs   []string          `yaml:"inputs" json:"inputs"`
	Outputs  []string          `yaml:"outputs" json:"outputs"`
	Optional bool              `yaml:"optional" json:"optional"`
	Fallback string            `yaml:"fallback" json:"fallback"`
}

// FallbackSkipOptional is the only recognized fallback policy value
// (spec §4.8: "if fallback=SKIP_OPTIONAL the run proceeds and the final
// outcome is marked partial_result=true").
const FallbackSkipOptional = "SKIP_OPTIONAL"

// DAGConfig is the full substrate configuration: engines, named
// external data sources, and a sink.
type DAGConfig struct {
	Engines []EngineConfig `yaml:"engines" json:"engines"`
	Sources []string       `yaml:"sources" json:"sources"`
	Sink    string         `yaml:"sink" json:"sink"`
}

// DAGErrorKind classifies a DAG validation failure.
type DAGErrorKind int

const (
	MissingReference DAGErrorKind = iota
	Cycle
	DuplicateID
)

func (k DAGErrorKind) String() string {
	switch k {
	case MissingReference:
		return "MissingReference"
	case Cycle:
		return "Cycle"
	case DuplicateID:
		return "DuplicateID"
	default:
		return "Unknown"
	}
}

// DAGError is returned by Validate.
type DAGError struct {
	Kind   DAGErrorKind
	Detail string
}

func (e *DAGError) Error() string {
	return fmt.Sprintf("orchestration: dag: %s: %s", e.Kind, e.Detail)
}

// Validate checks the structural rules from spec §4.8: unique,
// non-empty engine ids and types; every input resolves to a declared
// source or another engine's named output; no cycles.
func (c DAGConfig) Validate() error {
	seen := make(map[string]EngineConfig, len(c.Engines))
	for _, e := range c.Engines {
		if e.ID == "" {
			return &DAGError{Kind: MissingReference, Detail: "engine with empty id"}
		}
		if e.Type == "" {
			return &DAGError{Kind: MissingReference, Detail: fmt.Sprintf("engine %q has empty type", e.ID)}
		}
		if _, dup := seen[e.ID]; dup {
			return &DAGError{Kind: DuplicateID, Detail: e.ID}
		}
		seen[e.ID] = e
	}

	sources := make(map[string]bool, len(c.Sources))
	for _, s := range c.Sources {
		sources[s] = true
	}

	outputs := make(map[string]bool)
	for _, e := range c.Engines {
		for _, o := range e.Outputs {
			outputs[e.ID+"."+o] = true
		}
	}

	for _, e := range c.Engines {
		for _, in := range e.Inputs {
			if sources[in] || outputs[in] {
				continue
			}
			return &DAGError{Kind: MissingReference,
				Detail: fmt.Sprintf("engine %q input %q references neither a source nor an engine output", e.ID, in)}
		}
	}

	if _, err := c.TopologicalOrder(); err != nil {
		return err
	}
	return nil
}

// TopologicalOrder returns any valid topological sort of the engine
// graph (Kahn's algorithm over in-degree), or a Cycle DAGError if the
// graph is not acyclic.
func (c DAGConfig) TopologicalOrder() ([]string, error) {
	producedBy := make(map[string]string) // "engineID.outputName" -> engineID
	for _, e := range c.Engines {
		for _, o := range e.Outputs {
			producedBy[e.ID+"."+o] = e.ID
		}
	}

	deps := make(map[string]map[string]bool, len(c.Engines))
	for _, e := range c.Engines {
		deps[e.ID] = make(map[string]bool)
		for _, in := range e.Inputs {
			if producer, ok := producedBy[in]; ok && producer != e.ID {
				deps[e.ID][producer] = true
			}
		}
	}

	inDegree := make(map[string]int, len(deps))
	dependents := make(map[string][]string)
	for id, ds := range deps {
		inDegree[id] = len(ds)
		for dep := range ds {
			dependents[dep] = append(dependents[dep], id)
		}
	}

	var queue []string
	for _, e := range c.Engines {
		if inDegree[e.ID] == 0 {
			queue = append(queue, e.ID)
		}
	}

	var order []string
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)
		for _, dep := range dependents[id] {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}

	if len(order) != len(c.Engines) {
		return nil, &DAGError{Kind: Cycle, Detail: "engine graph contains a cycle"}
	}
	return order, nil
}

// ExpandEnv expands ${VAR} and $VAR references in every engine's config
// values against the process environment; unset variables expand to
// the empty string (spec §4.8).
func (c DAGConfig) ExpandEnv() DAGConfig {
	expanded := DAGConfig{Sources: c.Sources, Sink: c.Sink, Engines: make([]EngineConfig, len(c.Engines))}
	for i, e := range c.Engines {
		ne := e
		if e.Config != nil {
			ne.Config = make(map[string]string, len(e.Config))
			for k, v := range e.Config {
				ne.Config[k] = os.Expand(v, envLookup)
			}
		}
		expanded.Engines[i] = ne
	}
	return expanded
}

func envLookup(name string) string {
	return os.Getenv(strings.TrimSpace(name))
}
