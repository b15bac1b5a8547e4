// Package flow defines a data flow (the static description of which builders
// exist, what counts as done, and what is thrown away) and the instances that
// carry a data set across runs of that flow.
package flow

import (
	"errors"
	"fmt"
	"sort"

	"github.com/specialistvlad/dataflowgo/internal/graph"
	"github.com/specialistvlad/dataflowgo/internal/model"
	"github.com/specialistvlad/dataflowgo/internal/registry"
)

// Config describes a flow before its execution graph is built.
type Config struct {
	Name string

	// Target is the item whose production ends a run successfully.
	Target string

	// Transients are produced items that appear in a run's response but are
	// never persisted into the instance's data set.
	Transients []string

	// LoopingEnabled allows the executor to sweep the layers repeatedly
	// until nothing new is produced.
	LoopingEnabled bool

	Builders []model.BuilderMeta

	// Factory resolves builders for this flow. When nil the executor's own
	// factory is used.
	Factory registry.Factory
}

// DataFlow is an immutable, validated flow definition. It is safe to share
// between goroutines and between instances.
type DataFlow struct {
	Name           string
	TargetData     string
	LoopingEnabled bool
	Graph          *graph.ExecutionGraph
	Factory        registry.Factory

	transients map[string]struct{}
}

// New validates cfg and builds the flow's execution graph.
func New(cfg Config) (*DataFlow, error) {
	if cfg.Name == "" {
		return nil, errors.New("flow: name is required")
	}
	g, err := graph.Build(cfg.Builders)
	if err != nil {
		return nil, fmt.Errorf("flow %s: %w", cfg.Name, err)
	}
	transients := make(map[string]struct{}, len(cfg.Transients))
	for _, name := range cfg.Transients {
		if name == "" {
			return nil, fmt.Errorf("flow %s: transient name cannot be empty", cfg.Name)
		}
		transients[name] = struct{}{}
	}
	if _, ok := transients[cfg.Target]; ok && cfg.Target != "" {
		return nil, fmt.Errorf("flow %s: target %s cannot be transient", cfg.Name, cfg.Target)
	}
	return &DataFlow{
		Name:           cfg.Name,
		TargetData:     cfg.Target,
		LoopingEnabled: cfg.LoopingEnabled,
		Graph:          g,
		Factory:        cfg.Factory,
		transients:     transients,
	}, nil
}

// IsTransient reports whether name is declared transient.
func (f *DataFlow) IsTransient(name string) bool {
	_, ok := f.transients[name]
	return ok
}

// Transients returns the transient item names in sorted order.
func (f *DataFlow) Transients() []string {
	names := make([]string, 0, len(f.transients))
	for name := range f.transients {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TransientSet returns the transient names as a set, for DataSet.CopyExcluding.
func (f *DataFlow) TransientSet() map[string]struct{} {
	out := make(map[string]struct{}, len(f.transients))
	for name := range f.transients {
		out[name] = struct{}{}
	}
	return out
}
