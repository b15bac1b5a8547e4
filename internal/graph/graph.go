package graph

import (
	"github.com/specialistvlad/dataflowgo/internal/model"
)

// ExecutionGraph is the layered builder order for a flow.
type ExecutionGraph struct {
	levels    [][]model.BuilderMeta
	producers map[string]string
}

// Levels returns the builder layers, lowest first. The returned slices must
// not be modified.
func (g *ExecutionGraph) Levels() [][]model.BuilderMeta {
	if g == nil {
		return nil
	}
	return g.levels
}

// Builders returns every builder in layer order.
func (g *ExecutionGraph) Builders() []model.BuilderMeta {
	var out []model.BuilderMeta
	for _, level := range g.Levels() {
		out = append(out, level...)
	}
	return out
}

// Len returns the number of builders in the graph.
func (g *ExecutionGraph) Len() int {
	n := 0
	for _, level := range g.Levels() {
		n += len(level)
	}
	return n
}

// ProducerOf returns the name of the builder that produces item.
func (g *ExecutionGraph) ProducerOf(item string) (string, bool) {
	if g == nil {
		return "", false
	}
	name, ok := g.producers[item]
	return name, ok
}

// visit states for cycle detection.
const (
	unvisited = iota
	visiting
	done
)

// Build validates the builders and computes their layers.
func Build(builders []model.BuilderMeta) (*ExecutionGraph, error) {
	index := make(map[string]int, len(builders))
	producers := make(map[string]string, len(builders))
	for i, b := range builders {
		if err := b.Validate(); err != nil {
			return nil, invalidf("%v", err)
		}
		if _, dup := index[b.Name]; dup {
			return nil, invalidf("duplicate builder %s", b.Name)
		}
		index[b.Name] = i
		if other, dup := producers[b.Produces]; dup {
			return nil, invalidf("%s is produced by both %s and %s", b.Produces, other, b.Name)
		}
		producers[b.Produces] = b.Name
	}

	deps := make([][]int, len(builders))
	for i, b := range builders {
		for _, item := range b.Consumes {
			if name, ok := producers[item]; ok {
				deps[i] = append(deps[i], index[name])
			}
		}
	}

	level := make([]int, len(builders))
	state := make([]int, len(builders))
	var stack []string
	var visit func(i int) error
	visit = func(i int) error {
		switch state[i] {
		case done:
			return nil
		case visiting:
			start := 0
			for j, name := range stack {
				if name == builders[i].Name {
					start = j
					break
				}
			}
			path := append(append([]string{}, stack[start:]...), builders[i].Name)
			return cycleError(path)
		}
		state[i] = visiting
		stack = append(stack, builders[i].Name)
		for _, d := range deps[i] {
			if err := visit(d); err != nil {
				return err
			}
			if level[d]+1 > level[i] {
				level[i] = level[d] + 1
			}
		}
		stack = stack[:len(stack)-1]
		state[i] = done
		return nil
	}

	maxLevel := -1
	for i := range builders {
		if err := visit(i); err != nil {
			return nil, err
		}
		if level[i] > maxLevel {
			maxLevel = level[i]
		}
	}

	levels := make([][]model.BuilderMeta, maxLevel+1)
	for i, b := range builders {
		meta := model.BuilderMeta{
			Name:     b.Name,
			Consumes: append([]string(nil), b.Consumes...),
			Produces: b.Produces,
		}
		levels[level[i]] = append(levels[level[i]], meta)
	}
	return &ExecutionGraph{levels: levels, producers: producers}, nil
}

// FromLevels wraps an already-layered order without re-deriving it. The
// caller is responsible for the layers being topologically valid.
func FromLevels(levels [][]model.BuilderMeta) *ExecutionGraph {
	producers := make(map[string]string)
	for _, level := range levels {
		for _, b := range level {
			producers[b.Produces] = b.Name
		}
	}
	return &ExecutionGraph{levels: levels, producers: producers}
}
