package hcl_adapter

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/dataflowgo/internal/ctxlog"
	"github.com/specialistvlad/dataflowgo/internal/flow"
	"github.com/specialistvlad/dataflowgo/internal/fsutil"
	"github.com/specialistvlad/dataflowgo/internal/handlers"
	"github.com/specialistvlad/dataflowgo/internal/model"
	"github.com/specialistvlad/dataflowgo/internal/registry"
)

// ErrNoFlow is returned when none of the loaded files declares a flow block.
var ErrNoFlow = errors.New("no flow block found")

// Loader reads flow definitions from HCL files.
type Loader struct {
	handlers *handlers.Handlers
}

// NewLoader creates a loader that resolves `uses` against h.
func NewLoader(h *handlers.Handlers) *Loader {
	return &Loader{handlers: h}
}

// fileRoot is a struct used to decode all possible top-level blocks from any file.
type fileRoot struct {
	Flows    []*FlowBlock    `hcl:"flow,block"`
	Builders []*BuilderBlock `hcl:"builder,block"`
	Remain   hcl.Body        `hcl:",remain"`
}

// FlowBlock is the `flow "name" { ... }` block.
type FlowBlock struct {
	Name       string   `hcl:"name,label"`
	Target     string   `hcl:"target"`
	Transients []string `hcl:"transients,optional"`
	Looping    *bool    `hcl:"looping,optional"`
}

// BuilderBlock is the `builder "name" { ... }` block.
type BuilderBlock struct {
	Name      string          `hcl:"name,label"`
	Uses      string          `hcl:"uses"`
	Consumes  []string        `hcl:"consumes"`
	Produces  string          `hcl:"produces"`
	Arguments *ArgumentsBlock `hcl:"arguments,block"`
	DeclRange hcl.Range       `hcl:",def_range"`
}

// ArgumentsBlock holds handler-specific arguments, decoded later into the
// handler's input struct.
type ArgumentsBlock struct {
	Body hcl.Body `hcl:",remain"`
}

// Load parses every .hcl file under paths and returns the single flow they
// declare, with a builder registry populated from the handler catalog.
// Builder blocks may be spread across files.
func (l *Loader) Load(ctx context.Context, paths ...string) (*flow.DataFlow, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	hclFiles, err := l.findAllHCLFiles(paths)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(hclFiles))

	parser := hclparse.NewParser()
	var flows []*FlowBlock
	var builders []*BuilderBlock

	for _, file := range hclFiles {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}
		flows = append(flows, root.Flows...)
		builders = append(builders, root.Builders...)
	}

	switch len(flows) {
	case 0:
		return nil, ErrNoFlow
	case 1:
	default:
		return nil, fmt.Errorf("expected exactly one flow block, found %d", len(flows))
	}

	reg := registry.New()
	metas := make([]model.BuilderMeta, 0, len(builders))
	for _, b := range builders {
		meta := model.BuilderMeta{Name: b.Name, Consumes: b.Consumes, Produces: b.Produces}
		builder, err := l.translateBuilder(ctx, b, meta)
		if err != nil {
			return nil, err
		}
		if err := reg.Register(b.Name, builder); err != nil {
			return nil, fmt.Errorf("%s: %w", b.DeclRange, err)
		}
		metas = append(metas, meta)
	}

	fb := flows[0]
	looping := true
	if fb.Looping != nil {
		looping = *fb.Looping
	}
	df, err := flow.New(flow.Config{
		Name:           fb.Name,
		Target:         fb.Target,
		Transients:     fb.Transients,
		LoopingEnabled: looping,
		Builders:       metas,
		Factory:        reg,
	})
	if err != nil {
		return nil, err
	}
	if _, ok := df.Graph.ProducerOf(df.TargetData); !ok {
		logger.Warn("No builder produces the flow target; runs will stop when nothing new is generated.", "flow", df.Name, "target", df.TargetData)
	}

	logger.Debug("HCL loading complete.", "flow", df.Name, "builders", len(metas), "layers", len(df.Graph.Levels()))
	return df, nil
}

// translateBuilder resolves the block's handler and decodes its arguments
// into the handler's input struct.
func (l *Loader) translateBuilder(ctx context.Context, b *BuilderBlock, meta model.BuilderMeta) (registry.Builder, error) {
	handler, ok := l.handlers.Get(b.Uses)
	if !ok {
		return nil, fmt.Errorf("%s: builder %q uses unknown handler %q", b.DeclRange, b.Name, b.Uses)
	}

	var input any
	switch {
	case handler.NewInput != nil:
		input = handler.NewInput()
		body := hcl.EmptyBody()
		if b.Arguments != nil {
			body = b.Arguments.Body
		}
		if diags := gohcl.DecodeBody(body, nil, input); diags.HasErrors() {
			return nil, fmt.Errorf("%s: arguments of builder %q: %w", b.DeclRange, b.Name, diags)
		}
	case b.Arguments != nil:
		return nil, fmt.Errorf("%s: handler %q of builder %q takes no arguments", b.DeclRange, b.Uses, b.Name)
	}

	builder, err := handler.New(meta, input)
	if err != nil {
		return nil, fmt.Errorf("%s: builder %q: %w", b.DeclRange, b.Name, err)
	}
	ctxlog.FromContext(ctx).Debug("Translated builder block.", "builder", b.Name, "uses", b.Uses)
	return builder, nil
}

// findAllHCLFiles walks all given paths and returns a flat list of all .hcl files found.
func (l *Loader) findAllHCLFiles(paths []string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, wasSeen := seen[p]; !wasSeen {
			allFiles = append(allFiles, p)
			seen[p] = struct{}{}
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if !info.IsDir() {
			add(path)
			continue
		}
		files, err := fsutil.FindFilesByExtension(path, ".hcl")
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			add(f)
		}
	}
	return allFiles, nil
}
