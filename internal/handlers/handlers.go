// Package handlers is the catalog of Go builder implementations that flow
// files refer to by name with `uses = "..."`.
package handlers

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/specialistvlad/dataflowgo/internal/model"
	"github.com/specialistvlad/dataflowgo/internal/registry"
)

// Handlers holds all the registered handlers.
type Handlers struct {
	mu  sync.RWMutex
	all map[string]*RegisteredHandler
}

// New creates an empty handler catalog.
func New() *Handlers {
	return &Handlers{
		all: make(map[string]*RegisteredHandler),
	}
}

// RegisteredHandler holds the Go parts needed to turn one builder block into
// a registry.Builder.
type RegisteredHandler struct {
	// NewInput returns a pointer to the struct the block's arguments are
	// decoded into. Nil means the handler takes no arguments.
	NewInput func() any

	// New creates the builder for one block. input is the value returned by
	// NewInput after decoding, or nil.
	New func(meta model.BuilderMeta, input any) (registry.Builder, error)
}

// Module is implemented by packages that contribute handlers.
type Module interface {
	Register(h *Handlers)
}

// RegisterHandler adds a handler under name. Registering the same name twice
// is a programmer error and panics.
func (h *Handlers) RegisterHandler(name string, handler *RegisteredHandler) {
	if handler == nil || handler.New == nil {
		panic(fmt.Sprintf("handler '%s' has no constructor", name))
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.all[name]; exists {
		panic(fmt.Sprintf("builder handler with name '%s' already registered", name))
	}
	slog.Debug("Registering builder handler.", "name", name)
	h.all[name] = handler
}

// Get returns the handler registered under name.
func (h *Handlers) Get(name string) (*RegisteredHandler, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	handler, ok := h.all[name]
	return handler, ok
}

// Names returns the registered handler names in sorted order.
func (h *Handlers) Names() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	names := make([]string, 0, len(h.all))
	for name := range h.all {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Install registers every module's handlers.
func (h *Handlers) Install(modules ...Module) {
	for _, mod := range modules {
		mod.Register(h)
	}
}
