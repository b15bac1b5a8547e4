// Package graph turns a flat list of builder metadata into the layered
// execution order the executor sweeps over.
//
// # Layering
//
// A builder's layer is one more than the highest layer of any builder that
// produces something it consumes. Builders that only consume caller-supplied
// data sit in layer 0. Within a layer, builders keep the order in which they
// were declared; the layering makes no stronger promise about siblings, so
// consumers must not assume that one sibling's missing inputs imply anything
// about the next.
//
// # Validation
//
// Build rejects duplicate builder names, items produced by more than one
// builder, and dependency cycles (including a builder consuming its own
// output). Failures are *GraphError values whose Kind is one of the package
// sentinels, so callers can use errors.Is.
package graph
