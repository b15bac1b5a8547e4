// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package model holds the format-agnostic data types shared by the flow
// loader, the executor, and builder handlers.
//
// A Data is one named, immutable value. A DataSet is the current knowledge of
// a flow instance keyed by name, and a DataDelta is the ordered batch of new
// items that triggers a run. BuilderMeta describes what a builder consumes and
// produces and nothing else: per-run bookkeeping such as "has this builder
// already run" lives in the executor, never on the shared metadata.
package model
