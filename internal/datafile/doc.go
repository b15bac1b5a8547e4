// Package datafile reads delta input files and persists a flow instance's
// data set between CLI invocations.
//
// Delta files are YAML or JSON documents whose top-level keys are data item
// names. State files are JSON and record each item's cty type next to its
// value, so a reloaded item has exactly the type it was saved with.
package datafile
