// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the run lifecycle: load a flow, assemble the
// delta, restore the instance, execute, and persist. It is decoupled from any
// specific entrypoint like a CLI or server.
package app
