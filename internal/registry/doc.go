// Package registry maps builder names to the Go values that execute them.
//
// The executor never constructs builders itself. It asks a Factory for the
// builder registered under a BuilderMeta's name, invokes it, and treats a
// missing entry as a failure of that builder. Registry is the in-memory
// Factory used by the application and by tests; anything else that can
// answer Lookup (a lazy constructor, a remote proxy) works just as well.
package registry
