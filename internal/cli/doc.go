// Package cli turns command-line arguments into an app.Config. Usage
// problems are reported as an ExitError carrying the process exit code, so
// main decides how to print and exit.
package cli
