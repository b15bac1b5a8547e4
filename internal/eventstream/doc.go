// Package eventstream publishes executor hook notifications to a socket.io
// server so external dashboards can follow flow runs as they happen.
//
// Events emitted, in order for a run that reaches its target:
//
//	flow:start
//	builder:before / builder:after   (once per builder that ran)
//	builder:exception                (instead of builder:after on failure)
//	flow:finish
package eventstream
