// Package pipeline drives one interactive run: collect answers, decode or
// reuse intermediates, assemble the flat video, then optionally grade it.
//
// The Orchestrator is an explicit state machine. Each state either advances
// to the next one or stops the run; declining a step is a clean stop, not an
// error.
package pipeline
