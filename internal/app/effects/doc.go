// Package effects describes the side effects a command produces as plain
// values, and applies them in a second phase.
//
// # Phase 1: Decide
//
// Command handlers inspect state and return the effects they want:
//
//	session, fx, err := app.OnAddQuote(store, session, text, category)
//
// Nothing is written or rendered yet, so handlers can be tested by comparing
// the returned slice.
//
// # Phase 2: Apply
//
// A Batch runs the effects in order against the persistence and rendering
// collaborators:
//
//	batch := effects.New(fx...)
//	if err := batch.Commit(ctx, env); err != nil {
//	    // every effect still ran; err lists the ones that failed
//	}
//
// Persistence failures never stop a batch. The in-memory store remains the
// source of truth, so a failed write is reported and the remaining renders
// still happen.
package effects
