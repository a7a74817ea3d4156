// Package domain contains the core entities of the spatiotemporal linking
// pipeline: snapshot unit instances, overlap metrics, relationship links,
// identity chains, canonical-name decisions and the threshold configuration
// that drives classification.
//
// Domain types are plain data. They are produced once per run and never
// mutated afterwards; correcting a classification means re-running the
// pipeline from the loader forward.
package domain
