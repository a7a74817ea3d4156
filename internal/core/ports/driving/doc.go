// Package driving defines the primary ports of the linking pipeline: the
// operations callers (the CLI adapter, embedding programs) invoke on the
// core services.
package driving
