// Package driven defines the secondary ports of the linking pipeline:
// interfaces the core services depend on, implemented by adapters under
// internal/adapters/driven. Snapshot loading, spatial indexing, output
// writing and link cataloguing all sit behind these interfaces so the core
// carries no dependency on any particular storage or file format.
package driven
