// Package services implements the core pipeline stages behind the driving
// ports: per-pair overlap computation and classification (Linker), the
// full multi-snapshot run (Pipeline) and canonical-name resolution
// (Resolver). Services depend only on the driven port interfaces, never on
// concrete adapters.
package services
