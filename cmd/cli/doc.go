// Package cli constructs the promptctl command-line interface. It wires the
// Cobra command hierarchy to the configuration loader, the zap loggers and
// the catalog and release services, and exposes Execute for the binary.
package cli
