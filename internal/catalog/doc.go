// Package catalog defines the prompt catalog data model shared by the local
// store, the remote content store, and the reconciliation engine.
//
// It owns the Tab and Manifest records, semantic version handling, the
// identifier rules for tabs and blocks, and the tab document codec that
// accepts both the nested and the legacy flat on-disk shapes while always
// emitting the nested one.
package catalog
