// Package localstore persists the tab catalog on the local filesystem.
//
// The store owns the prompts directory: one JSON document per tab plus
// manifest.json. Every filesystem access goes through afero so the store can
// be exercised against an in-memory filesystem.
package localstore
