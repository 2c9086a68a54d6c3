// Package ui renders console output for promptctl: git lifecycle lines,
// boxed catalog and release summaries, and confirmation prompts.
package ui
