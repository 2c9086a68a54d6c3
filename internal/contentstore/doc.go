// Package contentstore reads and writes catalog files through the GitHub contents API.
package contentstore
