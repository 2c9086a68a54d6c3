// Package githubauth locates the GitHub credential used for remote catalog writes.
package githubauth
