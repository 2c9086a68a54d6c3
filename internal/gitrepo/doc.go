// Package gitrepo wraps the git operations used by the release workflow.
//
// RepositoryManager drives git through execshell; ParseRemoteURL reduces
// remote URLs to host, owner and repository so remotes can be compared
// across transports.
package gitrepo
