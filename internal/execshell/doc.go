// Package execshell runs external tools, git in particular, behind a testable interface.
//
// ShellExecutor logs every invocation through zap and notifies a
// CommandEventObserver; OSCommandRunner is the os/exec backed runner.
package execshell
