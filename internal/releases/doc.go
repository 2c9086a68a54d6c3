// Package releases publishes the desktop application: it propagates the
// release version into the build artifacts and runs the git release sequence
// (commit, tag, push, push tags).
package releases
