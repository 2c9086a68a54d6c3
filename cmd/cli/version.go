package cli

import (
	"runtime/debug"
	"strings"
)

const (
	developmentVersionConstant = "dev"
	develBuildVersionConstant  = "(devel)"
)

// applicationVersion is set at link time with -ldflags "-X github.com/temirov/promptctl/cmd/cli.applicationVersion=v1.2.3".
var applicationVersion string

// Version reports the linked version, then the module version recorded in the build, then "dev".
func Version() string {
	if trimmedVersion := strings.TrimSpace(applicationVersion); len(trimmedVersion) > 0 {
		return trimmedVersion
	}
	if buildInformation, available := debug.ReadBuildInfo(); available {
		moduleVersion := strings.TrimSpace(buildInformation.Main.Version)
		if len(moduleVersion) > 0 && moduleVersion != develBuildVersionConstant {
			return moduleVersion
		}
	}
	return developmentVersionConstant
}
