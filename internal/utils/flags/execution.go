// Package flags binds the shared confirmation and preview flags to Cobra commands.
package flags

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	// DryRunFlagName exposes the shared dry-run flag name.
	DryRunFlagName = "dry-run"
	// DryRunFlagUsage describes the shared dry-run flag purpose.
	DryRunFlagUsage = "Preview operations without making changes"
	// AssumeYesFlagName exposes the shared assume-yes flag name.
	AssumeYesFlagName = "yes"
	// AssumeYesFlagShorthand provides the shorthand for the assume-yes flag.
	AssumeYesFlagShorthand = "y"
	// AssumeYesFlagUsage describes the shared assume-yes flag purpose.
	AssumeYesFlagUsage = "Automatically confirm prompts"
	// ForceFlagName exposes the shared force flag name.
	ForceFlagName = "force"
	// ForceFlagUsage describes the shared force flag purpose.
	ForceFlagUsage = "Force-push the release branch"
)

// ExecutionFlagSet selects which shared flags a command carries.
type ExecutionFlagSet struct {
	DryRun    bool
	AssumeYes bool
	Force     bool
}

// ExecutionOptions carries the parsed values.
type ExecutionOptions struct {
	DryRun    bool
	AssumeYes bool
	Force     bool
}

// BindExecutionFlags attaches the selected flags to the command's local flag set.
func BindExecutionFlags(command *cobra.Command, selection ExecutionFlagSet) {
	if command == nil {
		return
	}
	flagSet := command.Flags()
	if selection.DryRun {
		bindBoolFlag(flagSet, DryRunFlagName, "", DryRunFlagUsage)
	}
	if selection.AssumeYes {
		bindBoolFlag(flagSet, AssumeYesFlagName, AssumeYesFlagShorthand, AssumeYesFlagUsage)
	}
	if selection.Force {
		bindBoolFlag(flagSet, ForceFlagName, "", ForceFlagUsage)
	}
}

// ReadExecutionOptions reads the shared flags; unbound flags read as false.
func ReadExecutionOptions(command *cobra.Command) ExecutionOptions {
	if command == nil {
		return ExecutionOptions{}
	}
	flagSet := command.Flags()
	return ExecutionOptions{
		DryRun:    readBoolFlag(flagSet, DryRunFlagName),
		AssumeYes: readBoolFlag(flagSet, AssumeYesFlagName),
		Force:     readBoolFlag(flagSet, ForceFlagName),
	}
}

func bindBoolFlag(flagSet *pflag.FlagSet, name string, shorthand string, usage string) {
	if flagSet.Lookup(name) != nil {
		return
	}
	if len(shorthand) > 0 {
		flagSet.BoolP(name, shorthand, false, usage)
		return
	}
	flagSet.Bool(name, false, usage)
}

func readBoolFlag(flagSet *pflag.FlagSet, name string) bool {
	if flagSet.Lookup(name) == nil {
		return false
	}
	value, readError := flagSet.GetBool(name)
	if readError != nil {
		return false
	}
	return value
}
