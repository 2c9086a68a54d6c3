package flags_test

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/temirov/promptctl/internal/utils/flags"
)

func TestExecutionFlagsBindAndRead(testInstance *testing.T) {
	testCases := []struct {
		name      string
		selection flags.ExecutionFlagSet
		arguments []string
		expected  flags.ExecutionOptions
	}{
		{
			name:      "all_flags_set",
			selection: flags.ExecutionFlagSet{DryRun: true, AssumeYes: true, Force: true},
			arguments: []string{"--dry-run", "-y", "--force"},
			expected:  flags.ExecutionOptions{DryRun: true, AssumeYes: true, Force: true},
		},
		{
			name:      "defaults_false",
			selection: flags.ExecutionFlagSet{AssumeYes: true},
			expected:  flags.ExecutionOptions{},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			command := &cobra.Command{Use: "push"}
			flags.BindExecutionFlags(command, testCase.selection)
			require.NoError(testInstance, command.ParseFlags(testCase.arguments))
			require.Equal(testInstance, testCase.expected, flags.ReadExecutionOptions(command))
		})
	}
}

func TestExecutionFlagsUnboundFlagIsRejected(testInstance *testing.T) {
	command := &cobra.Command{Use: "list"}
	flags.BindExecutionFlags(command, flags.ExecutionFlagSet{})
	require.Error(testInstance, command.ParseFlags([]string{"--force"}))
	require.False(testInstance, flags.ReadExecutionOptions(command).Force)
}
