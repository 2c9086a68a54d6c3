package remote_test

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/temirov/promptctl/cmd/cli/remote"
	"github.com/temirov/promptctl/internal/catalog"
	"github.com/temirov/promptctl/internal/contentstore"
	"github.com/temirov/promptctl/internal/reconcile"
)

const exportDocumentConstant = `{"tab":{"id":"alpha","name":"Alpha","items":[{"type":"block","id":"item_1_a","title":"Intro","content":"Hello"}]}}`

func executeRemoteCommand(testInstance *testing.T, builder *remote.CommandGroupBuilder, arguments ...string) (string, error) {
	testInstance.Helper()
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	outputBuffer := &bytes.Buffer{}
	command.SetContext(context.Background())
	command.SetOut(outputBuffer)
	command.SetErr(outputBuffer)
	command.SetArgs(arguments)
	executionError := command.Execute()
	return outputBuffer.String(), executionError
}

func TestRemoteListComparesCatalogs(testInstance *testing.T) {
	fixture := newCommandFixture(testInstance)
	fixture.seedTab(testInstance, catalog.Tab{ID: "alpha", Name: "ALPHA", Order: 1, Version: "1.0.0"})
	fixture.seedTab(testInstance, catalog.Tab{ID: "gamma", Name: "GAMMA", Order: 2, Version: "1.0.0"})
	fixture.seedRemote(testInstance,
		catalog.Tab{ID: "alpha", Name: "ALPHA", Order: 1, Version: "1.0.4"},
		catalog.Tab{ID: "beta", Name: "BETA", Order: 2, Version: "2.0.0"},
	)

	output, executionError := executeRemoteCommand(testInstance, &remote.CommandGroupBuilder{EngineProvider: fixture.engineProvider}, "list")
	require.NoError(testInstance, executionError)
	require.Contains(testInstance, output, "REMOTE TABS")
	require.Contains(testInstance, output, "local v1.0.0")
	require.Contains(testInstance, output, "BETA")
	require.NotContains(testInstance, output, "remote manifest unavailable")
}

func TestRemoteListWithoutManifest(testInstance *testing.T) {
	fixture := newCommandFixture(testInstance)

	output, executionError := executeRemoteCommand(testInstance, &remote.CommandGroupBuilder{EngineProvider: fixture.engineProvider}, "list")
	require.NoError(testInstance, executionError)
	require.Contains(testInstance, output, "remote manifest unavailable")
}

func TestRemotePush(testInstance *testing.T) {
	testCases := []struct {
		name             string
		arguments        []string
		answer           bool
		withExport       bool
		expectedPrompts  int
		expectPublished  bool
		expectedOutput   string
		expectedMessages []string
	}{
		{
			name:             "confirmed_with_message",
			arguments:        []string{"push", "--message", "Weekly update"},
			answer:           true,
			withExport:       true,
			expectedPrompts:  1,
			expectPublished:  true,
			expectedOutput:   "EXPORT RESULT",
			expectedMessages: []string{"Weekly update", "Weekly update"},
		},
		{
			name:             "assume_yes_uses_dated_message",
			arguments:        []string{"push", "--yes"},
			withExport:       true,
			expectPublished:  true,
			expectedOutput:   "EXPORT RESULT",
			expectedMessages: []string{"Prompts update 2025-06-02 10:30", "Prompts update 2025-06-02 10:30"},
		},
		{
			name:            "declined",
			arguments:       []string{"push"},
			withExport:      true,
			expectedPrompts: 1,
			expectedOutput:  "push cancelled",
		},
		{
			name:           "dry_run",
			arguments:      []string{"push", "--dry-run"},
			withExport:     true,
			expectedOutput: "EXPORT PLAN",
		},
		{
			name:           "nothing_to_publish",
			arguments:      []string{"push", "--yes"},
			expectedOutput: "nothing to publish",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			fixture := newCommandFixture(testInstance)
			if testCase.withExport {
				require.NoError(testInstance, afero.WriteFile(fixture.fileSystem, filepath.Join(testExportsDirectoryConstant, "alpha.json"), []byte(exportDocumentConstant), 0o644))
			}
			prompter := &scriptedPrompter{answer: testCase.answer}

			builder := &remote.CommandGroupBuilder{EngineProvider: fixture.engineProvider, PrompterFactory: prompterFactory(prompter)}
			output, executionError := executeRemoteCommand(testInstance, builder, testCase.arguments...)
			require.NoError(testInstance, executionError)
			require.Contains(testInstance, output, testCase.expectedOutput)
			require.Len(testInstance, prompter.prompts, testCase.expectedPrompts)
			require.Equal(testInstance, testCase.expectedMessages, fixture.remote.messages)

			_, published := fixture.remote.objects[remoteManifestPathConstant]
			require.Equal(testInstance, testCase.expectPublished, published)
			if testCase.expectPublished {
				manifest := fixture.remoteManifest(testInstance)
				require.Equal(testInstance, catalog.ManifestEntry{Name: "ALPHA", Version: "1.0.0", Order: 1}, manifest.Tabs["alpha"])
			}
		})
	}
}

func TestRemoteRenameByPosition(testInstance *testing.T) {
	fixture := newCommandFixture(testInstance)
	fixture.seedRemote(testInstance,
		catalog.Tab{ID: "alpha", Name: "ALPHA", Order: 1, Version: "1.0.0"},
		catalog.Tab{ID: "beta", Name: "BETA", Order: 2, Version: "1.0.0"},
	)

	output, executionError := executeRemoteCommand(testInstance, &remote.CommandGroupBuilder{EngineProvider: fixture.engineProvider}, "rename", "2", "Second", "tab")
	require.NoError(testInstance, executionError)
	require.Equal(testInstance, "renamed beta\n", output)
	require.Equal(testInstance, "SECOND TAB", fixture.remoteManifest(testInstance).Tabs["beta"].Name)
}

func TestRemoteDelete(testInstance *testing.T) {
	fixture := newCommandFixture(testInstance)
	fixture.seedRemote(testInstance,
		catalog.Tab{ID: "alpha", Name: "ALPHA", Order: 1, Version: "1.0.0"},
		catalog.Tab{ID: "beta", Name: "BETA", Order: 2, Version: "1.0.0"},
	)
	prompter := &scriptedPrompter{answer: true}

	builder := &remote.CommandGroupBuilder{EngineProvider: fixture.engineProvider, PrompterFactory: prompterFactory(prompter)}
	output, executionError := executeRemoteCommand(testInstance, builder, "delete", "alpha")
	require.NoError(testInstance, executionError)
	require.Equal(testInstance, "deleted alpha\n", output)
	require.Equal(testInstance, []string{"prompts/alpha.json"}, fixture.remote.deleted)

	manifest := fixture.remoteManifest(testInstance)
	require.False(testInstance, manifest.Contains("alpha"))
	require.Equal(testInstance, 1, manifest.Tabs["beta"].Order)
}

func TestRemoteReorder(testInstance *testing.T) {
	testCases := []struct {
		name          string
		arguments     []string
		expectedOrder map[string]int
		expectedError error
	}{
		{
			name:          "space_separated",
			arguments:     []string{"reorder", "3", "1", "2"},
			expectedOrder: map[string]int{"gamma": 1, "alpha": 2, "beta": 3},
		},
		{
			name:          "comma_separated",
			arguments:     []string{"reorder", "2,3,1"},
			expectedOrder: map[string]int{"beta": 1, "gamma": 2, "alpha": 3},
		},
		{
			name:          "not_a_permutation",
			arguments:     []string{"reorder", "1", "1", "2"},
			expectedError: reconcile.ErrInvalidPermutation,
		},
		{
			name:          "not_a_number",
			arguments:     []string{"reorder", "first"},
			expectedError: reconcile.ErrInvalidPermutation,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			fixture := newCommandFixture(testInstance)
			fixture.seedRemote(testInstance,
				catalog.Tab{ID: "alpha", Name: "ALPHA", Order: 1, Version: "1.0.0"},
				catalog.Tab{ID: "beta", Name: "BETA", Order: 2, Version: "1.0.0"},
				catalog.Tab{ID: "gamma", Name: "GAMMA", Order: 3, Version: "1.0.0"},
			)

			output, executionError := executeRemoteCommand(testInstance, &remote.CommandGroupBuilder{EngineProvider: fixture.engineProvider}, testCase.arguments...)
			if testCase.expectedError != nil {
				require.ErrorIs(testInstance, executionError, testCase.expectedError)
				return
			}
			require.NoError(testInstance, executionError)
			require.Equal(testInstance, 3, strings.Count(output, "reordered"))

			manifest := fixture.remoteManifest(testInstance)
			for tabID, expectedOrder := range testCase.expectedOrder {
				require.Equal(testInstance, expectedOrder, manifest.Tabs[tabID].Order)
			}
		})
	}
}

func TestRemoteRenameWithoutManifest(testInstance *testing.T) {
	fixture := newCommandFixture(testInstance)

	_, executionError := executeRemoteCommand(testInstance, &remote.CommandGroupBuilder{EngineProvider: fixture.engineProvider}, "rename", "alpha", "Beta")
	require.ErrorIs(testInstance, executionError, reconcile.ErrSnapshotAbsent)
}

func TestRemoteWritesRequireCredentialFirst(testInstance *testing.T) {
	testCases := []struct {
		name      string
		arguments []string
	}{
		{name: "push", arguments: []string{"push"}},
		{name: "push_dry_run", arguments: []string{"push", "--dry-run"}},
		{name: "rename", arguments: []string{"rename", "alpha", "Renamed"}},
		{name: "delete", arguments: []string{"delete", "alpha"}},
		{name: "delete_assume_yes", arguments: []string{"delete", "alpha", "--yes"}},
		{name: "reorder", arguments: []string{"reorder", "1"}},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			fixture := newCommandFixture(testInstance)
			fixture.seedRemote(testInstance, catalog.Tab{ID: "alpha", Name: "ALPHA", Order: 1, Version: "1.0.0"})
			require.NoError(testInstance, afero.WriteFile(fixture.fileSystem, filepath.Join(testExportsDirectoryConstant, "alpha.json"), []byte(exportDocumentConstant), 0o644))
			fixture.remote.credentialError = contentstore.ErrCredentialMissing
			prompter := &scriptedPrompter{answer: true}

			builder := &remote.CommandGroupBuilder{EngineProvider: fixture.engineProvider, PrompterFactory: prompterFactory(prompter)}
			output, executionError := executeRemoteCommand(testInstance, builder, testCase.arguments...)
			require.ErrorIs(testInstance, executionError, contentstore.ErrCredentialMissing)
			require.NotContains(testInstance, output, "EXPORT PLAN")
			require.Empty(testInstance, prompter.prompts)
			require.Empty(testInstance, fixture.remote.fetched)
			require.Empty(testInstance, fixture.remote.messages)
			require.Empty(testInstance, fixture.remote.deleted)
		})
	}
}
