package tabs_test

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/temirov/promptctl/cmd/cli/tabs"
	"github.com/temirov/promptctl/internal/catalog"
	"github.com/temirov/promptctl/internal/reconcile"
)

func executeTabsCommand(testInstance *testing.T, builder *tabs.CommandGroupBuilder, arguments ...string) (string, error) {
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

func TestTabsListRendersCatalog(testInstance *testing.T) {
	fixture := newCommandFixture(testInstance)
	fixture.seedTab(testInstance, catalog.Tab{ID: "alpha", Name: "ALPHA", Order: 1, Version: "1.0.2", Items: []catalog.Item{catalog.NewBlock("item_1_a", "t", "c")}})
	fixture.seedTab(testInstance, catalog.Tab{ID: "beta", Name: "BETA", Order: 2, Version: "1.0.0"})

	output, executionError := executeTabsCommand(testInstance, &tabs.CommandGroupBuilder{EngineProvider: fixture.engineProvider}, "list")
	require.NoError(testInstance, executionError)
	require.Contains(testInstance, output, "ALPHA")
	require.Contains(testInstance, output, "1 blocks")
	require.Contains(testInstance, output, "0 blocks")
}

func TestTabsCreateAndRename(testInstance *testing.T) {
	fixture := newCommandFixture(testInstance)
	builder := &tabs.CommandGroupBuilder{EngineProvider: fixture.engineProvider}

	output, createError := executeTabsCommand(testInstance, builder, "create", "Cover", "letter")
	require.NoError(testInstance, createError)
	require.Equal(testInstance, "created COVER LETTER (cover-letter) v1.0.0\n", output)

	output, renameError := executeTabsCommand(testInstance, builder, "rename", "1", "Motivation")
	require.NoError(testInstance, renameError)
	require.Equal(testInstance, "renamed cover-letter to MOTIVATION\n", output)

	manifest, loadError := fixture.localStore.LoadManifest()
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, "MOTIVATION", manifest.Tabs["cover-letter"].Name)
}

func TestTabsCreateRejectsDuplicate(testInstance *testing.T) {
	fixture := newCommandFixture(testInstance)
	fixture.seedTab(testInstance, catalog.Tab{ID: "alpha", Name: "ALPHA", Order: 1, Version: "1.0.0"})

	_, executionError := executeTabsCommand(testInstance, &tabs.CommandGroupBuilder{EngineProvider: fixture.engineProvider}, "create", "alpha")
	require.ErrorIs(testInstance, executionError, reconcile.ErrTabExists)
}

func TestTabsBumpCommands(testInstance *testing.T) {
	testCases := []struct {
		name             string
		arguments        []string
		expectedVersions map[string]string
	}{
		{
			name:             "bump_by_identifier",
			arguments:        []string{"bump", "beta"},
			expectedVersions: map[string]string{"alpha": "1.0.9", "beta": "2.0.1"},
		},
		{
			name:             "bump_by_position",
			arguments:        []string{"bump", "1"},
			expectedVersions: map[string]string{"alpha": "1.0.10", "beta": "2.0.0"},
		},
		{
			name:             "bump_all",
			arguments:        []string{"bump-all"},
			expectedVersions: map[string]string{"alpha": "1.0.10", "beta": "2.0.1"},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			fixture := newCommandFixture(testInstance)
			fixture.seedTab(testInstance, catalog.Tab{ID: "alpha", Name: "ALPHA", Order: 1, Version: "1.0.9"})
			fixture.seedTab(testInstance, catalog.Tab{ID: "beta", Name: "BETA", Order: 2, Version: "2.0.0"})

			output, executionError := executeTabsCommand(testInstance, &tabs.CommandGroupBuilder{EngineProvider: fixture.engineProvider}, testCase.arguments...)
			require.NoError(testInstance, executionError)
			require.Contains(testInstance, output, "VERSION CHANGES")

			manifest, loadError := fixture.localStore.LoadManifest()
			require.NoError(testInstance, loadError)
			for tabID, expectedVersion := range testCase.expectedVersions {
				require.Equal(testInstance, expectedVersion, manifest.Tabs[tabID].Version)
			}
		})
	}
}

func TestTabsBumpUnknownTab(testInstance *testing.T) {
	fixture := newCommandFixture(testInstance)

	_, executionError := executeTabsCommand(testInstance, &tabs.CommandGroupBuilder{EngineProvider: fixture.engineProvider}, "bump", "missing")
	require.ErrorIs(testInstance, executionError, reconcile.ErrTabNotFound)
}

func TestTabsDeleteConfirmation(testInstance *testing.T) {
	testCases := []struct {
		name            string
		answer          bool
		arguments       []string
		expectedPrompts int
		expectRemoved   bool
		expectedOutput  string
	}{
		{
			name:            "confirmed",
			answer:          true,
			arguments:       []string{"delete", "alpha"},
			expectedPrompts: 1,
			expectRemoved:   true,
			expectedOutput:  "deleted alpha\n",
		},
		{
			name:            "declined",
			answer:          false,
			arguments:       []string{"delete", "alpha"},
			expectedPrompts: 1,
			expectedOutput:  "delete cancelled\n",
		},
		{
			name:           "assume_yes",
			arguments:      []string{"delete", "alpha", "--yes"},
			expectRemoved:  true,
			expectedOutput: "deleted alpha\n",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			fixture := newCommandFixture(testInstance)
			fixture.seedTab(testInstance, catalog.Tab{ID: "alpha", Name: "ALPHA", Order: 1, Version: "1.0.0"})
			prompter := &scriptedPrompter{answer: testCase.answer}

			builder := &tabs.CommandGroupBuilder{EngineProvider: fixture.engineProvider, PrompterFactory: prompterFactory(prompter)}
			output, executionError := executeTabsCommand(testInstance, builder, testCase.arguments...)
			require.NoError(testInstance, executionError)
			require.Equal(testInstance, testCase.expectedOutput, output)
			require.Len(testInstance, prompter.prompts, testCase.expectedPrompts)

			manifest, loadError := fixture.localStore.LoadManifest()
			require.NoError(testInstance, loadError)
			require.Equal(testInstance, !testCase.expectRemoved, manifest.Contains("alpha"))
		})
	}
}

func TestTabsImportReportsEachFile(testInstance *testing.T) {
	fixture := newCommandFixture(testInstance)
	importPath := filepath.Join("/downloads", "motivation.json")
	require.NoError(testInstance, afero.WriteFile(fixture.fileSystem, importPath, []byte(`{"tab":{"id":"motivation","name":"Motivation","items":[{"type":"block","id":"item_1_a","title":"Intro","content":"Hello"}]}}`), 0o644))

	output, executionError := executeTabsCommand(testInstance, &tabs.CommandGroupBuilder{EngineProvider: fixture.engineProvider}, "import", importPath, "/downloads/missing.json")
	require.Error(testInstance, executionError)
	require.Contains(testInstance, executionError.Error(), "/downloads/missing.json")
	require.Contains(testInstance, output, "MOTIVATION")
	require.Contains(testInstance, output, "added")

	manifest, loadError := fixture.localStore.LoadManifest()
	require.NoError(testInstance, loadError)
	require.True(testInstance, manifest.Contains("motivation"))
}

func TestTabsRequireEngineProvider(testInstance *testing.T) {
	_, executionError := executeTabsCommand(testInstance, &tabs.CommandGroupBuilder{}, "list")
	require.EqualError(testInstance, executionError, "catalog engine provider not configured")
}
