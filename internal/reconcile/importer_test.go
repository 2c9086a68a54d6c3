package reconcile_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/temirov/promptctl/internal/catalog"
	"github.com/temirov/promptctl/internal/reconcile"
)

func seedLocalTab(testInstance *testing.T, fixture engineFixture, tab catalog.Tab) {
	testInstance.Helper()
	require.NoError(testInstance, fixture.localStore.SaveTab(tab))
	manifest, loadError := fixture.localStore.LoadManifest()
	require.NoError(testInstance, loadError)
	manifest.Tabs[tab.ID] = tab.Summary()
	require.NoError(testInstance, fixture.localStore.SaveManifest(manifest))
}

func TestImportTabVersionResolution(testInstance *testing.T) {
	remoteSnapshot := reconcile.Snapshot{Present: true, Manifest: catalog.NewManifest()}
	remoteSnapshot.Manifest.Tabs["alpha"] = catalog.ManifestEntry{Name: "ALPHA", Version: "2.0.5", Order: 9}

	testCases := []struct {
		name            string
		seedLocal       bool
		snapshot        reconcile.Snapshot
		expectedVersion string
		expectedOrder   int
		expectedUpdated bool
	}{
		{
			name:            "remote version wins",
			seedLocal:       true,
			snapshot:        remoteSnapshot,
			expectedVersion: "2.0.5",
			expectedOrder:   2,
			expectedUpdated: true,
		},
		{
			name:            "local version kept without remote record",
			seedLocal:       true,
			snapshot:        reconcile.Snapshot{Manifest: catalog.NewManifest()},
			expectedVersion: "1.4.1",
			expectedOrder:   2,
			expectedUpdated: true,
		},
		{
			name:            "remote version for new local tab",
			snapshot:        remoteSnapshot,
			expectedVersion: "2.0.5",
			expectedOrder:   2,
		},
		{
			name:            "new everywhere",
			snapshot:        reconcile.Snapshot{Manifest: catalog.NewManifest()},
			expectedVersion: catalog.InitialVersion,
			expectedOrder:   2,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			fixture := newEngineFixture(subTest, reconcile.Configuration{})
			seedLocalTab(subTest, fixture, catalog.Tab{ID: "other", Name: "OTHER", Order: 1, Version: "1.0.0"})
			if testCase.seedLocal {
				seedLocalTab(subTest, fixture, catalog.Tab{ID: "alpha", Name: "ALPHA", Order: 2, Version: "1.4.1"})
			}

			result, importError := fixture.engine.ImportTab(context.Background(), []byte(`{"tab":{"id":"alpha","name":"Alpha","items":[{"type":"block","id":"item_1","title":"t","content":"c"}]}}`), "", testCase.snapshot)
			require.NoError(subTest, importError)
			require.Equal(subTest, "alpha", result.TabID)
			require.Equal(subTest, "ALPHA", result.Name)
			require.Equal(subTest, testCase.expectedVersion, result.Version)
			require.Equal(subTest, testCase.expectedOrder, result.Order)
			require.Equal(subTest, testCase.expectedUpdated, result.Updated)

			tab, exists, loadError := fixture.localStore.LoadTab("alpha")
			require.NoError(subTest, loadError)
			require.True(subTest, exists)
			require.Equal(subTest, testCase.expectedVersion, tab.Version)
			require.Len(subTest, tab.Items, 1)

			manifest, manifestError := fixture.localStore.LoadManifest()
			require.NoError(subTest, manifestError)
			require.Equal(subTest, catalog.ManifestEntry{Name: "ALPHA", Version: testCase.expectedVersion, Order: testCase.expectedOrder}, manifest.Tabs["alpha"])
		})
	}
}

func TestImportTabRemovesStaleFileWithSameIdentifier(testInstance *testing.T) {
	fixture := newEngineFixture(testInstance, reconcile.Configuration{})
	staleFile := filepath.Join(testPromptsDirectoryConstant, "old-name.json")
	fixture.writeFile(testInstance, staleFile, `{"tab":{"id":"alpha","name":"ALPHA","items":[]}}`)
	keptFile := filepath.Join(testPromptsDirectoryConstant, "beta.json")
	fixture.writeFile(testInstance, keptFile, `{"tab":{"id":"beta","name":"BETA","items":[]}}`)

	result, importError := fixture.engine.ImportTab(context.Background(), []byte(`{"id":"alpha","name":"alpha","items":[]}`), "", reconcile.Snapshot{Manifest: catalog.NewManifest()})
	require.NoError(testInstance, importError)
	require.Equal(testInstance, []string{"old-name.json"}, result.RemovedFiles)

	staleExists, staleError := afero.Exists(fixture.fileSystem, staleFile)
	require.NoError(testInstance, staleError)
	require.False(testInstance, staleExists)
	keptExists, keptError := afero.Exists(fixture.fileSystem, keptFile)
	require.NoError(testInstance, keptError)
	require.True(testInstance, keptExists)
}

func TestImportTabDerivesIdentifierFromName(testInstance *testing.T) {
	fixture := newEngineFixture(testInstance, reconcile.Configuration{})

	result, importError := fixture.engine.ImportTab(context.Background(), []byte(`{"name":"Daily Notes!","items":[]}`), "", reconcile.Snapshot{Manifest: catalog.NewManifest()})
	require.NoError(testInstance, importError)
	require.Equal(testInstance, "daily-notes", result.TabID)
	require.Equal(testInstance, "DAILY NOTES!", result.Name)
	require.Equal(testInstance, 1, result.Order)
}

func TestImportTabRejectsIncompletePayloadWithoutWrites(testInstance *testing.T) {
	testCases := []struct {
		name    string
		payload string
	}{
		{name: "missing items", payload: `{"tab":{"id":"alpha","name":"ALPHA"}}`},
		{name: "missing name", payload: `{"id":"alpha","items":[]}`},
		{name: "malformed", payload: `{"id":`},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			fixture := newEngineFixture(subTest, reconcile.Configuration{})

			_, importError := fixture.engine.ImportTab(context.Background(), []byte(testCase.payload), "", reconcile.Snapshot{Manifest: catalog.NewManifest()})
			require.ErrorIs(subTest, importError, catalog.ErrFormat)

			directoryExists, existsError := afero.DirExists(fixture.fileSystem, testPromptsDirectoryConstant)
			require.NoError(subTest, existsError)
			require.False(subTest, directoryExists)
		})
	}
}

func TestImportFileReadsPayload(testInstance *testing.T) {
	fixture := newEngineFixture(testInstance, reconcile.Configuration{})
	fixture.writeFile(testInstance, "/downloads/export (1).json", `{"tab":{"id":"gamma","name":"Gamma","items":[]}}`)

	result, importError := fixture.engine.ImportFile(context.Background(), "/downloads/export (1).json", reconcile.Snapshot{Manifest: catalog.NewManifest()})
	require.NoError(testInstance, importError)
	require.Equal(testInstance, "gamma", result.TabID)
	require.False(testInstance, result.Updated)

	_, missingError := fixture.engine.ImportFile(context.Background(), "/downloads/missing.json", reconcile.Snapshot{})
	require.Error(testInstance, missingError)
}
