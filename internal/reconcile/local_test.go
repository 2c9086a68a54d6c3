package reconcile_test

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/temirov/promptctl/internal/catalog"
	"github.com/temirov/promptctl/internal/reconcile"
)

const testLocalManifestPath = testPromptsDirectoryConstant + "/manifest.json"

func TestCreateTabAppendsStarterTab(testInstance *testing.T) {
	fixture := newEngineFixture(testInstance, reconcile.Configuration{})
	seedLocalTab(testInstance, fixture, catalog.Tab{ID: "existing", Name: "EXISTING", Order: 3, Version: "1.0.0"})

	tab, createError := fixture.engine.CreateTab("  Code Review ")
	require.NoError(testInstance, createError)
	require.Equal(testInstance, "code-review", tab.ID)
	require.Equal(testInstance, "CODE REVIEW", tab.Name)
	require.Equal(testInstance, 4, tab.Order)
	require.Equal(testInstance, catalog.InitialVersion, tab.Version)
	require.Len(testInstance, tab.Items, 1)
	require.Equal(testInstance, catalog.ItemTypeBlock, tab.Items[0].Type)
	require.Regexp(testInstance, `^item_\d+_[a-z0-9]{9}$`, tab.Items[0].ID)

	manifest, loadError := fixture.localStore.LoadManifest()
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, catalog.ManifestEntry{Name: "CODE REVIEW", Version: "1.0.0", Order: 4}, manifest.Tabs["code-review"])

	_, duplicateError := fixture.engine.CreateTab("code review")
	require.ErrorIs(testInstance, duplicateError, reconcile.ErrTabExists)

	_, emptyError := fixture.engine.CreateTab("???")
	require.ErrorIs(testInstance, emptyError, catalog.ErrFormat)
}

func TestRenameTabKeepsIdentifier(testInstance *testing.T) {
	fixture := newEngineFixture(testInstance, reconcile.Configuration{})
	seedLocalTab(testInstance, fixture, catalog.Tab{ID: "alpha", Name: "ALPHA", Order: 1, Version: "1.0.2"})

	entry, renameError := fixture.engine.RenameTab("alpha", "first steps")
	require.NoError(testInstance, renameError)
	require.Equal(testInstance, "FIRST STEPS", entry.Name)

	tab, exists, loadError := fixture.localStore.LoadTab("alpha")
	require.NoError(testInstance, loadError)
	require.True(testInstance, exists)
	require.Equal(testInstance, "FIRST STEPS", tab.Name)
	require.Equal(testInstance, "1.0.2", tab.Version)

	_, missingError := fixture.engine.RenameTab("ghost", "x")
	require.ErrorIs(testInstance, missingError, reconcile.ErrTabNotFound)
	_, blankError := fixture.engine.RenameTab("alpha", "  ")
	require.ErrorIs(testInstance, blankError, catalog.ErrFormat)
}

func TestBumpTabUpdatesFileAndManifest(testInstance *testing.T) {
	fixture := newEngineFixture(testInstance, reconcile.Configuration{})
	seedLocalTab(testInstance, fixture, catalog.Tab{ID: "alpha", Name: "ALPHA", Order: 1, Version: "1.2.9"})

	change, bumpError := fixture.engine.BumpTab("alpha")
	require.NoError(testInstance, bumpError)
	require.Equal(testInstance, reconcile.VersionChange{TabID: "alpha", PreviousVersion: "1.2.9", Version: "1.2.10"}, change)

	tab, _, loadError := fixture.localStore.LoadTab("alpha")
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, "1.2.10", tab.Version)

	_, missingError := fixture.engine.BumpTab("ghost")
	require.ErrorIs(testInstance, missingError, reconcile.ErrTabNotFound)
}

func TestBumpAllTwiceAddsTwoPatches(testInstance *testing.T) {
	fixture := newEngineFixture(testInstance, reconcile.Configuration{})
	seedLocalTab(testInstance, fixture, catalog.Tab{ID: "alpha", Name: "ALPHA", Order: 1, Version: "1.0.0"})
	seedLocalTab(testInstance, fixture, catalog.Tab{ID: "beta", Name: "BETA", Order: 2, Version: "3.4.5"})

	firstChanges, firstError := fixture.engine.BumpAll()
	require.NoError(testInstance, firstError)
	require.Len(testInstance, firstChanges, 2)
	_, secondError := fixture.engine.BumpAll()
	require.NoError(testInstance, secondError)

	manifest, loadError := fixture.localStore.LoadManifest()
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, "1.0.2", manifest.Tabs["alpha"].Version)
	require.Equal(testInstance, "3.4.7", manifest.Tabs["beta"].Version)

	betaTab, _, betaError := fixture.localStore.LoadTab("beta")
	require.NoError(testInstance, betaError)
	require.Equal(testInstance, "3.4.7", betaTab.Version)
}

func TestBumpAllOnEmptyCatalogWritesNothing(testInstance *testing.T) {
	fixture := newEngineFixture(testInstance, reconcile.Configuration{})

	changes, bumpError := fixture.engine.BumpAll()
	require.NoError(testInstance, bumpError)
	require.Empty(testInstance, changes)

	manifestExists, existsError := afero.Exists(fixture.fileSystem, testLocalManifestPath)
	require.NoError(testInstance, existsError)
	require.False(testInstance, manifestExists)
}

func TestDeleteTab(testInstance *testing.T) {
	fixture := newEngineFixture(testInstance, reconcile.Configuration{})
	seedLocalTab(testInstance, fixture, catalog.Tab{ID: "alpha", Name: "ALPHA", Order: 1, Version: "1.0.0"})
	seedLocalTab(testInstance, fixture, catalog.Tab{ID: "beta", Name: "BETA", Order: 2, Version: "1.0.0"})

	require.NoError(testInstance, fixture.engine.DeleteTab("alpha"))

	listings, listError := fixture.engine.ListTabs()
	require.NoError(testInstance, listError)
	require.Len(testInstance, listings, 1)
	require.Equal(testInstance, "beta", listings[0].ID)
	require.Equal(testInstance, 1, listings[0].Order)
}

func TestDeleteMissingTabPerformsNoManifestWrite(testInstance *testing.T) {
	fixture := newEngineFixture(testInstance, reconcile.Configuration{})

	deleteError := fixture.engine.DeleteTab("ghost")
	require.ErrorIs(testInstance, deleteError, reconcile.ErrTabNotFound)

	manifestExists, existsError := afero.Exists(fixture.fileSystem, testLocalManifestPath)
	require.NoError(testInstance, existsError)
	require.False(testInstance, manifestExists)
}

func TestListTabsReportsBlockCounts(testInstance *testing.T) {
	fixture := newEngineFixture(testInstance, reconcile.Configuration{})
	seedLocalTab(testInstance, fixture, catalog.Tab{ID: "beta", Name: "BETA", Order: 2, Version: "1.0.0"})
	seedLocalTab(testInstance, fixture, catalog.Tab{ID: "alpha", Name: "ALPHA", Order: 1, Version: "1.0.0", Items: []catalog.Item{
		catalog.NewBlock("item_1", "a", "b"),
		catalog.NewBlock("item_2", "c", "d"),
	}})
	manifest, loadError := fixture.localStore.LoadManifest()
	require.NoError(testInstance, loadError)
	manifest.Tabs["orphan"] = catalog.ManifestEntry{Name: "ORPHAN", Version: "1.0.0", Order: 3}
	require.NoError(testInstance, fixture.localStore.SaveManifest(manifest))

	listings, listError := fixture.engine.ListTabs()
	require.NoError(testInstance, listError)
	require.Equal(testInstance, []reconcile.TabListing{
		{ID: "alpha", Name: "ALPHA", Version: "1.0.0", Order: 1, BlockCount: 2, FilePresent: true},
		{ID: "beta", Name: "BETA", Version: "1.0.0", Order: 2, BlockCount: 0, FilePresent: true},
		{ID: "orphan", Name: "ORPHAN", Version: "1.0.0", Order: 3},
	}, listings)
}
