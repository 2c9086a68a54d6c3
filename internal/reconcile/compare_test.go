package reconcile_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/promptctl/internal/catalog"
	"github.com/temirov/promptctl/internal/reconcile"
)

func TestCompareCatalogs(testInstance *testing.T) {
	localManifest := catalog.NewManifest()
	localManifest.Tabs["alpha"] = catalog.ManifestEntry{Name: "ALPHA", Version: "1.0.1", Order: 1}
	localManifest.Tabs["gamma"] = catalog.ManifestEntry{Name: "GAMMA", Order: 2}

	remoteManifest := catalog.NewManifest()
	remoteManifest.Tabs["alpha"] = catalog.ManifestEntry{Name: "ALPHA REMOTE", Version: "1.0.3", Order: 2}
	remoteManifest.Tabs["beta"] = catalog.ManifestEntry{Name: "BETA", Version: "2.0.0", Order: 1}

	testCases := []struct {
		name     string
		snapshot reconcile.Snapshot
		expected []reconcile.Comparison
	}{
		{
			name:     "remote_present",
			snapshot: reconcile.Snapshot{Present: true, Manifest: remoteManifest},
			expected: []reconcile.Comparison{
				{TabID: "alpha", Name: "ALPHA REMOTE", Version: "1.0.3", LocalVersion: "1.0.1", RemoteVersion: "1.0.3", Presence: reconcile.PresenceBoth},
				{TabID: "beta", Name: "BETA", Version: "2.0.0", RemoteVersion: "2.0.0", Presence: reconcile.PresenceRemoteOnly},
				{TabID: "gamma", Name: "GAMMA", Version: "1.0.0", LocalVersion: "1.0.0", Presence: reconcile.PresenceLocalOnly},
			},
		},
		{
			name:     "remote_absent",
			snapshot: reconcile.Snapshot{Manifest: remoteManifest},
			expected: []reconcile.Comparison{
				{TabID: "alpha", Name: "ALPHA", Version: "1.0.1", LocalVersion: "1.0.1", Presence: reconcile.PresenceLocalOnly},
				{TabID: "gamma", Name: "GAMMA", Version: "1.0.0", LocalVersion: "1.0.0", Presence: reconcile.PresenceLocalOnly},
			},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expected, reconcile.CompareCatalogs(localManifest, testCase.snapshot))
		})
	}

	divergent := reconcile.CompareCatalogs(localManifest, reconcile.Snapshot{Present: true, Manifest: remoteManifest})
	require.True(testInstance, divergent[0].Diverged())
	require.False(testInstance, divergent[1].Diverged())
}

func TestCompareWithRemoteLoadsLocalManifest(testInstance *testing.T) {
	fixture := newEngineFixture(testInstance, reconcile.Configuration{})
	seedLocalTab(testInstance, fixture, catalog.Tab{ID: "alpha", Name: "ALPHA", Order: 1, Version: "1.0.0"})

	comparisons, compareError := fixture.engine.CompareWithRemote(reconcile.Snapshot{})
	require.NoError(testInstance, compareError)
	require.Len(testInstance, comparisons, 1)
	require.Equal(testInstance, reconcile.PresenceLocalOnly, comparisons[0].Presence)
}
