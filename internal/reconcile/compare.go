package reconcile

import (
	"sort"

	"github.com/temirov/promptctl/internal/catalog"
)

// Presence tells where a tab is known.
type Presence string

// Presence values.
const (
	PresenceBoth       Presence = Presence("both")
	PresenceRemoteOnly Presence = Presence("remote")
	PresenceLocalOnly  Presence = Presence("local")
)

// Comparison is one row of the remote versus local listing.
type Comparison struct {
	TabID         string
	Name          string
	Version       string
	LocalVersion  string
	RemoteVersion string
	Presence      Presence
}

// Diverged reports a tab present on both sides with different versions.
func (comparison Comparison) Diverged() bool {
	return comparison.Presence == PresenceBoth && comparison.LocalVersion != comparison.RemoteVersion
}

// CompareWithRemote loads the local manifest and compares it with the snapshot.
func (engine *Engine) CompareWithRemote(snapshot Snapshot) ([]Comparison, error) {
	localManifest, loadError := engine.localCatalog.LoadManifest()
	if loadError != nil {
		return nil, loadError
	}
	return CompareCatalogs(localManifest, snapshot), nil
}

// CompareCatalogs merges both manifests sorted by tab id. Remote name and version win for tabs present on both sides.
func CompareCatalogs(localManifest catalog.Manifest, snapshot Snapshot) []Comparison {
	remoteTabs := map[string]catalog.ManifestEntry{}
	if snapshot.Present {
		remoteTabs = snapshot.Manifest.Tabs
	}

	identifiers := make([]string, 0, len(localManifest.Tabs)+len(remoteTabs))
	for tabID := range localManifest.Tabs {
		identifiers = append(identifiers, tabID)
	}
	for tabID := range remoteTabs {
		if _, known := localManifest.Tabs[tabID]; !known {
			identifiers = append(identifiers, tabID)
		}
	}
	sort.Strings(identifiers)

	comparisons := make([]Comparison, 0, len(identifiers))
	for _, tabID := range identifiers {
		localEntry, local := localManifest.Tabs[tabID]
		remoteEntry, remote := remoteTabs[tabID]
		comparison := Comparison{TabID: tabID}
		switch {
		case local && remote:
			comparison.Presence = PresenceBoth
			comparison.Name = remoteEntry.Name
			comparison.LocalVersion = catalog.NormalizeVersion(localEntry.Version)
			comparison.RemoteVersion = catalog.NormalizeVersion(remoteEntry.Version)
			comparison.Version = comparison.RemoteVersion
		case remote:
			comparison.Presence = PresenceRemoteOnly
			comparison.Name = remoteEntry.Name
			comparison.RemoteVersion = catalog.NormalizeVersion(remoteEntry.Version)
			comparison.Version = comparison.RemoteVersion
		default:
			comparison.Presence = PresenceLocalOnly
			comparison.Name = localEntry.Name
			comparison.LocalVersion = catalog.NormalizeVersion(localEntry.Version)
			comparison.Version = comparison.LocalVersion
		}
		if len(comparison.Name) == 0 {
			comparison.Name = tabID
		}
		comparisons = append(comparisons, comparison)
	}
	return comparisons
}
