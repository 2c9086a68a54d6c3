package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/temirov/promptctl/internal/reconcile"
	"github.com/temirov/promptctl/internal/releases"
)

const (
	tabsTitleConstant             = "TABS"
	remoteTabsTitleConstant       = "REMOTE TABS"
	exportPlanTitleConstant       = "EXPORT PLAN"
	exportResultTitleConstant     = "EXPORT RESULT"
	importTitleConstant           = "IMPORTED"
	versionChangesTitleConstant   = "VERSION CHANGES"
	releaseOverviewTitleConstant  = "RELEASE"
	releaseResultTitleConstant    = "RELEASE %s"
	emptyListingConstant          = "(no tabs)"
	nameColumnWidthConstant       = 25
	versionColumnWidthConstant    = 10
	listingRowTemplateConstant    = "%d. %s v%s %s"
	versionChangeTemplateConstant = "%s: %s → %s"
	versionPrefixConstant         = "v"
	lineSeparatorConstant         = "\n"
	iconDone                      = "✓"
	iconFailed                    = "✗"
	iconRemoteOnly                = "●"
	iconLocalOnly                 = "○"
	iconSkipped                   = "–"
	iconPending                   = "·"
)

var (
	colorPrimary = lipgloss.Color("#00BFFF")
	colorSuccess = lipgloss.Color("#00E676")
	colorDanger  = lipgloss.Color("#FF5252")
	colorAccent  = lipgloss.Color("#FFD700")
	colorMuted   = lipgloss.Color("#8C8C8C")
)

// Renderer writes boxed summaries to a console.
type Renderer struct {
	output       io.Writer
	boxStyle     lipgloss.Style
	titleStyle   lipgloss.Style
	mutedStyle   lipgloss.Style
	successStyle lipgloss.Style
	dangerStyle  lipgloss.Style
	accentStyle  lipgloss.Style
}

// NewRenderer constructs a renderer whose color profile follows the output.
func NewRenderer(output io.Writer) *Renderer {
	styleRenderer := lipgloss.NewRenderer(output)
	return &Renderer{
		output:   output,
		boxStyle: styleRenderer.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(colorMuted).
			Padding(0, 1),
		titleStyle:   styleRenderer.NewStyle().Foreground(colorPrimary).Bold(true),
		mutedStyle:   styleRenderer.NewStyle().Foreground(colorMuted),
		successStyle: styleRenderer.NewStyle().Foreground(colorSuccess),
		dangerStyle:  styleRenderer.NewStyle().Foreground(colorDanger).Bold(true),
		accentStyle:  styleRenderer.NewStyle().Foreground(colorAccent),
	}
}

// Box writes a titled box with one row per line.
func (renderer *Renderer) Box(title string, lines []string) error {
	rows := make([]string, 0, len(lines)+1)
	rows = append(rows, renderer.titleStyle.Render(title))
	rows = append(rows, lines...)
	_, writeError := fmt.Fprintln(renderer.output, renderer.boxStyle.Render(strings.Join(rows, lineSeparatorConstant)))
	return writeError
}

// TabListing writes the local catalog.
func (renderer *Renderer) TabListing(listings []reconcile.TabListing) error {
	if len(listings) == 0 {
		return renderer.Box(tabsTitleConstant, []string{renderer.mutedStyle.Render(emptyListingConstant)})
	}
	lines := make([]string, 0, len(listings))
	for index, listing := range listings {
		status := renderer.mutedStyle.Render(fmt.Sprintf("%d blocks", listing.BlockCount))
		if !listing.FilePresent {
			status = renderer.dangerStyle.Render("file missing")
		}
		lines = append(lines, renderer.row(index+1, listing.Name, listing.Version, status))
	}
	return renderer.Box(tabsTitleConstant, lines)
}

// Comparison writes the remote versus local listing.
func (renderer *Renderer) Comparison(comparisons []reconcile.Comparison, remotePresent bool) error {
	lines := make([]string, 0, len(comparisons)+2)
	if !remotePresent {
		lines = append(lines, renderer.accentStyle.Render("remote manifest unavailable"))
	}
	if len(comparisons) == 0 {
		lines = append(lines, renderer.mutedStyle.Render(emptyListingConstant))
	}
	for index, comparison := range comparisons {
		var status string
		switch comparison.Presence {
		case reconcile.PresenceBoth:
			status = renderer.successStyle.Render(iconDone)
			if comparison.Diverged() {
				status += " " + renderer.accentStyle.Render("local "+versionPrefixConstant+comparison.LocalVersion)
			}
		case reconcile.PresenceRemoteOnly:
			status = renderer.accentStyle.Render(iconRemoteOnly)
		default:
			status = renderer.mutedStyle.Render(iconLocalOnly)
		}
		lines = append(lines, renderer.row(index+1, comparison.Name, comparison.Version, status))
	}
	lines = append(lines, renderer.mutedStyle.Render(iconDone+" synced  "+iconRemoteOnly+" remote only  "+iconLocalOnly+" local only"))
	return renderer.Box(remoteTabsTitleConstant, lines)
}

// ExportPlan writes the pending writes and the rejected files of an export.
func (renderer *Renderer) ExportPlan(plan reconcile.ExportPlan) error {
	lines := make([]string, 0, len(plan.Writes)+len(plan.Rejected)+1)
	for index, write := range plan.Writes {
		change := versionPrefixConstant + write.Version
		if write.Created() {
			change = renderer.successStyle.Render("new " + change)
		} else {
			change = renderer.mutedStyle.Render(versionPrefixConstant+write.PreviousVersion+" → ") + change
		}
		lines = append(lines, fmt.Sprintf("%d. %s %s", index+1, padRight(write.Name, nameColumnWidthConstant), change))
	}
	for _, rejected := range plan.Rejected {
		lines = append(lines, renderer.dangerStyle.Render(fmt.Sprintf("%s %s: %v", iconFailed, rejected.FileName, rejected.Cause)))
	}
	if len(plan.Writes) > 0 {
		lines = append(lines, renderer.mutedStyle.Render("then "+plan.ManifestPath))
	}
	return renderer.Box(exportPlanTitleConstant, lines)
}

// BatchResult writes what an export actually changed.
func (renderer *Renderer) BatchResult(result reconcile.BatchResult) error {
	lines := make([]string, 0, len(result.Written)+len(result.CleanedFiles)+1)
	for _, outcome := range result.Written {
		lines = append(lines, fmt.Sprintf("%s %s v%s", renderer.successStyle.Render(iconDone), outcome.Path, outcome.Version))
	}
	if result.ManifestWritten {
		lines = append(lines, renderer.successStyle.Render(iconDone)+" manifest")
	} else {
		lines = append(lines, renderer.dangerStyle.Render(iconFailed+" manifest not updated"))
	}
	for _, cleaned := range result.CleanedFiles {
		lines = append(lines, renderer.mutedStyle.Render("removed "+cleaned))
	}
	return renderer.Box(exportResultTitleConstant, lines)
}

// ImportResults writes one row per imported tab.
func (renderer *Renderer) ImportResults(results []reconcile.ImportResult) error {
	lines := make([]string, 0, len(results))
	for _, result := range results {
		action := renderer.successStyle.Render("added")
		if result.Updated {
			action = renderer.accentStyle.Render("updated")
		}
		lines = append(lines, renderer.row(result.Order, result.Name, result.Version, action))
	}
	if len(lines) == 0 {
		lines = append(lines, renderer.mutedStyle.Render(emptyListingConstant))
	}
	return renderer.Box(importTitleConstant, lines)
}

// VersionChanges writes bumped versions.
func (renderer *Renderer) VersionChanges(changes []reconcile.VersionChange) error {
	lines := make([]string, 0, len(changes))
	for _, change := range changes {
		lines = append(lines, fmt.Sprintf(versionChangeTemplateConstant, change.TabID, change.PreviousVersion, change.Version))
	}
	if len(lines) == 0 {
		lines = append(lines, renderer.mutedStyle.Render(emptyListingConstant))
	}
	return renderer.Box(versionChangesTitleConstant, lines)
}

// ReleaseOverview writes artifact versions, git state and the latest published release.
func (renderer *Renderer) ReleaseOverview(overview releases.Overview) error {
	lines := []string{"version " + versionPrefixConstant + overview.LocalVersion}
	for _, artifact := range overview.Inspection.Artifacts {
		value := versionPrefixConstant + artifact.Version
		if !artifact.Present {
			value = renderer.dangerStyle.Render("missing")
		}
		lines = append(lines, fmt.Sprintf("  %s %s", padRight(artifact.Artifact, nameColumnWidthConstant), value))
	}
	if !overview.Inspection.Consistent {
		lines = append(lines, renderer.accentStyle.Render("artifact versions differ"))
	}

	switch {
	case !overview.IsRepository:
		lines = append(lines, renderer.accentStyle.Render("git repository not initialized"))
	case overview.Status.Clean():
		lines = append(lines, renderer.successStyle.Render(iconDone+" working tree clean"))
	default:
		if overview.Status.HasLocalChanges {
			lines = append(lines, renderer.accentStyle.Render("uncommitted changes"))
		}
		if overview.Status.UnpushedCommits > 0 {
			lines = append(lines, renderer.accentStyle.Render(fmt.Sprintf("%d unpushed commits", overview.Status.UnpushedCommits)))
		}
	}

	switch {
	case overview.LatestError != nil:
		lines = append(lines, renderer.mutedStyle.Render("latest release unavailable"))
	case len(overview.LatestPublished) > 0:
		lines = append(lines, "latest release "+versionPrefixConstant+strings.TrimPrefix(overview.LatestPublished, versionPrefixConstant))
	}

	if len(overview.ReleaseNotes) > 0 {
		lines = append(lines, renderer.mutedStyle.Render("notes:"))
		lines = append(lines, strings.Split(overview.ReleaseNotes, lineSeparatorConstant)...)
	}
	return renderer.Box(releaseOverviewTitleConstant, lines)
}

// ReleaseResult writes one row per release step.
func (renderer *Renderer) ReleaseResult(result releases.Result) error {
	lines := make([]string, 0, len(result.Steps))
	for _, step := range result.Steps {
		switch {
		case step.Error != nil:
			lines = append(lines, renderer.dangerStyle.Render(fmt.Sprintf("%s %s: %v", iconFailed, step.Step, step.Error)))
		case step.Skipped:
			lines = append(lines, renderer.mutedStyle.Render(fmt.Sprintf("%s %s (dry run)", iconPending, step.Step)))
		case step.NothingChanged:
			lines = append(lines, renderer.mutedStyle.Render(fmt.Sprintf("%s %s (nothing to commit)", iconSkipped, step.Step)))
		default:
			lines = append(lines, fmt.Sprintf("%s %s", renderer.successStyle.Render(iconDone), step.Step))
		}
	}
	return renderer.Box(fmt.Sprintf(releaseResultTitleConstant, result.TagName), lines)
}

func (renderer *Renderer) row(position int, name string, version string, status string) string {
	return fmt.Sprintf(listingRowTemplateConstant, position, padRight(name, nameColumnWidthConstant), padRight(version, versionColumnWidthConstant), status)
}

func padRight(value string, width int) string {
	visibleWidth := lipgloss.Width(value)
	if visibleWidth >= width {
		return value
	}
	return value + strings.Repeat(" ", width-visibleWidth)
}
