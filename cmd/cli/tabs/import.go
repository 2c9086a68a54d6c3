package tabs

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/promptctl/internal/reconcile"
	"github.com/temirov/promptctl/internal/ui"
)

const (
	importUseConstant      = "import <file> [file ...]"
	importShortDescription = "Import tab JSON files into the local catalog"
	importLongDescription  = "import writes each tab payload into the local catalog. Versions follow the remote manifest when it is reachable."
	importFailedTemplate   = "%s: %w"
	importFailedLogMessage = "tab import failed"
	fileLogFieldConstant   = "file"
)

// ImportCommandBuilder assembles the tabs import command.
type ImportCommandBuilder struct {
	LoggerProvider LoggerProvider
	EngineProvider EngineProvider
}

// Build constructs the tabs import command.
func (builder *ImportCommandBuilder) Build() (*cobra.Command, error) {
	return &cobra.Command{
		Use:   importUseConstant,
		Short: importShortDescription,
		Long:  importLongDescription,
		Args:  cobra.MinimumNArgs(1),
		RunE:  builder.run,
	}, nil
}

func (builder *ImportCommandBuilder) run(command *cobra.Command, arguments []string) error {
	engine, engineError := resolveEngine(builder.EngineProvider, command)
	if engineError != nil {
		return engineError
	}
	logger := resolveLogger(builder.LoggerProvider)
	snapshot := engine.FetchSnapshot(command.Context())

	results := make([]reconcile.ImportResult, 0, len(arguments))
	var importErrors []error
	for _, filePath := range arguments {
		result, importError := engine.ImportFile(command.Context(), filePath, snapshot)
		if importError != nil {
			logger.Warn(importFailedLogMessage, zap.String(fileLogFieldConstant, filePath), zap.Error(importError))
			importErrors = append(importErrors, fmt.Errorf(importFailedTemplate, filePath, importError))
			continue
		}
		results = append(results, result)
	}

	if renderError := ui.NewRenderer(command.OutOrStdout()).ImportResults(results); renderError != nil {
		return renderError
	}
	return errors.Join(importErrors...)
}
