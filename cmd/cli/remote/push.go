package remote

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/promptctl/internal/ui"
	flagutils "github.com/temirov/promptctl/internal/utils/flags"
)

const (
	pushUseConstant          = "push"
	pushShortDescription     = "Publish exported tabs and the manifest"
	pushLongDescription      = "push reads tab exports, bumps versions against the remote manifest, uploads every tab and finally the manifest."
	pushMessageFlagName      = "message"
	pushMessageFlagShorthand = "m"
	pushMessageFlagUsage     = "Commit message for every write (defaults to a dated message)"
	pushPromptTemplate       = "Publish %d tabs? [y/N] "
	pushNothingMessage       = "nothing to publish\n"
	pushDeclinedMessage      = "push cancelled\n"
	pushDeclinedLogMessage   = "push declined"
	pushWritesLogField       = "writes"
)

// PushCommandBuilder assembles the remote push command.
type PushCommandBuilder struct {
	LoggerProvider  LoggerProvider
	EngineProvider  EngineProvider
	PrompterFactory PrompterFactory
}

// Build constructs the remote push command.
func (builder *PushCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   pushUseConstant,
		Short: pushShortDescription,
		Long:  pushLongDescription,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}
	command.Flags().StringP(pushMessageFlagName, pushMessageFlagShorthand, "", pushMessageFlagUsage)
	flagutils.BindExecutionFlags(command, flagutils.ExecutionFlagSet{AssumeYes: true, DryRun: true})
	return command, nil
}

func (builder *PushCommandBuilder) run(command *cobra.Command, _ []string) error {
	engine, engineError := resolveWritableEngine(builder.EngineProvider, command)
	if engineError != nil {
		return engineError
	}
	executionOptions := flagutils.ReadExecutionOptions(command)
	message, _ := command.Flags().GetString(pushMessageFlagName)

	exports, scanError := engine.ScanExports()
	if scanError != nil {
		return scanError
	}
	snapshot := engine.FetchSnapshot(command.Context())
	plan, planError := engine.PlanExport(exports, snapshot)
	if planError != nil {
		return planError
	}

	renderer := ui.NewRenderer(command.OutOrStdout())
	if renderError := renderer.ExportPlan(plan); renderError != nil {
		return renderError
	}
	if len(plan.Writes) == 0 {
		_, writeError := fmt.Fprint(command.OutOrStdout(), pushNothingMessage)
		return writeError
	}
	if executionOptions.DryRun {
		return nil
	}

	prompter := resolvePrompter(builder.PrompterFactory, command, executionOptions.AssumeYes)
	confirmed, promptError := prompter.Confirm(fmt.Sprintf(pushPromptTemplate, len(plan.Writes)))
	if promptError != nil {
		return promptError
	}
	if !confirmed {
		resolveLogger(builder.LoggerProvider).Debug(pushDeclinedLogMessage, zap.Int(pushWritesLogField, len(plan.Writes)))
		_, writeError := fmt.Fprint(command.OutOrStdout(), pushDeclinedMessage)
		return writeError
	}

	result, batchError := engine.ExecuteBatch(command.Context(), plan, message)
	if renderError := renderer.BatchResult(result); renderError != nil {
		return renderError
	}
	return batchError
}
