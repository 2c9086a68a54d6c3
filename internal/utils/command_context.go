package utils

import "context"

const (
	configurationFilePathContextKeyConstant = commandContextKey("configurationFilePath")
	projectRootContextKeyConstant           = commandContextKey("projectRoot")
)

type commandContextKey string

// CommandContextAccessor stores resolved invocation settings in command contexts.
type CommandContextAccessor struct{}

// NewCommandContextAccessor constructs a CommandContextAccessor instance.
func NewCommandContextAccessor() CommandContextAccessor {
	return CommandContextAccessor{}
}

// WithConfigurationFilePath attaches the configuration file path to the provided context.
func (accessor CommandContextAccessor) WithConfigurationFilePath(parentContext context.Context, configurationFilePath string) context.Context {
	return accessor.withValue(parentContext, configurationFilePathContextKeyConstant, configurationFilePath)
}

// ConfigurationFilePath extracts the configuration file path from the provided context.
func (accessor CommandContextAccessor) ConfigurationFilePath(executionContext context.Context) (string, bool) {
	return accessor.stringValue(executionContext, configurationFilePathContextKeyConstant)
}

// WithProjectRoot attaches the resolved project root to the provided context.
func (accessor CommandContextAccessor) WithProjectRoot(parentContext context.Context, projectRoot string) context.Context {
	return accessor.withValue(parentContext, projectRootContextKeyConstant, projectRoot)
}

// ProjectRoot extracts the resolved project root from the provided context.
func (accessor CommandContextAccessor) ProjectRoot(executionContext context.Context) (string, bool) {
	return accessor.stringValue(executionContext, projectRootContextKeyConstant)
}

func (accessor CommandContextAccessor) withValue(parentContext context.Context, key commandContextKey, value string) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}
	return context.WithValue(parentContext, key, value)
}

func (accessor CommandContextAccessor) stringValue(executionContext context.Context, key commandContextKey) (string, bool) {
	if executionContext == nil {
		return "", false
	}
	value, available := executionContext.Value(key).(string)
	return value, available
}
