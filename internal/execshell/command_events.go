package execshell

// CommandEventObserver is told about every command the executor runs.
type CommandEventObserver interface {
	CommandStarted(command ShellCommand)
	CommandCompleted(command ShellCommand, result ExecutionResult)
	// CommandExecutionFailed fires when the process could not be run at all.
	CommandExecutionFailed(command ShellCommand, failure error)
}

// CommandEventObservers fans events out to several observers in order.
type CommandEventObservers []CommandEventObserver

// CommandStarted forwards to every observer.
func (observers CommandEventObservers) CommandStarted(command ShellCommand) {
	for _, observer := range observers {
		observer.CommandStarted(command)
	}
}

// CommandCompleted forwards to every observer.
func (observers CommandEventObservers) CommandCompleted(command ShellCommand, result ExecutionResult) {
	for _, observer := range observers {
		observer.CommandCompleted(command, result)
	}
}

// CommandExecutionFailed forwards to every observer.
func (observers CommandEventObservers) CommandExecutionFailed(command ShellCommand, failure error) {
	for _, observer := range observers {
		observer.CommandExecutionFailed(command, failure)
	}
}

type noopCommandEventObserver struct{}

func (noopCommandEventObserver) CommandStarted(ShellCommand) {}

func (noopCommandEventObserver) CommandCompleted(ShellCommand, ExecutionResult) {}

func (noopCommandEventObserver) CommandExecutionFailed(ShellCommand, error) {}
