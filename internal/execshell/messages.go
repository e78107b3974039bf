package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStarted messageStage = iota
	messageStageSucceeded
	messageStageFailed
	messageStageExecutionFailed
)

const (
	gitCloneSubcommandConstant             = "clone"
	gitPullSubcommandConstant              = "pull"
	cloneStartedMessageTemplateConstant    = "Cloning %s"
	cloneSucceededMessageTemplateConstant  = "Cloned %s"
	cloneFailedMessageTemplateConstant     = "Failed to clone %s%s"
	pullStartedMessageTemplateConstant     = "Pulling latest changes%s"
	pullSucceededMessageTemplateConstant   = "Pulled latest changes%s"
	pullFailedMessageTemplateConstant      = "Failed to pull latest changes%s%s"
	genericStartedMessageTemplateConstant  = "Running %s%s"
	genericSuccessMessageTemplateConstant  = "Completed %s%s"
	genericFailureMessageTemplateConstant  = "Failed %s%s%s"
	executionFailureMessageTemplate        = "Could not execute %s: %s"
	workingDirectorySuffixTemplateConstant = " in %s"
	standardErrorSuffixTemplateConstant    = ": %s"
	unknownValuePlaceholderConstant        = "unknown"
	credentialMaskConstant                 = "***"
	credentialSchemeSeparatorConstant      = "://"
	credentialUserInfoSeparatorConstant    = "@"
)

// CommandMessageFormatter renders human-readable descriptions of command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage describes a command that is about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStarted)
}

// BuildSuccessMessage describes a command that completed successfully.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSucceeded)
}

// BuildFailureMessage describes a command that exited with a non-zero status.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailed)
}

// BuildExecutionFailureMessage describes a command that could not be executed at all.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailed)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if stage == messageStageExecutionFailed {
		return fmt.Sprintf(executionFailureMessageTemplate, formatter.formatCommandLabel(command), formatter.describeFailure(failure))
	}

	if command.Name == CommandGit {
		switch formatter.argumentAtIndex(command.Details.Arguments, 0) {
		case gitCloneSubcommandConstant:
			return formatter.describeGitCloneMessage(command, result, stage)
		case gitPullSubcommandConstant:
			return formatter.describeGitPullMessage(command, result, stage)
		}
	}

	return formatter.buildGenericMessage(command, result, stage)
}

func (formatter CommandMessageFormatter) describeGitCloneMessage(command ShellCommand, result ExecutionResult, stage messageStage) string {
	remoteLabel := formatter.maskCredential(formatter.extractFirstNonFlagArgument(command.Details.Arguments[1:]))

	switch stage {
	case messageStageStarted:
		return fmt.Sprintf(cloneStartedMessageTemplateConstant, remoteLabel)
	case messageStageSucceeded:
		return fmt.Sprintf(cloneSucceededMessageTemplateConstant, remoteLabel)
	default:
		return fmt.Sprintf(cloneFailedMessageTemplateConstant, remoteLabel, formatter.formatStandardErrorSuffix(result.StandardError))
	}
}

func (formatter CommandMessageFormatter) describeGitPullMessage(command ShellCommand, result ExecutionResult, stage messageStage) string {
	directorySuffix := formatter.formatWorkingDirectorySuffix(command)

	switch stage {
	case messageStageStarted:
		return fmt.Sprintf(pullStartedMessageTemplateConstant, directorySuffix)
	case messageStageSucceeded:
		return fmt.Sprintf(pullSucceededMessageTemplateConstant, directorySuffix)
	default:
		return fmt.Sprintf(pullFailedMessageTemplateConstant, directorySuffix, formatter.formatStandardErrorSuffix(result.StandardError))
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, stage messageStage) string {
	commandLabel := formatter.formatCommandLabel(command)
	directorySuffix := formatter.formatWorkingDirectorySuffix(command)

	switch stage {
	case messageStageStarted:
		return fmt.Sprintf(genericStartedMessageTemplateConstant, commandLabel, directorySuffix)
	case messageStageSucceeded:
		return fmt.Sprintf(genericSuccessMessageTemplateConstant, commandLabel, directorySuffix)
	default:
		return fmt.Sprintf(genericFailureMessageTemplateConstant, commandLabel, directorySuffix, formatter.formatStandardErrorSuffix(result.StandardError))
	}
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	if len(command.Details.Arguments) == 0 {
		return string(command.Name)
	}
	return strings.TrimSpace(string(command.Name) + " " + strings.Join(command.Details.Arguments, " "))
}

func (formatter CommandMessageFormatter) formatWorkingDirectorySuffix(command ShellCommand) string {
	if len(command.Details.WorkingDirectory) == 0 {
		return ""
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, command.Details.WorkingDirectory)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return ""
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownValuePlaceholderConstant
	}
	return failure.Error()
}

func (formatter CommandMessageFormatter) argumentAtIndex(arguments []string, index int) string {
	if index < 0 || index >= len(arguments) {
		return ""
	}
	return arguments[index]
}

func (formatter CommandMessageFormatter) extractFirstNonFlagArgument(arguments []string) string {
	for _, argument := range arguments {
		if !strings.HasPrefix(argument, "-") {
			return argument
		}
	}
	return unknownValuePlaceholderConstant
}

// maskCredential hides embedded transport credentials when describing remote URLs.
func (formatter CommandMessageFormatter) maskCredential(remote string) string {
	schemeIndex := strings.Index(remote, credentialSchemeSeparatorConstant)
	if schemeIndex < 0 {
		return remote
	}

	userInfoIndex := strings.Index(remote[schemeIndex+len(credentialSchemeSeparatorConstant):], credentialUserInfoSeparatorConstant)
	if userInfoIndex < 0 {
		return remote
	}

	prefixLength := schemeIndex + len(credentialSchemeSeparatorConstant)
	return remote[:prefixLength] + credentialMaskConstant + remote[prefixLength+userInfoIndex:]
}
