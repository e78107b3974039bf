package gitsync

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/corpusforge/gitcorpus/internal/execshell"
	"github.com/corpusforge/gitcorpus/internal/gitrepo"
)

const (
	gitCloneSubcommandConstant             = "clone"
	gitPullSubcommandConstant              = "pull"
	gitTerminalPromptVariableConstant      = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptDisabledValueConstant = "0"
	gitAskPassVariableConstant             = "GIT_ASKPASS"
	gitAskPassEchoValueConstant            = "echo"
	repositoryURLFieldNameConstant         = "repository_url"
	cloneDirectoryFieldNameConstant        = "clone_directory"
	synchronizingMessageConstant           = "synchronizing repository"
	workingCopyUpdatedMessageConstant      = "working copy updated"
	workingCopyClonedMessageConstant       = "working copy cloned"
	loggerMissingMessageConstant           = "synchronizer requires a logger"
	gitExecutorMissingMessageConstant      = "synchronizer requires a git executor"
	cloneDirectoryRequiredMessageConstant  = "clone directory must be provided"
	pullFailureErrorTemplateConstant       = "unable to update working copy at %s: %w"
	cloneFailureErrorTemplateConstant      = "unable to clone %s: %w"
	cloneDirectoryProbeErrorTemplate       = "unable to inspect clone directory %s: %w"
)

// CommandExecutor abstracts git invocation for the synchronizer.
type CommandExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// ServiceDependencies describes required collaborators for synchronization.
type ServiceDependencies struct {
	Logger      *zap.Logger
	GitExecutor CommandExecutor
}

// SynchronizeOptions configures one synchronization run.
type SynchronizeOptions struct {
	// RepositoryURL is the remote location, with or without the .git suffix.
	RepositoryURL string
	// CloneDirectory is the deterministic working copy location for the repository.
	CloneDirectory string
	// Credential optionally authenticates the clone transport; it is never
	// persisted and absence falls back to unauthenticated access.
	Credential string
}

var (
	errLoggerMissing         = errors.New(loggerMissingMessageConstant)
	errGitExecutorMissing    = errors.New(gitExecutorMissingMessageConstant)
	errCloneDirectoryMissing = errors.New(cloneDirectoryRequiredMessageConstant)
)

// Service guarantees an up-to-date working copy of a remote repository.
type Service struct {
	logger      *zap.Logger
	gitExecutor CommandExecutor
}

// NewService constructs a Service with the provided dependencies.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.Logger == nil {
		return nil, errLoggerMissing
	}
	if dependencies.GitExecutor == nil {
		return nil, errGitExecutorMissing
	}

	return &Service{logger: dependencies.Logger, gitExecutor: dependencies.GitExecutor}, nil
}

// Synchronize ensures the clone directory holds a current checkout of the remote repository.
//
// An existing directory is updated in place with git pull; a missing directory
// is populated by a full clone. Any git failure aborts the run immediately.
func (service *Service) Synchronize(executionContext context.Context, options SynchronizeOptions) error {
	if len(options.CloneDirectory) == 0 {
		return errCloneDirectoryMissing
	}

	transportURL, normalizeError := gitrepo.NormalizeTransportURL(options.RepositoryURL)
	if normalizeError != nil {
		return normalizeError
	}

	service.logger.Info(
		synchronizingMessageConstant,
		zap.String(repositoryURLFieldNameConstant, options.RepositoryURL),
		zap.String(cloneDirectoryFieldNameConstant, options.CloneDirectory),
	)

	directoryExists, probeError := service.cloneDirectoryExists(options.CloneDirectory)
	if probeError != nil {
		return probeError
	}

	if directoryExists {
		return service.pullWorkingCopy(executionContext, options)
	}

	return service.cloneWorkingCopy(executionContext, options, transportURL)
}

func (service *Service) cloneDirectoryExists(cloneDirectory string) (bool, error) {
	_, statError := os.Stat(cloneDirectory)
	if statError == nil {
		return true, nil
	}
	if errors.Is(statError, os.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf(cloneDirectoryProbeErrorTemplate, cloneDirectory, statError)
}

func (service *Service) pullWorkingCopy(executionContext context.Context, options SynchronizeOptions) error {
	commandDetails := execshell.CommandDetails{
		Arguments:            []string{gitPullSubcommandConstant},
		WorkingDirectory:     options.CloneDirectory,
		EnvironmentVariables: service.nonInteractiveEnvironment(),
	}

	if _, executionError := service.gitExecutor.ExecuteGit(executionContext, commandDetails); executionError != nil {
		return fmt.Errorf(pullFailureErrorTemplateConstant, options.CloneDirectory, executionError)
	}

	service.logger.Info(
		workingCopyUpdatedMessageConstant,
		zap.String(cloneDirectoryFieldNameConstant, options.CloneDirectory),
	)

	return nil
}

func (service *Service) cloneWorkingCopy(executionContext context.Context, options SynchronizeOptions, transportURL string) error {
	authenticatedURL := gitrepo.EmbedCredential(transportURL, options.Credential)

	commandDetails := execshell.CommandDetails{
		Arguments:            []string{gitCloneSubcommandConstant, authenticatedURL, options.CloneDirectory},
		EnvironmentVariables: service.nonInteractiveEnvironment(),
	}

	if _, executionError := service.gitExecutor.ExecuteGit(executionContext, commandDetails); executionError != nil {
		return fmt.Errorf(cloneFailureErrorTemplateConstant, options.RepositoryURL, executionError)
	}

	service.logger.Info(
		workingCopyClonedMessageConstant,
		zap.String(repositoryURLFieldNameConstant, options.RepositoryURL),
		zap.String(cloneDirectoryFieldNameConstant, options.CloneDirectory),
	)

	return nil
}

// nonInteractiveEnvironment disables interactive credential prompts for git.
func (service *Service) nonInteractiveEnvironment() map[string]string {
	return map[string]string{
		gitTerminalPromptVariableConstant: gitTerminalPromptDisabledValueConstant,
		gitAskPassVariableConstant:        gitAskPassEchoValueConstant,
	}
}
