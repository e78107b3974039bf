package corpus

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/corpusforge/gitcorpus/internal/execshell"
	"github.com/corpusforge/gitcorpus/internal/gitrepo"
	"github.com/corpusforge/gitcorpus/internal/gitsync"
	"github.com/corpusforge/gitcorpus/internal/targets"
	"github.com/corpusforge/gitcorpus/internal/ui"
	"github.com/corpusforge/gitcorpus/internal/workspace"
)

const (
	commandUseConstant                     = "combine <target>"
	commandShortDescriptionConstant        = "Synchronize a target repository and assemble its corpus document"
	commandLongDescriptionConstant         = "combine clones or updates the named target's repository, filters its files, and writes one Markdown corpus document."
	commandExecutionErrorTemplateConstant  = "combine failed: %w"
	targetNameRequiredMessageConstant      = "a target name must be provided"
	flagOutputRootNameConstant             = "output-root"
	flagOutputRootDescriptionConstant      = "Directory receiving working copies and corpus artifacts"
	flagTargetsFileNameConstant            = "targets-file"
	flagTargetsFileDescriptionConstant     = "Path to the target catalog file"
	flagReclaimNameConstant                = "reclaim"
	flagReclaimDescriptionConstant         = "Remove the working copy after a successful run"
	defaultOutputRootConstant              = "corpus"
	defaultTargetsFileConstant             = "targets.yaml"
	completionMessageTemplateConstant      = "Combined %d files into %s (~%d tokens)\n"
	nothingCombinedMessageTemplateConstant = "No files to combine for target %s\n"
)

var errTargetNameRequired = errors.New(targetNameRequiredMessageConstant)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandConfiguration captures the persisted configuration for the combine command.
type CommandConfiguration struct {
	OutputRoot      string `mapstructure:"output_root"`
	TargetsFile     string `mapstructure:"targets_file"`
	KeepWorkingCopy bool   `mapstructure:"keep_working_copy"`
}

// Sanitize applies defaults to unset configuration fields.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitizedConfiguration := configuration
	if len(strings.TrimSpace(sanitizedConfiguration.OutputRoot)) == 0 {
		sanitizedConfiguration.OutputRoot = defaultOutputRootConstant
	}
	if len(strings.TrimSpace(sanitizedConfiguration.TargetsFile)) == 0 {
		sanitizedConfiguration.TargetsFile = defaultTargetsFileConstant
	}
	return sanitizedConfiguration
}

// ConfigurationProvider supplies the persisted combine configuration.
type ConfigurationProvider func() CommandConfiguration

// HumanReadableLoggingProvider reports whether console-formatted output is active.
type HumanReadableLoggingProvider func() bool

// CommandBuilder assembles the Cobra command for corpus assembly.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	ConfigurationProvider        ConfigurationProvider
	HumanReadableLoggingProvider HumanReadableLoggingProvider
	// GitExecutor overrides the default git executor; primarily for tests.
	GitExecutor gitsync.CommandExecutor
}

// Build constructs the combine command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.ExactArgs(1),
		RunE:  builder.run,
	}

	command.Flags().String(flagOutputRootNameConstant, "", flagOutputRootDescriptionConstant)
	command.Flags().String(flagTargetsFileNameConstant, "", flagTargetsFileDescriptionConstant)
	command.Flags().Bool(flagReclaimNameConstant, false, flagReclaimDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) == 0 {
		return errTargetNameRequired
	}

	configuration := builder.resolveConfiguration()

	if outputRootValue, _ := command.Flags().GetString(flagOutputRootNameConstant); len(strings.TrimSpace(outputRootValue)) > 0 {
		configuration.OutputRoot = outputRootValue
	}
	if targetsFileValue, _ := command.Flags().GetString(flagTargetsFileNameConstant); len(strings.TrimSpace(targetsFileValue)) > 0 {
		configuration.TargetsFile = targetsFileValue
	}

	reclaimWorkingCopy := !configuration.KeepWorkingCopy
	if command.Flags().Changed(flagReclaimNameConstant) {
		reclaimWorkingCopy, _ = command.Flags().GetBool(flagReclaimNameConstant)
	}

	return builder.executeTarget(command, arguments[0], configuration, reclaimWorkingCopy)
}

// RunTarget executes the pipeline for a target using persisted configuration only.
// The root command delegates here when invoked as "gitcorpus <target>".
func (builder *CommandBuilder) RunTarget(command *cobra.Command, targetName string) error {
	configuration := builder.resolveConfiguration()
	return builder.executeTarget(command, targetName, configuration, !configuration.KeepWorkingCopy)
}

func (builder *CommandBuilder) executeTarget(command *cobra.Command, targetName string, configuration CommandConfiguration, reclaimWorkingCopy bool) error {
	trimmedTargetName := strings.TrimSpace(targetName)
	if len(trimmedTargetName) == 0 {
		return errTargetNameRequired
	}

	targetCatalog, catalogError := targets.LoadCatalog(configuration.TargetsFile)
	if catalogError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, catalogError)
	}

	targetConfiguration, resolveError := targetCatalog.Resolve(trimmedTargetName)
	if resolveError != nil {
		return resolveError
	}

	logger := builder.resolveLogger()

	service, serviceError := builder.buildService(logger)
	if serviceError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, serviceError)
	}

	credential, _ := gitrepo.ResolveCredential(nil)

	runResult, runError := service.Run(builder.resolveContext(command), RunOptions{
		TargetName:         trimmedTargetName,
		Target:             targetConfiguration,
		OutputRoot:         configuration.OutputRoot,
		Credential:         credential,
		ReclaimWorkingCopy: reclaimWorkingCopy,
	})
	if runError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, runError)
	}

	if !runResult.ArtifactWritten() {
		fmt.Fprintf(command.OutOrStdout(), nothingCombinedMessageTemplateConstant, trimmedTargetName)
		return nil
	}

	fmt.Fprintf(command.OutOrStdout(), completionMessageTemplateConstant, runResult.SectionCount, runResult.ArtifactPath, runResult.ApproximateTokens)
	return nil
}

func (builder *CommandBuilder) buildService(logger *zap.Logger) (*Service, error) {
	gitExecutor := builder.GitExecutor
	if gitExecutor == nil {
		shellExecutor, executorError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner())
		if executorError != nil {
			return nil, executorError
		}
		if builder.humanReadableLoggingEnabled() {
			shellExecutor.SetEventObserver(ui.NewConsoleCommandEventLogger(logger))
		}
		gitExecutor = shellExecutor
	}

	synchronizer, synchronizerError := gitsync.NewService(gitsync.ServiceDependencies{
		Logger:      logger,
		GitExecutor: gitExecutor,
	})
	if synchronizerError != nil {
		return nil, synchronizerError
	}

	reclaimer, reclaimerError := workspace.NewReclaimer(logger)
	if reclaimerError != nil {
		return nil, reclaimerError
	}

	return NewService(ServiceDependencies{
		Logger:       logger,
		Synchronizer: synchronizer,
		Reclaimer:    reclaimer,
	})
}

func (builder *CommandBuilder) humanReadableLoggingEnabled() bool {
	return builder.HumanReadableLoggingProvider != nil && builder.HumanReadableLoggingProvider()
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return CommandConfiguration{}.Sanitize()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (builder *CommandBuilder) resolveContext(command *cobra.Command) context.Context {
	if command != nil && command.Context() != nil {
		return command.Context()
	}
	return context.Background()
}
