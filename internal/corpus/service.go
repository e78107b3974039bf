package corpus

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/corpusforge/gitcorpus/internal/gitrepo"
	"github.com/corpusforge/gitcorpus/internal/gitsync"
	"github.com/corpusforge/gitcorpus/internal/targets"
	"github.com/corpusforge/gitcorpus/internal/workspace"
)

const (
	serviceLoggerMissingMessageConstant       = "corpus service requires a logger"
	serviceSynchronizerMissingMessageConstant = "corpus service requires a synchronizer"
	nothingToCombineMessageConstant           = "no files to combine"
	pipelineStartedMessageConstant            = "combining repository"
	pipelineCompletedMessageConstant          = "corpus assembled"
	reclaimFailedMessageConstant              = "unable to reclaim working copy"
	targetNameFieldNameConstant               = "target_name"
	repositorySlugFieldNameConstant           = "repository_slug"
	sectionCountFieldNameConstant             = "section_count"
	approximateTokensFieldNameConstant        = "approximate_tokens"
	workingCopyFieldNameConstant              = "working_copy"
)

// Synchronizer abstracts the repository synchronization stage.
type Synchronizer interface {
	Synchronize(executionContext context.Context, options gitsync.SynchronizeOptions) error
}

// WorkingCopyReclaimer abstracts post-run working copy removal.
type WorkingCopyReclaimer interface {
	Reclaim(directoryPath string) error
}

// ServiceDependencies describes required collaborators for the pipeline.
type ServiceDependencies struct {
	Logger       *zap.Logger
	Synchronizer Synchronizer
	// Reclaimer is optional; when nil the working copy is always kept.
	Reclaimer WorkingCopyReclaimer
	// Clock is optional and defaults to time.Now; artifact names embed its day.
	Clock func() time.Time
}

// RunOptions configures one pipeline invocation.
type RunOptions struct {
	TargetName string
	Target     targets.TargetConfiguration
	OutputRoot string
	// Credential optionally authenticates repository synchronization.
	Credential string
	// ReclaimWorkingCopy removes the clone directory after a successful write.
	ReclaimWorkingCopy bool
}

// RunResult captures the observable outcome of a pipeline invocation.
type RunResult struct {
	RepositorySlug    string
	ArtifactPath      string
	SectionCount      int
	ApproximateTokens int
}

// ArtifactWritten reports whether the run produced a corpus document.
func (result RunResult) ArtifactWritten() bool {
	return len(result.ArtifactPath) > 0
}

var (
	errServiceLoggerMissing       = errors.New(serviceLoggerMissingMessageConstant)
	errServiceSynchronizerMissing = errors.New(serviceSynchronizerMissingMessageConstant)
)

// Service orchestrates the linear pipeline: synchronize, walk, assemble, write, reclaim.
type Service struct {
	logger         *zap.Logger
	synchronizer   Synchronizer
	reclaimer      WorkingCopyReclaimer
	assembler      *DocumentAssembler
	artifactWriter *ArtifactWriter
	clock          func() time.Time
}

// NewService constructs a Service with the provided dependencies.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.Logger == nil {
		return nil, errServiceLoggerMissing
	}
	if dependencies.Synchronizer == nil {
		return nil, errServiceSynchronizerMissing
	}

	documentAssembler, assemblerError := NewDocumentAssembler(dependencies.Logger)
	if assemblerError != nil {
		return nil, assemblerError
	}

	artifactWriter, writerError := NewArtifactWriter(dependencies.Logger)
	if writerError != nil {
		return nil, writerError
	}

	resolvedClock := dependencies.Clock
	if resolvedClock == nil {
		resolvedClock = time.Now
	}

	return &Service{
		logger:         dependencies.Logger,
		synchronizer:   dependencies.Synchronizer,
		reclaimer:      dependencies.Reclaimer,
		assembler:      documentAssembler,
		artifactWriter: artifactWriter,
		clock:          resolvedClock,
	}, nil
}

// Run executes the full pipeline for one resolved target.
//
// A run with zero matching files succeeds without writing an artifact. Every
// other stage failure aborts the run; there is no partial-success state.
func (service *Service) Run(executionContext context.Context, options RunOptions) (RunResult, error) {
	repositorySlug := gitrepo.DeriveRepositorySlug(options.Target.RepositoryURL)
	workspacePaths := workspace.DerivePaths(options.OutputRoot, repositorySlug)

	service.logger.Info(
		pipelineStartedMessageConstant,
		zap.String(targetNameFieldNameConstant, options.TargetName),
		zap.String(repositorySlugFieldNameConstant, repositorySlug),
	)

	synchronizeError := service.synchronizer.Synchronize(executionContext, gitsync.SynchronizeOptions{
		RepositoryURL:  options.Target.RepositoryURL,
		CloneDirectory: workspacePaths.CloneDirectory,
		Credential:     options.Credential,
	})
	if synchronizeError != nil {
		return RunResult{}, synchronizeError
	}

	candidates, collectError := CollectCandidates(workspacePaths.CloneDirectory, FilterRules{
		IncludeFolders: options.Target.IncludeFolders,
		ExcludeFolders: options.Target.ExcludeFolders,
		FileExtensions: options.Target.FileExtensions,
	})
	if collectError != nil {
		return RunResult{}, collectError
	}

	assembledDocument, assembleError := service.assembler.Assemble(candidates)
	if assembleError != nil {
		return RunResult{}, assembleError
	}

	if assembledDocument.SectionCount == 0 {
		service.logger.Info(
			nothingToCombineMessageConstant,
			zap.String(targetNameFieldNameConstant, options.TargetName),
		)
		return RunResult{RepositorySlug: repositorySlug}, nil
	}

	artifactFileName := BuildArtifactFileName(repositorySlug, service.clock(), assembledDocument.ApproximateTokens)
	artifactPath, writeError := service.artifactWriter.Write(workspacePaths.ArtifactDirectory, artifactFileName, assembledDocument.Content)
	if writeError != nil {
		return RunResult{}, writeError
	}

	service.logger.Info(
		pipelineCompletedMessageConstant,
		zap.String(targetNameFieldNameConstant, options.TargetName),
		zap.Int(sectionCountFieldNameConstant, assembledDocument.SectionCount),
		zap.Int(approximateTokensFieldNameConstant, assembledDocument.ApproximateTokens),
	)

	service.reclaimWorkingCopy(options, workspacePaths.CloneDirectory)

	return RunResult{
		RepositorySlug:    repositorySlug,
		ArtifactPath:      artifactPath,
		SectionCount:      assembledDocument.SectionCount,
		ApproximateTokens: assembledDocument.ApproximateTokens,
	}, nil
}

// reclaimWorkingCopy removes the clone directory after a successful write.
// Reclamation failure is reported but never fails the run.
func (service *Service) reclaimWorkingCopy(options RunOptions, cloneDirectory string) {
	if !options.ReclaimWorkingCopy || service.reclaimer == nil {
		return
	}

	if reclaimError := service.reclaimer.Reclaim(cloneDirectory); reclaimError != nil {
		service.logger.Warn(
			reclaimFailedMessageConstant,
			zap.String(workingCopyFieldNameConstant, cloneDirectory),
			zap.Error(reclaimError),
		)
	}
}
