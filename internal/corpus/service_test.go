package corpus_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/corpusforge/gitcorpus/internal/corpus"
	"github.com/corpusforge/gitcorpus/internal/gitsync"
	"github.com/corpusforge/gitcorpus/internal/targets"
)

const (
	testServiceWritesArtifactCaseName      = "writes_artifact_for_matching_files"
	testServiceNothingToCombineCaseName    = "no_matches_writes_nothing"
	testServiceIdempotentCaseNameConstant  = "repeated_runs_share_artifact_name"
	testServiceReclaimCaseNameConstant     = "reclaims_working_copy_after_write"
	testServiceTargetNameConstant          = "example"
	testServiceRepositoryURLConstant       = "https://github.com/example/repo"
	testServiceMatchingFileContentConstant = "const value = 1\n"
	testServiceNothingMessageConstant      = "no files to combine"
)

// populatingSynchronizer stands in for the git transport by materializing the
// working copy contents directly in the clone directory.
type populatingSynchronizer struct {
	workingCopyFiles map[string]string
	synchronizeCalls int
}

func (synchronizer *populatingSynchronizer) Synchronize(_ context.Context, options gitsync.SynchronizeOptions) error {
	synchronizer.synchronizeCalls++
	for relativePath, fileContent := range synchronizer.workingCopyFiles {
		absolutePath := filepath.Join(options.CloneDirectory, filepath.FromSlash(relativePath))
		if mkdirError := os.MkdirAll(filepath.Dir(absolutePath), 0o755); mkdirError != nil {
			return mkdirError
		}
		if writeError := os.WriteFile(absolutePath, []byte(fileContent), 0o644); writeError != nil {
			return writeError
		}
	}
	return nil
}

type recordingReclaimer struct {
	reclaimedDirectories []string
}

func (reclaimer *recordingReclaimer) Reclaim(directoryPath string) error {
	reclaimer.reclaimedDirectories = append(reclaimer.reclaimedDirectories, directoryPath)
	return os.RemoveAll(directoryPath)
}

func fixedClock() time.Time {
	return time.Date(2026, time.August, 23, 12, 0, 0, 0, time.UTC)
}

func buildPipelineService(testInstance *testing.T, logger *zap.Logger, synchronizer corpus.Synchronizer, reclaimer corpus.WorkingCopyReclaimer) *corpus.Service {
	testInstance.Helper()

	service, creationError := corpus.NewService(corpus.ServiceDependencies{
		Logger:       logger,
		Synchronizer: synchronizer,
		Reclaimer:    reclaimer,
		Clock:        fixedClock,
	})
	require.NoError(testInstance, creationError)
	return service
}

func defaultRunOptions(outputRoot string, reclaimWorkingCopy bool) corpus.RunOptions {
	return corpus.RunOptions{
		TargetName: testServiceTargetNameConstant,
		Target: targets.TargetConfiguration{
			RepositoryURL:  testServiceRepositoryURLConstant,
			IncludeFolders: []string{"src"},
			FileExtensions: []string{"ts"},
		},
		OutputRoot:         outputRoot,
		ReclaimWorkingCopy: reclaimWorkingCopy,
	}
}

func TestServiceRunWritesArtifact(testInstance *testing.T) {
	testInstance.Run(testServiceWritesArtifactCaseName, func(testInstance *testing.T) {
		outputRoot := testInstance.TempDir()
		synchronizer := &populatingSynchronizer{workingCopyFiles: map[string]string{
			"src/a.ts": testServiceMatchingFileContentConstant,
			"src/b.md": "documentation\n",
			"lib/c.ts": testServiceMatchingFileContentConstant,
		}}

		service := buildPipelineService(testInstance, zap.NewNop(), synchronizer, nil)

		runResult, runError := service.Run(context.Background(), defaultRunOptions(outputRoot, false))
		require.NoError(testInstance, runError)

		require.True(testInstance, runResult.ArtifactWritten())
		require.Equal(testInstance, "example-repo", runResult.RepositorySlug)
		require.Equal(testInstance, 1, runResult.SectionCount)

		writtenContent, readError := os.ReadFile(runResult.ArtifactPath)
		require.NoError(testInstance, readError)
		require.Contains(testInstance, string(writtenContent), "# src/a.ts")
		require.NotContains(testInstance, string(writtenContent), "src/b.md")
		require.NotContains(testInstance, string(writtenContent), "lib/c.ts")

		require.DirExists(testInstance, filepath.Join(outputRoot, "in", "example-repo"))
	})
}

func TestServiceRunNothingToCombine(testInstance *testing.T) {
	testInstance.Run(testServiceNothingToCombineCaseName, func(testInstance *testing.T) {
		outputRoot := testInstance.TempDir()
		synchronizer := &populatingSynchronizer{workingCopyFiles: map[string]string{
			"docs/readme.md": "documentation\n",
		}}

		observerCore, observedLogs := observer.New(zap.InfoLevel)
		service := buildPipelineService(testInstance, zap.New(observerCore), synchronizer, nil)

		runResult, runError := service.Run(context.Background(), defaultRunOptions(outputRoot, false))
		require.NoError(testInstance, runError)

		require.False(testInstance, runResult.ArtifactWritten())
		require.NoDirExists(testInstance, filepath.Join(outputRoot, "out"))
		require.NotZero(testInstance, observedLogs.FilterMessage(testServiceNothingMessageConstant).Len())
	})
}

func TestServiceRunIdempotentArtifactName(testInstance *testing.T) {
	testInstance.Run(testServiceIdempotentCaseNameConstant, func(testInstance *testing.T) {
		outputRoot := testInstance.TempDir()
		synchronizer := &populatingSynchronizer{workingCopyFiles: map[string]string{
			"src/a.ts": testServiceMatchingFileContentConstant,
		}}

		service := buildPipelineService(testInstance, zap.NewNop(), synchronizer, nil)

		firstResult, firstError := service.Run(context.Background(), defaultRunOptions(outputRoot, false))
		require.NoError(testInstance, firstError)

		secondResult, secondError := service.Run(context.Background(), defaultRunOptions(outputRoot, false))
		require.NoError(testInstance, secondError)

		require.Equal(testInstance, firstResult.ArtifactPath, secondResult.ArtifactPath)
		require.Equal(testInstance, firstResult.ApproximateTokens, secondResult.ApproximateTokens)
		require.Equal(testInstance, 2, synchronizer.synchronizeCalls)
	})
}

func TestServiceRunReclaimsWorkingCopy(testInstance *testing.T) {
	testInstance.Run(testServiceReclaimCaseNameConstant, func(testInstance *testing.T) {
		outputRoot := testInstance.TempDir()
		synchronizer := &populatingSynchronizer{workingCopyFiles: map[string]string{
			"src/a.ts": testServiceMatchingFileContentConstant,
		}}
		reclaimer := &recordingReclaimer{}

		service := buildPipelineService(testInstance, zap.NewNop(), synchronizer, reclaimer)

		runResult, runError := service.Run(context.Background(), defaultRunOptions(outputRoot, true))
		require.NoError(testInstance, runError)
		require.True(testInstance, runResult.ArtifactWritten())

		expectedCloneDirectory := filepath.Join(outputRoot, "in", "example-repo")
		require.Equal(testInstance, []string{expectedCloneDirectory}, reclaimer.reclaimedDirectories)
		require.NoDirExists(testInstance, expectedCloneDirectory)
	})
}
