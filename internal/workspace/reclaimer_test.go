package workspace_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/corpusforge/gitcorpus/internal/workspace"
)

const (
	testReclaimRemovesDirectoryCaseName = "removes_directory"
	testReclaimMissingDirectoryCaseName = "missing_directory_succeeds"
	testReclaimLoggerValidationCaseName = "requires_logger"
	testReclaimedFileNameConstant       = "content.txt"
	testReclaimedFileContentConstant    = "content"
)

func TestNewReclaimerRequiresLogger(testInstance *testing.T) {
	testInstance.Run(testReclaimLoggerValidationCaseName, func(testInstance *testing.T) {
		reclaimer, creationError := workspace.NewReclaimer(nil)
		require.Error(testInstance, creationError)
		require.Nil(testInstance, reclaimer)
	})
}

func TestReclaimRemovesDirectory(testInstance *testing.T) {
	testInstance.Run(testReclaimRemovesDirectoryCaseName, func(testInstance *testing.T) {
		workingCopyDirectory := filepath.Join(testInstance.TempDir(), "clone")
		require.NoError(testInstance, os.MkdirAll(workingCopyDirectory, 0o755))
		require.NoError(testInstance, os.WriteFile(filepath.Join(workingCopyDirectory, testReclaimedFileNameConstant), []byte(testReclaimedFileContentConstant), 0o644))

		observerCore, observedLogs := observer.New(zap.DebugLevel)
		reclaimer, creationError := workspace.NewReclaimer(zap.New(observerCore))
		require.NoError(testInstance, creationError)
		reclaimer.SetRetryPolicy(3, 0)

		require.NoError(testInstance, reclaimer.Reclaim(workingCopyDirectory))
		require.NoDirExists(testInstance, workingCopyDirectory)
		require.NotEmpty(testInstance, observedLogs.All())
	})

	testInstance.Run(testReclaimMissingDirectoryCaseName, func(testInstance *testing.T) {
		reclaimer, creationError := workspace.NewReclaimer(zap.NewNop())
		require.NoError(testInstance, creationError)
		reclaimer.SetRetryPolicy(1, 0)

		require.NoError(testInstance, reclaimer.Reclaim(filepath.Join(testInstance.TempDir(), "absent")))
	})
}
