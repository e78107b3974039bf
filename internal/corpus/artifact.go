package corpus

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

const (
	artifactFileNameTemplateConstant    = "%s-%s-%d.md"
	artifactDateLayoutConstant          = "2006-01-02"
	artifactDirectoryPermissionConstant = 0o755
	artifactFilePermissionConstant      = 0o644
	artifactDirectoryErrorTemplate      = "unable to create artifact directory %s: %w"
	artifactWriteErrorTemplateConstant  = "unable to write artifact %s: %w"
	artifactWrittenMessageConstant      = "artifact written"
	artifactPathFieldNameConstant       = "artifact_path"
	artifactWriterLoggerMissingMessage  = "artifact writer requires a logger"
)

var errArtifactWriterLoggerMissing = errors.New(artifactWriterLoggerMissingMessage)

// ArtifactWriter persists assembled documents under the artifact directory.
type ArtifactWriter struct {
	logger *zap.Logger
}

// NewArtifactWriter constructs an ArtifactWriter with the provided logger.
func NewArtifactWriter(logger *zap.Logger) (*ArtifactWriter, error) {
	if logger == nil {
		return nil, errArtifactWriterLoggerMissing
	}
	return &ArtifactWriter{logger: logger}, nil
}

// BuildArtifactFileName derives the deterministic artifact name for a run.
//
// The same slug, day, and token count collide deliberately so repeated runs
// over unchanged content overwrite a single artifact.
func BuildArtifactFileName(repositorySlug string, documentTime time.Time, approximateTokens int) string {
	return fmt.Sprintf(artifactFileNameTemplateConstant, repositorySlug, documentTime.Format(artifactDateLayoutConstant), approximateTokens)
}

// Write persists the document content, creating the artifact directory when absent.
//
// An existing artifact of the same name is overwritten.
func (writer *ArtifactWriter) Write(artifactDirectory string, artifactFileName string, documentContent string) (string, error) {
	if mkdirError := os.MkdirAll(artifactDirectory, artifactDirectoryPermissionConstant); mkdirError != nil {
		return "", fmt.Errorf(artifactDirectoryErrorTemplate, artifactDirectory, mkdirError)
	}

	artifactPath := filepath.Join(artifactDirectory, artifactFileName)
	if writeError := os.WriteFile(artifactPath, []byte(documentContent), artifactFilePermissionConstant); writeError != nil {
		return "", fmt.Errorf(artifactWriteErrorTemplateConstant, artifactPath, writeError)
	}

	writer.logger.Info(
		artifactWrittenMessageConstant,
		zap.String(artifactPathFieldNameConstant, artifactPath),
	)

	return artifactPath, nil
}
