package workspace

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	workingCopySubdirectoryConstant = "in"
	artifactSubdirectoryConstant    = "out"
	tildeSymbolConstant             = "~"
	defaultOutputRootConstant       = "corpus"
)

// Paths describes the on-disk layout owned by one pipeline invocation.
type Paths struct {
	// CloneDirectory holds the synchronized working copy of the remote repository.
	CloneDirectory string
	// ArtifactDirectory receives the assembled corpus documents.
	ArtifactDirectory string
}

// DerivePaths computes the workspace layout for a repository slug under the output root.
//
// The same slug always maps to the same clone directory so repeated runs
// against one repository reuse the local working copy.
func DerivePaths(outputRoot string, repositorySlug string) Paths {
	resolvedRoot := expandHomeDirectory(strings.TrimSpace(outputRoot))
	if len(resolvedRoot) == 0 {
		resolvedRoot = defaultOutputRootConstant
	}

	return Paths{
		CloneDirectory:    filepath.Join(resolvedRoot, workingCopySubdirectoryConstant, repositorySlug),
		ArtifactDirectory: filepath.Join(resolvedRoot, artifactSubdirectoryConstant),
	}
}

func expandHomeDirectory(candidatePath string) string {
	if !strings.HasPrefix(candidatePath, tildeSymbolConstant) {
		return candidatePath
	}

	homeDirectory, homeError := os.UserHomeDir()
	if homeError != nil || len(homeDirectory) == 0 {
		return candidatePath
	}

	if candidatePath == tildeSymbolConstant {
		return homeDirectory
	}

	separatorPrefix := tildeSymbolConstant + string(os.PathSeparator)
	if strings.HasPrefix(candidatePath, separatorPrefix) || strings.HasPrefix(candidatePath, tildeSymbolConstant+"/") {
		return filepath.Join(homeDirectory, candidatePath[2:])
	}

	return candidatePath
}
