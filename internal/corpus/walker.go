package corpus

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

const (
	extensionSeparatorConstant        = "."
	traversalErrorTemplateConstant    = "unable to traverse %s: %w"
	relativePathErrorTemplateConstant = "unable to relativize %s: %w"
)

// vcsMetadataDirectories are pruned during traversal; their contents are never
// corpus material and object databases would otherwise satisfy substring rules.
var vcsMetadataDirectories = map[string]bool{
	".git": true,
	".svn": true,
	".hg":  true,
}

// FileCandidate identifies a working copy file that satisfied every filter predicate.
type FileCandidate struct {
	AbsolutePath string
	RelativePath string
	Extension    string
}

// FilterRules hold the three independent selection predicates applied to every file.
type FilterRules struct {
	// IncludeFolders are substrings matched against the slash-relative path;
	// an empty list matches every file.
	IncludeFolders []string
	// ExcludeFolders are substrings that reject a file; only enforced when non-empty.
	ExcludeFolders []string
	// FileExtensions are extension names without the leading dot.
	FileExtensions []string
}

// CollectCandidates walks the working copy depth-first and returns every file
// satisfying the filter rules.
//
// Traversal order is filepath.WalkDir's lexicographic per-directory order, so
// two runs over an unchanged tree yield identical candidate sequences.
func CollectCandidates(rootDirectory string, rules FilterRules) ([]FileCandidate, error) {
	var candidates []FileCandidate

	walkError := filepath.WalkDir(rootDirectory, func(candidatePath string, directoryEntry fs.DirEntry, entryError error) error {
		if entryError != nil {
			return fmt.Errorf(traversalErrorTemplateConstant, candidatePath, entryError)
		}

		if directoryEntry.IsDir() {
			if vcsMetadataDirectories[directoryEntry.Name()] {
				return filepath.SkipDir
			}
			return nil
		}

		relativePath, relativeError := filepath.Rel(rootDirectory, candidatePath)
		if relativeError != nil {
			return fmt.Errorf(relativePathErrorTemplateConstant, candidatePath, relativeError)
		}
		slashRelativePath := filepath.ToSlash(relativePath)

		candidateExtension := normalizeExtension(filepath.Ext(candidatePath))
		if !matchesFilterRules(slashRelativePath, candidateExtension, rules) {
			return nil
		}

		candidates = append(candidates, FileCandidate{
			AbsolutePath: candidatePath,
			RelativePath: slashRelativePath,
			Extension:    candidateExtension,
		})

		return nil
	})
	if walkError != nil {
		return nil, walkError
	}

	return candidates, nil
}

func matchesFilterRules(relativePath string, candidateExtension string, rules FilterRules) bool {
	if !matchesIncludeFolders(relativePath, rules.IncludeFolders) {
		return false
	}
	if matchesExcludeFolders(relativePath, rules.ExcludeFolders) {
		return false
	}
	return matchesFileExtensions(candidateExtension, rules.FileExtensions)
}

// matchesIncludeFolders treats an empty include list as match-all; a configured
// list requires at least one substring hit on the relative path.
func matchesIncludeFolders(relativePath string, includeFolders []string) bool {
	if len(includeFolders) == 0 {
		return true
	}
	for _, includeFolder := range includeFolders {
		if strings.Contains(relativePath, includeFolder) {
			return true
		}
	}
	return false
}

func matchesExcludeFolders(relativePath string, excludeFolders []string) bool {
	for _, excludeFolder := range excludeFolders {
		if strings.Contains(relativePath, excludeFolder) {
			return true
		}
	}
	return false
}

func matchesFileExtensions(candidateExtension string, fileExtensions []string) bool {
	for _, fileExtension := range fileExtensions {
		if candidateExtension == normalizeExtension(fileExtension) {
			return true
		}
	}
	return false
}

func normalizeExtension(extension string) string {
	return strings.TrimPrefix(extension, extensionSeparatorConstant)
}
