package corpus

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

const (
	headingTemplateConstant               = "# %s\n\n"
	fenceRuneConstant                     = '`'
	minimumFenceLengthConstant            = 3
	sectionSeparatorConstant              = "\n"
	newlineConstant                       = "\n"
	fileReadErrorTemplateConstant         = "unable to read %s: %w"
	binaryFileSkippedMessageConstant      = "skipping binary file"
	candidatePathFieldNameConstant        = "relative_path"
	assemblerLoggerMissingMessageConstant = "document assembler requires a logger"
)

var errAssemblerLoggerMissing = errors.New(assemblerLoggerMissingMessageConstant)

// AssembledDocument is the in-memory corpus built from the candidate sequence.
type AssembledDocument struct {
	Content           string
	SectionCount      int
	ApproximateTokens int
}

// DocumentAssembler concatenates file candidates into one Markdown document.
type DocumentAssembler struct {
	logger *zap.Logger
}

// NewDocumentAssembler constructs a DocumentAssembler with the provided logger.
func NewDocumentAssembler(logger *zap.Logger) (*DocumentAssembler, error) {
	if logger == nil {
		return nil, errAssemblerLoggerMissing
	}
	return &DocumentAssembler{logger: logger}, nil
}

// Assemble renders one Markdown section per candidate, preserving candidate order.
//
// Each section is a level-1 heading holding the relative path followed by a
// fenced code block tagged with the candidate's extension. The fence is one
// backtick longer than the longest backtick run inside the file, so embedded
// fences cannot break the document. Files that are not valid UTF-8 are skipped.
func (assembler *DocumentAssembler) Assemble(candidates []FileCandidate) (AssembledDocument, error) {
	var documentBuilder strings.Builder
	sectionCount := 0

	for _, candidate := range candidates {
		contentBytes, readError := os.ReadFile(candidate.AbsolutePath)
		if readError != nil {
			return AssembledDocument{}, fmt.Errorf(fileReadErrorTemplateConstant, candidate.AbsolutePath, readError)
		}

		if !utf8.Valid(contentBytes) {
			assembler.logger.Debug(
				binaryFileSkippedMessageConstant,
				zap.String(candidatePathFieldNameConstant, candidate.RelativePath),
			)
			continue
		}

		appendSection(&documentBuilder, candidate, string(contentBytes))
		sectionCount++
	}

	documentContent := documentBuilder.String()

	return AssembledDocument{
		Content:           documentContent,
		SectionCount:      sectionCount,
		ApproximateTokens: CountApproximateTokens(documentContent),
	}, nil
}

func appendSection(documentBuilder *strings.Builder, candidate FileCandidate, fileContent string) {
	fence := buildFence(fileContent)

	documentBuilder.WriteString(fmt.Sprintf(headingTemplateConstant, candidate.RelativePath))
	documentBuilder.WriteString(fence)
	documentBuilder.WriteString(candidate.Extension)
	documentBuilder.WriteString(newlineConstant)
	documentBuilder.WriteString(fileContent)
	if !strings.HasSuffix(fileContent, newlineConstant) {
		documentBuilder.WriteString(newlineConstant)
	}
	documentBuilder.WriteString(fence)
	documentBuilder.WriteString(newlineConstant)
	documentBuilder.WriteString(sectionSeparatorConstant)
}

// buildFence returns a backtick fence strictly longer than any backtick run in the content.
func buildFence(fileContent string) string {
	longestRun := 0
	currentRun := 0
	for _, contentRune := range fileContent {
		if contentRune == fenceRuneConstant {
			currentRun++
			if currentRun > longestRun {
				longestRun = currentRun
			}
			continue
		}
		currentRun = 0
	}

	fenceLength := minimumFenceLengthConstant
	if longestRun >= fenceLength {
		fenceLength = longestRun + 1
	}

	return strings.Repeat(string(fenceRuneConstant), fenceLength)
}

// CountApproximateTokens splits the content on runs of whitespace and counts
// the segments. This is a naming heuristic, not a tokenizer.
func CountApproximateTokens(documentContent string) int {
	return len(strings.Fields(documentContent))
}
