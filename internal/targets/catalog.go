package targets

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	catalogPathRequiredMessageConstant       = "target catalog path must be provided"
	catalogLoadErrorTemplateConstant         = "failed to load target catalog: %w"
	catalogParseErrorTemplateConstant        = "failed to parse target catalog: %w"
	catalogEmptyMessageConstant              = "target catalog must define at least one target"
	targetNameRequiredMessageConstant        = "target names must be non-empty"
	targetRepositoryRequiredTemplateConstant = "target %s missing repository url"
	duplicateTargetNameTemplateConstant      = "target catalog defines duplicate target name %s"
	unknownTargetErrorTemplateConstant       = "unknown target %s (known targets: %s)"
	knownTargetSeparatorConstant             = ", "
)

// TargetConfiguration describes one named ingestion target.
type TargetConfiguration struct {
	RepositoryURL  string   `yaml:"repository_url"`
	IncludeFolders []string `yaml:"include_folders"`
	ExcludeFolders []string `yaml:"exclude_folders"`
	FileExtensions []string `yaml:"file_extensions"`
}

// Catalog resolves target names to their configurations.
type Catalog struct {
	targetLookup map[string]TargetConfiguration
}

// UnknownTargetError indicates a requested target name is not defined in the catalog.
type UnknownTargetError struct {
	TargetName string
	KnownNames []string
}

// Error describes the unresolved target.
func (unknownError UnknownTargetError) Error() string {
	return fmt.Sprintf(unknownTargetErrorTemplateConstant, unknownError.TargetName, strings.Join(unknownError.KnownNames, knownTargetSeparatorConstant))
}

// LoadCatalog reads the target definitions from disk and performs basic validation.
func LoadCatalog(filePath string) (Catalog, error) {
	trimmedPath := strings.TrimSpace(filePath)
	if len(trimmedPath) == 0 {
		return Catalog{}, errors.New(catalogPathRequiredMessageConstant)
	}

	contentBytes, readError := os.ReadFile(trimmedPath)
	if readError != nil {
		return Catalog{}, fmt.Errorf(catalogLoadErrorTemplateConstant, readError)
	}

	return ParseCatalog(contentBytes)
}

// ParseCatalog builds a Catalog from raw YAML content.
//
// Both a bare name-to-target mapping and a document nested under a "targets"
// key are accepted.
func ParseCatalog(contentBytes []byte) (Catalog, error) {
	definitions := map[string]TargetConfiguration{}
	if unmarshalError := yaml.Unmarshal(contentBytes, &definitions); unmarshalError != nil || len(definitions) == 0 {
		var wrapper struct {
			Targets map[string]TargetConfiguration `yaml:"targets"`
		}
		if nestedError := yaml.Unmarshal(contentBytes, &wrapper); nestedError == nil && len(wrapper.Targets) > 0 {
			definitions = wrapper.Targets
		} else if unmarshalError != nil {
			return Catalog{}, fmt.Errorf(catalogParseErrorTemplateConstant, unmarshalError)
		}
	}

	if nestedTargets := extractNestedTargets(definitions, contentBytes); nestedTargets != nil {
		definitions = nestedTargets
	}

	if len(definitions) == 0 {
		return Catalog{}, errors.New(catalogEmptyMessageConstant)
	}

	targetLookup := make(map[string]TargetConfiguration, len(definitions))
	for targetName, targetConfiguration := range definitions {
		trimmedName := strings.TrimSpace(targetName)
		if len(trimmedName) == 0 {
			return Catalog{}, errors.New(targetNameRequiredMessageConstant)
		}
		if _, alreadyDefined := targetLookup[trimmedName]; alreadyDefined {
			return Catalog{}, fmt.Errorf(duplicateTargetNameTemplateConstant, trimmedName)
		}
		if len(strings.TrimSpace(targetConfiguration.RepositoryURL)) == 0 {
			return Catalog{}, fmt.Errorf(targetRepositoryRequiredTemplateConstant, trimmedName)
		}
		targetLookup[trimmedName] = targetConfiguration
	}

	return Catalog{targetLookup: targetLookup}, nil
}

// extractNestedTargets handles documents where the bare mapping parse consumed
// a "targets" wrapper key as a target named "targets" with empty fields.
func extractNestedTargets(definitions map[string]TargetConfiguration, contentBytes []byte) map[string]TargetConfiguration {
	wrapperEntry, wrapperPresent := definitions["targets"]
	if !wrapperPresent || len(definitions) != 1 || len(wrapperEntry.RepositoryURL) > 0 {
		return nil
	}

	var wrapper struct {
		Targets map[string]TargetConfiguration `yaml:"targets"`
	}
	if nestedError := yaml.Unmarshal(contentBytes, &wrapper); nestedError == nil && len(wrapper.Targets) > 0 {
		return wrapper.Targets
	}

	return nil
}

// Resolve returns the configuration registered under the provided name.
func (catalog Catalog) Resolve(targetName string) (TargetConfiguration, error) {
	trimmedName := strings.TrimSpace(targetName)
	targetConfiguration, targetExists := catalog.targetLookup[trimmedName]
	if !targetExists {
		return TargetConfiguration{}, UnknownTargetError{TargetName: trimmedName, KnownNames: catalog.Names()}
	}
	return targetConfiguration, nil
}

// Names lists the configured target names in lexicographic order.
func (catalog Catalog) Names() []string {
	targetNames := make([]string, 0, len(catalog.targetLookup))
	for targetName := range catalog.targetLookup {
		targetNames = append(targetNames, targetName)
	}
	sort.Strings(targetNames)
	return targetNames
}
