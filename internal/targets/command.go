package targets

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	commandUseConstant                    = "targets"
	commandShortDescriptionConstant       = "List the configured ingestion targets"
	commandLongDescriptionConstant        = "targets prints every named target from the catalog along with its repository URL."
	commandExecutionErrorTemplateConstant = "target listing failed: %w"
	targetListingTemplateConstant         = "%s\t%s\n"
	catalogProviderMissingMessageConstant = "catalog provider not configured"
)

// ErrCatalogProviderNotConfigured indicates the command was built without a catalog source.
var ErrCatalogProviderNotConfigured = errors.New(catalogProviderMissingMessageConstant)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// CatalogProvider supplies the resolved target catalog.
type CatalogProvider func() (Catalog, error)

// CommandBuilder assembles the Cobra command that lists configured targets.
type CommandBuilder struct {
	LoggerProvider  LoggerProvider
	CatalogProvider CatalogProvider
}

// Build constructs the targets command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	catalog, catalogError := builder.resolveCatalog()
	if catalogError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, catalogError)
	}

	for _, targetName := range catalog.Names() {
		targetConfiguration, resolveError := catalog.Resolve(targetName)
		if resolveError != nil {
			return fmt.Errorf(commandExecutionErrorTemplateConstant, resolveError)
		}
		fmt.Fprintf(command.OutOrStdout(), targetListingTemplateConstant, targetName, targetConfiguration.RepositoryURL)
	}

	return nil
}

func (builder *CommandBuilder) resolveCatalog() (Catalog, error) {
	if builder.CatalogProvider == nil {
		return Catalog{}, ErrCatalogProviderNotConfigured
	}
	return builder.CatalogProvider()
}
