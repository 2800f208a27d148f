package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MarkoPoloResearchLab/enumroute/internal/catalog"
	"github.com/MarkoPoloResearchLab/enumroute/internal/storage"
)

const (
	importCommandUseName          = "import"
	importCommandShortDescription = "Store the catalog enumerations in the database"
	importCommandLongDescription  = "Read the enumeration catalog and persist every declared type so servers started with the same database resolve them"
	importSummaryMessage          = "imported %d types into %s\n"
)

func (application *ServerApplication) importCommand() *cobra.Command {
	return &cobra.Command{
		Use:   importCommandUseName,
		Short: importCommandShortDescription,
		Long:  importCommandLongDescription,
		RunE:  application.runImportCommand,
	}
}

func (application *ServerApplication) runImportCommand(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return fmt.Errorf("%s: %s", unexpectedArgumentsMessage, strings.Join(arguments, " "))
	}

	serverConfig := application.loadServerConfig()
	var missingParameters []string
	if serverConfig.CatalogPath == "" {
		missingParameters = append(missingParameters, flagNameCatalogPath)
	}
	if serverConfig.Database.DataSourceName == "" {
		missingParameters = append(missingParameters, flagNameDatabaseDataSourceName)
	}
	if len(missingParameters) > 0 {
		return fmt.Errorf("%s: %s", missingConfigurationMessage, strings.Join(missingParameters, ", "))
	}

	module, loadErr := catalog.LoadFile(serverConfig.CatalogPath)
	if loadErr != nil {
		return fmt.Errorf("%s: %w", catalogImportErrorMessage, loadErr)
	}

	database, databaseErr := application.databaseOpener(serverConfig.Database)
	if databaseErr != nil {
		return fmt.Errorf("%s: %w", databaseConfigurationErrorMessage, databaseErr)
	}
	if migrateErr := storage.MigrateSchema(database); migrateErr != nil {
		return fmt.Errorf("%s: %w", databaseMigrationErrorMessage, migrateErr)
	}

	types := module.Types()
	if saveErr := storage.SaveTypes(database, types); saveErr != nil {
		return fmt.Errorf("%s: %w", catalogImportErrorMessage, saveErr)
	}

	fmt.Fprintf(command.OutOrStdout(), importSummaryMessage, len(types), serverConfig.Database.DriverName)
	return nil
}
