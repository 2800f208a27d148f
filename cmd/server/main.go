package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/MarkoPoloResearchLab/enumroute/internal/storage"
)

const (
	commandUseName                    = "server"
	commandShortDescription           = "Run the enumeration route server"
	commandLongDescription            = "Launch the HTTP server whose routes only match registered enumeration members"
	missingConfigurationMessage       = "missing required configuration"
	loggerCreationErrorMessage        = "logger"
	logEventListening                 = "listening"
	logEventModulesLoaded             = "type modules loaded"
	logFieldAddress                   = "addr"
	logFieldModules                   = "modules"
	flagNameApplicationAddress        = "app-addr"
	flagNameCatalogPath               = "catalog"
	flagNameDatabaseDriverName        = "db-driver"
	flagNameDatabaseDataSourceName    = "db-dsn"
	flagNameCORSAllowedOrigins        = "cors-origins"
	flagUsageApplicationAddress       = "address for the HTTP server to listen on"
	flagUsageCatalogPath              = "YAML file declaring additional enumerations"
	flagUsageDatabaseDriverName       = "database driver for stored enumerations"
	flagUsageDatabaseDataSourceName   = "database connection string for stored enumerations"
	flagUsageCORSAllowedOrigins       = "comma separated origins allowed to call the API"
	environmentKeyApplicationAddress  = "APP_ADDR"
	environmentKeyCatalogPath         = "ENUM_CATALOG_PATH"
	environmentKeyDatabaseDriverName  = "DB_DRIVER"
	environmentKeyDatabaseDataSource  = "DB_DSN"
	environmentKeyCORSAllowedOrigins  = "CORS_ALLOWED_ORIGINS"
	defaultApplicationAddress         = ":8080"
	defaultDatabaseDriverName         = storage.DriverNameSQLite
	defaultCORSAllowedOrigins         = corsOriginWildcard
	loggerContextOpenDatabase         = "open_db"
	loggerContextMigrateSchema        = "migrate"
	loggerContextServer               = "server"
	readHeaderTimeoutSeconds          = 5
	unexpectedArgumentsMessage        = "unexpected command arguments"
	commandInitializationFailure      = "failed to configure command"
	flagNotDefinedMessage             = "flag %s not defined"
	environmentConfigurationError     = "failed to apply environment configuration"
	corsAllowedOriginsSeparator       = ","
	registryConfigurationErrorMessage = "configure type registry"
	routerConfigurationErrorMessage   = "configure routes"
	databaseConfigurationErrorMessage = "open database"
	databaseMigrationErrorMessage     = "migrate database"
	catalogImportErrorMessage         = "import catalog"
)

// ServerConfig captures configuration needed to run the server.
type ServerConfig struct {
	ApplicationAddress string
	CatalogPath        string
	Database           storage.Config
	CORSAllowedOrigins []string
}

// DatabaseOpener opens a database connection using the provided configuration.
type DatabaseOpener func(storage.Config) (*gorm.DB, error)

// ServerApplication constructs and executes the server command.
type ServerApplication struct {
	configurationLoader *viper.Viper
	databaseOpener      DatabaseOpener
	loggerFactory       func() (*zap.Logger, error)
}

// NewServerApplication creates a ServerApplication with default dependencies.
func NewServerApplication() *ServerApplication {
	return &ServerApplication{
		configurationLoader: viper.New(),
		databaseOpener:      storage.OpenDatabase,
		loggerFactory:       func() (*zap.Logger, error) { return zap.NewProduction() },
	}
}

// WithDatabaseOpener overrides the database opener dependency.
func (application *ServerApplication) WithDatabaseOpener(databaseOpener DatabaseOpener) *ServerApplication {
	application.databaseOpener = databaseOpener
	return application
}

// WithLoggerFactory overrides how the command builds its logger.
func (application *ServerApplication) WithLoggerFactory(loggerFactory func() (*zap.Logger, error)) *ServerApplication {
	application.loggerFactory = loggerFactory
	return application
}

// Command builds the Cobra command for the server.
func (application *ServerApplication) Command() (*cobra.Command, error) {
	rootCommand := &cobra.Command{
		Use:   commandUseName,
		Short: commandShortDescription,
		Long:  commandLongDescription,
		RunE:  application.runCommand,
	}

	if configurationErr := application.configureCommand(rootCommand); configurationErr != nil {
		return nil, configurationErr
	}

	rootCommand.AddCommand(application.importCommand())

	return rootCommand, nil
}

func (application *ServerApplication) configureCommand(command *cobra.Command) error {
	application.configurationLoader.SetDefault(environmentKeyApplicationAddress, defaultApplicationAddress)
	application.configurationLoader.SetDefault(environmentKeyCatalogPath, "")
	application.configurationLoader.SetDefault(environmentKeyDatabaseDriverName, defaultDatabaseDriverName)
	application.configurationLoader.SetDefault(environmentKeyDatabaseDataSource, "")
	application.configurationLoader.SetDefault(environmentKeyCORSAllowedOrigins, defaultCORSAllowedOrigins)
	application.configurationLoader.AutomaticEnv()

	commandFlags := command.Flags()
	commandFlags.String(flagNameApplicationAddress, defaultApplicationAddress, flagUsageApplicationAddress)
	commandFlags.String(flagNameCORSAllowedOrigins, defaultCORSAllowedOrigins, flagUsageCORSAllowedOrigins)

	persistentFlags := command.PersistentFlags()
	persistentFlags.String(flagNameCatalogPath, "", flagUsageCatalogPath)
	persistentFlags.String(flagNameDatabaseDriverName, defaultDatabaseDriverName, flagUsageDatabaseDriverName)
	persistentFlags.String(flagNameDatabaseDataSourceName, "", flagUsageDatabaseDataSourceName)

	flagBindings := []struct {
		flagSet        *pflag.FlagSet
		environmentKey string
		flagName       string
	}{
		{flagSet: commandFlags, environmentKey: environmentKeyApplicationAddress, flagName: flagNameApplicationAddress},
		{flagSet: commandFlags, environmentKey: environmentKeyCORSAllowedOrigins, flagName: flagNameCORSAllowedOrigins},
		{flagSet: persistentFlags, environmentKey: environmentKeyCatalogPath, flagName: flagNameCatalogPath},
		{flagSet: persistentFlags, environmentKey: environmentKeyDatabaseDriverName, flagName: flagNameDatabaseDriverName},
		{flagSet: persistentFlags, environmentKey: environmentKeyDatabaseDataSource, flagName: flagNameDatabaseDataSourceName},
	}

	for _, flagBinding := range flagBindings {
		if bindErr := application.bindFlag(flagBinding.flagSet, flagBinding.environmentKey, flagBinding.flagName); bindErr != nil {
			return bindErr
		}
	}

	for _, flagBinding := range flagBindings {
		if environmentErr := application.applyEnvironmentConfiguration(flagBinding.flagSet, flagBinding.environmentKey, flagBinding.flagName); environmentErr != nil {
			return environmentErr
		}
	}

	return nil
}

func (application *ServerApplication) bindFlag(flagSet *pflag.FlagSet, environmentKey string, flagName string) error {
	flag := flagSet.Lookup(flagName)
	if flag == nil {
		return fmt.Errorf(flagNotDefinedMessage, flagName)
	}

	if bindErr := application.configurationLoader.BindPFlag(environmentKey, flag); bindErr != nil {
		return bindErr
	}

	return nil
}

func (application *ServerApplication) applyEnvironmentConfiguration(flagSet *pflag.FlagSet, environmentKey string, flagName string) error {
	environmentValue, environmentFound := os.LookupEnv(environmentKey)
	if !environmentFound {
		return nil
	}

	if setErr := flagSet.Set(flagName, environmentValue); setErr != nil {
		return fmt.Errorf("%s: %w", environmentConfigurationError, setErr)
	}

	return nil
}

func (application *ServerApplication) loadServerConfig() ServerConfig {
	return ServerConfig{
		ApplicationAddress: strings.TrimSpace(application.configurationLoader.GetString(environmentKeyApplicationAddress)),
		CatalogPath:        strings.TrimSpace(application.configurationLoader.GetString(environmentKeyCatalogPath)),
		Database: storage.Config{
			DriverName:     strings.TrimSpace(application.configurationLoader.GetString(environmentKeyDatabaseDriverName)),
			DataSourceName: strings.TrimSpace(application.configurationLoader.GetString(environmentKeyDatabaseDataSource)),
		},
		CORSAllowedOrigins: parseCORSAllowedOrigins(application.configurationLoader.GetString(environmentKeyCORSAllowedOrigins)),
	}
}

func (application *ServerApplication) runCommand(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return fmt.Errorf("%s: %s", unexpectedArgumentsMessage, strings.Join(arguments, " "))
	}

	serverConfig := application.loadServerConfig()
	if validationErr := application.ensureRequiredConfiguration(serverConfig); validationErr != nil {
		return validationErr
	}

	logger, loggerErr := application.loggerFactory()
	if loggerErr != nil {
		return fmt.Errorf("%s: %w", loggerCreationErrorMessage, loggerErr)
	}
	defer func() {
		_ = logger.Sync()
	}()

	var database *gorm.DB
	if serverConfig.Database.DataSourceName != "" {
		openedDatabase, databaseErr := application.databaseOpener(serverConfig.Database)
		if databaseErr != nil {
			logger.Error(loggerContextOpenDatabase, zap.Error(databaseErr))
			return fmt.Errorf("%s: %w", databaseConfigurationErrorMessage, databaseErr)
		}
		if migrateErr := storage.MigrateSchema(openedDatabase); migrateErr != nil {
			logger.Error(loggerContextMigrateSchema, zap.Error(migrateErr))
			return fmt.Errorf("%s: %w", databaseMigrationErrorMessage, migrateErr)
		}
		database = openedDatabase
	}

	registry, registryErr := buildTypeRegistry(serverConfig, database)
	if registryErr != nil {
		return fmt.Errorf("%s: %w", registryConfigurationErrorMessage, registryErr)
	}
	logger.Info(logEventModulesLoaded, zap.Strings(logFieldModules, registry.Modules()))

	engine, engineErr := buildEngine(serverConfig, registry, logger)
	if engineErr != nil {
		return fmt.Errorf("%s: %w", routerConfigurationErrorMessage, engineErr)
	}

	httpServer := &http.Server{
		Addr:              serverConfig.ApplicationAddress,
		Handler:           engine,
		ReadHeaderTimeout: readHeaderTimeoutSeconds * time.Second,
	}

	logger.Info(logEventListening, zap.String(logFieldAddress, serverConfig.ApplicationAddress))
	if serveErr := httpServer.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
		logger.Error(loggerContextServer, zap.Error(serveErr))
		return serveErr
	}

	return nil
}

func (application *ServerApplication) ensureRequiredConfiguration(configuration ServerConfig) error {
	var missingParameters []string

	if configuration.ApplicationAddress == "" {
		missingParameters = append(missingParameters, flagNameApplicationAddress)
	}

	if configuration.Database.DataSourceName != "" && configuration.Database.DriverName == "" {
		missingParameters = append(missingParameters, flagNameDatabaseDriverName)
	}

	if len(missingParameters) == 0 {
		return nil
	}

	return fmt.Errorf("%s: %s", missingConfigurationMessage, strings.Join(missingParameters, ", "))
}

func parseCORSAllowedOrigins(rawOrigins string) []string {
	var origins []string
	for _, origin := range strings.Split(rawOrigins, corsAllowedOriginsSeparator) {
		trimmedOrigin := strings.TrimSpace(origin)
		if trimmedOrigin != "" {
			origins = append(origins, trimmedOrigin)
		}
	}
	if len(origins) == 0 {
		return []string{corsOriginWildcard}
	}
	return origins
}

func main() {
	application := NewServerApplication()
	rootCommand, commandErr := application.Command()
	if commandErr != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", commandInitializationFailure, commandErr)
		os.Exit(1)
	}

	if executeErr := rootCommand.Execute(); executeErr != nil {
		os.Exit(1)
	}
}
