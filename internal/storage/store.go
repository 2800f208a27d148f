// Package storage persists enumeration declarations and snapshots them into a
// typeregistry module the server resolves route constraints against.
package storage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/MarkoPoloResearchLab/enumroute/internal/model"
	"github.com/MarkoPoloResearchLab/enumroute/pkg/typeregistry"
)

const (
	// DriverNameSQLite identifies the SQLite driver implementation.
	DriverNameSQLite = "sqlite"
	// DefaultModuleName names the module built from the database.
	DefaultModuleName = "database"

	sqliteForeignKeysPragma       = "_pragma=foreign_keys(1)"
	sqliteForeignKeysPragmaPrefix = "_pragma=foreign_keys"
	dataSourceQuerySeparator      = "?"
	dataSourceParameterJoiner     = "&"

	errorMessageMissingDatabaseDriverName = "storage: missing database driver name"
	errorMessageUnsupportedDatabaseDriver = "storage: unsupported database driver"
	errorMessageMissingDataSourceName     = "storage: missing database data source name"
	errorMessageOpenDatabase              = "storage: open enumeration database"
	errorMessageMigrateSchema             = "storage: migrate enumeration schema"
	errorMessageLoadModule                = "storage: load module"
)

var (
	// ErrMissingDatabaseDriverName indicates the database driver name configuration was omitted.
	ErrMissingDatabaseDriverName = errors.New(errorMessageMissingDatabaseDriverName)
	// ErrUnsupportedDatabaseDriver indicates the provided database driver is not supported.
	ErrUnsupportedDatabaseDriver = errors.New(errorMessageUnsupportedDatabaseDriver)
	// ErrMissingDataSourceName indicates the database data source name configuration was omitted.
	ErrMissingDataSourceName = errors.New(errorMessageMissingDataSourceName)
)

// schemaModels are migrated in dependency order: members reference their enumeration.
var schemaModels = []any{&model.Enumeration{}, &model.EnumerationMember{}}

type dialectorFactory func(dataSourceName string) gorm.Dialector

var dialectorFactories = map[string]dialectorFactory{
	DriverNameSQLite: sqliteDialector,
}

// Config captures where enumeration declarations are stored.
type Config struct {
	DriverName     string
	DataSourceName string
}

// OpenDatabase connects to the enumeration store described by configuration.
func OpenDatabase(configuration Config) (*gorm.DB, error) {
	driverName := strings.TrimSpace(configuration.DriverName)
	if driverName == "" {
		return nil, ErrMissingDatabaseDriverName
	}
	newDialector, driverSupported := dialectorFactories[driverName]
	if !driverSupported {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDatabaseDriver, driverName)
	}
	dataSourceName := strings.TrimSpace(configuration.DataSourceName)
	if dataSourceName == "" {
		return nil, ErrMissingDataSourceName
	}

	database, openErr := gorm.Open(newDialector(dataSourceName), &gorm.Config{})
	if openErr != nil {
		return nil, fmt.Errorf("%s: %w", errorMessageOpenDatabase, openErr)
	}
	return database, nil
}

// sqliteDialector turns on foreign keys for every pooled connection so removing an
// enumeration also removes its member rows.
func sqliteDialector(dataSourceName string) gorm.Dialector {
	if strings.Contains(dataSourceName, sqliteForeignKeysPragmaPrefix) {
		return sqlite.Open(dataSourceName)
	}
	separator := dataSourceQuerySeparator
	if strings.Contains(dataSourceName, dataSourceQuerySeparator) {
		separator = dataSourceParameterJoiner
	}
	return sqlite.Open(dataSourceName + separator + sqliteForeignKeysPragma)
}

// MigrateSchema creates or updates the enumeration and member tables.
func MigrateSchema(database *gorm.DB) error {
	if migrateErr := database.AutoMigrate(schemaModels...); migrateErr != nil {
		return fmt.Errorf("%s: %w", errorMessageMigrateSchema, migrateErr)
	}
	return nil
}

// LoadModule snapshots the stored types into an in-memory module, so resolving a
// constraint type never touches the database. An empty moduleName uses DefaultModuleName.
func LoadModule(database *gorm.DB, moduleName string) (*typeregistry.StaticModule, error) {
	types, loadErr := LoadTypes(database)
	if loadErr != nil {
		return nil, fmt.Errorf("%s: %w", errorMessageLoadModule, loadErr)
	}
	if strings.TrimSpace(moduleName) == "" {
		moduleName = DefaultModuleName
	}
	return typeregistry.NewStaticModule(moduleName, types...), nil
}

func newRecordID() string {
	return uuid.NewString()
}
