package storage_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MarkoPoloResearchLab/enumroute/internal/model"
	"github.com/MarkoPoloResearchLab/enumroute/internal/storage"
	"github.com/MarkoPoloResearchLab/enumroute/internal/testutil"
	"github.com/MarkoPoloResearchLab/enumroute/pkg/typeregistry"
)

const (
	testUnsupportedDriverName        = "unsupported-driver"
	testUnsupportedDriverDescription = "unsupported driver"
	testMissingDriverDescription     = "missing driver"
	testMissingDataSourceDescription = "missing data source"
	testSizeTypeName                 = "shop.Size"
	testOrderTypeName                = "shop.Order"
	testDatabaseModuleName           = "database"
)

func TestOpenDatabaseValidation(t *testing.T) {
	testCases := []struct {
		name              string
		configuration     storage.Config
		expectedRootError error
	}{
		{
			name:              testMissingDriverDescription,
			configuration:     storage.Config{DataSourceName: "file::memory:"},
			expectedRootError: storage.ErrMissingDatabaseDriverName,
		},
		{
			name:              testUnsupportedDriverDescription,
			configuration:     storage.Config{DriverName: testUnsupportedDriverName, DataSourceName: "file::memory:"},
			expectedRootError: storage.ErrUnsupportedDatabaseDriver,
		},
		{
			name:              testMissingDataSourceDescription,
			configuration:     storage.Config{DriverName: storage.DriverNameSQLite},
			expectedRootError: storage.ErrMissingDataSourceName,
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(testingT *testing.T) {
			database, openErr := storage.OpenDatabase(testCase.configuration)
			require.Nil(testingT, database)
			require.True(testingT, errors.Is(openErr, testCase.expectedRootError))
		})
	}
}

func TestSaveAndLoadTypesPreservesMemberOrder(t *testing.T) {
	database := testutil.NewSQLiteTestDatabase(t).OpenMigrated(t)

	require.NoError(t, storage.SaveTypes(database, []typeregistry.Type{
		{Name: testSizeTypeName, Kind: typeregistry.KindEnumeration, Members: []string{"Small", "Medium", "Large", "Extra"}},
		typeregistry.StructOf(testOrderTypeName),
	}))

	types, loadErr := storage.LoadTypes(database)
	require.NoError(t, loadErr)
	require.Len(t, types, 2)
	require.Equal(t, testOrderTypeName, types[0].Name)
	require.False(t, types[0].IsEnumeration())
	require.Empty(t, types[0].Members)
	require.Equal(t, testSizeTypeName, types[1].Name)
	require.Equal(t, []string{"Small", "Medium", "Large", "Extra"}, types[1].Members)
}

func TestSaveTypeReplacesExistingType(t *testing.T) {
	database := testutil.NewSQLiteTestDatabase(t).OpenMigrated(t)

	require.NoError(t, storage.SaveType(database, typeregistry.Type{Name: testSizeTypeName, Kind: typeregistry.KindEnumeration, Members: []string{"Small", "Large"}}))
	require.NoError(t, storage.SaveType(database, typeregistry.Type{Name: testSizeTypeName, Kind: typeregistry.KindEnumeration, Members: []string{"Tiny"}}))

	types, loadErr := storage.LoadTypes(database)
	require.NoError(t, loadErr)
	require.Len(t, types, 1)
	require.Equal(t, []string{"Tiny"}, types[0].Members)
}

func TestSaveTypeRejectsEmptyName(t *testing.T) {
	database := testutil.NewSQLiteTestDatabase(t).OpenMigrated(t)
	require.ErrorIs(t, storage.SaveType(database, typeregistry.Type{Name: "  "}), storage.ErrEmptyTypeName)
}

func TestLoadModuleResolvesStoredTypes(t *testing.T) {
	database := testutil.NewSQLiteTestDatabase(t).OpenMigrated(t)
	require.NoError(t, storage.SaveType(database, typeregistry.Type{Name: testSizeTypeName, Kind: typeregistry.KindEnumeration, Members: []string{"Small"}}))

	module, loadErr := storage.LoadModule(database, "")
	require.NoError(t, loadErr)
	require.Equal(t, testDatabaseModuleName, module.Name())

	registry := typeregistry.NewRegistry()
	require.NoError(t, registry.AddModule(module))
	resolved, found := registry.Resolve(testSizeTypeName)
	require.True(t, found)
	require.Equal(t, []string{"Small"}, resolved.Members)
}

func TestOpenDatabaseEnablesForeignKeys(t *testing.T) {
	database := testutil.NewSQLiteTestDatabase(t).OpenMigrated(t)

	var foreignKeysEnabled int
	require.NoError(t, database.Raw("PRAGMA foreign_keys").Scan(&foreignKeysEnabled).Error)
	require.Equal(t, 1, foreignKeysEnabled)
}

func TestReplacingTypeRemovesPreviousMemberRows(t *testing.T) {
	database := testutil.NewSQLiteTestDatabase(t).OpenMigrated(t)

	require.NoError(t, storage.SaveType(database, typeregistry.Type{Name: testSizeTypeName, Kind: typeregistry.KindEnumeration, Members: []string{"Small", "Medium", "Large"}}))
	require.NoError(t, storage.SaveType(database, typeregistry.Type{Name: testSizeTypeName, Kind: typeregistry.KindEnumeration, Members: []string{"Tiny"}}))

	var memberRowCount int64
	require.NoError(t, database.Model(&model.EnumerationMember{}).Count(&memberRowCount).Error)
	require.EqualValues(t, 1, memberRowCount)
}

func TestLoadModuleUsesGivenName(t *testing.T) {
	database := testutil.NewSQLiteTestDatabase(t).OpenMigrated(t)

	module, loadErr := storage.LoadModule(database, "archive")
	require.NoError(t, loadErr)
	require.Equal(t, "archive", module.Name())
	require.Empty(t, module.Types())
}
