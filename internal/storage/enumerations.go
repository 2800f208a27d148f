package storage

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/MarkoPoloResearchLab/enumroute/internal/model"
	"github.com/MarkoPoloResearchLab/enumroute/pkg/typeregistry"
)

const (
	errorMessageEmptyTypeName = "storage: empty type name"
	errorMessageSaveType      = "storage: save type"
	errorMessageLoadTypes     = "storage: load types"
)

// ErrEmptyTypeName indicates SaveType received a type without a name.
var ErrEmptyTypeName = errors.New(errorMessageEmptyTypeName)

// SaveType stores typeDescriptor, replacing any stored type with the same name.
func SaveType(database *gorm.DB, typeDescriptor typeregistry.Type) error {
	typeName := strings.TrimSpace(typeDescriptor.Name)
	if typeName == "" {
		return ErrEmptyTypeName
	}

	transactionErr := database.Transaction(func(transaction *gorm.DB) error {
		var existing model.Enumeration
		lookupErr := transaction.Where("name = ?", typeName).First(&existing).Error
		switch {
		case lookupErr == nil:
			if deleteErr := transaction.Delete(&existing).Error; deleteErr != nil {
				return deleteErr
			}
		case !errors.Is(lookupErr, gorm.ErrRecordNotFound):
			return lookupErr
		}

		record := model.Enumeration{
			ID:   newRecordID(),
			Name: typeName,
			Kind: string(typeDescriptor.Kind),
		}
		for position, memberName := range typeDescriptor.Members {
			record.Members = append(record.Members, model.EnumerationMember{
				ID:            newRecordID(),
				EnumerationID: record.ID,
				Name:          memberName,
				Position:      position,
			})
		}
		return transaction.Create(&record).Error
	})
	if transactionErr != nil {
		return fmt.Errorf("%s %s: %w", errorMessageSaveType, typeName, transactionErr)
	}
	return nil
}

// SaveTypes stores every type in order.
func SaveTypes(database *gorm.DB, types []typeregistry.Type) error {
	for _, typeDescriptor := range types {
		if saveErr := SaveType(database, typeDescriptor); saveErr != nil {
			return saveErr
		}
	}
	return nil
}

// LoadTypes reads every stored type, sorted by name, with members in declared order.
func LoadTypes(database *gorm.DB) ([]typeregistry.Type, error) {
	var records []model.Enumeration
	queryErr := database.
		Preload("Members", func(query *gorm.DB) *gorm.DB {
			return query.Order("position ASC")
		}).
		Order("name ASC").
		Find(&records).Error
	if queryErr != nil {
		return nil, fmt.Errorf("%s: %w", errorMessageLoadTypes, queryErr)
	}

	types := make([]typeregistry.Type, 0, len(records))
	for _, record := range records {
		typeDescriptor := typeregistry.Type{
			Name: record.Name,
			Kind: typeregistry.Kind(record.Kind),
		}
		for _, member := range record.Members {
			typeDescriptor.Members = append(typeDescriptor.Members, member.Name)
		}
		types = append(types, typeDescriptor)
	}
	return types, nil
}
