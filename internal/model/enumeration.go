package model

import "time"

// Enumeration is a persisted type declaration. Kind mirrors typeregistry.Kind.
type Enumeration struct {
	ID        string              `gorm:"primaryKey;size:36"`
	Name      string              `gorm:"uniqueIndex;not null;size:300"`
	Kind      string              `gorm:"not null;size:32"`
	Members   []EnumerationMember `gorm:"foreignKey:EnumerationID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time           `gorm:"autoCreateTime"`
	UpdatedAt time.Time           `gorm:"autoUpdateTime"`
}

// EnumerationMember is one member name; Position keeps the declared order.
type EnumerationMember struct {
	ID            string `gorm:"primaryKey;size:36"`
	EnumerationID string `gorm:"index;not null;size:36"`
	Name          string `gorm:"not null;size:200"`
	Position      int    `gorm:"not null"`
}
