package models

import "gorm.io/gorm"

// Contributor grants a user standing to create and view issues and
// comments within a project. The composite unique index is what makes
// concurrent duplicate adds safe; the handler pre-check only exists to
// produce a friendlier message.
type Contributor struct {
	gorm.Model

	UserID    uint `gorm:"not null;uniqueIndex:idx_user_project"`
	ProjectID uint `gorm:"not null;uniqueIndex:idx_user_project"`

	// Relationships
	User    User    `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Project Project `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
