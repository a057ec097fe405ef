package models

import "gorm.io/gorm"

type User struct {
	gorm.Model

	Username        string `gorm:"uniqueIndex;not null"`
	Email           string `gorm:"uniqueIndex;not null"`
	PasswordHash    string `gorm:"not null"`
	Age             int    `gorm:"not null"`
	CanBeContacted  bool   `gorm:"not null;default:false"`
	CanDataBeShared bool   `gorm:"not null;default:false"`

	// Relationships
	AuthoredProjects []Project     `gorm:"foreignKey:AuthorID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Contributions    []Contributor `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	AuthoredIssues   []Issue       `gorm:"foreignKey:AuthorID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	AssignedIssues   []Issue       `gorm:"foreignKey:AssigneeID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Comments         []Comment     `gorm:"foreignKey:AuthorID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
