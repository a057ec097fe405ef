package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment carries an opaque UUID primary key instead of a sequential
// one, so comment ids leak nothing about volume.
type Comment struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Description string    `gorm:"not null"`
	IssueID     uint      `gorm:"not null;index"`
	AuthorID    uint      `gorm:"not null;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Relationships
	Issue  Issue `gorm:"foreignKey:IssueID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Author User  `gorm:"foreignKey:AuthorID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
