package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Confession is an anonymous post. Rows are immutable once created:
// no author column, no UpdatedAt, no soft delete.
type Confession struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (c *Confession) TableName() string {
	return "confessions"
}

func (c *Confession) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID, err = uuid.NewV7()
	}
	return
}
