package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ReactionSupport = "support"
	ReactionRelate  = "relate"
)

// Reaction marks that a device reacted to a confession. The composite
// unique index is the identity of the record: presence means active,
// absence means inactive. Toggling deletes or inserts, never flips a flag.
type Reaction struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ConfessionID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_reactions_identity,priority:1;index:idx_reactions_lookup" json:"confession_id"`
	DeviceID     string    `gorm:"size:64;not null;uniqueIndex:idx_reactions_identity,priority:2" json:"device_id"`
	ReactionType string    `gorm:"size:10;not null;uniqueIndex:idx_reactions_identity,priority:3" json:"reaction_type"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (r *Reaction) TableName() string {
	return "reactions"
}

func (r *Reaction) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID, err = uuid.NewV7()
	}
	return
}

// ValidReactionType reports whether t is one of the two supported kinds.
func ValidReactionType(t string) bool {
	return t == ReactionSupport || t == ReactionRelate
}
