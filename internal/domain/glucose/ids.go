package glucose

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Model carries the primary key shared by every row in this package. IDs are assigned in
// BeforeCreate so the schema works on drivers without uuid_generate_v4().
type Model struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
}

func (m *Model) BeforeCreate(_ *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
