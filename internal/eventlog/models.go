package eventlog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// EventRecord mirrors the timelock_events table: one row per published
// ledger event, append-only, ordered by sequence.
type EventRecord struct {
	Sequence  int64          `gorm:"primaryKey;autoIncrement"`
	EventID   string         `gorm:"type:uuid;not null;index:uniq_timelock_event_id,unique"`
	Name      string         `gorm:"not null;index:idx_timelock_events_name"`
	Payload   datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt time.Time      `gorm:"not null"`
}

func (EventRecord) TableName() string { return "timelock_events" }

func (record *EventRecord) BeforeCreate(tx *gorm.DB) error {
	if record.EventID == "" {
		record.EventID = uuid.NewString()
	}
	return nil
}
