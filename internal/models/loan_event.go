package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// LoanEvent is an audit record of a state-changing loan operation.
type LoanEvent struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	LoanID    uuid.UUID      `gorm:"column:loan_id;type:uuid;not null;index" json:"loan_id"`
	EventType string         `gorm:"column:event_type;type:varchar(40);not null" json:"event_type"`
	EventData datatypes.JSON `gorm:"column:event_data;type:jsonb" json:"event_data"`
	CreatedAt time.Time      `gorm:"column:created_at" json:"created_at"`
}

func (LoanEvent) TableName() string {
	return "loan_events"
}
