package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SyncRun records the outcome of one batch sync invocation.
type SyncRun struct {
	ID          uint       `json:"id" gorm:"primaryKey;autoIncrement"`
	RunID       string     `json:"run_id" gorm:"type:uuid;uniqueIndex;not null"`
	Mode        string     `json:"mode" gorm:"size:20;not null"`
	Saved       int        `json:"saved"`
	Skipped     int        `json:"skipped"`
	InvalidType int        `json:"invalid_type"`
	ErrorCount  int        `json:"error_count"`
	Errors      string     `json:"errors" gorm:"type:text"`
	StartedAt   time.Time  `json:"started_at"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
}

func (SyncRun) TableName() string {
	return "sync_runs"
}

// BeforeCreate assigns a run id when the caller did not set one.
func (r *SyncRun) BeforeCreate(tx *gorm.DB) error {
	if r.RunID == "" {
		r.RunID = uuid.New().String()
	}
	return nil
}
