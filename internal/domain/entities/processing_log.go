package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Stage is one node of the processing state machine
type Stage string

const (
	StageSummarize    Stage = "SUMMARIZE"
	StageExtract      Stage = "EXTRACT"
	StageCreateIssues Stage = "CREATE_ISSUES"
	StageStore        Stage = "STORE"
)

// Stages lists the pipeline stages in execution order
var Stages = []Stage{StageSummarize, StageExtract, StageCreateIssues, StageStore}

// Valid reports whether s is one of the pipeline stages
func (s Stage) Valid() bool {
	for _, st := range Stages {
		if st == s {
			return true
		}
	}
	return false
}

// LogStatus is the outcome recorded for a stage transition
type LogStatus string

const (
	LogStatusStarted LogStatus = "started"
	LogStatusSuccess LogStatus = "success"
	LogStatusFailed  LogStatus = "failed"
	LogStatusSkipped LogStatus = "skipped"
)

// ProcessingLogEntry is one append-only audit row for a meeting
type ProcessingLogEntry struct {
	ID           uuid.UUID         `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ConferenceID string            `json:"conference_id" gorm:"type:varchar(255);not null;index:idx_processing_logs_conference_created,priority:1"`
	Step         Stage             `json:"step" gorm:"type:varchar(32);not null"`
	Status       LogStatus         `json:"status" gorm:"type:varchar(16);not null"`
	Message      string            `json:"message" gorm:"type:text"`
	Metadata     datatypes.JSONMap `json:"metadata,omitempty" gorm:"type:jsonb"`
	CreatedAt    time.Time         `json:"created_at" gorm:"index:idx_processing_logs_conference_created,priority:2"`
}

// TableName specifies the table name for GORM
func (ProcessingLogEntry) TableName() string {
	return "processing_logs"
}

// NewProcessingLogEntry creates an entry stamped with the current time
func NewProcessingLogEntry(conferenceID string, step Stage, status LogStatus, message string, metadata map[string]interface{}) *ProcessingLogEntry {
	return &ProcessingLogEntry{
		ID:           uuid.New(),
		ConferenceID: conferenceID,
		Step:         step,
		Status:       status,
		Message:      message,
		Metadata:     datatypes.JSONMap(metadata),
		CreatedAt:    time.Now().UTC(),
	}
}
