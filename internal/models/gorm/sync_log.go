package gorm

import "time"

// SyncLog is an append-only record of one sync attempt or one tick summary
type SyncLog struct {
	ID           uint64  `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	RunID        string  `gorm:"column:run_id;type:varchar(26);index" json:"run_id"`
	Direction    string  `gorm:"column:direction;type:varchar(30);not null" json:"direction"`
	Target       string  `gorm:"column:table_name;type:varchar(50);not null" json:"table_name"`
	RecordID     string  `gorm:"column:record_id;type:varchar(64);not null" json:"record_id"`
	Operation    string  `gorm:"column:operation;type:varchar(20);not null" json:"operation"`
	Success      bool    `gorm:"column:success;not null" json:"success"`
	ErrorMessage *string `gorm:"column:error_message;type:text" json:"error_message,omitempty"`
	Details      *string `gorm:"column:details;type:text" json:"details,omitempty"`

	// Counts are only set on batch rows
	RecordsProcessed *int   `gorm:"column:records_processed" json:"records_processed,omitempty"`
	RecordsSucceeded *int   `gorm:"column:records_succeeded" json:"records_succeeded,omitempty"`
	RecordsFailed    *int   `gorm:"column:records_failed" json:"records_failed,omitempty"`
	DurationMs       *int64 `gorm:"column:duration_ms" json:"duration_ms,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`
}

// TableName specifies the table name for GORM
func (SyncLog) TableName() string {
	return "sync_logs"
}
