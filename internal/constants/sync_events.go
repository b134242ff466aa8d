package constants

// Sync directions recorded in sync_logs.direction
const (
	DirectionLegacyToRelational = "legacy_to_relational"
	DirectionRelationalToLegacy = "relational_to_legacy"
	DirectionBoth               = "both"
)

// Sync operations recorded in sync_logs.operation
const (
	SyncOpInsert    = "insert"
	SyncOpUpdate    = "update"
	SyncOpPush      = "push"
	SyncOpTransform = "transform"
	SyncOpFetch     = "fetch"
	SyncOpStats     = "stats"
	SyncOpUpsert    = "upsert" // existence unknown because the lookup failed
	SyncOpSkip      = "skip"   // row holds a local change that has not reached the legacy store
)

// BatchRecordID is the record id used by sync log rows that describe a whole batch or tick.
const BatchRecordID = "batch"

// Outbound sync flag values for reservations.sync_status
const (
	SyncStatusPending = "pending"
	SyncStatusSynced  = "synced"
	SyncStatusError   = "error"
)

// Tick triggers
const (
	TriggerSchedule = "schedule"
	TriggerManual   = "manual"
	TriggerCLI      = "cli"
)
