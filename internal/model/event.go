package model

// QueryEvent is one captured query execution, as delivered by the capture
// source. Events are immutable once created; the JSON field names match
// the wire shape emitted to the frontend.
type QueryEvent struct {
	ID               string `json:"id"`
	SessionID        int    `json:"session_id"`
	StartTime        string `json:"start_time"`
	EventName        string `json:"event_name"`
	DatabaseName     string `json:"database_name"`
	CPUTime          int    `json:"cpu_time"`
	ElapsedTime      int    `json:"elapsed_time"`
	PhysicalReads    int64  `json:"physical_reads"`
	Writes           int64  `json:"writes"`
	LogicalReads     int64  `json:"logical_reads"`
	RowCount         int64  `json:"row_count"`
	SQLText          string `json:"sql_text"`
	CurrentStatement string `json:"current_statement"`
	LoginName        string `json:"login_name"`
	HostName         string `json:"host_name"`
	ProgramName      string `json:"program_name"`
	CapturedAt       string `json:"captured_at"`
	EventStatus      string `json:"event_status"`
}

// DisplayText returns the text shown and compared for this event: the
// current statement when the capture source provided one, otherwise the
// full batch text.
func (e *QueryEvent) DisplayText() string {
	if e.CurrentStatement != "" {
		return e.CurrentStatement
	}
	return e.SQLText
}

// DisplayKind maps the raw event name onto the short label used in the
// event grid. Unknown names pass through unchanged.
func (e *QueryEvent) DisplayKind() string {
	switch e.EventName {
	case "rpc_completed", "rpc completed":
		return "RPC"
	case "sp_statement_completed", "statement completed":
		return "STMT"
	case "sql_batch_completed", "batch completed":
		return "BATCH"
	default:
		return e.EventName
	}
}
