package model

import "strconv"

// ColumnType is the semantic type of a filterable column. It determines
// which comparison operators are legal and how values are coerced.
type ColumnType int

const (
	TypeString ColumnType = iota
	TypeNumber
	TypeDateTime
)

// Column names accepted in filter conditions. The set is closed: a
// condition referencing anything else is invalid.
const (
	ColEventName        = "event_name"
	ColSessionID        = "session_id"
	ColStartTime        = "start_time"
	ColDatabaseName     = "database_name"
	ColCPUTime          = "cpu_time"
	ColElapsedTime      = "elapsed_time"
	ColPhysicalReads    = "physical_reads"
	ColLogicalReads     = "logical_reads"
	ColWrites           = "writes"
	ColRowCount         = "row_count"
	ColSQLText          = "sql_text"
	ColCurrentStatement = "current_statement"
	ColLoginName        = "login_name"
	ColHostName         = "host_name"
	ColProgramName      = "program_name"
	ColCapturedAt       = "captured_at"
)

// Columns is the ordered list of filterable columns with their semantic
// types. Used for condition validation and operator legality checks.
var Columns = []struct {
	Name string
	Type ColumnType
}{
	{ColEventName, TypeString},
	{ColSessionID, TypeNumber},
	{ColStartTime, TypeDateTime},
	{ColDatabaseName, TypeString},
	{ColCPUTime, TypeNumber},
	{ColElapsedTime, TypeNumber},
	{ColPhysicalReads, TypeNumber},
	{ColLogicalReads, TypeNumber},
	{ColWrites, TypeNumber},
	{ColRowCount, TypeNumber},
	{ColSQLText, TypeString},
	{ColCurrentStatement, TypeString},
	{ColLoginName, TypeString},
	{ColHostName, TypeString},
	{ColProgramName, TypeString},
	{ColCapturedAt, TypeDateTime},
}

// ColumnTypeOf returns the semantic type of a column name.
// The second result is false for unknown columns.
func ColumnTypeOf(name string) (ColumnType, bool) {
	for _, c := range Columns {
		if c.Name == name {
			return c.Type, true
		}
	}
	return TypeString, false
}

// ColumnValue resolves a column reference against an event, returning
// the value as a string. Numeric columns are formatted in base 10;
// unknown columns resolve to "".
func ColumnValue(e *QueryEvent, name string) string {
	switch name {
	case ColEventName:
		return e.EventName
	case ColSessionID:
		return strconv.Itoa(e.SessionID)
	case ColStartTime:
		return e.StartTime
	case ColDatabaseName:
		return e.DatabaseName
	case ColCPUTime:
		return strconv.Itoa(e.CPUTime)
	case ColElapsedTime:
		return strconv.Itoa(e.ElapsedTime)
	case ColPhysicalReads:
		return strconv.FormatInt(e.PhysicalReads, 10)
	case ColLogicalReads:
		return strconv.FormatInt(e.LogicalReads, 10)
	case ColWrites:
		return strconv.FormatInt(e.Writes, 10)
	case ColRowCount:
		return strconv.FormatInt(e.RowCount, 10)
	case ColSQLText:
		return e.SQLText
	case ColCurrentStatement:
		return e.CurrentStatement
	case ColLoginName:
		return e.LoginName
	case ColHostName:
		return e.HostName
	case ColProgramName:
		return e.ProgramName
	case ColCapturedAt:
		return e.CapturedAt
	default:
		return ""
	}
}
