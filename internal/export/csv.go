// Package export writes the visible event list to disk.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/sqlscope/sqlscope/internal/model"
)

var header = []string{
	"start_time", "event", "database", "cpu_ms", "elapsed_ms",
	"physical_reads", "logical_reads", "writes", "row_count",
	"sql_text", "login", "host", "program", "session_id", "captured_at",
}

// WriteCSV writes events to path as CSV, one row per event, in the
// order given.
func WriteCSV(path string, events []model.QueryEvent) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	defer writer.Flush()

	if err := writer.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i := range events {
		e := &events[i]
		row := []string{
			e.StartTime,
			e.DisplayKind(),
			e.DatabaseName,
			strconv.Itoa(e.CPUTime),
			strconv.Itoa(e.ElapsedTime),
			strconv.FormatInt(e.PhysicalReads, 10),
			strconv.FormatInt(e.LogicalReads, 10),
			strconv.FormatInt(e.Writes, 10),
			strconv.FormatInt(e.RowCount, 10),
			e.DisplayText(),
			e.LoginName,
			e.HostName,
			e.ProgramName,
			strconv.Itoa(e.SessionID),
			e.CapturedAt,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
