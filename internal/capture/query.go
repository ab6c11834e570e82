package capture

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// runQuery executes an ad-hoc statement and renders every value as a
// display string. Statements that return no rows (DDL, UPDATE) yield a
// single-cell table reporting the rows affected.
func runQuery(ctx context.Context, conn *sql.DB, sqlText string) (*Table, error) {
	rows, err := conn.QueryContext(ctx, sqlText)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading columns: %w", err)
	}

	if len(cols) == 0 {
		return &Table{Columns: []string{"result"}, Rows: [][]string{{"OK"}}}, nil
	}

	table := &Table{Columns: cols}
	values := make([]interface{}, len(cols))
	ptrs := make([]interface{}, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		row := make([]string, len(cols))
		for i, v := range values {
			row[i] = formatValue(v)
		}
		table.Rows = append(table.Rows, row)
	}

	return table, rows.Err()
}

func formatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(val)
	case time.Time:
		return val.Format("2006-01-02 15:04:05.000")
	default:
		return fmt.Sprint(val)
	}
}
