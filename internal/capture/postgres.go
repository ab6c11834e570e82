package capture

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"

	"github.com/sqlscope/sqlscope/internal/model"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// pgPollSQL samples pg_stat_activity for statements that started after
// the watermark. PostgreSQL has no ring-buffer equivalent of the SQL
// Server session, so this backend is a sampler: long-running statements
// are observed once when they first appear, and per-statement I/O
// counters are not available.
const pgPollSQL = `
SELECT
    pid,
    to_char(query_start, 'YYYY-MM-DD"T"HH24:MI:SS.US') AS start_time,
    COALESCE(datname, '') AS database_name,
    COALESCE(usename, '') AS login_name,
    COALESCE(client_hostname, host(client_addr)::text, '') AS host_name,
    COALESCE(application_name, '') AS program_name,
    query,
    GREATEST(0, floor(extract(epoch FROM now() - query_start) * 1000))::bigint AS elapsed_ms
FROM pg_stat_activity
WHERE state = 'active'
  AND pid <> pg_backend_pid()
  AND query <> ''
  AND application_name <> 'SQLScope'
  AND query_start IS NOT NULL
  AND to_char(query_start, 'YYYY-MM-DD"T"HH24:MI:SS.US') > $1
ORDER BY query_start ASC;
`

// PostgresDriver captures statements by sampling pg_stat_activity.
type PostgresDriver struct {
	conn *sql.DB
}

func (d *PostgresDriver) Connect(ctx context.Context, cfg Config) error {
	q := url.Values{}
	q.Set("application_name", sessionName)
	if cfg.TrustCert {
		q.Set("sslmode", "prefer")
	}
	dsn := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.Username, cfg.Password),
		Host:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Path:     "/" + cfg.Database,
		RawQuery: q.Encode(),
	}

	conn, err := sql.Open("pgx", dsn.String())
	if err != nil {
		return fmt.Errorf("opening connection: %w", err)
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return fmt.Errorf("PostgreSQL connection failed: %w", err)
	}

	d.conn = conn
	return nil
}

// CreateSession is a no-op: sampling needs no server-side object.
func (d *PostgresDriver) CreateSession(ctx context.Context) error {
	return nil
}

// DropSession is a no-op for the sampling backend.
func (d *PostgresDriver) DropSession(ctx context.Context) error {
	return nil
}

func (d *PostgresDriver) Poll(ctx context.Context, since string) ([]model.QueryEvent, error) {
	rows, err := d.conn.QueryContext(ctx, pgPollSQL, since)
	if err != nil {
		return nil, fmt.Errorf("activity query failed: %w", err)
	}
	defer rows.Close()

	var events []model.QueryEvent
	for rows.Next() {
		var (
			pid                              int
			startTime, databaseName          string
			loginName, hostName, programName string
			query                            string
			elapsedMS                        int64
		)
		if err := rows.Scan(
			&pid, &startTime, &databaseName, &loginName,
			&hostName, &programName, &query, &elapsedMS,
		); err != nil {
			return nil, fmt.Errorf("reading activity row: %w", err)
		}

		events = append(events, model.QueryEvent{
			SessionID:    pid,
			StartTime:    startTime,
			EventName:    "sql_batch_completed",
			DatabaseName: databaseName,
			ElapsedTime:  int(elapsedMS),
			SQLText:      query,
			LoginName:    loginName,
			HostName:     hostName,
			ProgramName:  programName,
		})
	}

	return events, rows.Err()
}

func (d *PostgresDriver) Query(ctx context.Context, sqlText string) (*Table, error) {
	return runQuery(ctx, d.conn, sqlText)
}

func (d *PostgresDriver) Close() error {
	if d.conn == nil {
		return nil
	}
	err := d.conn.Close()
	d.conn = nil
	return err
}
