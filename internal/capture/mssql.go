package capture

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"

	"github.com/sqlscope/sqlscope/internal/model"

	_ "github.com/microsoft/go-mssqldb"
)

// sessionName is the server-side Extended Events session owned by this
// application. The session filters out the application's own queries by
// program name so the profiler never captures itself.
const sessionName = "SQLScope"

const xeCreateSessionSQL = `
IF EXISTS (SELECT 1 FROM sys.server_event_sessions WHERE name = 'SQLScope')
    DROP EVENT SESSION [SQLScope] ON SERVER;

CREATE EVENT SESSION [SQLScope] ON SERVER
ADD EVENT sqlserver.rpc_completed(
    ACTION(
        sqlserver.database_name,
        sqlserver.username,
        sqlserver.client_hostname,
        sqlserver.client_app_name,
        sqlserver.session_id
    )
    WHERE (sqlserver.client_app_name <> N'SQLScope')
),
ADD EVENT sqlserver.sql_batch_completed(
    ACTION(
        sqlserver.database_name,
        sqlserver.username,
        sqlserver.client_hostname,
        sqlserver.client_app_name,
        sqlserver.session_id
    )
    WHERE (sqlserver.client_app_name <> N'SQLScope')
)
ADD TARGET package0.ring_buffer(SET max_memory = 51200)
WITH (
    MAX_DISPATCH_LATENCY = 1 SECONDS,
    TRACK_CAUSALITY = OFF
);

ALTER EVENT SESSION [SQLScope] ON SERVER STATE = START;
`

const xeDropSessionSQL = `
IF EXISTS (SELECT 1 FROM sys.server_event_sessions WHERE name = 'SQLScope')
    DROP EVENT SESSION [SQLScope] ON SERVER;
`

// xePollSQL shreds the ring buffer XML into one row per captured event,
// newest events last. Timestamps are ISO strings, so the watermark
// comparison in the WHERE clause is a plain string compare.
const xePollSQL = `
SELECT
    event_data.value('(event/@name)[1]', 'varchar(50)') AS event_name,
    event_data.value('(event/@timestamp)[1]', 'varchar(50)') AS timestamp,
    event_data.value('(event/data[@name="duration"]/value)[1]', 'bigint') AS duration_us,
    event_data.value('(event/data[@name="cpu_time"]/value)[1]', 'bigint') AS cpu_time_us,
    event_data.value('(event/data[@name="logical_reads"]/value)[1]', 'bigint') AS logical_reads,
    event_data.value('(event/data[@name="physical_reads"]/value)[1]', 'bigint') AS physical_reads,
    event_data.value('(event/data[@name="writes"]/value)[1]', 'bigint') AS writes,
    event_data.value('(event/data[@name="row_count"]/value)[1]', 'bigint') AS row_count,
    event_data.value('(event/data[@name="statement"]/value)[1]', 'nvarchar(max)') AS statement_text,
    event_data.value('(event/data[@name="batch_text"]/value)[1]', 'nvarchar(max)') AS batch_text,
    event_data.value('(event/action[@name="database_name"]/value)[1]', 'nvarchar(128)') AS database_name,
    event_data.value('(event/action[@name="username"]/value)[1]', 'nvarchar(128)') AS login_name,
    event_data.value('(event/action[@name="client_hostname"]/value)[1]', 'nvarchar(128)') AS host_name,
    event_data.value('(event/action[@name="client_app_name"]/value)[1]', 'nvarchar(128)') AS program_name,
    event_data.value('(event/action[@name="session_id"]/value)[1]', 'int') AS session_id
FROM (
    SELECT CAST(target_data AS XML) AS target_data
    FROM sys.dm_xe_sessions s
    JOIN sys.dm_xe_session_targets t ON s.address = t.event_session_address
    WHERE s.name = 'SQLScope' AND t.target_name = 'ring_buffer'
) AS data
CROSS APPLY target_data.nodes('//RingBufferTarget/event') AS XEventData(event_data)
WHERE event_data.value('(event/@timestamp)[1]', 'varchar(50)') > @p1
ORDER BY event_data.value('(event/@timestamp)[1]', 'varchar(50)') ASC;
`

// SQLServerDriver captures completed statements from SQL Server through
// an Extended Events session with a ring-buffer target.
type SQLServerDriver struct {
	conn *sql.DB
}

func (d *SQLServerDriver) Connect(ctx context.Context, cfg Config) error {
	q := url.Values{}
	q.Set("database", cfg.Database)
	q.Set("app name", sessionName)
	q.Set("encrypt", "true")
	if cfg.TrustCert {
		q.Set("trustservercertificate", "true")
	}
	dsn := &url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword(cfg.Username, cfg.Password),
		Host:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		RawQuery: q.Encode(),
	}

	conn, err := sql.Open("sqlserver", dsn.String())
	if err != nil {
		return fmt.Errorf("opening connection: %w", err)
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return fmt.Errorf("SQL Server connection failed: %w", err)
	}

	d.conn = conn
	return nil
}

func (d *SQLServerDriver) CreateSession(ctx context.Context) error {
	if _, err := d.conn.ExecContext(ctx, xeCreateSessionSQL); err != nil {
		return fmt.Errorf("creating capture session: %w", err)
	}
	return nil
}

func (d *SQLServerDriver) DropSession(ctx context.Context) error {
	if _, err := d.conn.ExecContext(ctx, xeDropSessionSQL); err != nil {
		return fmt.Errorf("dropping capture session: %w", err)
	}
	return nil
}

func (d *SQLServerDriver) Poll(ctx context.Context, since string) ([]model.QueryEvent, error) {
	rows, err := d.conn.QueryContext(ctx, xePollSQL, sql.Named("p1", since))
	if err != nil {
		return nil, fmt.Errorf("ring buffer query failed: %w", err)
	}
	defer rows.Close()

	var events []model.QueryEvent
	for rows.Next() {
		var (
			eventName, timestamp        sql.NullString
			durationUS, cpuTimeUS       sql.NullInt64
			logicalReads, physicalReads sql.NullInt64
			writes, rowCount            sql.NullInt64
			statementText, batchText    sql.NullString
			databaseName, loginName     sql.NullString
			hostName, programName       sql.NullString
			sessionID                   sql.NullInt64
		)
		if err := rows.Scan(
			&eventName, &timestamp, &durationUS, &cpuTimeUS,
			&logicalReads, &physicalReads, &writes, &rowCount,
			&statementText, &batchText, &databaseName, &loginName,
			&hostName, &programName, &sessionID,
		); err != nil {
			return nil, fmt.Errorf("reading ring buffer row: %w", err)
		}

		// RPC events carry the statement text; batch events carry the
		// full batch with no narrower statement.
		var sqlText, currentStatement string
		if eventName.String == "rpc_completed" {
			sqlText = statementText.String
			currentStatement = statementText.String
		} else {
			sqlText = batchText.String
		}

		events = append(events, model.QueryEvent{
			SessionID:        int(sessionID.Int64),
			StartTime:        timestamp.String,
			EventName:        eventName.String,
			DatabaseName:     databaseName.String,
			CPUTime:          int(cpuTimeUS.Int64 / 1000),
			ElapsedTime:      int(durationUS.Int64 / 1000),
			PhysicalReads:    physicalReads.Int64,
			Writes:           writes.Int64,
			LogicalReads:     logicalReads.Int64,
			RowCount:         rowCount.Int64,
			SQLText:          sqlText,
			CurrentStatement: currentStatement,
			LoginName:        loginName.String,
			HostName:         hostName.String,
			ProgramName:      programName.String,
		})
	}

	return events, rows.Err()
}

func (d *SQLServerDriver) Query(ctx context.Context, sqlText string) (*Table, error) {
	return runQuery(ctx, d.conn, sqlText)
}

func (d *SQLServerDriver) Close() error {
	if d.conn == nil {
		return nil
	}
	err := d.conn.Close()
	d.conn = nil
	return err
}
