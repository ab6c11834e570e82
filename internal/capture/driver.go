// Package capture talks to the instrumented database server: it owns
// the server-side capture session, polls it for completed query events,
// and runs ad-hoc queries. The engine consumes its output through the
// Notifier; nothing in here touches UI state.
package capture

import (
	"context"
	"fmt"

	"github.com/sqlscope/sqlscope/internal/model"
)

// Config describes a server connection. The JSON tags match the shape
// the frontend connection dialog submits.
type Config struct {
	Driver    string `json:"driver"` // "mssql" (default) or "postgres"
	Host      string `json:"host"`
	Port      int    `json:"port"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	Database  string `json:"database"`
	TrustCert bool   `json:"trust_cert"`
}

// Validate fills defaults and rejects configs that cannot form a DSN.
func (c *Config) Validate() error {
	if c.Driver == "" {
		c.Driver = "mssql"
	}
	if c.Host == "" {
		return fmt.Errorf("host is required")
	}
	if c.Port <= 0 {
		switch c.Driver {
		case "postgres":
			c.Port = 5432
		default:
			c.Port = 1433
		}
	}
	return nil
}

// Table is the result of an ad-hoc query: column names plus rows of
// display strings.
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Status mirrors the health signal pushed alongside events. Error text
// is opaque human-readable collaborator output.
type Status struct {
	Connected bool   `json:"connected"`
	Capturing bool   `json:"capturing"`
	Error     string `json:"error,omitempty"`
}

// Notifier receives pushed events and status transitions. Calls are
// made from the profiler goroutine, one at a time.
type Notifier interface {
	Events(events []model.QueryEvent)
	Status(s Status)
}

// Driver abstracts one database backend. Implementations own their DSN
// format, the capture-session DDL, and the poll query; the profiler
// loop drives them uniformly.
type Driver interface {
	// Connect opens and verifies the connection.
	Connect(ctx context.Context, cfg Config) error

	// CreateSession installs the server-side capture session.
	CreateSession(ctx context.Context) error

	// DropSession removes the capture session. Best-effort on teardown.
	DropSession(ctx context.Context) error

	// Poll returns events that started strictly after the since
	// watermark, oldest first. Timestamps compare lexically, so the
	// watermark format must sort chronologically.
	Poll(ctx context.Context, since string) ([]model.QueryEvent, error)

	// Query runs an ad-hoc statement and renders the result.
	Query(ctx context.Context, sql string) (*Table, error)

	// Close releases the connection.
	Close() error
}

// NewDriver returns the driver for cfg.Driver.
func NewDriver(driver string) (Driver, error) {
	switch driver {
	case "mssql", "":
		return &SQLServerDriver{}, nil
	case "postgres":
		return &PostgresDriver{}, nil
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}
}
