package capture

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/sqlscope/sqlscope/internal/logger"
	"github.com/sqlscope/sqlscope/internal/model"
)

// Sentinel errors callers branch on.
var (
	ErrClosed       = errors.New("profiler is closed")
	ErrNotConnected = errors.New("not connected")
)

// pollInterval is how often the capture session is drained.
const pollInterval = 500 * time.Millisecond

// epochWatermark is the initial poll watermark; the first StartCapture
// replaces it with the capture start time.
const epochWatermark = "1970-01-01T00:00:00.0000000"

type cmdKind int

const (
	cmdConnect cmdKind = iota
	cmdDisconnect
	cmdStartCapture
	cmdStopCapture
	cmdExec
)

type command struct {
	kind  cmdKind
	cfg   Config
	sql   string
	reply chan result
}

type result struct {
	table *Table
	err   error
}

// Profiler drives a capture driver from a single goroutine: commands
// arrive on a channel and the session is polled on a ticker, so no two
// state transitions interleave. Events and status changes are pushed to
// the Notifier as they happen.
type Profiler struct {
	notifier  Notifier
	newDriver func(string) (Driver, error)
	cmds      chan command
	done      chan struct{}
}

// NewProfiler starts the profiler loop. Close releases it.
func NewProfiler(n Notifier) *Profiler {
	p := &Profiler{
		notifier:  n,
		newDriver: NewDriver,
		cmds:      make(chan command, 16),
		done:      make(chan struct{}),
	}
	go p.loop()
	return p
}

// Connect opens a connection to the server described by cfg.
func (p *Profiler) Connect(cfg Config) error {
	return p.send(command{kind: cmdConnect, cfg: cfg})
}

// Disconnect tears down the capture session (if any) and closes the
// connection.
func (p *Profiler) Disconnect() error {
	return p.send(command{kind: cmdDisconnect})
}

// StartCapture installs the capture session and begins polling.
func (p *Profiler) StartCapture() error {
	return p.send(command{kind: cmdStartCapture})
}

// StopCapture removes the capture session but keeps the connection.
// Already-delivered events are not affected.
func (p *Profiler) StopCapture() error {
	return p.send(command{kind: cmdStopCapture})
}

// ExecuteQuery runs an ad-hoc statement on the open connection.
func (p *Profiler) ExecuteQuery(sqlText string) (*Table, error) {
	reply := make(chan result, 1)
	select {
	case p.cmds <- command{kind: cmdExec, sql: sqlText, reply: reply}:
	case <-p.done:
		return nil, ErrClosed
	}
	r := <-reply
	return r.table, r.err
}

// stampEvents assigns identifiers, capture metadata, and the completed
// status to freshly polled events, advancing the watermark to the
// newest start time seen.
func stampEvents(events []model.QueryEvent, watermark, capturedAt string) string {
	for i := range events {
		if events[i].StartTime > watermark {
			watermark = events[i].StartTime
		}
		events[i].ID = uuid.NewString()
		events[i].CapturedAt = capturedAt
		events[i].EventStatus = "completed"
	}
	return watermark
}

// Close stops the profiler loop and closes any open connection.
func (p *Profiler) Close() {
	close(p.done)
}

func (p *Profiler) send(cmd command) error {
	cmd.reply = make(chan result, 1)
	select {
	case p.cmds <- cmd:
	case <-p.done:
		return ErrClosed
	}
	return (<-cmd.reply).err
}

func (p *Profiler) loop() {
	ctx := context.Background()

	var drv Driver
	capturing := false
	watermark := epochWatermark

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	teardown := func() {
		if drv != nil {
			drv.Close()
			drv = nil
		}
		capturing = false
		watermark = epochWatermark
	}
	defer teardown()

	status := func(connected, capturing bool, errText string) {
		p.notifier.Status(Status{Connected: connected, Capturing: capturing, Error: errText})
	}

	for {
		select {
		case <-p.done:
			if drv != nil && capturing {
				drv.DropSession(ctx)
			}
			return

		case cmd := <-p.cmds:
			switch cmd.kind {
			case cmdConnect:
				cfg := cmd.cfg
				if err := cfg.Validate(); err != nil {
					cmd.reply <- result{err: err}
					continue
				}
				next, err := p.newDriver(cfg.Driver)
				if err == nil {
					err = next.Connect(ctx, cfg)
				}
				if err != nil {
					status(false, false, err.Error())
					cmd.reply <- result{err: err}
					continue
				}
				if drv != nil {
					drv.Close()
				}
				drv = next
				capturing = false
				logger.Info("connected to %s:%d (%s)", cfg.Host, cfg.Port, cfg.Driver)
				status(true, false, "")
				cmd.reply <- result{}

			case cmdDisconnect:
				if drv != nil {
					drv.DropSession(ctx)
				}
				teardown()
				status(false, false, "")
				cmd.reply <- result{}

			case cmdStartCapture:
				if drv == nil {
					cmd.reply <- result{err: ErrNotConnected}
					continue
				}
				if err := drv.CreateSession(ctx); err != nil {
					cmd.reply <- result{err: err}
					continue
				}
				watermark = time.Now().UTC().Format("2006-01-02T15:04:05.0000000")
				capturing = true
				logger.Info("capture started")
				status(true, true, "")
				cmd.reply <- result{}

			case cmdStopCapture:
				if drv != nil {
					drv.DropSession(ctx)
				}
				capturing = false
				logger.Info("capture stopped")
				status(drv != nil, false, "")
				cmd.reply <- result{}

			case cmdExec:
				if drv == nil {
					cmd.reply <- result{err: ErrNotConnected}
					continue
				}
				table, err := drv.Query(ctx, cmd.sql)
				cmd.reply <- result{table: table, err: err}
			}

		case <-ticker.C:
			if !capturing || drv == nil {
				continue
			}
			events, err := drv.Poll(ctx, watermark)
			if err != nil {
				// A failed poll means the session is gone; tear down
				// and surface the error through status.
				logger.Error("poll failed: %v", err)
				drv.DropSession(ctx)
				teardown()
				status(false, false, err.Error())
				continue
			}
			if len(events) == 0 {
				continue
			}
			now := time.Now().UTC().Format(time.RFC3339Nano)
			watermark = stampEvents(events, watermark, now)
			p.notifier.Events(events)
		}
	}
}
