package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/sqlscope/sqlscope/internal/buffer"
	"github.com/sqlscope/sqlscope/internal/capture"
	"github.com/sqlscope/sqlscope/internal/engine"
	"github.com/sqlscope/sqlscope/internal/export"
	"github.com/sqlscope/sqlscope/internal/filter"
	"github.com/sqlscope/sqlscope/internal/logger"
	"github.com/sqlscope/sqlscope/internal/model"
	"github.com/sqlscope/sqlscope/internal/prefs"
	"github.com/sqlscope/sqlscope/internal/securestorage"
)

// App is the main application struct that Wails binds to the frontend.
// All exported methods become callable from JavaScript.
type App struct {
	ctx      context.Context
	engine   *engine.Engine
	profiler *capture.Profiler
	prefs    *prefs.Store
	profiles *securestorage.Storage
}

// NewApp creates a new App instance.
func NewApp() *App {
	return &App{}
}

// startup is called when the app starts. The context is saved so we can
// call runtime methods (dialogs, events, etc.)
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx

	configDir := appConfigDir()
	logger.Init(false, filepath.Join(configDir, "sqlscope.log"))

	a.engine = engine.New(buffer.DefaultCapacity, func(name string, data ...interface{}) {
		runtime.EventsEmit(a.ctx, name, data...)
	})
	a.profiler = capture.NewProfiler(&engineNotifier{engine: a.engine})
	a.profiles = securestorage.NewStorage(configDir)

	store, err := prefs.Open(filepath.Join(configDir, "prefs.db"))
	if err != nil {
		// Preferences are a convenience; the app still runs without them.
		logger.Warn("preferences unavailable: %v", err)
		return
	}
	a.prefs = store
	a.restorePrefs()
}

// shutdown is called when the app is closing.
func (a *App) shutdown(ctx context.Context) {
	if a.profiler != nil {
		a.profiler.Close()
	}
	if a.prefs != nil {
		a.prefs.Close()
	}
}

// restorePrefs applies persisted preferences to the engine.
func (a *App) restorePrefs() {
	if conds, err := a.prefs.LoadConditions(); err == nil && conds != nil {
		a.engine.SetConditions(conds)
	}
	if mode, err := a.prefs.LoadScrollMode(); err == nil && mode != "" {
		a.engine.SetScrollMode(engine.ParseScrollMode(mode))
	}
	if dedup, err := a.prefs.LoadDedup(); err == nil {
		a.engine.SetDedup(dedup)
	}
}

// engineNotifier routes capture pushes into the engine.
type engineNotifier struct {
	engine *engine.Engine
}

func (n *engineNotifier) Events(events []model.QueryEvent) {
	n.engine.HandleEvents(events)
}

func (n *engineNotifier) Status(s capture.Status) {
	n.engine.HandleStatus(engine.Status{
		Connected: s.Connected,
		Capturing: s.Capturing,
		Error:     s.Error,
	})
}

// -- Connection & Capture --

// Connect opens a connection to the server described by cfg.
func (a *App) Connect(cfg capture.Config) error {
	return a.profiler.Connect(cfg)
}

// Disconnect tears down capture and closes the connection.
func (a *App) Disconnect() error {
	return a.profiler.Disconnect()
}

// StartCapture installs the server-side capture session.
func (a *App) StartCapture() error {
	return a.profiler.StartCapture()
}

// StopCapture removes the capture session; buffered events remain.
func (a *App) StopCapture() error {
	return a.profiler.StopCapture()
}

// GetStatus returns the last reported capture status.
func (a *App) GetStatus() engine.Status {
	return a.engine.Status()
}

// ExecuteQuery runs an ad-hoc statement and returns a tabular result.
func (a *App) ExecuteQuery(sql string) (*capture.Table, error) {
	return a.profiler.ExecuteQuery(sql)
}

// -- Event Stream --

// GetVisibleEvents returns the filtered, deduplicated event list.
func (a *App) GetVisibleEvents() []model.QueryEvent {
	return a.engine.Visible()
}

// GetTotalCount returns the number of buffered events before filtering.
func (a *App) GetTotalCount() int {
	return a.engine.TotalCount()
}

// ClearEvents empties the buffer and closes the detail view.
func (a *App) ClearEvents() {
	a.engine.Clear()
}

// SetSearchText replaces the free-text filter.
func (a *App) SetSearchText(text string) {
	a.engine.SetSearchText(text)
}

// SetConditions replaces the structured filter set and persists it.
func (a *App) SetConditions(conds []filter.Condition) {
	a.engine.SetConditions(conds)
	if a.prefs != nil {
		if err := a.prefs.SaveConditions(a.engine.Conditions()); err != nil {
			logger.Warn("saving filter set: %v", err)
		}
	}
}

// GetConditions returns the active normalized filter set.
func (a *App) GetConditions() []filter.Condition {
	return a.engine.Conditions()
}

// SetDedup toggles adjacent deduplication and persists the flag.
func (a *App) SetDedup(enabled bool) {
	a.engine.SetDedup(enabled)
	if a.prefs != nil {
		a.prefs.SaveDedup(enabled)
	}
}

// GetDedup reports whether deduplication is enabled.
func (a *App) GetDedup() bool {
	return a.engine.Dedup()
}

// -- Selection --

// SelectEvent records the event opened in the detail view.
func (a *App) SelectEvent(id string) {
	a.engine.Select(id)
}

// GetSelectedEvent resolves the selection against the full buffer.
// Returns nil when the selection no longer resolves.
func (a *App) GetSelectedEvent() *model.QueryEvent {
	e, ok := a.engine.Selected()
	if !ok {
		return nil
	}
	return &e
}

// CloseDetail dismisses the detail view.
func (a *App) CloseDetail() {
	a.engine.CloseDetail()
}

// -- Scroll & Layout Preferences --

// GetScrollMode returns the active scroll mode.
func (a *App) GetScrollMode() string {
	return string(a.engine.ScrollMode())
}

// CycleScrollMode advances smart -> on -> off -> smart and persists the
// new mode.
func (a *App) CycleScrollMode() string {
	mode := a.engine.CycleScrollMode()
	if a.prefs != nil {
		a.prefs.SaveScrollMode(string(mode))
	}
	return string(mode)
}

// SetDetailHeight persists the detail panel height in pixels.
func (a *App) SetDetailHeight(px int) {
	if a.prefs != nil {
		a.prefs.SaveDetailHeight(px)
	}
}

// GetDetailHeight returns the stored panel height clamped against the
// current viewport height.
func (a *App) GetDetailHeight(viewportHeight int) int {
	if a.prefs == nil {
		return prefs.ClampDetailHeight(0, viewportHeight)
	}
	px, _ := a.prefs.LoadDetailHeight(viewportHeight)
	return px
}

// -- Saved Connections --

// GetProfiles returns the saved connection profiles (no passwords).
func (a *App) GetProfiles() ([]securestorage.Profile, error) {
	return a.profiles.List()
}

// SaveProfile stores a connection profile; the password goes to the OS
// keyring.
func (a *App) SaveProfile(p securestorage.Profile, password string) error {
	return a.profiles.Save(p, password)
}

// GetProfilePassword retrieves a saved profile's password.
func (a *App) GetProfilePassword(name string) (string, error) {
	return a.profiles.Password(name)
}

// DeleteProfile removes a saved profile and its keyring entry.
func (a *App) DeleteProfile(name string) error {
	return a.profiles.Delete(name)
}

// -- Export --

// ExportCSV writes the current visible event list to a CSV file chosen
// by the operator. Returns a summary message, or "" if cancelled.
func (a *App) ExportCSV() (string, error) {
	savePath, err := runtime.SaveFileDialog(a.ctx, runtime.SaveDialogOptions{
		Title:           "Export Events to CSV",
		DefaultFilename: "events.csv",
		Filters: []runtime.FileFilter{
			{DisplayName: "CSV Files (*.csv)", Pattern: "*.csv"},
		},
	})
	if err != nil {
		return "", err
	}
	if savePath == "" {
		return "", nil // user cancelled
	}

	events := a.engine.Visible()
	if err := export.WriteCSV(savePath, events); err != nil {
		return "", fmt.Errorf("writing CSV: %w", err)
	}
	return fmt.Sprintf("Exported %d events to %s", len(events), savePath), nil
}

// GetVersion returns the application version string.
func (a *App) GetVersion() string {
	return Version
}

// appConfigDir returns the per-user config directory, creating it if
// needed. Falls back to the working directory when the platform dir is
// unavailable.
func appConfigDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	dir := filepath.Join(base, "SQLScope")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "."
	}
	return dir
}
