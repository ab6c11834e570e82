// Package engine owns the live event stream state: the bounded buffer,
// the filter state and derived projection, the selection, the scroll
// mode, and the last reported capture status. All mutations go through
// the Engine, which serializes them and pushes change notifications to
// the frontend through an emit function.
package engine

import (
	"sync"

	"github.com/sqlscope/sqlscope/internal/buffer"
	"github.com/sqlscope/sqlscope/internal/filter"
	"github.com/sqlscope/sqlscope/internal/model"
	"github.com/sqlscope/sqlscope/internal/view"
)

// Frontend notification names.
const (
	EventStreamChanged = "events:changed"
	EventStatusChanged = "capture:status"
	EventSelectionLost = "selection:cleared"
)

// EmitFunc pushes a named notification to the frontend. It matches the
// Wails runtime.EventsEmit signature so the app can bind it directly.
type EmitFunc func(name string, data ...interface{})

// Status is the capture source's health signal, stored verbatim.
// Error text comes from the collaborator and is not parsed.
type Status struct {
	Connected bool   `json:"connected"`
	Capturing bool   `json:"capturing"`
	Error     string `json:"error,omitempty"`
}

// StreamChange is the payload of an EventStreamChanged notification.
type StreamChange struct {
	VisibleCount int  `json:"visibleCount"`
	TotalCount   int  `json:"totalCount"`
	AutoScroll   bool `json:"autoScroll"`
}

// StatusChange is the payload of an EventStatusChanged notification.
// BecameConnected tells the frontend to drop the connection overlay;
// StoppedCapture is the implicit acknowledgement that capture ended
// while the connection stayed up.
type StatusChange struct {
	Status
	BecameConnected bool `json:"becameConnected"`
	StoppedCapture  bool `json:"stoppedCapture"`
}

// Engine is safe for concurrent use: capture deliveries and operator
// edits arrive on different goroutines and are serialized here, so the
// projection never observes a torn intermediate state.
type Engine struct {
	mu sync.Mutex

	buf  *buffer.Buffer
	proj *view.Projection

	selectedID string
	scroll     ScrollMode
	status     Status

	lastVisible int
	emit        EmitFunc
}

// New creates an engine with an empty buffer of the given capacity.
// emit may be nil (useful in tests); notifications are then dropped.
func New(capacity int, emit EmitFunc) *Engine {
	if emit == nil {
		emit = func(string, ...interface{}) {}
	}
	return &Engine{
		buf:    buffer.New(capacity),
		proj:   view.NewProjection(),
		scroll: ScrollSmart,
		emit:   emit,
	}
}

// HandleEvent consumes one pushed capture event.
func (en *Engine) HandleEvent(e model.QueryEvent) {
	en.mu.Lock()
	defer en.mu.Unlock()
	en.buf.Append(e)
	en.afterMutation()
}

// HandleEvents consumes a batch of pushed capture events in arrival
// order. The buffer evicts once, after the whole batch is in.
func (en *Engine) HandleEvents(events []model.QueryEvent) {
	if len(events) == 0 {
		return
	}
	en.mu.Lock()
	defer en.mu.Unlock()
	en.buf.AppendBatch(events)
	en.afterMutation()
}

// HandleStatus records a status signal from the capture source and
// forwards it to the frontend.
func (en *Engine) HandleStatus(s Status) {
	en.mu.Lock()
	prev := en.status
	en.status = s
	en.mu.Unlock()
	en.emit(EventStatusChanged, StatusChange{
		Status:          s,
		BecameConnected: s.Connected && !prev.Connected,
		StoppedCapture:  s.Connected && !s.Capturing && prev.Capturing,
	})
}

// Status returns the last reported capture status.
func (en *Engine) Status() Status {
	en.mu.Lock()
	defer en.mu.Unlock()
	return en.status
}

// Visible returns the current projection, oldest first.
func (en *Engine) Visible() []model.QueryEvent {
	en.mu.Lock()
	defer en.mu.Unlock()
	return en.proj.Visible(en.buf)
}

// TotalCount returns the number of events in the unfiltered buffer.
func (en *Engine) TotalCount() int {
	en.mu.Lock()
	defer en.mu.Unlock()
	return en.buf.Len()
}

// SetSearchText replaces the free-text filter.
func (en *Engine) SetSearchText(text string) {
	en.mu.Lock()
	defer en.mu.Unlock()
	en.proj.SetSearchText(text)
	en.afterMutation()
}

// SetConditions replaces the structured filter set.
func (en *Engine) SetConditions(conds []filter.Condition) {
	en.mu.Lock()
	defer en.mu.Unlock()
	en.proj.SetConditions(conds)
	en.afterMutation()
}

// Conditions returns the active normalized filter set.
func (en *Engine) Conditions() []filter.Condition {
	en.mu.Lock()
	defer en.mu.Unlock()
	return en.proj.Conditions()
}

// SetDedup toggles adjacent deduplication.
func (en *Engine) SetDedup(enabled bool) {
	en.mu.Lock()
	defer en.mu.Unlock()
	en.proj.SetDedup(enabled)
	en.afterMutation()
}

// Dedup reports whether deduplication is enabled.
func (en *Engine) Dedup() bool {
	en.mu.Lock()
	defer en.mu.Unlock()
	return en.proj.Dedup()
}

// Clear empties the buffer and drops the selection.
func (en *Engine) Clear() {
	en.mu.Lock()
	defer en.mu.Unlock()
	en.buf.Clear()
	en.selectedID = ""
	en.afterMutation()
}

// Select records the identifier of the event opened in the detail view.
func (en *Engine) Select(id string) {
	en.mu.Lock()
	defer en.mu.Unlock()
	en.selectedID = id
}

// Selected resolves the selection by identifier against the full
// unfiltered buffer. A selection made before filters changed stays
// meaningful until the event is evicted or the buffer is cleared.
func (en *Engine) Selected() (model.QueryEvent, bool) {
	en.mu.Lock()
	defer en.mu.Unlock()
	if en.selectedID == "" {
		return model.QueryEvent{}, false
	}
	return en.buf.Get(en.selectedID)
}

// CloseDetail drops the selection without touching the buffer or the
// filter state.
func (en *Engine) CloseDetail() {
	en.mu.Lock()
	defer en.mu.Unlock()
	en.selectedID = ""
}

// ScrollMode returns the active scroll mode.
func (en *Engine) ScrollMode() ScrollMode {
	en.mu.Lock()
	defer en.mu.Unlock()
	return en.scroll
}

// SetScrollMode sets the scroll mode directly (e.g. from a restored
// preference).
func (en *Engine) SetScrollMode(m ScrollMode) {
	en.mu.Lock()
	defer en.mu.Unlock()
	en.scroll = m
}

// CycleScrollMode advances the scroll mode rotation and returns the
// new mode.
func (en *Engine) CycleScrollMode() ScrollMode {
	en.mu.Lock()
	defer en.mu.Unlock()
	en.scroll = en.scroll.Cycle()
	return en.scroll
}

// afterMutation recomputes the projection, drops a selection that no
// longer resolves, and notifies the frontend. Auto-scroll is requested
// when the visible list grew and the scroll mode follows. Callers hold
// the lock.
func (en *Engine) afterMutation() {
	visible := en.proj.Visible(en.buf)

	if en.selectedID != "" {
		if _, ok := en.buf.Get(en.selectedID); !ok {
			en.selectedID = ""
			en.emit(EventSelectionLost)
		}
	}

	change := StreamChange{
		VisibleCount: len(visible),
		TotalCount:   en.buf.Len(),
		AutoScroll:   len(visible) > en.lastVisible && en.scroll.Follows(),
	}
	en.lastVisible = len(visible)
	en.emit(EventStreamChanged, change)
}
