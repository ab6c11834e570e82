// Package view derives the visible event list from the buffer and the
// active filter state.
package view

import (
	"github.com/sqlscope/sqlscope/internal/buffer"
	"github.com/sqlscope/sqlscope/internal/filter"
	"github.com/sqlscope/sqlscope/internal/model"
)

// Projection computes the ordered list of visible events: the buffer
// contents filtered by the free-text search and the structured
// condition set, then optionally deduplicated. The result is memoized
// and recomputed only when the buffer or the filter state changes.
type Projection struct {
	searchText string
	conditions []filter.Condition
	dedup      bool

	version uint64 // bumped on every filter-state change

	cached        []model.QueryEvent
	cachedVersion uint64
	cachedBufVer  uint64
	valid         bool
}

// NewProjection creates a projection with no search text, no
// conditions, and deduplication disabled.
func NewProjection() *Projection {
	return &Projection{}
}

// SetSearchText replaces the free-text search needle.
func (p *Projection) SetSearchText(text string) {
	if p.searchText == text {
		return
	}
	p.searchText = text
	p.version++
}

// SearchText returns the current free-text needle.
func (p *Projection) SearchText() string {
	return p.searchText
}

// SetConditions replaces the structured filter set. The conditions are
// normalized up front: values trimmed, empty-valued and unknown-column
// conditions dropped, illegal operators reset to the type default.
func (p *Projection) SetConditions(conds []filter.Condition) {
	p.conditions = filter.Normalize(conds)
	p.version++
}

// Conditions returns the normalized structured filter set.
func (p *Projection) Conditions() []filter.Condition {
	return p.conditions
}

// SetDedup enables or disables adjacent deduplication.
func (p *Projection) SetDedup(enabled bool) {
	if p.dedup == enabled {
		return
	}
	p.dedup = enabled
	p.version++
}

// Dedup returns whether adjacent deduplication is enabled.
func (p *Projection) Dedup() bool {
	return p.dedup
}

// Visible returns the projected event list for the given buffer,
// oldest first. Identical inputs always yield an identical list.
func (p *Projection) Visible(buf *buffer.Buffer) []model.QueryEvent {
	if p.valid && p.cachedVersion == p.version && p.cachedBufVer == buf.Version() {
		return p.cached
	}
	p.cached = Project(buf.Events(), p.searchText, p.conditions, p.dedup)
	p.cachedVersion = p.version
	p.cachedBufVer = buf.Version()
	p.valid = true
	return p.cached
}

// Project is the pure projection pipeline: filter by free text and
// conditions in buffer order, then drop events whose full SQL text
// equals the immediately preceding surviving event's when dedup is on.
// The dedup comparison runs on the post-filter sequence, so two equal
// statements separated only by filtered-out events still collapse.
func Project(events []model.QueryEvent, searchText string, conds []filter.Condition, dedup bool) []model.QueryEvent {
	out := make([]model.QueryEvent, 0, len(events))
	for i := range events {
		e := &events[i]
		if !filter.MatchesText(e, searchText) {
			continue
		}
		if !filter.Matches(e, conds) {
			continue
		}
		if dedup && len(out) > 0 && out[len(out)-1].SQLText == e.SQLText {
			continue
		}
		out = append(out, *e)
	}
	return out
}
