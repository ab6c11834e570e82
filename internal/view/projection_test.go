package view

import (
	"reflect"
	"testing"

	"github.com/sqlscope/sqlscope/internal/buffer"
	"github.com/sqlscope/sqlscope/internal/filter"
	"github.com/sqlscope/sqlscope/internal/model"
)

func events(sqls ...string) []model.QueryEvent {
	out := make([]model.QueryEvent, len(sqls))
	for i, s := range sqls {
		out[i] = model.QueryEvent{ID: string(rune('a' + i)), SQLText: s}
	}
	return out
}

func sqlsOf(evs []model.QueryEvent) []string {
	out := make([]string, len(evs))
	for i := range evs {
		out[i] = evs[i].SQLText
	}
	return out
}

func TestProjectNoFilters(t *testing.T) {
	in := events("SELECT 1", "SELECT 2", "SELECT 3")
	got := Project(in, "", nil, false)
	if !reflect.DeepEqual(sqlsOf(got), []string{"SELECT 1", "SELECT 2", "SELECT 3"}) {
		t.Errorf("expected identity projection, got %v", sqlsOf(got))
	}
}

func TestProjectDedupAdjacent(t *testing.T) {
	in := events("SELECT 1", "SELECT 1", "SELECT 2")
	got := Project(in, "", nil, true)
	want := []string{"SELECT 1", "SELECT 2"}
	if !reflect.DeepEqual(sqlsOf(got), want) {
		t.Errorf("expected %v, got %v", want, sqlsOf(got))
	}
}

func TestProjectDedupNonAdjacentKept(t *testing.T) {
	in := events("SELECT 1", "SELECT 2", "SELECT 1")
	got := Project(in, "", nil, true)
	if len(got) != 3 {
		t.Errorf("expected non-adjacent duplicates to be kept, got %v", sqlsOf(got))
	}
}

func TestProjectDedupOnPostFilterSequence(t *testing.T) {
	// The middle event is filtered out by the search text, making the
	// two "SELECT 1" events adjacent in the surviving sequence.
	in := []model.QueryEvent{
		{ID: "a", SQLText: "SELECT 1", DatabaseName: "Sales"},
		{ID: "b", SQLText: "UPDATE t", DatabaseName: "Other"},
		{ID: "c", SQLText: "SELECT 1", DatabaseName: "Sales"},
	}
	got := Project(in, "sales", nil, true)
	if len(got) != 1 || got[0].ID != "a" {
		t.Errorf("expected dedup over the filtered sequence, got %v", sqlsOf(got))
	}
}

func TestProjectDedupComparesFullSQLText(t *testing.T) {
	// Equal current statements with different batch texts are distinct.
	in := []model.QueryEvent{
		{ID: "a", SQLText: "batch one", CurrentStatement: "SELECT 1"},
		{ID: "b", SQLText: "batch two", CurrentStatement: "SELECT 1"},
	}
	got := Project(in, "", nil, true)
	if len(got) != 2 {
		t.Errorf("expected dedup to compare sql_text, not the current statement; got %d events", len(got))
	}
}

func TestProjectDedupIdempotent(t *testing.T) {
	in := events("SELECT 1", "SELECT 1", "SELECT 2", "SELECT 2", "SELECT 1")
	once := Project(in, "", nil, true)
	twice := Project(once, "", nil, true)
	if !reflect.DeepEqual(sqlsOf(once), sqlsOf(twice)) {
		t.Errorf("expected dedup to be idempotent: %v vs %v", sqlsOf(once), sqlsOf(twice))
	}
}

func TestProjectCombinedFilters(t *testing.T) {
	in := []model.QueryEvent{
		{ID: "a", DatabaseName: "Orders", ElapsedTime: 50, SQLText: "SELECT 1"},
		{ID: "b", DatabaseName: "Other", ElapsedTime: 150, SQLText: "SELECT * FROM Orders"},
	}
	conds := []filter.Condition{
		{Column: model.ColElapsedTime, Operator: filter.GreaterThan, Value: "100"},
	}
	got := Project(in, "orders", conds, false)
	if len(got) != 1 || got[0].ID != "b" {
		t.Errorf("expected only the slow Orders query, got %v", sqlsOf(got))
	}
}

func TestProjectionMemoization(t *testing.T) {
	buf := buffer.New(10)
	buf.AppendBatch(events("SELECT 1", "SELECT 2"))

	p := NewProjection()
	first := p.Visible(buf)
	second := p.Visible(buf)
	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("expected 2 visible events, got %d then %d", len(first), len(second))
	}
	// Unchanged inputs return the memoized slice, not a fresh copy.
	if &first[0] != &second[0] {
		t.Error("expected memoized result for unchanged inputs")
	}

	buf.Append(model.QueryEvent{ID: "z", SQLText: "SELECT 3"})
	third := p.Visible(buf)
	if len(third) != 3 {
		t.Errorf("expected recompute after buffer mutation, got %d events", len(third))
	}
}

func TestProjectionFilterStateInvalidates(t *testing.T) {
	buf := buffer.New(10)
	buf.AppendBatch(events("SELECT 1", "SELECT 1"))

	p := NewProjection()
	if got := p.Visible(buf); len(got) != 2 {
		t.Fatalf("expected 2 events before dedup, got %d", len(got))
	}
	p.SetDedup(true)
	if got := p.Visible(buf); len(got) != 1 {
		t.Errorf("expected 1 event after enabling dedup, got %d", len(got))
	}
	p.SetSearchText("update")
	if got := p.Visible(buf); len(got) != 0 {
		t.Errorf("expected no events matching 'update', got %d", len(got))
	}
}

func TestProjectionNormalizesConditions(t *testing.T) {
	p := NewProjection()
	p.SetConditions([]filter.Condition{
		{Column: model.ColDatabaseName, Operator: filter.Contains, Value: "   "},
		{Column: model.ColElapsedTime, Operator: filter.StartsWith, Value: " 10 "},
	})
	conds := p.Conditions()
	if len(conds) != 1 {
		t.Fatalf("expected the empty-valued condition to be dropped, got %d", len(conds))
	}
	if conds[0].Value != "10" || conds[0].Operator != filter.Equals {
		t.Errorf("expected trimmed value and reset operator, got %+v", conds[0])
	}
}

func TestProjectionDeterministic(t *testing.T) {
	in := events("SELECT 1", "SELECT 2", "SELECT 1", "SELECT 2")
	a := Project(in, "", nil, true)
	b := Project(in, "", nil, true)
	if !reflect.DeepEqual(a, b) {
		t.Error("expected identical inputs to yield identical projections")
	}
}
