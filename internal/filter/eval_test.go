package filter

import (
	"testing"

	"github.com/sqlscope/sqlscope/internal/model"
)

func sampleEvent() *model.QueryEvent {
	return &model.QueryEvent{
		ID:           "e1",
		SQLText:      "SELECT * FROM Orders WHERE id = 1",
		DatabaseName: "Sales",
		LoginName:    "app_user",
		ProgramName:  "WebServer",
		ElapsedTime:  150,
		CPUTime:      40,
		StartTime:    "2024-01-01 10:00:00.123",
	}
}

func TestMatchesTextEmptyNeedle(t *testing.T) {
	if !MatchesText(sampleEvent(), "") {
		t.Error("expected empty needle to match every event")
	}
}

func TestMatchesTextCaseInsensitive(t *testing.T) {
	e := sampleEvent()
	for _, needle := range []string{"orders", "ORDERS", "sales", "App_User", "webserver"} {
		if !MatchesText(e, needle) {
			t.Errorf("expected needle %q to match", needle)
		}
	}
	if MatchesText(e, "nowhere") {
		t.Error("expected unmatched needle to fail")
	}
}

func TestMatchesTextCurrentStatement(t *testing.T) {
	e := sampleEvent()
	e.CurrentStatement = "EXEC sp_find_customer"
	if !MatchesText(e, "sp_find") {
		t.Error("expected needle to match the current statement")
	}
}

func TestMatchesTextIgnoresHostName(t *testing.T) {
	e := sampleEvent()
	e.HostName = "db-host-42"
	if MatchesText(e, "db-host-42") {
		t.Error("host name is not part of the free-text search fields")
	}
}

func TestMatchesEmptySet(t *testing.T) {
	if !Matches(sampleEvent(), nil) {
		t.Error("expected empty filter set to accept every event")
	}
}

func TestStringOperators(t *testing.T) {
	e := sampleEvent()
	cases := []struct {
		op    Operator
		value string
		want  bool
	}{
		{Contains, "sales", true},
		{Contains, "north", false},
		{NotContains, "north", true},
		{Equals, "SALES", true},
		{Equals, "sale", false},
		{NotEquals, "sale", true},
		{StartsWith, "sa", true},
		{StartsWith, "les", false},
		{EndsWith, "LES", true},
		{EndsWith, "sa", false},
	}
	for _, tc := range cases {
		got := Matches(e, []Condition{{Column: model.ColDatabaseName, Operator: tc.op, Value: tc.value}})
		if got != tc.want {
			t.Errorf("database_name %s %q: expected %v, got %v", tc.op, tc.value, tc.want, got)
		}
	}
}

func TestNumberOperators(t *testing.T) {
	e := sampleEvent()
	cases := []struct {
		op    Operator
		value string
		want  bool
	}{
		{Equals, "150", true},
		{NotEquals, "150", false},
		{GreaterThan, "100", true},
		{GreaterThan, "150", false},
		{GreaterOrEq, "150", true},
		{LessThan, "200", true},
		{LessOrEq, "149", false},
	}
	for _, tc := range cases {
		got := Matches(e, []Condition{{Column: model.ColElapsedTime, Operator: tc.op, Value: tc.value}})
		if got != tc.want {
			t.Errorf("elapsed_time %s %q: expected %v, got %v", tc.op, tc.value, tc.want, got)
		}
	}
}

func TestNumberUnparseableValueFailsClosed(t *testing.T) {
	e := sampleEvent()
	for _, op := range []Operator{Equals, NotEquals, GreaterThan, LessOrEq} {
		if Matches(e, []Condition{{Column: model.ColCPUTime, Operator: op, Value: "banana"}}) {
			t.Errorf("expected unparseable number with %s to reject the event", op)
		}
	}
}

func TestAndSemantics(t *testing.T) {
	// Free-text "orders" with a structured elapsed_time > 100: an event
	// whose database matches the text but is too fast is still excluded
	// by the structured condition.
	slow := sampleEvent()
	fast := &model.QueryEvent{DatabaseName: "Orders", ElapsedTime: 50, SQLText: "SELECT 1"}
	cond := []Condition{{Column: model.ColElapsedTime, Operator: GreaterThan, Value: "100"}}

	if !(MatchesText(slow, "orders") && Matches(slow, cond)) {
		t.Error("expected the slow Orders event to pass both predicates")
	}
	if MatchesText(fast, "orders") && Matches(fast, cond) {
		t.Error("expected the fast event to fail the structured condition")
	}
}

func TestDateTimeComparison(t *testing.T) {
	e := sampleEvent() // start_time "2024-01-01 10:00:00.123", space-delimited
	cases := []struct {
		op    Operator
		value string
		want  bool
	}{
		{GreaterOrEq, "2024-01-01", true},
		{GreaterThan, "2024-01-01 09:59:59", true},
		{LessThan, "2024-01-01 10:00:01", true},
		{GreaterThan, "2024-06-01", false},
		{Equals, "2024-01-01 10:00:00.123", true},
	}
	for _, tc := range cases {
		got := Matches(e, []Condition{{Column: model.ColStartTime, Operator: tc.op, Value: tc.value}})
		if got != tc.want {
			t.Errorf("start_time %s %q: expected %v, got %v", tc.op, tc.value, tc.want, got)
		}
	}
}

func TestDateTimeUnparseableFailsClosed(t *testing.T) {
	e := sampleEvent()
	for _, value := range []string{"not a date", "yesterday", "13:00"} {
		if Matches(e, []Condition{{Column: model.ColStartTime, Operator: GreaterOrEq, Value: value}}) {
			t.Errorf("expected unparseable datetime %q to reject the event", value)
		}
	}
}

func TestDateTimeUnparseableEventSideFailsClosed(t *testing.T) {
	e := sampleEvent()
	e.StartTime = "???"
	if Matches(e, []Condition{{Column: model.ColStartTime, Operator: GreaterOrEq, Value: "2024-01-01"}}) {
		t.Error("expected unparseable event-side datetime to reject the event")
	}
}
