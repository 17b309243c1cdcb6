package trading

import (
	"testing"
	"time"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		t.Fatalf("parse %s: %v", s, err)
	}
	return d
}

func TestNewCalendarSortsAndDedups(t *testing.T) {
	loc := time.FixedZone("CST", 8*3600)
	cal := NewCalendar([]time.Time{
		mustDate(t, "2024-01-04"),
		mustDate(t, "2024-01-02"),
		time.Date(2024, 1, 4, 15, 0, 0, 0, loc),
		{},
		mustDate(t, "2024-01-03"),
	})
	if cal.Len() != 3 {
		t.Fatalf("len=%d, want 3", cal.Len())
	}
	if got := cal.Date(0).Format(DateLayout); got != "2024-01-02" {
		t.Fatalf("first=%s", got)
	}
	if i, ok := cal.Index(mustDate(t, "2024-01-04")); !ok || i != 2 {
		t.Fatalf("index=%d ok=%v", i, ok)
	}
}

func TestNextOnOrAfter(t *testing.T) {
	cal := NewCalendar([]time.Time{mustDate(t, "2024-03-01"), mustDate(t, "2024-03-04"), mustDate(t, "2024-05-10")})

	if i, ok := cal.NextOnOrAfter(mustDate(t, "2024-03-01"), 31); !ok || i != 0 {
		t.Fatalf("exact match: i=%d ok=%v", i, ok)
	}
	if i, ok := cal.NextOnOrAfter(mustDate(t, "2024-03-02"), 31); !ok || i != 1 {
		t.Fatalf("weekend: i=%d ok=%v", i, ok)
	}
	if _, ok := cal.NextOnOrAfter(mustDate(t, "2024-04-01"), 31); ok {
		t.Fatalf("gap longer than search window should not match")
	}
	if _, ok := cal.NextOnOrAfter(mustDate(t, "2024-03-02"), 1); ok {
		t.Fatalf("search window of 1 day should not reach 2024-03-04")
	}
}

func TestLastOnOrBefore(t *testing.T) {
	cal := NewCalendar([]time.Time{mustDate(t, "2024-03-01"), mustDate(t, "2024-03-04")})
	if i, ok := cal.LastOnOrBefore(mustDate(t, "2024-03-03")); !ok || i != 0 {
		t.Fatalf("i=%d ok=%v", i, ok)
	}
	if i, ok := cal.LastOnOrBefore(mustDate(t, "2024-03-04")); !ok || i != 1 {
		t.Fatalf("i=%d ok=%v", i, ok)
	}
	if _, ok := cal.LastOnOrBefore(mustDate(t, "2024-02-28")); ok {
		t.Fatalf("no date before the calendar start")
	}
}

func TestBeyond(t *testing.T) {
	cal := NewCalendar([]time.Time{mustDate(t, "2024-03-01"), mustDate(t, "2024-03-04")})
	if cal.Beyond(mustDate(t, "2024-03-04")) {
		t.Fatalf("last date is not beyond")
	}
	if !cal.Beyond(mustDate(t, "2024-03-05")) {
		t.Fatalf("2024-03-05 should be beyond")
	}
	if !NewCalendar(nil).Beyond(mustDate(t, "2000-01-01")) {
		t.Fatalf("empty calendar: everything is beyond")
	}
}

func TestAddMonths(t *testing.T) {
	cases := map[string]string{
		"2024-01-15": "2024-02-15",
		"2024-01-31": "2024-03-02",
		"2023-12-20": "2024-01-20",
	}
	for in, want := range cases {
		if got := AddMonths(mustDate(t, in), 1).Format(DateLayout); got != want {
			t.Fatalf("AddMonths(%s)=%s, want %s", in, got, want)
		}
	}
}

func TestDaysBetween(t *testing.T) {
	if n := DaysBetween(mustDate(t, "2024-01-01"), mustDate(t, "2024-12-31")); n != 365 {
		t.Fatalf("days=%d, want 365", n)
	}
}
