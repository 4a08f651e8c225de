package ui

import (
	"errors"
	"testing"
	"time"

	"github.com/ktanaka/shucal/internal/schedule"
)

func testDate(t *testing.T) time.Time {
	t.Helper()
	d, err := schedule.ParseDateKey("2024-04-15")
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestModalLifecycle(t *testing.T) {
	date := testDate(t)
	var m Modal

	if m.Mode != ModalClosed {
		t.Fatal("Initial state should be closed")
	}

	m = m.OpenDay(date)
	if m.Mode != ModalList || !m.Date.Equal(date) {
		t.Fatalf("OpenDay: %+v", m)
	}

	m = m.RequestCreate()
	if m.Mode != ModalCreate || !m.Date.Equal(date) {
		t.Fatalf("RequestCreate: %+v", m)
	}
	if m.Draft.TypeCode != schedule.TypeESSubmit {
		t.Errorf("Default draft type: got %s, want %s", m.Draft.TypeCode, schedule.TypeESSubmit)
	}
	if m.Draft.CompanyName != "" || m.Draft.Time() != "" {
		t.Errorf("Default draft not empty: %+v", m.Draft)
	}

	// Cancel returns to the exact prior list view with no residual draft.
	m = m.EditDraft(func(d Draft) Draft {
		d.CompanyName = "トヨタ自動車"
		return d
	})
	m = m.Cancel()
	if m.Mode != ModalList || !m.Date.Equal(date) {
		t.Fatalf("Cancel: %+v", m)
	}
	if m.Draft != (Draft{}) {
		t.Errorf("Draft survived cancel: %+v", m.Draft)
	}

	m = m.Close()
	if m != (Modal{}) {
		t.Errorf("Close left residual state: %+v", m)
	}
}

func TestModalIllegalTransitionsAreNoOps(t *testing.T) {
	date := testDate(t)

	// RequestCreate from closed does nothing.
	var m Modal
	if got := m.RequestCreate(); got.Mode != ModalClosed {
		t.Errorf("RequestCreate from closed: %+v", got)
	}

	// Cancel from list does nothing.
	m = m.OpenDay(date)
	if got := m.Cancel(); got.Mode != ModalList {
		t.Errorf("Cancel from list: %+v", got)
	}

	// Draft edits outside the form do nothing.
	got := m.EditDraft(func(d Draft) Draft {
		d.CompanyName = "x"
		return d
	})
	if got.Draft.CompanyName != "" {
		t.Error("EditDraft leaked outside create form")
	}
}

func TestModalCloseFromAnyState(t *testing.T) {
	date := testDate(t)
	states := []Modal{
		{},
		Modal{}.OpenDay(date),
		Modal{}.OpenDay(date).RequestCreate(),
	}
	for _, s := range states {
		if got := s.Close(); got != (Modal{}) {
			t.Errorf("Close from %v left %+v", s.Mode, got)
		}
	}
}

func TestDraftTimeComposition(t *testing.T) {
	tests := []struct {
		name   string
		edit   func(Draft) Draft
		want   string
		hour   string
		minute string
	}{
		{
			name: "no time at all",
			edit: func(d Draft) Draft { return d },
			want: "",
		},
		{
			name: "hour only is on the hour",
			edit: func(d Draft) Draft { return d.WithHour("14") },
			want: "14:00", hour: "14",
		},
		{
			name: "hour and minute",
			edit: func(d Draft) Draft { return d.WithHour("14").WithMinute("30") },
			want: "14:30", hour: "14", minute: "30",
		},
		{
			name: "minute with unset hour defaults hour to 09",
			edit: func(d Draft) Draft { return d.WithMinute("30") },
			want: "09:30", hour: "09", minute: "30",
		},
		{
			name: "clearing hour clears the whole time",
			edit: func(d Draft) Draft { return d.WithHour("14").WithMinute("30").WithHour("") },
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := tt.edit(DefaultDraft())
			if got := d.Time(); got != tt.want {
				t.Errorf("Time() = %q, want %q", got, tt.want)
			}
			if d.Hour != tt.hour || d.Minute != tt.minute {
				t.Errorf("Fields = (%q, %q), want (%q, %q)", d.Hour, d.Minute, tt.hour, tt.minute)
			}
		})
	}
}

func TestRecordValidation(t *testing.T) {
	date := testDate(t)

	// Empty company name never reaches the store.
	m := Modal{}.OpenDay(date).RequestCreate()
	_, err := m.Record("user123")
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
	if verr.Field != "company_name" {
		t.Errorf("Wrong field: %s", verr.Field)
	}

	// Whitespace-only company name is still empty.
	m = m.EditDraft(func(d Draft) Draft {
		d.CompanyName = "   "
		return d
	})
	if _, err := m.Record("user123"); !errors.As(err, &verr) {
		t.Fatalf("Whitespace company accepted: %v", err)
	}

	m = m.EditDraft(func(d Draft) Draft {
		d.CompanyName = " トヨタ自動車 "
		return d.WithHour("14")
	})
	rec, err := m.Record("user123")
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if rec.CompanyName != "トヨタ自動車" {
		t.Errorf("Company not trimmed: %q", rec.CompanyName)
	}
	if rec.OwnerID != "user123" || rec.Time != "14:00" {
		t.Errorf("Record mismatch: %+v", rec)
	}
	if schedule.DateKey(rec.Date) != "2024-04-15" {
		t.Errorf("Record date: %s", schedule.DateKey(rec.Date))
	}
}

func TestChoiceLists(t *testing.T) {
	hours := HourChoices()
	if len(hours) != 25 || hours[0] != "" || hours[1] != "00" || hours[24] != "23" {
		t.Errorf("Hour choices wrong: %v", hours)
	}
	minutes := MinuteChoices()
	if len(minutes) != 13 || minutes[0] != "" || minutes[1] != "00" || minutes[12] != "55" {
		t.Errorf("Minute choices wrong: %v", minutes)
	}
}
