package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/ktanaka/shucal/internal/schedule"
)

// ModalMode enumerates the day-detail modal's states.
type ModalMode int

const (
	ModalClosed ModalMode = iota
	ModalList
	ModalCreate
)

// Modal is the day-detail modal state machine:
//
//	Closed -> ListView(date) -> CreateForm(date, draft) -> ListView(date)
//
// Transitions are pure; illegal ones are no-ops, so a create form without a
// selected date cannot be reached. Only unsaved draft data is ever
// discarded; persisted schedules are untouched by any transition.
type Modal struct {
	Mode  ModalMode
	Date  time.Time
	Draft Draft
}

// OpenDay opens the list view for a date, from any state.
func (m Modal) OpenDay(date time.Time) Modal {
	return Modal{Mode: ModalList, Date: date}
}

// RequestCreate moves from the list view to a fresh create form.
func (m Modal) RequestCreate() Modal {
	if m.Mode != ModalList {
		return m
	}
	return Modal{Mode: ModalCreate, Date: m.Date, Draft: DefaultDraft()}
}

// Cancel returns from the create form to the list view, discarding the
// draft.
func (m Modal) Cancel() Modal {
	if m.Mode != ModalCreate {
		return m
	}
	return Modal{Mode: ModalList, Date: m.Date}
}

// Close dismisses the modal from any state, discarding any draft.
func (m Modal) Close() Modal {
	return Modal{}
}

// EditDraft applies a field edit to the draft. Outside the create form it
// is a no-op.
func (m Modal) EditDraft(edit func(Draft) Draft) Modal {
	if m.Mode != ModalCreate {
		return m
	}
	m.Draft = edit(m.Draft)
	return m
}

// Record validates the draft and builds the record to submit. A
// ValidationError means no network call may be made.
func (m Modal) Record(owner string) (schedule.Record, error) {
	if m.Mode != ModalCreate {
		return schedule.Record{}, &ValidationError{Field: "mode"}
	}
	if err := m.Draft.Validate(); err != nil {
		return schedule.Record{}, err
	}
	return schedule.Record{
		OwnerID:     owner,
		Type:        m.Draft.TypeCode,
		CompanyName: strings.TrimSpace(m.Draft.CompanyName),
		Date:        m.Date,
		Time:        m.Draft.Time(),
		Location:    strings.TrimSpace(m.Draft.Location),
		Memo:        strings.TrimSpace(m.Draft.Memo),
	}, nil
}

// Draft holds in-progress, unsaved field values for a new schedule.
// Hour and minute are edited independently and composed into "HH:MM".
type Draft struct {
	TypeCode    schedule.TypeCode
	CompanyName string
	Hour        string // "" or "00".."23"
	Minute      string // "" or "00","05",...,"55"
	Location    string
	Memo        string
}

// DefaultDraft is the create form's initial state: the first catalog entry
// selected, everything else empty.
func DefaultDraft() Draft {
	return Draft{TypeCode: schedule.Types()[0].Code}
}

// Time composes the hour and minute fields into "HH:MM". No hour means no
// time at all; a set hour with no minute means on the hour.
func (d Draft) Time() string {
	if d.Hour == "" {
		return ""
	}
	minute := d.Minute
	if minute == "" {
		minute = "00"
	}
	return d.Hour + ":" + minute
}

// WithHour sets the hour field. Clearing the hour clears the whole time
// value.
func (d Draft) WithHour(hour string) Draft {
	d.Hour = hour
	if hour == "" {
		d.Minute = ""
	}
	return d
}

// WithMinute sets the minute field. Picking a minute while the hour is
// unset defaults the hour to "09".
func (d Draft) WithMinute(minute string) Draft {
	d.Minute = minute
	if minute != "" && d.Hour == "" {
		d.Hour = "09"
	}
	return d
}

// Validate checks the locally required fields. It mirrors what the form
// enforces: type and company name must be present before anything goes to
// the store.
func (d Draft) Validate() error {
	if d.TypeCode == "" {
		return &ValidationError{Field: "type_code"}
	}
	if strings.TrimSpace(d.CompanyName) == "" {
		return &ValidationError{Field: "company_name"}
	}
	return nil
}

// ValidationError reports a missing required form field. It blocks
// submission locally; no network call is made.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("required field %s is empty", e.Field)
}

// HourChoices are the selectable hour values, in cycle order starting from
// unset.
func HourChoices() []string {
	choices := []string{""}
	for h := 0; h < 24; h++ {
		choices = append(choices, fmt.Sprintf("%02d", h))
	}
	return choices
}

// MinuteChoices are the selectable minute values in 5-minute increments,
// starting from unset.
func MinuteChoices() []string {
	choices := []string{""}
	for m := 0; m < 60; m += 5 {
		choices = append(choices, fmt.Sprintf("%02d", m))
	}
	return choices
}
