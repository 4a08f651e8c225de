package schedule

import (
	"time"
)

// TypeCode identifies the kind of job-hunting event a schedule represents.
// The set of known codes is closed (see catalog.go), but values arriving
// from the store are treated as untrusted strings.
type TypeCode string

const (
	TypeESSubmit       TypeCode = "ES_SUBMIT"
	TypeSPITest        TypeCode = "SPI_TEST"
	TypeInterview1     TypeCode = "INTERVIEW_1"
	TypeInterview2     TypeCode = "INTERVIEW_2"
	TypeInterview3     TypeCode = "INTERVIEW_3"
	TypeFinalInterview TypeCode = "FINAL_INTERVIEW"
	TypeExplanation    TypeCode = "EXPLANATION"
	TypeInternship     TypeCode = "INTERNSHIP"
	TypeOther          TypeCode = "OTHER"
)

// Record is a single persisted schedule entry. ID is server-assigned and
// empty on records that have not been created yet.
type Record struct {
	ID      string
	OwnerID string
	Type    TypeCode

	CompanyName string

	// Date is the calendar day of the event. Only the year/month/day
	// components are meaningful; the wall-clock part is always midnight
	// in the location the record was constructed in.
	Date time.Time

	// Time is the optional time of day as "HH:MM"; empty means untimed.
	Time string

	Location string
	Memo     string
}

// Timed reports whether the record carries a time of day.
func (r Record) Timed() bool {
	return r.Time != ""
}

// Locale selects which of the two fixed display label sets is used.
type Locale string

const (
	LocaleJA Locale = "ja"
	LocaleKO Locale = "ko"
)

// Cell is one slot of the 42-cell month grid. Derived and ephemeral:
// rebuilt whenever the month or the schedule list changes.
type Cell struct {
	Date    time.Time
	InMonth bool
	Records []Record
}
