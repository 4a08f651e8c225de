package export

import (
	"fmt"
	"io"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/ktanaka/shucal/internal/schedule"
)

const productID = "-//shucal//calendar//JA"

// defaultDuration is used for timed events; the store carries no end time.
const defaultDuration = time.Hour

// WriteICS serializes the given schedules as an iCalendar stream. Untimed
// schedules become all-day events, timed ones hour-long blocks starting at
// their "HH:MM".
func WriteICS(w io.Writer, records []schedule.Record, loc schedule.Locale) error {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)

	for _, rec := range records {
		id := rec.ID
		if id == "" {
			id = fmt.Sprintf("draft-%s-%s", schedule.DateKey(rec.Date), rec.CompanyName)
		}
		event := cal.AddEvent(id + "@shucal")
		event.SetDtStampTime(time.Now())
		event.SetSummary(summary(rec, loc))

		if rec.Timed() {
			start, err := startTime(rec)
			if err != nil {
				return fmt.Errorf("schedule %s: %w", id, err)
			}
			event.SetStartAt(start)
			event.SetEndAt(start.Add(defaultDuration))
		} else {
			day := time.Date(rec.Date.Year(), rec.Date.Month(), rec.Date.Day(), 0, 0, 0, 0, time.Local)
			event.SetAllDayStartAt(day)
			event.SetAllDayEndAt(day.AddDate(0, 0, 1))
		}

		if rec.Location != "" {
			event.SetLocation(rec.Location)
		}
		if rec.Memo != "" {
			event.SetDescription(rec.Memo)
		}
	}

	return cal.SerializeTo(w)
}

func summary(rec schedule.Record, loc schedule.Locale) string {
	info, known := schedule.TypeByCode(rec.Type)
	name := info.Name(loc)
	if !known || name == "" {
		name = string(rec.Type)
	}
	return fmt.Sprintf("%s: %s", name, rec.CompanyName)
}

func startTime(rec schedule.Record) (time.Time, error) {
	clock, err := time.Parse("15:04", rec.Time)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad time %q: %w", rec.Time, err)
	}
	return time.Date(rec.Date.Year(), rec.Date.Month(), rec.Date.Day(),
		clock.Hour(), clock.Minute(), 0, 0, time.Local), nil
}
