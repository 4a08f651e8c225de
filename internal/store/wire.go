package store

import (
	"encoding/json"
	"strings"

	"github.com/ktanaka/shucal/internal/schedule"
)

// scheduleJSON is the wire shape of one record as the store returns it.
// The store also joins in display fields (type_name_ja, color_code, ...);
// those are ignored here because the catalog owns display data.
type scheduleJSON struct {
	ID          flexID `json:"schedule_id,omitempty"`
	OwnerID     string `json:"line_uid,omitempty"`
	TypeCode    string `json:"type_code"`
	CompanyName string `json:"company_name"`
	Date        string `json:"schedule_date"`
	Time        string `json:"schedule_time,omitempty"`
	Location    string `json:"location,omitempty"`
	Memo        string `json:"memo,omitempty"`
}

// flexID tolerates the store sending ids as either numbers or strings.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}

type schedulesResponse struct {
	Schedules []scheduleJSON `json:"schedules"`
}

// createRequest is the POST /schedules body (spec wire format).
type createRequest struct {
	OwnerID     string `json:"line_uid"`
	TypeCode    string `json:"type_code"`
	CompanyName string `json:"company_name"`
	Date        string `json:"schedule_date"`
	Time        string `json:"schedule_time,omitempty"`
	Location    string `json:"location,omitempty"`
	Memo        string `json:"memo,omitempty"`
}

// toRecord converts a wire entry to the domain type. Returns false when the
// date cannot be parsed; callers skip such entries rather than failing the
// whole fetch.
func (s scheduleJSON) toRecord(owner string) (schedule.Record, bool) {
	date, err := schedule.ParseDateKey(s.Date)
	if err != nil {
		return schedule.Record{}, false
	}
	if s.OwnerID != "" {
		owner = s.OwnerID
	}
	return schedule.Record{
		ID:          string(s.ID),
		OwnerID:     owner,
		Type:        schedule.TypeCode(s.TypeCode),
		CompanyName: s.CompanyName,
		Date:        date,
		Time:        strings.TrimSpace(s.Time),
		Location:    s.Location,
		Memo:        s.Memo,
	}, true
}

// newCreateRequest maps a record to the POST body. Empty optional fields are
// omitted entirely; empty string and absent are equivalent to the store.
func newCreateRequest(rec schedule.Record) createRequest {
	return createRequest{
		OwnerID:     rec.OwnerID,
		TypeCode:    string(rec.Type),
		CompanyName: strings.TrimSpace(rec.CompanyName),
		Date:        schedule.DateKey(rec.Date),
		Time:        strings.TrimSpace(rec.Time),
		Location:    strings.TrimSpace(rec.Location),
		Memo:        strings.TrimSpace(rec.Memo),
	}
}
