package store

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ktanaka/shucal/internal/schedule"
)

func TestHTTPStoreSchedules(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/schedules/user123" {
			t.Errorf("Wrong path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("month"); got != "2024-04" {
			t.Errorf("Wrong month param: %s", got)
		}
		w.Header().Set("Content-Type", "application/json")
		// The store sends numeric ids and joined display fields; both must
		// be tolerated.
		w.Write([]byte(`{"schedules": [
			{"schedule_id": 7, "type_code": "INTERVIEW_1", "company_name": "トヨタ自動車",
			 "schedule_date": "2024-04-15", "schedule_time": "14:00",
			 "type_name_ja": "一次面接", "color_code": "#45B7D1"},
			{"schedule_id": "8", "type_code": "ES_SUBMIT", "company_name": "ソニー",
			 "schedule_date": "2024-04-20", "location": "東京本社", "memo": "履歴書持参"},
			{"schedule_id": 9, "type_code": "OTHER", "company_name": "bad",
			 "schedule_date": "not-a-date"}
		]}`))
	}))
	defer srv.Close()

	s := NewHTTPStore(srv.URL, nil)
	records, err := s.Schedules(context.Background(), "user123", "2024-04")
	if err != nil {
		t.Fatalf("Schedules failed: %v", err)
	}

	// The unparseable entry is skipped, not fatal.
	if len(records) != 2 {
		t.Fatalf("Record count: got %d, want 2", len(records))
	}

	first := records[0]
	if first.ID != "7" {
		t.Errorf("Numeric id not normalized: %q", first.ID)
	}
	if first.Type != schedule.TypeInterview1 || first.Time != "14:00" {
		t.Errorf("First record mismatch: %+v", first)
	}
	if schedule.DateKey(first.Date) != "2024-04-15" {
		t.Errorf("Date mismatch: %s", schedule.DateKey(first.Date))
	}

	second := records[1]
	if second.Location != "東京本社" || second.Memo != "履歴書持参" {
		t.Errorf("Optional fields mismatch: %+v", second)
	}
	if second.Timed() {
		t.Error("Untimed record reported as timed")
	}
}

func TestHTTPStoreSchedulesServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := NewHTTPStore(srv.URL, nil)
	_, err := s.Schedules(context.Background(), "user123", "2024-04")

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("Expected FetchError, got %T: %v", err, err)
	}
	if fetchErr.Month != "2024-04" {
		t.Errorf("FetchError month: %s", fetchErr.Month)
	}
}

func TestHTTPStoreCreate(t *testing.T) {
	var got createRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/schedules" {
			t.Errorf("Wrong request: %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("Decoding body: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{"success": true, "schedule_id": 42})
	}))
	defer srv.Close()

	date, _ := schedule.ParseDateKey("2024-04-15")
	rec := schedule.Record{
		OwnerID:     "user123",
		Type:        schedule.TypeESSubmit,
		CompanyName: "  トヨタ自動車  ",
		Date:        date,
		Time:        "09:30",
		Memo:        "",
	}

	s := NewHTTPStore(srv.URL, nil)
	if err := s.Create(context.Background(), rec); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if got.OwnerID != "user123" || got.TypeCode != "ES_SUBMIT" {
		t.Errorf("Identity fields mismatch: %+v", got)
	}
	if got.CompanyName != "トヨタ自動車" {
		t.Errorf("Company name not trimmed: %q", got.CompanyName)
	}
	if got.Date != "2024-04-15" || got.Time != "09:30" {
		t.Errorf("Date/time mismatch: %s %s", got.Date, got.Time)
	}
	if got.Memo != "" || got.Location != "" {
		t.Errorf("Empty optionals should stay empty: %+v", got)
	}
}

func TestHTTPStoreCreateRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadRequest)
	}))
	defer srv.Close()

	date, _ := schedule.ParseDateKey("2024-04-15")
	s := NewHTTPStore(srv.URL, nil)
	err := s.Create(context.Background(), schedule.Record{
		OwnerID: "u", Type: schedule.TypeOther, CompanyName: "x", Date: date,
	})

	var submitErr *SubmitError
	if !errors.As(err, &submitErr) {
		t.Fatalf("Expected SubmitError, got %T: %v", err, err)
	}
}
