package ui

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ktanaka/shucal/internal/config"
	"github.com/ktanaka/shucal/internal/schedule"
	"github.com/ktanaka/shucal/internal/store"
)

type stubStore struct {
	mu       sync.Mutex
	fetched  []string
	records  map[string][]schedule.Record
	fetchErr error

	created   []schedule.Record
	createErr error
}

func (s *stubStore) Schedules(_ context.Context, _ string, month string) ([]schedule.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetched = append(s.fetched, month)
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	return s.records[month], nil
}

func (s *stubStore) Create(_ context.Context, rec schedule.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	s.created = append(s.created, rec)
	return nil
}

func (s *stubStore) Watch() (<-chan store.ChangeEvent, error) { return nil, nil }
func (s *stubStore) StopWatching() error                      { return nil }

func newTestModel(st store.Store) *Model {
	cfg := config.DefaultConfig()
	cfg.OwnerID = "user123"
	m := NewModel(cfg, st, nil)
	m.year, m.month = 2024, time.April
	m.selected = time.Date(2024, time.April, 15, 0, 0, 0, 0, time.Local)
	return m
}

func keyPress(t *testing.T, m *Model, key string) tea.Cmd {
	t.Helper()
	var msg tea.KeyMsg
	switch key {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEscape}
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	_, cmd := m.Update(msg)
	return cmd
}

func TestMonthNavigationFetchesNewMonth(t *testing.T) {
	st := &stubStore{}
	m := newTestModel(st)

	cmd := keyPress(t, m, ">")
	if m.year != 2024 || m.month != time.May {
		t.Fatalf("Next month: got %d-%d", m.year, m.month)
	}
	if cmd == nil {
		t.Fatal("Month change issued no fetch")
	}

	raw := cmd()
	msg, ok := raw.(schedulesLoadedMsg)
	if !ok {
		t.Fatalf("Fetch produced %T", raw)
	}
	if msg.month != "2024-05" {
		t.Errorf("Fetch tagged with %s, want 2024-05", msg.month)
	}
}

func TestYearRollover(t *testing.T) {
	st := &stubStore{}
	m := newTestModel(st)
	m.year, m.month = 2024, time.December
	m.selected = time.Date(2024, time.December, 15, 0, 0, 0, 0, time.Local)

	keyPress(t, m, ">")
	if m.year != 2025 || m.month != time.January {
		t.Errorf("December forward: got %d-%d", m.year, m.month)
	}

	keyPress(t, m, "<")
	if m.year != 2024 || m.month != time.December {
		t.Errorf("January back: got %d-%d", m.year, m.month)
	}
}

func TestCursorCrossesMonthBoundary(t *testing.T) {
	st := &stubStore{}
	m := newTestModel(st)
	m.selected = time.Date(2024, time.April, 30, 0, 0, 0, 0, time.Local)

	cmd := keyPress(t, m, "l")
	if m.month != time.May || m.selected.Day() != 1 {
		t.Errorf("Cursor past month end: %d-%d day %d", m.year, m.month, m.selected.Day())
	}
	if cmd == nil {
		t.Error("Boundary crossing issued no fetch")
	}
}

func TestStaleReplyDiscarded(t *testing.T) {
	st := &stubStore{}
	m := newTestModel(st)

	current := schedule.Record{ID: "1", CompanyName: "現企業", Date: time.Date(2024, time.April, 10, 0, 0, 0, 0, time.Local)}
	m.index = schedule.BuildIndex([]schedule.Record{current})

	// A reply for March arrives after we already moved to April.
	stale := schedule.Record{ID: "9", CompanyName: "旧企業", Date: time.Date(2024, time.March, 5, 0, 0, 0, 0, time.Local)}
	m.Update(schedulesLoadedMsg{month: "2024-03", records: []schedule.Record{stale}})

	if got := m.index.ForKey("2024-04-10"); len(got) != 1 || got[0].ID != "1" {
		t.Errorf("Stale reply replaced the index: %+v", m.index)
	}
	if got := m.index.ForKey("2024-03-05"); len(got) != 0 {
		t.Error("Stale records leaked into the index")
	}
}

func TestFetchFailureKeepsLastKnownGood(t *testing.T) {
	st := &stubStore{}
	m := newTestModel(st)

	rec := schedule.Record{ID: "1", CompanyName: "トヨタ", Date: time.Date(2024, time.April, 10, 0, 0, 0, 0, time.Local)}
	m.index = schedule.BuildIndex([]schedule.Record{rec})

	m.Update(schedulesLoadedMsg{month: "2024-04", err: errors.New("connection refused")})

	if got := m.index.ForKey("2024-04-10"); len(got) != 1 {
		t.Error("Failed fetch wiped the last-known-good schedules")
	}
	if m.message == "" {
		t.Error("Failed fetch showed no message")
	}
}

func TestCellsReflectLoadedMonth(t *testing.T) {
	st := &stubStore{}
	m := newTestModel(st)

	rec := schedule.Record{ID: "1", CompanyName: "ソニー", Date: time.Date(2024, time.April, 3, 0, 0, 0, 0, time.Local)}
	m.Update(schedulesLoadedMsg{month: "2024-04", records: []schedule.Record{rec}})

	cells := m.Cells()
	if len(cells) != schedule.GridSize {
		t.Fatalf("Grid size: %d", len(cells))
	}
	found := false
	for _, c := range cells {
		if schedule.DateKey(c.Date) == "2024-04-03" {
			found = len(c.Records) == 1 && c.Records[0].ID == "1"
		}
	}
	if !found {
		t.Error("Loaded record not placed in its cell")
	}
}

func TestSubmitValidationNeverReachesStore(t *testing.T) {
	st := &stubStore{}
	m := newTestModel(st)

	keyPress(t, m, "enter") // open list
	keyPress(t, m, "n")     // open form
	if m.modal.Mode != ModalCreate {
		t.Fatalf("Form not open: %v", m.modal.Mode)
	}

	cmd := keyPress(t, m, "enter") // submit with empty company name
	if cmd != nil {
		cmd()
	}

	if len(st.created) != 0 {
		t.Error("Invalid draft reached the store")
	}
	if m.modal.Mode != ModalCreate {
		t.Error("Form closed despite validation failure")
	}
	if m.message == "" {
		t.Error("Validation failure showed no message")
	}
}

func TestSubmitSuccessClosesModalAndRefetches(t *testing.T) {
	st := &stubStore{}
	m := newTestModel(st)

	keyPress(t, m, "enter")
	keyPress(t, m, "n")
	keyPress(t, m, "tab") // focus moves from type to company name
	keyPress(t, m, "楽天")

	cmd := keyPress(t, m, "enter")
	if cmd == nil {
		t.Fatal("Submit issued no command")
	}
	msg := cmd()
	if len(st.created) != 1 || st.created[0].CompanyName != "楽天" {
		t.Fatalf("Create not sent: %+v", st.created)
	}
	if st.created[0].OwnerID != "user123" {
		t.Errorf("Wrong owner: %s", st.created[0].OwnerID)
	}

	m.Update(msg)
	if m.modal.Mode != ModalClosed {
		t.Error("Modal still open after successful submit")
	}
}

func TestSubmitFailureKeepsDraft(t *testing.T) {
	st := &stubStore{createErr: errors.New("boom")}
	m := newTestModel(st)

	keyPress(t, m, "enter")
	keyPress(t, m, "n")
	keyPress(t, m, "tab")
	keyPress(t, m, "楽天")

	cmd := keyPress(t, m, "enter")
	m.Update(cmd())

	if m.modal.Mode != ModalCreate {
		t.Error("Modal closed despite submit failure")
	}
	if m.modal.Draft.CompanyName != "楽天" {
		t.Errorf("Draft lost on submit failure: %+v", m.modal.Draft)
	}
}

func TestTransientMessageClears(t *testing.T) {
	st := &stubStore{}
	m := newTestModel(st)

	m.showMessage("hello")
	seq := m.msgSeq

	// An old timer firing after a newer message must not clear it.
	m.showMessage("newer")
	m.Update(clearMessageMsg{seq: seq})
	if m.message != "newer" {
		t.Errorf("Old timer cleared newer message: %q", m.message)
	}

	m.Update(clearMessageMsg{seq: m.msgSeq})
	if m.message != "" {
		t.Errorf("Message not cleared: %q", m.message)
	}
}
