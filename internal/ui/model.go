package ui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/ktanaka/shucal/internal/config"
	"github.com/ktanaka/shucal/internal/schedule"
	"github.com/ktanaka/shucal/internal/store"
)

// formField identifies the focused create-form input.
type formField int

const (
	fieldType formField = iota
	fieldCompany
	fieldHour
	fieldMinute
	fieldLocation
	fieldMemo
	fieldCount
)

// Model is the calendar view model: the current month, the schedule index
// for it, the day-selection cursor and the day-detail modal. One Model owns
// its state exclusively; all mutation happens on the Bubble Tea event loop.
type Model struct {
	cfg   *config.Config
	store store.Store
	log   *zap.Logger

	owner  string
	locale schedule.Locale

	// Current month and its schedule index. The index is replaced
	// wholesale by fetch replies; cells are derived on demand in View.
	year  int
	month time.Month
	index schedule.Index

	selected time.Time
	modal    Modal
	focus    formField

	loading bool
	message string
	msgSeq  int

	changes <-chan store.ChangeEvent

	width  int
	height int
	styles Styles
}

// NewModel creates the calendar model for the given owner. The store's
// change channel, if any, refreshes the view on external edits.
func NewModel(cfg *config.Config, st store.Store, log *zap.Logger) *Model {
	if log == nil {
		log = zap.NewNop()
	}
	now := time.Now()

	m := &Model{
		cfg:      cfg,
		store:    st,
		log:      log,
		owner:    cfg.OwnerID,
		locale:   schedule.Locale(cfg.Locale),
		year:     now.Year(),
		month:    now.Month(),
		index:    schedule.Index{},
		selected: time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local),
		styles:   DefaultStyles(),
	}

	if changes, err := st.Watch(); err == nil && changes != nil {
		m.changes = changes
	}

	return m
}

// monthKey is the "YYYY-MM" tag of the currently displayed month. Every
// fetch carries the key it was issued for; replies with any other key are
// stale and dropped (last-requested-month-wins).
func (m *Model) monthKey() string {
	return schedule.MonthKey(time.Date(m.year, m.month, 1, 0, 0, 0, 0, time.Local))
}

// Cells returns the month's 42 renderable cells, always derived from the
// latest index and month.
func (m *Model) Cells() []schedule.Cell {
	return m.index.Fill(schedule.BuildGrid(m.year, m.month))
}

// Message types

type schedulesLoadedMsg struct {
	month   string
	records []schedule.Record
	err     error
}

type submitResultMsg struct {
	err error
}

type storeChangedMsg struct{}

type clearMessageMsg struct {
	seq int
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.fetchCmd(), m.listenCmd())
}

// fetchCmd loads the current month's schedules asynchronously. The command
// captures the month it was issued for so the reply can be matched against
// the then-current month.
func (m *Model) fetchCmd() tea.Cmd {
	if m.owner == "" {
		return nil
	}
	owner := m.owner
	month := m.monthKey()
	st := m.store

	m.loading = true
	return func() tea.Msg {
		records, err := st.Schedules(context.Background(), owner, month)
		return schedulesLoadedMsg{month: month, records: records, err: err}
	}
}

// listenCmd waits for one external store change and reports it.
func (m *Model) listenCmd() tea.Cmd {
	if m.changes == nil {
		return nil
	}
	ch := m.changes
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return storeChangedMsg{}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case schedulesLoadedMsg:
		if msg.month != m.monthKey() {
			// Reply for a month we already navigated away from.
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			// Keep the last-known-good schedules on a failed fetch.
			m.log.Warn("month fetch failed", zap.String("month", msg.month), zap.Error(msg.err))
			return m, m.showMessage("予定の取得に失敗しました")
		}
		m.index = schedule.BuildIndex(msg.records)
		return m, nil

	case submitResultMsg:
		m.loading = false
		if msg.err != nil {
			// Modal stays open with the draft intact.
			m.log.Warn("schedule create failed", zap.Error(msg.err))
			return m, m.showMessage("日程登録に失敗しました")
		}
		m.modal = m.modal.Close()
		return m, tea.Batch(m.showMessage("登録しました"), m.fetchCmd())

	case storeChangedMsg:
		return m, tea.Batch(m.fetchCmd(), m.listenCmd())

	case clearMessageMsg:
		if msg.seq == m.msgSeq {
			m.message = ""
		}
		return m, nil
	}

	return m, nil
}

func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.modal.Mode {
	case ModalCreate:
		return m.handleFormKeys(msg)
	case ModalList:
		return m.handleListKeys(msg)
	default:
		return m.handleCalendarKeys(msg)
	}
}

func (m *Model) handleCalendarKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.store.StopWatching()
		return m, tea.Quit

	case "l", "right":
		return m.moveSelection(0, 1)

	case "h", "left":
		return m.moveSelection(0, -1)

	case "j", "down":
		return m.moveSelection(0, 7)

	case "k", "up":
		return m.moveSelection(0, -7)

	case ">", "L", "pgdown":
		return m.moveSelection(1, 0)

	case "<", "H", "pgup":
		return m.moveSelection(-1, 0)

	case "t":
		now := time.Now()
		m.selected = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
		return m.syncMonth()

	case "r":
		return m, m.fetchCmd()

	case "enter", " ":
		if m.owner == "" {
			return m, m.showMessage("ユーザーIDが設定されていません")
		}
		m.modal = m.modal.OpenDay(m.selected)
		return m, nil
	}

	return m, nil
}

// moveSelection shifts the day cursor and follows it across month
// boundaries.
func (m *Model) moveSelection(months, days int) (tea.Model, tea.Cmd) {
	if months != 0 {
		// Whole-month jump: keep the day number, clamped to the shorter
		// month.
		year, month := schedule.AddMonths(m.year, m.month, months)
		day := m.selected.Day()
		if last := daysIn(year, month); day > last {
			day = last
		}
		m.selected = time.Date(year, month, day, 0, 0, 0, 0, time.Local)
	} else {
		m.selected = m.selected.AddDate(0, 0, days)
	}
	return m.syncMonth()
}

// syncMonth navigates the displayed month to wherever the cursor is. The
// new month value is computed before anything is mutated, and the fetch is
// issued after the switch, so no partial state is ever visible.
func (m *Model) syncMonth() (tea.Model, tea.Cmd) {
	if m.selected.Year() == m.year && m.selected.Month() == m.month {
		return m, nil
	}
	m.year, m.month = m.selected.Year(), m.selected.Month()
	return m, m.fetchCmd()
}

func (m *Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "n", "a", "+":
		m.modal = m.modal.RequestCreate()
		m.focus = fieldType
		return m, nil

	case "esc", "q", "enter":
		m.modal = m.modal.Close()
		return m, nil
	}
	return m, nil
}

func (m *Model) handleFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEscape:
		// Back to the list view; the draft is discarded.
		m.modal = m.modal.Cancel()
		return m, nil

	case tea.KeyEnter:
		return m, m.submit()

	case tea.KeyTab, tea.KeyDown:
		m.focus = (m.focus + 1) % fieldCount
		return m, nil

	case tea.KeyShiftTab, tea.KeyUp:
		m.focus = (m.focus + fieldCount - 1) % fieldCount
		return m, nil

	case tea.KeyLeft:
		return m.cycleChoice(-1)

	case tea.KeyRight:
		return m.cycleChoice(1)

	case tea.KeyBackspace:
		m.modal = m.modal.EditDraft(func(d Draft) Draft {
			switch m.focus {
			case fieldCompany:
				d.CompanyName = dropLastRune(d.CompanyName)
			case fieldLocation:
				d.Location = dropLastRune(d.Location)
			case fieldMemo:
				d.Memo = dropLastRune(d.Memo)
			}
			return d
		})
		return m, nil

	case tea.KeyRunes, tea.KeySpace:
		text := string(msg.Runes)
		if msg.Type == tea.KeySpace {
			text = " "
		}
		m.modal = m.modal.EditDraft(func(d Draft) Draft {
			switch m.focus {
			case fieldCompany:
				d.CompanyName += text
			case fieldLocation:
				d.Location += text
			case fieldMemo:
				d.Memo += text
			}
			return d
		})
		return m, nil
	}

	return m, nil
}

// cycleChoice steps the focused enumerated field through its choices.
func (m *Model) cycleChoice(dir int) (tea.Model, tea.Cmd) {
	m.modal = m.modal.EditDraft(func(d Draft) Draft {
		switch m.focus {
		case fieldType:
			types := schedule.Types()
			i := 0
			for j, t := range types {
				if t.Code == d.TypeCode {
					i = j
					break
				}
			}
			i = (i + dir + len(types)) % len(types)
			d.TypeCode = types[i].Code
		case fieldHour:
			d = d.WithHour(cycle(HourChoices(), d.Hour, dir))
		case fieldMinute:
			d = d.WithMinute(cycle(MinuteChoices(), d.Minute, dir))
		}
		return d
	})
	return m, nil
}

// submit validates locally and, only then, sends the create to the store.
func (m *Model) submit() tea.Cmd {
	rec, err := m.modal.Record(m.owner)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) && verr.Field == "company_name" {
			return m.showMessage("企業名を入力してください")
		}
		return m.showMessage("入力内容を確認してください")
	}

	m.loading = true
	st := m.store
	return func() tea.Msg {
		return submitResultMsg{err: st.Create(context.Background(), rec)}
	}
}

// showMessage displays a transient status message for a few seconds.
func (m *Model) showMessage(text string) tea.Cmd {
	m.message = text
	m.msgSeq++
	seq := m.msgSeq
	return tea.Tick(3*time.Second, func(time.Time) tea.Msg {
		return clearMessageMsg{seq: seq}
	})
}

func cycle(choices []string, current string, dir int) string {
	i := 0
	for j, c := range choices {
		if c == current {
			i = j
			break
		}
	}
	return choices[(i+dir+len(choices))%len(choices)]
}

func dropLastRune(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	return string(runes[:len(runes)-1])
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.Local).Day()
}
