package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/ktanaka/shucal/internal/schedule"
	"github.com/ktanaka/shucal/internal/store"
)

// Sink delivers a rendered reminder to the user. The CLI prints to the
// terminal; tests capture.
type Sink interface {
	Send(owner string, r Reminder) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(owner string, r Reminder) error

func (f SinkFunc) Send(owner string, r Reminder) error { return f(owner, r) }

// Reminder is one due countdown notification: the schedule and how many
// days remain until it.
type Reminder struct {
	Offset int
	Record schedule.Record
}

var typeEmoji = map[schedule.TypeCode]string{
	schedule.TypeESSubmit:       "📝",
	schedule.TypeSPITest:        "✏️",
	schedule.TypeInterview1:     "👔",
	schedule.TypeInterview2:     "💼",
	schedule.TypeInterview3:     "🎯",
	schedule.TypeFinalInterview: "🏆",
	schedule.TypeExplanation:    "🏢",
	schedule.TypeInternship:     "📚",
}

// Text renders the reminder message.
func (r Reminder) Text(loc schedule.Locale) string {
	emoji, ok := typeEmoji[r.Record.Type]
	if !ok {
		emoji = "📅"
	}
	info, _ := schedule.TypeByCode(r.Record.Type)
	name := info.Name(loc)
	if name == "" {
		name = string(r.Record.Type)
	}

	when := schedule.DateKey(r.Record.Date)
	if r.Record.Timed() {
		when += " " + r.Record.Time
	}
	return fmt.Sprintf("%s D-%d リマインド: %s (%s) %s あと%d日です。準備を忘れずに!",
		emoji, r.Offset, r.Record.CompanyName, name, when, r.Offset)
}

// Notifier sweeps upcoming schedules and sends D-n reminders. Each
// (schedule, offset) pair is sent at most once, tracked in a JSON state
// file that survives restarts.
type Notifier struct {
	store   store.Store
	sink    Sink
	log     *zap.Logger
	owner   string
	locale  schedule.Locale
	offsets []int
	state   string

	cron *cron.Cron
	now  func() time.Time
}

func New(st store.Store, sink Sink, log *zap.Logger, owner string, locale schedule.Locale, offsets []int, statePath string) *Notifier {
	if log == nil {
		log = zap.NewNop()
	}
	if len(offsets) == 0 {
		offsets = []int{10, 5, 3, 1}
	}
	return &Notifier{
		store:   st,
		sink:    sink,
		log:     log,
		owner:   owner,
		locale:  locale,
		offsets: offsets,
		state:   statePath,
		now:     time.Now,
	}
}

// Run schedules the daily sweep with the given cron spec and blocks until
// ctx is done.
func (n *Notifier) Run(ctx context.Context, spec string) error {
	n.cron = cron.New()
	if _, err := n.cron.AddFunc(spec, func() {
		if err := n.Sweep(ctx); err != nil {
			n.log.Error("reminder sweep failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("invalid cron spec %q: %w", spec, err)
	}

	n.cron.Start()
	n.log.Info("reminder scheduler started", zap.String("cron", spec))
	<-ctx.Done()
	n.cron.Stop()
	return nil
}

// Sweep sends every due, not-yet-sent reminder. Target dates for all
// offsets are resolved to their distinct months and each month is fetched
// once.
func (n *Notifier) Sweep(ctx context.Context) error {
	today := n.now()
	midnight := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.Local)

	sent, err := n.loadSent()
	if err != nil {
		return err
	}

	targets := make(map[int]time.Time, len(n.offsets))
	months := map[string]bool{}
	for _, off := range n.offsets {
		d := midnight.AddDate(0, 0, off)
		targets[off] = d
		months[schedule.MonthKey(d)] = true
	}

	index := schedule.Index{}
	for month := range months {
		records, err := n.store.Schedules(ctx, n.owner, month)
		if err != nil {
			return fmt.Errorf("fetch %s: %w", month, err)
		}
		for key, recs := range schedule.BuildIndex(records) {
			index[key] = append(index[key], recs...)
		}
	}

	offsets := append([]int(nil), n.offsets...)
	sort.Sort(sort.Reverse(sort.IntSlice(offsets)))

	dirty := false
	for _, off := range offsets {
		for _, rec := range index.ForKey(schedule.DateKey(targets[off])) {
			key := sentKey(rec.ID, off)
			if sent[key] != "" {
				continue
			}
			if err := n.sink.Send(n.owner, Reminder{Offset: off, Record: rec}); err != nil {
				n.log.Warn("reminder delivery failed",
					zap.String("schedule", rec.ID), zap.Int("offset", off), zap.Error(err))
				continue
			}
			n.log.Info("reminder sent",
				zap.String("schedule", rec.ID), zap.Int("offset", off),
				zap.String("company", rec.CompanyName))
			sent[key] = n.now().Format(time.RFC3339)
			dirty = true
		}
	}

	if dirty {
		return n.saveSent(sent)
	}
	return nil
}

func sentKey(id string, offset int) string {
	return fmt.Sprintf("%s/D-%d", id, offset)
}

func (n *Notifier) loadSent() (map[string]string, error) {
	sent := map[string]string{}
	if n.state == "" {
		return sent, nil
	}
	data, err := os.ReadFile(n.state)
	if os.IsNotExist(err) {
		return sent, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &sent); err != nil {
		return nil, fmt.Errorf("corrupt reminder state %s: %w", n.state, err)
	}
	return sent, nil
}

func (n *Notifier) saveSent(sent map[string]string) error {
	if n.state == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(n.state), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(sent, "", "  ")
	if err != nil {
		return err
	}

	tmp := n.state + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, n.state)
}
