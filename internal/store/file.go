package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/ktanaka/shucal/internal/schedule"
)

// FileStore keeps schedules in a local JSON file using the same wire shape
// as the remote store, so a file can stand in for the API when offline.
// External edits to the file are picked up through fsnotify.
type FileStore struct {
	Path string

	log *zap.Logger

	mu      sync.Mutex
	nextSeq int

	watcher   *fsnotify.Watcher
	changes   chan ChangeEvent
	watchDone chan struct{}
}

type fileDoc struct {
	Schedules []scheduleJSON `json:"schedules"`
}

// NewFileStore creates a store backed by the JSON file at path. The file
// does not need to exist yet. The logger may be nil.
func NewFileStore(path string, log *zap.Logger) *FileStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &FileStore{Path: path, log: log}
}

func (s *FileStore) Schedules(ctx context.Context, owner, month string) ([]schedule.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return nil, &FetchError{Month: month, Err: err}
	}

	var records []schedule.Record
	for _, sj := range doc.Schedules {
		rec, ok := sj.toRecord(owner)
		if !ok {
			continue
		}
		if rec.OwnerID != owner {
			continue
		}
		if !strings.HasPrefix(schedule.DateKey(rec.Date), month) {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *FileStore) Create(ctx context.Context, rec schedule.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return &SubmitError{Err: err}
	}

	req := newCreateRequest(rec)
	s.nextSeq++
	entry := scheduleJSON{
		ID:          flexID(fmt.Sprintf("local-%d-%d", time.Now().Unix(), s.nextSeq)),
		OwnerID:     req.OwnerID,
		TypeCode:    req.TypeCode,
		CompanyName: req.CompanyName,
		Date:        req.Date,
		Time:        req.Time,
		Location:    req.Location,
		Memo:        req.Memo,
	}
	doc.Schedules = append(doc.Schedules, entry)

	if err := s.write(doc); err != nil {
		return &SubmitError{Err: err}
	}
	s.log.Info("schedule written to local store",
		zap.String("path", s.Path), zap.String("date", req.Date))
	return nil
}

func (s *FileStore) read() (fileDoc, error) {
	var doc fileDoc
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return doc, nil
		}
		return doc, err
	}
	if len(data) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("parsing %s: %w", s.Path, err)
	}
	return doc, nil
}

// write replaces the file atomically: temp file in the same directory, then
// rename.
func (s *FileStore) write(doc fileDoc) error {
	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".shucal-store-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, s.Path)
}

// Watch starts watching the store file for external changes. Rapid events
// are debounced so a single editor save signals once.
func (s *FileStore) Watch() (<-chan ChangeEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.watcher != nil {
		return s.changes, nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Watch the directory: editors and the atomic write above replace the
	// file by rename, which drops a watch on the file itself.
	if err := watcher.Add(filepath.Dir(s.Path)); err != nil {
		watcher.Close()
		return nil, err
	}

	s.watcher = watcher
	s.changes = make(chan ChangeEvent, 10)
	s.watchDone = make(chan struct{})

	go s.watch(watcher, s.changes, s.watchDone)
	return s.changes, nil
}

func (s *FileStore) watch(watcher *fsnotify.Watcher, changes chan ChangeEvent, done chan struct{}) {
	target, _ := filepath.Abs(s.Path)
	var debounce *time.Timer

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			name, _ := filepath.Abs(event.Name)
			if name != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(100*time.Millisecond, func() {
				select {
				case changes <- ChangeEvent{Path: s.Path, Timestamp: time.Now()}:
				default:
					// Channel full, drop event
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.log.Warn("store file watch error", zap.Error(err))

		case <-done:
			return
		}
	}
}

func (s *FileStore) StopWatching() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.watcher == nil {
		return nil
	}
	close(s.watchDone)
	err := s.watcher.Close()
	s.watcher = nil
	s.changes = nil
	return err
}
