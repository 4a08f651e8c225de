package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ktanaka/shucal/internal/schedule"
)

// HTTPStore talks to the remote schedule store over its REST boundary:
//
//	GET  {base}/schedules/{owner}?month=YYYY-MM
//	POST {base}/schedules
type HTTPStore struct {
	BaseURL string

	client *http.Client
	log    *zap.Logger
}

// NewHTTPStore creates a store client for the given base URL. The logger
// may be nil.
func NewHTTPStore(baseURL string, log *zap.Logger) *HTTPStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &HTTPStore{
		BaseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		log: log,
	}
}

func (s *HTTPStore) Schedules(ctx context.Context, owner, month string) ([]schedule.Record, error) {
	u := fmt.Sprintf("%s/schedules/%s?month=%s", s.BaseURL, url.PathEscape(owner), url.QueryEscape(month))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &FetchError{Month: month, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.log.Warn("schedule fetch failed", zap.String("month", month), zap.Error(err))
		return nil, &FetchError{Month: month, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("store returned %s", resp.Status)
		s.log.Warn("schedule fetch rejected", zap.String("month", month), zap.Int("status", resp.StatusCode))
		return nil, &FetchError{Month: month, Err: err}
	}

	var body schedulesResponse
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		return nil, &FetchError{Month: month, Err: fmt.Errorf("decoding response: %w", err)}
	}

	records := make([]schedule.Record, 0, len(body.Schedules))
	for _, sj := range body.Schedules {
		rec, ok := sj.toRecord(owner)
		if !ok {
			s.log.Warn("skipping record with unparseable date",
				zap.String("schedule_date", sj.Date), zap.String("company", sj.CompanyName))
			continue
		}
		records = append(records, rec)
	}

	s.log.Debug("schedules fetched", zap.String("month", month), zap.Int("count", len(records)))
	return records, nil
}

func (s *HTTPStore) Create(ctx context.Context, rec schedule.Record) error {
	payload, err := json.Marshal(newCreateRequest(rec))
	if err != nil {
		return &SubmitError{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.BaseURL+"/schedules", bytes.NewReader(payload))
	if err != nil {
		return &SubmitError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.log.Warn("schedule create failed", zap.Error(err))
		return &SubmitError{Err: err}
	}
	defer resp.Body.Close()

	// The response body is not used; success is refetched, not returned.
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.log.Warn("schedule create rejected", zap.Int("status", resp.StatusCode))
		return &SubmitError{Err: fmt.Errorf("store returned %s", resp.Status)}
	}

	s.log.Info("schedule created",
		zap.String("date", schedule.DateKey(rec.Date)), zap.String("type", string(rec.Type)))
	return nil
}

// Watch is unsupported for the remote store.
func (s *HTTPStore) Watch() (<-chan ChangeEvent, error) { return nil, nil }

func (s *HTTPStore) StopWatching() error { return nil }
