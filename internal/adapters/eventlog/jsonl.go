package eventlog

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	model "github.com/tonyntran/fantasy-auction-assistant/internal/domain/model"
	"github.com/tonyntran/fantasy-auction-assistant/pkg/logger"
	"github.com/tonyntran/fantasy-auction-assistant/pkg/metrics"
)

// JSONLStore implements Store over a newline-delimited JSON file, one
// event per line. Appends are strictly sequential under a mutex; the
// sequence counter resumes from the valid lines found at open time.
//
// A line counts toward the sequence only if decodeLine accepts it, and
// Replay uses the same predicate, so counting and replay can never
// disagree about which lines exist.
type JSONLStore struct {
	mu    sync.Mutex
	path  string
	file  *os.File
	seq   int64 // last assigned sequence number
	fsync bool
	log   logger.Logger
}

// Open opens or creates the log file at path. An existing log is
// scanned to resume sequence numbering; corrupt lines are skipped with
// a warning. A missing file is an empty log, not an error.
func Open(path string, opts ...Option) (*JSONLStore, error) {
	if path == "" {
		return nil, ErrInvalidPath
	}

	s := &JSONLStore{
		path: path,
		log:  logger.Named("eventlog"),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create event log directory: %w", err)
	}

	valid, err := s.scan()
	if err != nil {
		return nil, err
	}
	s.seq = valid

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open event log %s: %w", path, err)
	}
	s.file = f

	s.log.Info(context.Background(), "event log opened",
		logger.String("path", path),
		logger.Int64("resumed_seq", s.seq))
	return s, nil
}

// decodeLine is the single validity predicate for stored lines.
func decodeLine(line []byte) (model.DraftEvent, error) {
	var ev model.DraftEvent
	if err := json.Unmarshal(line, &ev); err != nil {
		return model.DraftEvent{}, fmt.Errorf("unmarshal event line: %w", err)
	}
	if err := ev.Validate(); err != nil {
		return model.DraftEvent{}, err
	}
	return ev, nil
}

// forEachLine delivers every newline-delimited line in r, whole,
// regardless of length, so a corrupt oversized line reaches the decode
// predicate instead of failing the read. A final line without a
// trailing newline is still delivered.
func forEachLine(r io.Reader, fn func(line []byte)) error {
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadBytes('\n')
		line = bytes.TrimRight(line, "\n")
		if len(line) > 0 {
			fn(line)
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// scan counts the valid lines in the existing log file.
func (s *JSONLStore) scan() (int64, error) {
	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("scan event log %s: %w", s.path, err)
	}
	defer f.Close()

	var valid int64
	err = forEachLine(f, func(line []byte) {
		if _, err := decodeLine(line); err != nil {
			metrics.RecordCorruptLogLine()
			s.log.Warn(context.Background(), "skipping corrupt event log line",
				logger.Error(err))
			return
		}
		valid++
	})
	if err != nil {
		return 0, fmt.Errorf("scan event log %s: %w", s.path, err)
	}
	return valid, nil
}

// Append implements Store.
func (s *JSONLStore) Append(_ context.Context, event *model.DraftEvent) (int64, error) {
	start := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return 0, ErrClosed
	}

	event.Seq = s.seq + 1
	if event.TS.IsZero() {
		event.TS = time.Now().UTC()
	}
	if err := event.Validate(); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrAppend, err)
	}

	data, err := json.Marshal(event)
	if err != nil {
		metrics.RecordStoreAppendError()
		return 0, fmt.Errorf("%w: %w", ErrAppend, err)
	}
	if _, err := s.file.Write(append(data, '\n')); err != nil {
		metrics.RecordStoreAppendError()
		return 0, fmt.Errorf("%w: %w", ErrAppend, err)
	}
	if s.fsync {
		if err := s.file.Sync(); err != nil {
			metrics.RecordStoreAppendError()
			return 0, fmt.Errorf("%w: %w", ErrAppend, err)
		}
	}

	s.seq = event.Seq
	metrics.RecordStoreAppendLatency(float64(time.Since(start).Milliseconds()))
	return s.seq, nil
}

// Replay implements Store.
func (s *JSONLStore) Replay(ctx context.Context) ([]model.DraftEvent, error) {
	start := time.Now()

	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("replay event log %s: %w", s.path, err)
	}
	defer f.Close()

	var events []model.DraftEvent
	err = forEachLine(f, func(line []byte) {
		ev, err := decodeLine(line)
		if err != nil {
			metrics.RecordCorruptLogLine()
			s.log.Warn(ctx, "skipping corrupt event log line during replay",
				logger.Error(err))
			return
		}
		events = append(events, ev)
	})
	if err != nil {
		return nil, fmt.Errorf("replay event log %s: %w", s.path, err)
	}

	sort.SliceStable(events, func(i, j int) bool { return events[i].Seq < events[j].Seq })

	metrics.RecordReplayDuration(float64(time.Since(start).Milliseconds()))
	metrics.RecordReplayedEvents(len(events))
	return events, nil
}

// Clear implements Store.
func (s *JSONLStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file != nil {
		if err := s.file.Close(); err != nil {
			return fmt.Errorf("close event log: %w", err)
		}
		s.file = nil
	}
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove event log %s: %w", s.path, err)
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("reopen event log %s: %w", s.path, err)
	}
	s.file = f
	s.seq = 0

	s.log.Info(ctx, "event log cleared", logger.String("path", s.path))
	return nil
}

// NextSeq implements Store.
func (s *JSONLStore) NextSeq() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq + 1
}

// Close implements Store.
func (s *JSONLStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}
