package tracker

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/frasal/image_describer/internal/domain"
	"github.com/google/uuid"
)

var ErrNotFound = errors.New("request not found")

// Tracker keeps one in-memory record per image submission. Records live
// for the life of the process; only their temp files are ever deleted.
type Tracker struct {
	log *slog.Logger

	mu       sync.RWMutex
	requests map[string]*entry
}

// entry carries its own mutex so updates to different records never
// block each other, while a multi-field update on one record stays
// atomic for concurrent readers.
type entry struct {
	mu  sync.Mutex
	req domain.Request
}

func New(log *slog.Logger) *Tracker {
	return &Tracker{
		log:      log,
		requests: make(map[string]*entry),
	}
}

// Create allocates a new record in the created state and returns its id.
func (t *Tracker) Create() string {
	id := uuid.NewString()

	t.mu.Lock()
	t.requests[id] = &entry{
		req: domain.Request{
			ID:     id,
			Status: domain.StatusCreated,
		},
	}
	t.mu.Unlock()

	t.log.Debug("created request", slog.String("request_id", id))

	return id
}

// Update applies a partial update. Fields left nil are untouched;
// CloudKey and Description are write-once.
func (t *Tracker) Update(id string, upd domain.RequestUpdate) error {
	e, ok := t.lookup(id)
	if !ok {
		t.log.Error("request not found", slog.String("request_id", id))
		return ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if upd.Status != nil {
		e.req.Status = *upd.Status
	}
	if upd.TempPath != nil {
		e.req.TempPath = *upd.TempPath
	}
	if upd.CloudKey != nil && e.req.CloudKey == "" {
		e.req.CloudKey = *upd.CloudKey
	}
	if upd.Description != nil && e.req.Description == "" {
		e.req.Description = *upd.Description
	}
	if upd.Feedback != nil {
		feedback := *upd.Feedback
		e.req.Feedback = &feedback
	}
	if upd.Note != nil {
		e.req.Note = *upd.Note
	}

	t.log.Debug("updated request",
		slog.String("request_id", id),
		slog.String("status", string(e.req.Status)),
	)

	return nil
}

// Get returns a snapshot copy of the record.
func (t *Tracker) Get(id string) (domain.Request, error) {
	e, ok := t.lookup(id)
	if !ok {
		t.log.Error("request not found", slog.String("request_id", id))
		return domain.Request{}, ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	req := e.req
	if e.req.Feedback != nil {
		feedback := *e.req.Feedback
		req.Feedback = &feedback
	}

	return req, nil
}

// CleanTempFile deletes the record's temp file. It is idempotent: an
// empty temp path or a file that already vanished counts as clean.
func (t *Tracker) CleanTempFile(id string) error {
	e, ok := t.lookup(id)
	if !ok {
		t.log.Error("request not found", slog.String("request_id", id))
		return ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.req.TempPath == "" {
		return nil
	}

	if err := os.Remove(e.req.TempPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove temp file %q: %w", e.req.TempPath, err)
	}

	t.log.Debug("deleted temp file",
		slog.String("request_id", id),
		slog.String("temp_path", e.req.TempPath),
	)

	e.req.TempPath = ""

	return nil
}

func (t *Tracker) lookup(id string) (*entry, bool) {
	t.mu.RLock()
	e, ok := t.requests[id]
	t.mu.RUnlock()

	return e, ok
}
