package study

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/abhisek/kalima/internal/store"
	"github.com/abhisek/kalima/internal/vocab"
)

// DefaultWriteTimeout bounds a single progress write.
const DefaultWriteTimeout = 5 * time.Second

// Persister writes progress updates without blocking the caller. Failures
// are logged and counted, never returned.
type Persister struct {
	store   store.ProgressStore
	logger  *slog.Logger
	timeout time.Duration
	sync    bool

	wg       sync.WaitGroup
	failures atomic.Int64
}

// NewPersister returns an asynchronous persister. When sync is true each
// write completes before Record returns.
func NewPersister(ps store.ProgressStore, logger *slog.Logger, sync bool) *Persister {
	if logger == nil {
		logger = slog.Default()
	}
	return &Persister{
		store:   ps,
		logger:  logger,
		timeout: DefaultWriteTimeout,
		sync:    sync,
	}
}

// Record upserts upd for (userID, wordID).
func (p *Persister) Record(userID, sessionID string, wordID int64, upd vocab.ProgressUpdate) {
	if p.sync {
		p.write(userID, sessionID, wordID, upd)
		return
	}
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.write(userID, sessionID, wordID, upd)
	}()
}

func (p *Persister) write(userID, sessionID string, wordID int64, upd vocab.ProgressUpdate) {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	if _, err := p.store.UpsertProgress(ctx, userID, wordID, upd); err != nil {
		p.failures.Add(1)
		p.logger.Warn("persist progress",
			"user_id", userID,
			"word_id", wordID,
			"session_id", sessionID,
			"correct_delta", upd.CorrectDelta,
			"incorrect_delta", upd.IncorrectDelta,
			"error", err,
		)
	}
}

// Flush blocks until every in-flight write has finished.
func (p *Persister) Flush() {
	p.wg.Wait()
}

// Failures returns the number of writes that did not commit.
func (p *Persister) Failures() int64 {
	return p.failures.Load()
}
