package core

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultSessionTTL is how long an idle session survives before the sweeper
// discards it.
const DefaultSessionTTL = 2 * time.Hour

// ServiceOptions configures session handling.
type ServiceOptions struct {
	// MaxFileSize caps accepted upload size in bytes. Zero means no cap.
	MaxFileSize int64
	// HistoryLimit is the undo stack capacity per session.
	HistoryLimit int
	// SampleRows bounds how many rows the schema inferencer examines.
	SampleRows int
	// SessionTTL is the idle lifetime of a session.
	SessionTTL time.Duration
}

// Service owns all live edit sessions. Sessions are process-local and
// discarded when they expire or when the process exits; there is no
// persistence.
type Service struct {
	opts ServiceOptions

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewService creates a session service.
func NewService(opts ServiceOptions) *Service {
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = DefaultHistoryLimit
	}
	if opts.SampleRows <= 0 {
		opts.SampleRows = DefaultSampleRows
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = DefaultSessionTTL
	}
	return &Service{
		opts:     opts,
		sessions: make(map[string]*Session),
	}
}

// CreateSession parses an upload and registers a fresh session for it.
// On parse failure no session is created and existing sessions are untouched.
func (s *Service) CreateSession(fileName string, data []byte, delimiter Delimiter, useHeader bool) (*Session, error) {
	table, err := Parse(data, ParseOptions{
		Delimiter: delimiter,
		UseHeader: useHeader,
		MaxSize:   s.opts.MaxFileSize,
	})
	if err != nil {
		return nil, err
	}

	sess := &Session{
		ID:             uuid.New().String(),
		FileName:       fileName,
		raw:            data,
		delimiter:      delimiter,
		useHeader:      useHeader,
		original:       table,
		originalHeader: useHeader,
		current:        table.Clone(),
		history:        NewHistory(s.opts.HistoryLimit),
		lastUsed:       time.Now(),
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	return sess, nil
}

// Get returns the session with the given ID, or ErrSessionNotFound.
func (s *Service) Get(id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// Reparse re-runs the parser over the session's stored upload bytes with new
// delimiter or header settings. All edits and history are discarded, exactly
// as if the file had just been uploaded. On parse failure the session keeps
// its previous state.
func (s *Service) Reparse(id string, delimiter Delimiter, useHeader bool) (*Session, error) {
	sess, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	table, err := Parse(sess.raw, ParseOptions{
		Delimiter: delimiter,
		UseHeader: useHeader,
		MaxSize:   s.opts.MaxFileSize,
	})
	if err != nil {
		return nil, err
	}

	sess.delimiter = delimiter
	sess.useHeader = useHeader
	sess.original = table
	sess.originalHeader = useHeader
	sess.current = table.Clone()
	sess.history.Clear()
	sess.lastUsed = time.Now()
	return sess, nil
}

// Delete removes a session. Deleting an unknown ID is a no-op.
func (s *Service) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// InferSchema infers a SQL type per column over the session's current table.
func (s *Service) InferSchema(id string) ([]ColumnType, error) {
	sess, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	return InferSchema(sess.CurrentTable(), s.opts.SampleRows), nil
}

// SessionCount returns the number of live sessions.
func (s *Service) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// StartSessionSweeper evicts idle sessions on an interval until ctx is
// cancelled. Run it from main as a background goroutine.
func (s *Service) StartSessionSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.sweepExpired(); n > 0 {
				slog.Info("expired sessions swept", "count", n)
			}
		}
	}
}

// sweepExpired removes sessions idle longer than the TTL and returns how
// many were removed.
func (s *Service) sweepExpired() int {
	cutoff := time.Now().Add(-s.opts.SessionTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		sess.mu.Lock()
		idle := sess.lastUsed.Before(cutoff)
		sess.mu.Unlock()
		if idle {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}
