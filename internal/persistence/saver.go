package persistence

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const defaultWriteTimeout = 5 * time.Second

// Saver writes checkpoints in the background. Only the newest requested
// snapshot is kept; older unwritten ones are dropped. A failed write is
// logged and kept pending, so the next Request or Flush retries it.
type Saver struct {
	adapter *Adapter
	logger  *slog.Logger
	timeout time.Duration

	mu      sync.Mutex
	pending *Snapshot
	closed  bool

	writeMu sync.Mutex // orders background writes and flushes

	wake chan struct{}
	done chan struct{}
}

// SaverOption configures a Saver.
type SaverOption func(*Saver)

func WithLogger(l *slog.Logger) SaverOption {
	return func(s *Saver) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithWriteTimeout bounds each background write.
func WithWriteTimeout(d time.Duration) SaverOption {
	return func(s *Saver) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// NewSaver starts the background writer. Call Close to stop it.
func NewSaver(adapter *Adapter, opts ...SaverOption) *Saver {
	s := &Saver{
		adapter: adapter,
		logger:  slog.Default(),
		timeout: defaultWriteTimeout,
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	go s.loop()
	return s
}

// Request queues snap for writing and returns immediately.
func (s *Saver) Request(snap Snapshot) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.pending = &snap
	select {
	case s.wake <- struct{}{}:
	default:
	}
	s.mu.Unlock()
}

// Pending reports whether a snapshot is waiting to be written.
func (s *Saver) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

func (s *Saver) loop() {
	defer close(s.done)
	for range s.wake {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		if err := s.write(ctx); err != nil {
			s.logger.Error("checkpoint failed", "key", s.adapter.Key(), "error", err)
		}
		cancel()
	}
}

// write saves the pending snapshot, if any. On failure the snapshot is put
// back unless a newer one arrived meanwhile.
func (s *Saver) write(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	snap := s.pending
	s.pending = nil
	s.mu.Unlock()
	if snap == nil {
		return nil
	}

	err := s.adapter.Save(ctx, *snap)
	if err != nil {
		s.mu.Lock()
		if s.pending == nil {
			s.pending = snap
		}
		s.mu.Unlock()
	}
	return err
}

// Flush writes the pending snapshot synchronously.
func (s *Saver) Flush(ctx context.Context) error {
	return s.write(ctx)
}

// Close stops the background writer and flushes what is left.
func (s *Saver) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.wake)
	s.mu.Unlock()

	select {
	case <-s.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return s.Flush(ctx)
}
