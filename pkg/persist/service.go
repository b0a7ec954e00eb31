package persist

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-pagebuilder/pkg/document"
)

const (
	DefaultTimeout    = 5 * time.Second
	DefaultRetries    = 1
	defaultRetryDelay = 200 * time.Millisecond
)

type serviceConfig struct {
	timeout    time.Duration
	retries    int
	retryDelay time.Duration
	logger     zerolog.Logger
}

// ServiceOption customises a Service.
type ServiceOption func(*serviceConfig)

// WithTimeout bounds each store call.
func WithTimeout(d time.Duration) ServiceOption {
	return func(cfg *serviceConfig) {
		if d > 0 {
			cfg.timeout = d
		}
	}
}

// WithRetries sets how many times a failed store call is repeated.
func WithRetries(n int) ServiceOption {
	return func(cfg *serviceConfig) {
		if n >= 0 {
			cfg.retries = n
		}
	}
}

// WithRetryDelay sets the pause between attempts.
func WithRetryDelay(d time.Duration) ServiceOption {
	return func(cfg *serviceConfig) {
		if d >= 0 {
			cfg.retryDelay = d
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(logger zerolog.Logger) ServiceOption {
	return func(cfg *serviceConfig) {
		cfg.logger = logger
	}
}

type applied struct {
	seq   uint64
	draft document.Draft
}

// Service sequences saves against a Store. Each save carries the sequence
// number of the mutation that produced it; a save older than the newest
// applied one is dropped with ErrStaleSave, so the store always ends up with
// the latest edit even when requests complete out of order.
type Service struct {
	store Store
	cfg   serviceConfig

	mu      sync.Mutex
	locks   map[PageKey]*sync.Mutex
	applied map[PageKey]applied
}

// NewService wraps store.
func NewService(store Store, options ...ServiceOption) *Service {
	cfg := serviceConfig{
		timeout:    DefaultTimeout,
		retries:    DefaultRetries,
		retryDelay: defaultRetryDelay,
		logger:     zerolog.Nop(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &Service{
		store:   store,
		cfg:     cfg,
		locks:   make(map[PageKey]*sync.Mutex),
		applied: make(map[PageKey]applied),
	}
}

// Store returns the wrapped store.
func (s *Service) Store() Store {
	return s.store
}

// Save writes d under key unless a save with a higher or equal seq has
// already landed. Store failures are retried and then returned as
// *PersistenceError.
func (s *Service) Save(ctx context.Context, key PageKey, d document.Draft, seq uint64) error {
	if err := key.Validate(); err != nil {
		return err
	}
	lock := s.keyLock(key)
	lock.Lock()
	defer lock.Unlock()

	if last, ok := s.lastSeq(key); ok && seq <= last {
		s.cfg.logger.Debug().Str("page", key.String()).Uint64("seq", seq).Uint64("applied", last).Msg("persist: stale save dropped")
		return ErrStaleSave
	}

	snapshot := d.Clone()
	err := s.attempt(ctx, "save", func(callCtx context.Context) error {
		return s.store.Save(callCtx, key, snapshot)
	})
	if err != nil {
		s.cfg.logger.Error().Err(err).Str("page", key.String()).Uint64("seq", seq).Msg("persist: save failed")
		return &PersistenceError{Op: "save", Key: key, Err: err}
	}

	s.mu.Lock()
	s.applied[key] = applied{seq: seq, draft: snapshot}
	s.mu.Unlock()
	s.cfg.logger.Debug().Str("page", key.String()).Uint64("seq", seq).Msg("persist: saved")
	return nil
}

// Replace writes d under key without a sequence check and restarts the
// sequence for key, so the next Save with any seq lands. Server-created pages
// and unsequenced writes go through Replace.
func (s *Service) Replace(ctx context.Context, key PageKey, d document.Draft) error {
	if err := key.Validate(); err != nil {
		return err
	}
	lock := s.keyLock(key)
	lock.Lock()
	defer lock.Unlock()

	snapshot := d.Clone()
	err := s.attempt(ctx, "replace", func(callCtx context.Context) error {
		return s.store.Save(callCtx, key, snapshot)
	})
	if err != nil {
		s.cfg.logger.Error().Err(err).Str("page", key.String()).Msg("persist: replace failed")
		return &PersistenceError{Op: "replace", Key: key, Err: err}
	}

	s.mu.Lock()
	s.applied[key] = applied{seq: 0, draft: snapshot}
	s.mu.Unlock()
	s.cfg.logger.Debug().Str("page", key.String()).Msg("persist: replaced")
	return nil
}

// Load reads a draft. A missing page is returned as *document.NotFoundError;
// other failures become *PersistenceError.
func (s *Service) Load(ctx context.Context, slugOrID string) (document.Draft, error) {
	var out document.Draft
	err := s.attempt(ctx, "load", func(callCtx context.Context) error {
		d, err := s.store.Load(callCtx, slugOrID)
		if err != nil {
			return err
		}
		out = d
		return nil
	})
	if err != nil {
		if document.IsNotFound(err) {
			return document.Draft{}, err
		}
		return document.Draft{}, &PersistenceError{Op: "load", Key: PageKey{Slug: slugOrID}, Err: err}
	}
	return out, nil
}

// LastApplied returns the most recent draft written for key and its seq. A
// page last written through Replace reports seq 0.
func (s *Service) LastApplied(key PageKey) (document.Draft, uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	last, ok := s.applied[key]
	if !ok {
		return document.Draft{}, 0, false
	}
	return last.draft.Clone(), last.seq, true
}

func (s *Service) lastSeq(key PageKey) (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	last, ok := s.applied[key]
	return last.seq, ok
}

func (s *Service) keyLock(key PageKey) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[key] = lock
	}
	return lock
}

func (s *Service) attempt(ctx context.Context, op string, call func(context.Context) error) error {
	var err error
	for try := 0; try <= s.cfg.retries; try++ {
		if try > 0 {
			s.cfg.logger.Warn().Err(err).Str("op", op).Int("attempt", try+1).Msg("persist: retrying")
			if waitErr := sleep(ctx, s.cfg.retryDelay); waitErr != nil {
				return err
			}
		}
		callCtx, cancel := context.WithTimeout(ctx, s.cfg.timeout)
		err = call(callCtx)
		cancel()
		if err == nil || !retryable(ctx, err) {
			return err
		}
	}
	return err
}

func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	switch {
	case document.IsNotFound(err), document.IsValidation(err), errors.Is(err, ErrOwnerMismatch):
		return false
	}
	return true
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
