package revocation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v3"

	"github.com/yndnr/tokmint-go/internal/telemetry/logger"
)

// Badger is a Store backed by an embedded badger database. Entries are
// written with a native TTL so expiry needs no sweep; the value log is
// compacted on an interval.
type Badger struct {
	db     *badger.DB
	cfg    BadgerConfig
	logger logger.Logger

	closeOnce sync.Once
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// OpenBadger opens or creates the database at cfg.Dir.
func OpenBadger(cfg BadgerConfig, log logger.Logger) (*Badger, error) {
	if cfg.Dir == "" && !cfg.InMemory {
		return nil, fmt.Errorf("badger: dir is required")
	}
	if log == nil {
		log = logger.Default()
	}

	opts := badger.DefaultOptions(cfg.Dir).
		WithLogger(&badgerLogger{logger: log}).
		WithSyncWrites(cfg.SyncWrites).
		WithNumVersionsToKeep(1)
	if cfg.InMemory {
		opts = opts.WithDir("").WithValueDir("").WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger: open db: %w", err)
	}

	b := &Badger{
		db:     db,
		cfg:    cfg,
		logger: log,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
	if cfg.GCInterval > 0 && !cfg.InMemory {
		go b.gcLoop()
	} else {
		close(b.doneCh)
	}

	log.Info("badger revocation store opened",
		"dir", cfg.Dir,
		"in_memory", cfg.InMemory,
		"gc_interval", cfg.GCInterval)
	return b, nil
}

func badgerKey(jti string) []byte {
	return []byte(KeyPrefix + jti)
}

// Revoke implements Store.
func (b *Badger) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	if err := checkArgs(jti, ttl); err != nil {
		return err
	}
	err := b.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(badgerKey(jti), []byte{1})
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}
		return txn.SetEntry(e)
	})
	return b.wrap("revoke", err)
}

// IsRevoked implements Store.
func (b *Badger) IsRevoked(_ context.Context, jti string) (bool, error) {
	var found bool
	err := b.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(badgerKey(jti))
		switch {
		case err == nil:
			found = true
			return nil
		case errors.Is(err, badger.ErrKeyNotFound):
			return nil
		default:
			return err
		}
	})
	return found, b.wrap("lookup", err)
}

// Len implements Store. It walks the key space, so it is meant for
// metrics scrapes rather than hot paths.
func (b *Badger) Len(ctx context.Context) (int, error) {
	n := 0
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(KeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if n%1024 == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			n++
		}
		return nil
	})
	return n, b.wrap("count", err)
}

// GC runs value log garbage collection until nothing more is reclaimed
// and returns the number of rewritten files.
func (b *Badger) GC() (int, error) {
	rewrites := 0
	for {
		err := b.db.RunValueLogGC(b.cfg.GCThreshold)
		if err != nil {
			if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrRejected) {
				return rewrites, nil
			}
			return rewrites, fmt.Errorf("badger: gc: %w", err)
		}
		rewrites++
	}
}

// Close stops the GC loop and closes the database.
func (b *Badger) Close() error {
	var err error
	b.closeOnce.Do(func() {
		close(b.stopCh)
		<-b.doneCh
		if cerr := b.db.Close(); cerr != nil {
			err = fmt.Errorf("badger: close db: %w", cerr)
		}
		b.logger.Info("badger revocation store closed")
	})
	return err
}

func (b *Badger) wrap(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, badger.ErrDBClosed):
		return ErrClosed
	default:
		return fmt.Errorf("badger: %s: %w", op, err)
	}
}

func (b *Badger) gcLoop() {
	defer close(b.doneCh)

	ticker := time.NewTicker(b.cfg.GCInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			start := time.Now()
			n, err := b.GC()
			if err != nil {
				b.logger.Error("revocation gc failed", "error", err)
				continue
			}
			b.logger.Debug("revocation gc completed", "rewrites", n, "elapsed", time.Since(start))
		case <-b.stopCh:
			return
		}
	}
}

// badgerLogger adapts logger.Logger to badger's Logger interface.
type badgerLogger struct {
	logger logger.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
