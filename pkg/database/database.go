package database

import (
	"context"
	"database/sql"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/rs/zerolog"

	errs "github.com/EggFine/neosched/pkg/common/errors"
	"github.com/EggFine/neosched/pkg/metrics"
)

// DB wraps a database/sql pool with a dedicated worker pool for
// asynchronous statements. It is safe for concurrent use.
type DB struct {
	sql  *sql.DB
	name string
	log  zerolog.Logger
	reg  *metrics.Registry

	jobs chan func()
	wg   sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// Result is the outcome of an asynchronous statement.
type Result struct {
	RowsAffected int64
	Err          error
}

// Open connects to the configured database, verifies connectivity, and
// starts the async worker pool. The engine's driver must be linked into
// the binary with a blank import, or Open fails with
// ErrDriverNotRegistered.
func Open(cfg Config) (*DB, error) {
	cfg = cfg.withDefaults()

	driver := cfg.Type.driverName()
	if !driverRegistered(driver) {
		return nil, fmt.Errorf("database: %w: %q needs driver %q, add a blank import for its package",
			errs.ErrDriverNotRegistered, cfg.Type, driver)
	}

	log := zerolog.Nop()
	if cfg.Logger != nil {
		log = cfg.Logger.With().Str("db", cfg.Name).Logger()
	}

	pool, err := sql.Open(driver, cfg.dsn())
	if err != nil {
		return nil, fmt.Errorf("database: open %s: %w", cfg.Type, err)
	}
	pool.SetMaxOpenConns(cfg.Pool.MaxSize)
	pool.SetMaxIdleConns(cfg.Pool.MinIdle)
	pool.SetConnMaxIdleTime(cfg.Pool.IdleTimeout)
	pool.SetConnMaxLifetime(cfg.Pool.MaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Pool.ConnectionTimeout)
	defer cancel()

	if cfg.Type == SQLite {
		// SQLite takes one writer at a time; WAL keeps reads open.
		pool.SetMaxOpenConns(1)
		pool.SetMaxIdleConns(1)
		_, _ = pool.ExecContext(ctx, fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.Pool.ConnectionTimeout.Milliseconds()))
		_, _ = pool.ExecContext(ctx, "PRAGMA journal_mode = WAL")
		_, _ = pool.ExecContext(ctx, "PRAGMA synchronous = NORMAL")
	}

	if err := pool.PingContext(ctx); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("database: ping %s: %w", cfg.Type, err)
	}

	d := &DB{
		sql:  pool,
		name: cfg.Name,
		log:  log,
		reg:  cfg.Metrics.Resolve(),
		jobs: make(chan func(), cfg.QueueSize),
	}
	for i := 0; i < cfg.Workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}

	d.log.Info().
		Str("type", string(cfg.Type)).
		Int("workers", cfg.Workers).
		Msg("database pool initialized")
	return d, nil
}

func driverRegistered(name string) bool {
	for _, d := range sql.Drivers() {
		if d == name {
			return true
		}
	}
	return false
}

func (d *DB) worker() {
	defer d.wg.Done()
	for job := range d.jobs {
		job()
		d.gaugeQueue()
	}
}

// submit queues a job for the worker pool. The queue is bounded;
// submissions beyond it fail fast instead of blocking a caller.
func (d *DB) submit(job func()) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return fmt.Errorf("database: %w", errs.ErrClosed)
	}
	select {
	case d.jobs <- job:
		d.gaugeQueue()
		return nil
	default:
		return fmt.Errorf("database: job queue full: %w", errs.ErrCapacityExceeded)
	}
}

// Exec runs a statement and returns the number of affected rows.
func (d *DB) Exec(ctx context.Context, query string, args ...interface{}) (n int64, err error) {
	defer func(start time.Time) { d.instrument("exec", start, err) }(time.Now())

	res, err := d.sql.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("database: exec: %w", err)
	}
	n, err = res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("database: rows affected: %w", err)
	}
	return n, nil
}

// Query runs a query and hands the result rows to scan. The rows are
// closed when scan returns; a panic inside scan is converted to an
// error.
func (d *DB) Query(ctx context.Context, query string, scan func(*sql.Rows) error, args ...interface{}) (err error) {
	defer func(start time.Time) { d.instrument("query", start, err) }(time.Now())

	rows, err := d.sql.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("database: query: %w", err)
	}
	defer rows.Close()

	if err := runScan(scan, rows); err != nil {
		return err
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("database: rows: %w", err)
	}
	return nil
}

func runScan(scan func(*sql.Rows) error, rows *sql.Rows) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scan panicked: %v\nStack trace:\n%s", r, debug.Stack())
		}
	}()
	return scan(rows)
}

// ExecAsync runs Exec on the worker pool. The returned channel is
// buffered and delivers exactly one Result.
func (d *DB) ExecAsync(ctx context.Context, query string, args ...interface{}) <-chan Result {
	out := make(chan Result, 1)
	err := d.submit(func() {
		n, err := d.Exec(ctx, query, args...)
		if err != nil {
			d.log.Error().Err(err).Str("query", query).Msg("async exec failed")
		}
		out <- Result{RowsAffected: n, Err: err}
	})
	if err != nil {
		out <- Result{Err: err}
	}
	return out
}

// QueryAsync runs Query on the worker pool. The returned channel is
// buffered and delivers exactly one error value, nil on success.
func (d *DB) QueryAsync(ctx context.Context, query string, scan func(*sql.Rows) error, args ...interface{}) <-chan error {
	out := make(chan error, 1)
	err := d.submit(func() {
		err := d.Query(ctx, query, scan, args...)
		if err != nil {
			d.log.Error().Err(err).Str("query", query).Msg("async query failed")
		}
		out <- err
	})
	if err != nil {
		out <- err
	}
	return out
}

// Transaction runs fn inside a transaction, committing when fn returns
// nil and rolling back otherwise. A panic inside fn also rolls back.
func (d *DB) Transaction(ctx context.Context, fn func(*sql.Tx) error) (err error) {
	defer func(start time.Time) { d.instrument("transaction", start, err) }(time.Now())

	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("database: begin: %w", err)
	}
	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback()
			err = fmt.Errorf("database: transaction panicked: %v\nStack trace:\n%s", r, debug.Stack())
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("database: rollback after %v: %w", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("database: commit: %w", err)
	}
	return nil
}

// Conn returns a dedicated connection from the pool. The caller owns it
// and must return it with Close.
func (d *DB) Conn(ctx context.Context) (*sql.Conn, error) {
	d.mu.Lock()
	closed := d.closed
	d.mu.Unlock()
	if closed {
		return nil, fmt.Errorf("database: %w", errs.ErrClosed)
	}
	return d.sql.Conn(ctx)
}

// Stats reports the state of the underlying connection pool.
func (d *DB) Stats() sql.DBStats {
	return d.sql.Stats()
}

// Close stops accepting async work, waits for queued jobs to finish,
// and closes the connection pool. It is idempotent.
func (d *DB) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.jobs)
	d.mu.Unlock()

	d.wg.Wait()
	err := d.sql.Close()
	d.log.Info().Msg("database pool closed")
	return err
}

func (d *DB) instrument(op string, start time.Time, err error) {
	if d.reg == nil {
		return
	}
	d.reg.DBOperations.WithLabelValues(d.name, op).Inc()
	d.reg.DBDuration.WithLabelValues(d.name, op).Observe(time.Since(start).Seconds())
	if err != nil {
		d.reg.DBErrors.WithLabelValues(d.name, op).Inc()
	}
	d.reg.DBPoolOpen.WithLabelValues(d.name).Set(float64(d.sql.Stats().OpenConnections))
}

func (d *DB) gaugeQueue() {
	if d.reg != nil {
		d.reg.DBQueueDepth.WithLabelValues(d.name).Set(float64(len(d.jobs)))
	}
}
