/*
Package database manages SQL connection pools with asynchronous
execution on a bounded worker pool.

Open builds a pool for SQLite, MySQL, MariaDB, or PostgreSQL from a
Config or raw YAML. The matching driver must be linked into the binary
with a blank import:

	import _ "modernc.org/sqlite"

	db, err := database.Open(database.Config{
		Type: database.SQLite,
		File: "data/app.db",
	})
	if err != nil {
		return err
	}
	defer db.Close()

Synchronous calls run on the caller's goroutine. The Async variants
queue onto the worker pool and deliver their outcome on a buffered
channel, so a caller that never reads the channel leaks nothing:

	done := db.ExecAsync(ctx, "UPDATE players SET seen = ? WHERE id = ?", now, id)
	// ... later, if the outcome matters:
	res := <-done

The queue is bounded. Submissions past its capacity fail fast with
ErrCapacityExceeded rather than stalling the caller.

Transaction wraps a function in begin/commit with rollback on error or
panic:

	err := db.Transaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.Exec(debit); err != nil {
			return err
		}
		_, err := tx.Exec(credit)
		return err
	})
*/
package database
