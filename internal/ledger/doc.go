// Package ledger records pipeline runs in a SQLite database living in the
// work directory. The pipeline writes stage transitions and terminal
// outcomes as they happen; the CLI reads the same database to render run
// history and the currently active run.
package ledger
