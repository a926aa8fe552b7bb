// Package taskstore records subtitle task history in SQLite so the CLI and the
// HTTP surface can report what ran, what failed and why.
package taskstore
