package models

import "time"

// Note is a user-owned record. UserID is immutable after creation.
//
// Deletion is soft: contents and pos are cleared but the row survives as a
// tombstone, so the id stays resolvable and stale references cannot
// resurrect it. A note with empty Contents is a tombstone.
type Note struct {
	ID        string
	UserID    string
	Contents  string
	Pos       int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Deleted reports whether the note is a tombstone.
func (n *Note) Deleted() bool { return n.Contents == "" }
