package models

import "time"

// Post is an author-owned record with the same tombstone convention as Note.
//
// OpenPos, when non-nil, places the post in the public listing index; a nil
// OpenPos keeps it private to its author.
type Post struct {
	ID        string
	AuthorID  string
	Contents  string
	Pos       int64
	OpenPos   *int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Deleted reports whether the post is a tombstone.
func (p *Post) Deleted() bool { return p.Contents == "" }

// Open reports whether the post is publicly listed.
func (p *Post) Open() bool { return p.OpenPos != nil }
