// Package entity defines the domain entities for the posts feature.
package entity

import "time"

// Post represents a single blog post.
// The author reference is set at creation and immutable thereafter.
type Post struct {
	// ID is the unique identifier for the post.
	ID uint

	// Title is the post headline (at most 100 characters).
	Title string

	// Content is the post body.
	Content string

	// DatePosted is the creation timestamp, set once when the post is created.
	DatePosted time.Time

	// UserID is the ID of the authoring user.
	UserID uint

	// AuthorUsername and AuthorImage are denormalized author fields for
	// rendering; they are populated by the repository, never persisted here.
	AuthorUsername string
	AuthorImage    string
}
