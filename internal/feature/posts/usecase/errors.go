// Package usecase implements the business logic for the posts feature.
package usecase

import "errors"

var (
	// ErrPostNotFound is returned when a post cannot be found by ID.
	ErrPostNotFound = errors.New("post not found")

	// ErrNotAuthor is returned when a user attempts to modify or delete a
	// post they did not write.
	ErrNotAuthor = errors.New("user is not the author of this post")
)
