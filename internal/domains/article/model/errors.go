package model

import "errors"

var (
	// Not found
	ErrArticleNotFound = errors.New("article not found")
	ErrCommentNotFound = errors.New("comment not found")

	// Authorization
	ErrNotOwner = errors.New("article belongs to another author")

	// Availability: both the indexed query and the degraded scan
	// failed, nothing left to fall back to.
	ErrBackendUnavailable = errors.New("article backend unavailable")
)
