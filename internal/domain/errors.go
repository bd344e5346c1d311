package domain

import "errors"

var (
	// ErrBubbleNotFound is returned when no bubble exists for a slug.
	ErrBubbleNotFound = errors.New("bubble not found")

	// ErrInvalidSlug is returned when a share slug is empty or malformed.
	ErrInvalidSlug = errors.New("invalid bubble slug")

	// ErrFetchFailed is returned when the content source could not be reached
	// or answered with something other than a bubble.
	ErrFetchFailed = errors.New("failed to fetch bubble")

	// ErrRateLimited is returned when a client exceeds its request budget.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrUnknownKind is returned when an attachment kind is not recognised.
	ErrUnknownKind = errors.New("unknown attachment kind")

	// ErrEmptyBubble is returned when a bubble would be created with neither
	// text nor attachments.
	ErrEmptyBubble = errors.New("bubble has no content")
)
