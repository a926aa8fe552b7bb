package types

import "errors"

var (
	// ErrInvalidTranscript marks input that is not a recognized transcript shape.
	ErrInvalidTranscript = errors.New("invalid transcript")
	// ErrEmptyTranscript marks a transcript with no usable speech.
	ErrEmptyTranscript = errors.New("no speech detected")
	// ErrUnsupportedFormat marks an unknown output format identifier.
	ErrUnsupportedFormat = errors.New("unsupported subtitle format")
	// ErrMalformedToken tags a single skipped transcript item. It is reported, never returned.
	ErrMalformedToken = errors.New("malformed token")
)
