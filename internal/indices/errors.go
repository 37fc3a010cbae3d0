package indices

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidWindow is returned for a year window shorter than two years.
	ErrInvalidWindow = errors.New("invalid year window")
	// ErrEmptyCluster is returned when a metric is requested for no documents.
	ErrEmptyCluster = errors.New("empty cluster")
	// ErrNoDocuments is returned for a growth index over an empty corpus.
	ErrNoDocuments = errors.New("corpus has no documents")
)

// InvalidWindowError reports a window whose period (max - min) is at most 1.
type InvalidWindowError struct {
	MinYear int
	MaxYear int
}

func (e *InvalidWindowError) Error() string {
	return fmt.Sprintf("%s [%d, %d]: period %d must exceed 1",
		ErrInvalidWindow, e.MinYear, e.MaxYear, e.MaxYear-e.MinYear)
}

func (e *InvalidWindowError) Unwrap() error {
	return ErrInvalidWindow
}
