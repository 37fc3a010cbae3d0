package cluster

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyPartition means the oracle returned nothing for a non-empty graph.
	ErrEmptyPartition = errors.New("oracle returned an empty partition")
	// ErrPartitionIntegrity means the oracle output does not cover the graph exactly once.
	ErrPartitionIntegrity = errors.New("partition integrity violated")
	// ErrUnknownOracle is returned by NewOracle for unsupported names.
	ErrUnknownOracle = errors.New("unknown oracle")
)

// PartitionIntegrityError lists the vertices an oracle got wrong.
type PartitionIntegrityError struct {
	Oracle     string
	Missing    []string // vertices in no component
	Duplicated []string // vertices in more than one component
	Unknown    []string // ids that are not vertices of the graph
}

func (e *PartitionIntegrityError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("missing %s", summarize(e.Missing)))
	}
	if len(e.Duplicated) > 0 {
		parts = append(parts, fmt.Sprintf("duplicated %s", summarize(e.Duplicated)))
	}
	if len(e.Unknown) > 0 {
		parts = append(parts, fmt.Sprintf("unknown %s", summarize(e.Unknown)))
	}
	return fmt.Sprintf("%s: %s oracle: %s", ErrPartitionIntegrity, e.Oracle, strings.Join(parts, "; "))
}

func (e *PartitionIntegrityError) Unwrap() error {
	return ErrPartitionIntegrity
}

func summarize(ids []string) string {
	const show = 5
	if len(ids) <= show {
		return fmt.Sprintf("%v", ids)
	}
	return fmt.Sprintf("%v and %d more", ids[:show], len(ids)-show)
}
